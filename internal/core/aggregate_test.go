package core

import (
	"testing"
	"time"
)

func sampleMarch() []Transaction {
	return []Transaction{
		{Type: Income, Amount: 1000, Date: "2024-03-05", Category: "Gaji"},
		{Type: Expense, Amount: 400, Date: "2024-03-10", Category: "Food"},
		{Type: Saving, Amount: 100, Date: "2024-03-15", Category: "Investasi"},
	}
}

func TestMonthlyTotals(t *testing.T) {
	got := MonthlyTotals(sampleMarch(), "2024-03")
	want := Totals{Income: 1000, Expense: 400, Saving: 100, Balance: 500}
	if got != want {
		t.Fatalf("totals = %+v, want %+v", got, want)
	}
}

func TestMonthlyTotalsBalanceIdentity(t *testing.T) {
	records := []Transaction{
		{Type: Income, Amount: 12.5, Date: "2024-01-01"},
		{Type: Expense, Amount: 3.25, Date: "2024-01-02"},
		{Type: Saving, Amount: 1.25, Date: "2024-01-31"},
		{Type: Expense, Amount: 999, Date: "2024-02-01"}, // other period
	}
	got := MonthlyTotals(records, "2024-01")
	if got.Balance != got.Income-got.Expense-got.Saving {
		t.Fatalf("balance %v != income-expense-saving", got.Balance)
	}
	if got.Expense != 3.25 {
		t.Fatalf("expense = %v, leaked another period", got.Expense)
	}
}

func TestMonthlyTotalsSkipsBadData(t *testing.T) {
	records := []Transaction{
		{Type: Income, Amount: 100, Date: "not-a-date"},
		{Type: Income, Amount: 100, Date: "2024-03-99"},
		{Type: Income, Amount: 50, Date: "2024-03-01"},
	}
	got := MonthlyTotals(records, "2024-03")
	if got.Income != 50 {
		t.Fatalf("income = %v, want 50 (unparsable dates must be excluded)", got.Income)
	}
}

func TestMonthlyTotalsEmpty(t *testing.T) {
	got := MonthlyTotals(nil, "2024-03")
	if got != (Totals{}) {
		t.Fatalf("expected zero totals, got %+v", got)
	}
}

func TestCategoryBreakdown(t *testing.T) {
	got := CategoryBreakdown(sampleMarch(), "2024-03", Expense)
	if len(got) != 1 || got["Food"] != 400 {
		t.Fatalf("breakdown = %v, want {Food:400}", got)
	}
	if empty := CategoryBreakdown(nil, "2024-03", Expense); len(empty) != 0 {
		t.Fatalf("expected empty map, got %v", empty)
	}
}

func TestTrendSeriesRollingWindow(t *testing.T) {
	now := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	periods := LastNPeriods(6, now)
	wantPeriods := []string{"2023-10", "2023-11", "2023-12", "2024-01", "2024-02", "2024-03"}
	for i, p := range wantPeriods {
		if periods[i] != p {
			t.Fatalf("periods[%d] = %s, want %s", i, periods[i], p)
		}
	}

	records := []Transaction{
		{Type: Expense, Amount: 10, Date: "2023-12-25"},
		{Type: Expense, Amount: 5, Date: "2024-03-01"},
		{Type: Income, Amount: 99, Date: "2024-03-01"}, // wrong type
	}
	got := TrendSeries(records, periods, Expense)
	if len(got) != 6 {
		t.Fatalf("series length = %d, want 6", len(got))
	}
	if got[2] != 10 || got[5] != 5 {
		t.Fatalf("series = %v", got)
	}

	zeros := TrendSeries(nil, periods, Expense)
	for i, v := range zeros {
		if v != 0 {
			t.Fatalf("zeros[%d] = %v, want 0", i, v)
		}
	}
	if len(zeros) != 6 {
		t.Fatalf("empty input must still yield 6 values, got %d", len(zeros))
	}
}

func TestYearlyAggregation(t *testing.T) {
	records := []Transaction{
		{Type: Income, Amount: 1000, Date: "2024-01-05"},
		{Type: Income, Amount: 500, Date: "2024-06-05"},
		{Type: Expense, Amount: 300, Date: "2024-06-10", Category: "Tagihan"},
		{Type: Expense, Amount: 200, Date: "2024-12-31", Category: "Belanja"},
		{Type: Saving, Amount: 150, Date: "2024-02-01"},
		{Type: Income, Amount: 9999, Date: "2023-01-01"}, // other year
		{Type: Expense, Amount: 1, Date: "garbage"},
	}
	y := YearlyAggregation(records, 2024)

	if y.TotalIncome != 1500 || y.TotalExpense != 500 || y.TotalSaving != 150 {
		t.Fatalf("totals = %v/%v/%v", y.TotalIncome, y.TotalExpense, y.TotalSaving)
	}
	if y.MonthlyIncome[0] != 1000 || y.MonthlyIncome[5] != 500 {
		t.Fatalf("monthly income = %v", y.MonthlyIncome)
	}
	if y.MonthlyExpense[5] != 300 || y.MonthlyExpense[11] != 200 {
		t.Fatalf("monthly expense = %v", y.MonthlyExpense)
	}
	if y.Categories["Tagihan"] != 300 || y.Categories["Belanja"] != 200 {
		t.Fatalf("categories = %v", y.Categories)
	}
	if y.Balance() != 850 {
		t.Fatalf("balance = %v, want 850", y.Balance())
	}

	var sumIncome, sumExpense float64
	for i := 0; i < 12; i++ {
		sumIncome += y.MonthlyIncome[i]
		sumExpense += y.MonthlyExpense[i]
	}
	if sumIncome != y.TotalIncome || sumExpense != y.TotalExpense {
		t.Fatalf("monthly arrays must sum to totals: %v/%v vs %v/%v",
			sumIncome, sumExpense, y.TotalIncome, y.TotalExpense)
	}
}
