package view

import (
	"reflect"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/filter"
)

func marchState() filter.State {
	return filter.Defaults(time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC))
}

func records() []core.Transaction {
	return []core.Transaction{
		{ID: "a", Type: core.Income, Amount: 1000, Date: "2024-03-05", Timestamp: 10},
		{ID: "b", Type: core.Expense, Amount: 400, Date: "2024-03-10", Category: "Food", Timestamp: 30},
		{ID: "c", Type: core.Saving, Amount: 100, Date: "2024-03-15", Timestamp: 20},
		{ID: "d", Type: core.Expense, Amount: 50, Date: "2024-02-01", Category: "Food", Timestamp: 40},
	}
}

func TestTransactionListFiltersAndSorts(t *testing.T) {
	st := marchState() // month filter 2024-03, type all
	got := TransactionList(records(), st)
	if got.Empty {
		t.Fatal("unexpected empty view")
	}
	ids := []string{got.Rows[0].ID, got.Rows[1].ID, got.Rows[2].ID}
	if !reflect.DeepEqual(ids, []string{"b", "c", "a"}) {
		t.Fatalf("order = %v, want timestamp descending b,c,a", ids)
	}

	st.SetTypeFilter("expense")
	got = TransactionList(records(), st)
	if len(got.Rows) != 1 || got.Rows[0].ID != "b" {
		t.Fatalf("expense filter rows = %+v", got.Rows)
	}

	// Empty month filter passes all months through.
	st = marchState()
	st.SetMonthFilter("")
	got = TransactionList(records(), st)
	if len(got.Rows) != 4 {
		t.Fatalf("unfiltered rows = %d, want 4", len(got.Rows))
	}
	if got.Rows[0].ID != "d" {
		t.Fatalf("newest first, got %s", got.Rows[0].ID)
	}
}

func TestTransactionListIdempotent(t *testing.T) {
	st := marchState()
	tie := []core.Transaction{
		{ID: "x", Type: core.Income, Amount: 1, Date: "2024-03-01", Timestamp: 5},
		{ID: "y", Type: core.Income, Amount: 2, Date: "2024-03-02", Timestamp: 5},
	}
	first := TransactionList(tie, st)
	second := TransactionList(tie, st)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("projection is not idempotent")
	}
	// Equal timestamps keep input (store key) order.
	if first.Rows[0].ID != "x" || first.Rows[1].ID != "y" {
		t.Fatalf("tie order = %s,%s", first.Rows[0].ID, first.Rows[1].ID)
	}
}

func TestTransactionListEmptyState(t *testing.T) {
	got := TransactionList(nil, marchState())
	if !got.Empty || got.Message != EmptyListMessage {
		t.Fatalf("empty view = %+v", got)
	}
}

func TestDashboard(t *testing.T) {
	now := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	got := Dashboard(records(), marchState(), now)

	if got.Period != "2024-03" {
		t.Fatalf("period = %q", got.Period)
	}
	want := core.Totals{Income: 1000, Expense: 400, Saving: 100, Balance: 500}
	if got.Totals != want {
		t.Fatalf("totals = %+v, want %+v", got.Totals, want)
	}
	if got.Display.Balance != "Rp500" || got.Display.Income != "Rp1.000" {
		t.Fatalf("display = %+v", got.Display)
	}
	if len(got.CategoryPie.Labels) != 1 || got.CategoryPie.Labels[0] != "Food" || got.CategoryPie.Values[0] != 400 {
		t.Fatalf("pie = %+v", got.CategoryPie)
	}
	if len(got.ExpenseTrend.Values) != 6 {
		t.Fatalf("trend length = %d, want 6", len(got.ExpenseTrend.Values))
	}
	// February's 50 lands in slot 4, March's 400 in slot 5.
	if got.ExpenseTrend.Values[4] != 50 || got.ExpenseTrend.Values[5] != 400 {
		t.Fatalf("trend = %v", got.ExpenseTrend.Values)
	}
}

func TestDashboardEmpty(t *testing.T) {
	now := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	got := Dashboard(nil, marchState(), now)
	if got.Totals != (core.Totals{}) {
		t.Fatalf("totals = %+v", got.Totals)
	}
	if len(got.CategoryPie.Labels) != 0 {
		t.Fatalf("pie labels = %v", got.CategoryPie.Labels)
	}
	for i, v := range got.ExpenseTrend.Values {
		if v != 0 {
			t.Fatalf("trend[%d] = %v", i, v)
		}
	}
}

func TestYearly(t *testing.T) {
	got := Yearly(records(), 2024)
	if got.TotalIncome != 1000 || got.TotalExpense != 450 || got.TotalSaving != 100 {
		t.Fatalf("totals = %v/%v/%v", got.TotalIncome, got.TotalExpense, got.TotalSaving)
	}
	if got.Balance != 450 {
		t.Fatalf("balance = %v", got.Balance)
	}
	if got.Display.Balance != "Rp450" {
		t.Fatalf("display balance = %q", got.Display.Balance)
	}
	if len(got.TrendLabels) != 12 || got.TrendLabels[0] != "Jan" || got.TrendLabels[11] != "Dec" {
		t.Fatalf("labels = %v", got.TrendLabels)
	}
	if got.TrendExpense[1] != 50 || got.TrendExpense[2] != 400 {
		t.Fatalf("expense trend = %v", got.TrendExpense)
	}
	if got.CategoryBars.Values[0] != 450 {
		t.Fatalf("category bars = %+v", got.CategoryBars)
	}
}

func TestPaletteDeterministic(t *testing.T) {
	a := Palette(12)
	b := Palette(12)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("palette is not deterministic")
	}
	if a[0] != a[10] {
		t.Fatalf("palette must wrap modulo its length: %s vs %s", a[0], a[10])
	}
	if len(Palette(0)) != 0 {
		t.Fatal("zero-length palette must be empty")
	}
}
