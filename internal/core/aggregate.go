// Package core holds the transaction domain model and the pure aggregation
// functions that derive totals, category breakdowns, and trend series from a
// snapshot of a user's records.
package core

// Totals are the per-type sums for one period.
// Balance = Income - Expense - Saving.
type Totals struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Saving  float64 `json:"saving"`
	Balance float64 `json:"balance"`
}

// YearSummary aggregates a full calendar year independent of month filters.
// Monthly arrays are indexed 0 = January. Categories covers expense records only.
type YearSummary struct {
	Year           int
	TotalIncome    float64
	TotalExpense   float64
	TotalSaving    float64
	MonthlyIncome  [12]float64
	MonthlyExpense [12]float64
	Categories     map[string]float64
}

// Balance of the whole year.
func (y YearSummary) Balance() float64 {
	return y.TotalIncome - y.TotalExpense - y.TotalSaving
}

// MonthlyTotals sums amounts per type for records whose month equals period.
// Records with unparsable dates are skipped silently.
func MonthlyTotals(records []Transaction, period string) Totals {
	var t Totals
	for _, tx := range records {
		m, ok := Month(tx.Date)
		if !ok || m != period {
			continue
		}
		switch tx.Type {
		case Income:
			t.Income += tx.SafeAmount()
		case Expense:
			t.Expense += tx.SafeAmount()
		case Saving:
			t.Saving += tx.SafeAmount()
		}
	}
	t.Balance = t.Income - t.Expense - t.Saving
	return t
}

// CategoryBreakdown maps category to summed amount for records of the given
// type within period. An empty map means nothing matched; chart consumers must
// accept zero-length label sets.
func CategoryBreakdown(records []Transaction, period string, typ Type) map[string]float64 {
	out := make(map[string]float64)
	for _, tx := range records {
		if tx.Type != typ {
			continue
		}
		m, ok := Month(tx.Date)
		if !ok || m != period {
			continue
		}
		out[tx.Category] += tx.SafeAmount()
	}
	return out
}

// TrendSeries returns one sum per period, in the given order (callers pass
// periods oldest first). Zero records still yield len(periods) zeros.
func TrendSeries(records []Transaction, periods []string, typ Type) []float64 {
	sums := make([]float64, len(periods))
	index := make(map[string]int, len(periods))
	for i, p := range periods {
		index[p] = i
	}
	for _, tx := range records {
		if tx.Type != typ {
			continue
		}
		m, ok := Month(tx.Date)
		if !ok {
			continue
		}
		if i, hit := index[m]; hit {
			sums[i] += tx.SafeAmount()
		}
	}
	return sums
}

// YearlyAggregation buckets all records of the given calendar year. The year
// is compared against the parsed date's year, not a string prefix. Expense
// categories accumulate into Categories; income and saving do not.
func YearlyAggregation(records []Transaction, year int) YearSummary {
	y := YearSummary{Year: year, Categories: make(map[string]float64)}
	for _, tx := range records {
		d, ok := ParseDate(tx.Date)
		if !ok || d.Year() != year {
			continue
		}
		month := int(d.Month()) - 1
		switch tx.Type {
		case Income:
			y.TotalIncome += tx.SafeAmount()
			y.MonthlyIncome[month] += tx.SafeAmount()
		case Expense:
			y.TotalExpense += tx.SafeAmount()
			y.MonthlyExpense[month] += tx.SafeAmount()
			y.Categories[tx.Category] += tx.SafeAmount()
		case Saving:
			y.TotalSaving += tx.SafeAmount()
		}
	}
	return y
}
