// Package view turns aggregation output and filter state into render-ready
// structures: ordered transaction rows and label/value chart series. Chart
// drawing itself is external; this package only prepares its inputs.
package view

import (
	"sort"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/filter"
)

// EmptyListMessage is shown when filtering leaves no rows. An empty list is a
// valid state and must render explicitly, not as a blank area.
const EmptyListMessage = "No transactions found for this period."

// palette is assigned by index modulo length, so identical category orders
// always get identical colors.
var palette = []string{
	"#6366F1", "#EF4444", "#F59E0B", "#10B981", "#06B6D4",
	"#8B5CF6", "#EC4899", "#06B6D4", "#F97316", "#E11D48",
}

type (
	// ListView is the filtered, sorted transaction list.
	ListView struct {
		Rows    []core.Transaction `json:"rows"`
		Empty   bool               `json:"empty"`
		Message string             `json:"message,omitempty"` // set when Empty
	}

	// ChartSeries feeds a single-dataset chart.
	ChartSeries struct {
		Labels []string  `json:"labels"`
		Values []float64 `json:"values"`
		Colors []string  `json:"colors,omitempty"`
	}

	// TotalsDisplay carries the Rp-formatted totals for the summary cards.
	TotalsDisplay struct {
		Income  string `json:"income"`
		Expense string `json:"expense"`
		Saving  string `json:"saving"`
		Balance string `json:"balance"`
	}

	// DashboardView is the monthly summary plus its two charts.
	DashboardView struct {
		Period       string        `json:"period"`
		Totals       core.Totals   `json:"totals"`
		Display      TotalsDisplay `json:"display"`
		CategoryPie  ChartSeries   `json:"category_pie"`  // expense categories for Period
		ExpenseTrend ChartSeries   `json:"expense_trend"` // rolling 6-month expense totals
	}

	// YearlyView covers a full calendar year.
	YearlyView struct {
		Year         int           `json:"year"`
		TotalIncome  float64       `json:"total_income"`
		TotalExpense float64       `json:"total_expense"`
		TotalSaving  float64       `json:"total_saving"`
		Balance      float64       `json:"balance"`
		Display      TotalsDisplay `json:"display"`
		CategoryBars ChartSeries   `json:"category_bars"`
		TrendLabels  []string      `json:"trend_labels"` // fixed Jan..Dec
		TrendIncome  []float64     `json:"trend_income"`
		TrendExpense []float64     `json:"trend_expense"`
	}
)

var monthLabels = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Palette returns n colors from the fixed palette, wrapping by index.
func Palette(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = palette[i%len(palette)]
	}
	return out
}

// TransactionList filters records by the state's type and month filters and
// sorts by timestamp descending. The sort is stable: ties keep the store's
// key-iteration order, so identical inputs always yield identical output.
func TransactionList(records []core.Transaction, st filter.State) ListView {
	rows := make([]core.Transaction, 0, len(records))
	for _, tx := range records {
		if st.TypeFilter != filter.TypeAll && string(tx.Type) != st.TypeFilter {
			continue
		}
		if st.MonthFilter != "" {
			if len(tx.Date) < 7 || tx.Date[:7] != st.MonthFilter {
				continue
			}
		}
		rows = append(rows, tx)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Timestamp > rows[j].Timestamp
	})
	if len(rows) == 0 {
		return ListView{Empty: true, Message: EmptyListMessage}
	}
	return ListView{Rows: rows}
}

// Dashboard pairs the summary-period totals with the expense category pie and
// the rolling 6-month expense trend. The trend window ends at now's month and
// covers all records, not just the summary period.
func Dashboard(records []core.Transaction, st filter.State, now time.Time) DashboardView {
	period := st.SummaryPeriod
	if period == "" {
		period = core.PeriodOf(now)
	}

	breakdown := core.CategoryBreakdown(records, period, core.Expense)
	trendPeriods := core.LastNPeriods(6, now)
	totals := core.MonthlyTotals(records, period)

	return DashboardView{
		Period:      period,
		Totals:      totals,
		Display:     displayTotals(totals),
		CategoryPie: seriesFromMap(breakdown),
		ExpenseTrend: ChartSeries{
			Labels: trendPeriods,
			Values: core.TrendSeries(records, trendPeriods, core.Expense),
		},
	}
}

// Yearly projects a full-year aggregation, independent of the month filters.
func Yearly(records []core.Transaction, year int) YearlyView {
	y := core.YearlyAggregation(records, year)
	return YearlyView{
		Year:         y.Year,
		TotalIncome:  y.TotalIncome,
		TotalExpense: y.TotalExpense,
		TotalSaving:  y.TotalSaving,
		Balance:      y.Balance(),
		Display: displayTotals(core.Totals{
			Income:  y.TotalIncome,
			Expense: y.TotalExpense,
			Saving:  y.TotalSaving,
			Balance: y.Balance(),
		}),
		CategoryBars: seriesFromMap(y.Categories),
		TrendLabels:  monthLabels,
		TrendIncome:  y.MonthlyIncome[:],
		TrendExpense: y.MonthlyExpense[:],
	}
}

func displayTotals(t core.Totals) TotalsDisplay {
	return TotalsDisplay{
		Income:  core.FormatRupiah(t.Income),
		Expense: core.FormatRupiah(t.Expense),
		Saving:  core.FormatRupiah(t.Saving),
		Balance: core.FormatRupiah(t.Balance),
	}
}

// seriesFromMap flattens a category map into sorted label/value pairs. Sorting
// makes the projection idempotent, which the modulo palette relies on.
func seriesFromMap(m map[string]float64) ChartSeries {
	labels := make([]string, 0, len(m))
	for k := range m {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	values := make([]float64, len(labels))
	for i, l := range labels {
		values[i] = m[l]
	}
	return ChartSeries{Labels: labels, Values: values, Colors: Palette(len(labels))}
}
