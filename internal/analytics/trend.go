package analytics

import (
	"fiscal/internal/core"
)

type (
	TrendPoint struct {
		Label    string      `json:"label"`
		Year     int         `json:"year"`
		Month    int         `json:"month"`
		Income   core.Money  `json:"income"`
		Expenses core.Money  `json:"expenses"`
		Net      core.Money  `json:"net"`
		Period   core.Period `json:"-"`
	}

	// TrendSeries always holds exactly one point per month of the window,
	// oldest first.
	TrendSeries struct {
		Points []TrendPoint `json:"points"`
	}

	CategorySeries struct {
		Category string       `json:"category"`
		Amounts  []core.Money `json:"amounts"`
	}

	// History is the per-month material the projection works from. Every
	// series has one entry per period, aligned with Periods.
	History struct {
		Periods    []core.Period    `json:"-"`
		Categories []CategorySeries `json:"categories"`
		Income     []core.Money     `json:"income"`
		Expenses   []core.Money     `json:"expenses"`
	}
)

// Window returns the window consecutive periods ending at now's month, oldest
// first.
func Window(now core.Date, window int) []core.Period {
	if window < 0 {
		window = 0
	}
	last := core.PeriodOf(now)
	out := make([]core.Period, window)
	for i := range out {
		out[i] = last.Add(i - window + 1)
	}
	return out
}

func bucketIndex(periods []core.Period) map[core.Period]int {
	idx := make(map[core.Period]int, len(periods))
	for i, p := range periods {
		idx[p] = i
	}
	return idx
}

// Trend buckets income and expenses into the rolling window ending at now.
// Transactions are matched on (year, month); anything outside the window is
// ignored and empty months stay in the series as zeros.
func Trend(txs []core.Transaction, now core.Date, window int) TrendSeries {
	periods := Window(now, window)
	idx := bucketIndex(periods)
	points := make([]TrendPoint, len(periods))
	for i, p := range periods {
		points[i] = TrendPoint{Label: p.Label(), Year: p.Year, Month: int(p.Month), Period: p}
	}
	for _, tx := range txs {
		amount := amountOf(tx)
		i, ok := idx[tx.Period()]
		if !ok {
			continue
		}
		if tx.Kind == core.Income {
			points[i].Income.Cents += amount
		} else {
			points[i].Expenses.Cents += amount
		}
	}
	for i := range points {
		points[i].Net = points[i].Income.Sub(points[i].Expenses)
	}
	return TrendSeries{Points: points}
}

// CategoryHistory returns per-category monthly expense sums over the rolling
// window together with the monthly income and expense totals. Categories are
// listed in first-appearance order of the window's expenses by date.
func CategoryHistory(txs []core.Transaction, now core.Date, window int) History {
	periods := Window(now, window)
	idx := bucketIndex(periods)
	h := History{
		Periods:    periods,
		Categories: []CategorySeries{},
		Income:     make([]core.Money, len(periods)),
		Expenses:   make([]core.Money, len(periods)),
	}
	byCategory := map[string]int{}
	for _, tx := range chronological(txs) {
		amount := core.Money{Cents: amountOf(tx)}
		i, ok := idx[tx.Period()]
		if !ok {
			continue
		}
		if tx.Kind == core.Income {
			h.Income[i] = h.Income[i].Add(amount)
			continue
		}
		h.Expenses[i] = h.Expenses[i].Add(amount)
		c, ok := byCategory[tx.Category]
		if !ok {
			c = len(h.Categories)
			byCategory[tx.Category] = c
			h.Categories = append(h.Categories, CategorySeries{
				Category: tx.Category,
				Amounts:  make([]core.Money, len(periods)),
			})
		}
		h.Categories[c].Amounts[i] = h.Categories[c].Amounts[i].Add(amount)
	}
	return h
}
