// Package report assembles the dashboard and insights pages from the
// analytics views, the projection and the bill reminders.
package report

import (
	"errors"
	"slices"

	"fiscal/internal/analytics"
	"fiscal/internal/bills"
	"fiscal/internal/core"
	"fiscal/internal/projection"
)

// Windows lists the trend windows, in months, the insights page offers.
var Windows = []int{3, 6, 12}

var ErrUnsupportedWindow = errors.New("unsupported insights window")

func ValidWindow(months int) bool {
	return slices.Contains(Windows, months)
}

// Options is the static configuration the views are computed with.
type Options struct {
	SavingsGoal   core.Money
	TrendWindow   int
	RecentLimit   int
	Palette       []string
	Icons         []analytics.IconRule
	Projection    projection.Params
	UpcomingBills int
}

func DefaultOptions() Options {
	return Options{
		SavingsGoal:   core.FromUnits(50000),
		TrendWindow:   6,
		RecentLimit:   5,
		Palette:       slices.Clone(analytics.DefaultPalette),
		Icons:         slices.Clone(analytics.DefaultIconRules),
		Projection:    projection.DefaultParams(),
		UpcomingBills: 3,
	}
}

type (
	Dashboard struct {
		Date       core.Date                   `json:"date"`
		Balance    analytics.BalanceSummary    `json:"balance"`
		Comparison analytics.MonthComparison   `json:"comparison"`
		Savings    analytics.SavingsState      `json:"savings"`
		SavingsBar float64                     `json:"savingsBar"`
		Breakdown  analytics.CategoryBreakdown `json:"breakdown"`
		Trend      analytics.TrendSeries       `json:"trend"`
		Recent     analytics.RecentActivity    `json:"recent"`
		Upcoming   []bills.UpcomingBill        `json:"upcomingBills"`
	}

	Insights struct {
		Date       core.Date                   `json:"date"`
		Trend      analytics.TrendSeries       `json:"trend"`
		Breakdown  analytics.CategoryBreakdown `json:"breakdown"`
		Habits     analytics.SpendingHabits    `json:"habits"`
		Projection projection.Projection       `json:"projection"`
	}
)

func BuildDashboard(txs []core.Transaction, reminders []bills.Bill, now core.Date, opts Options) Dashboard {
	balance := analytics.Balance(txs, now)
	savings := analytics.Savings(balance, opts.SavingsGoal)
	return Dashboard{
		Date:       now,
		Balance:    balance,
		Comparison: analytics.Compare(txs, now),
		Savings:    savings,
		SavingsBar: savings.Rendered(),
		Breakdown:  analytics.Breakdown(txs, now, opts.Palette),
		Trend:      analytics.Trend(txs, now, opts.TrendWindow),
		Recent:     analytics.Recent(txs, opts.RecentLimit, opts.Icons),
		Upcoming:   bills.Upcoming(reminders, now, opts.UpcomingBills),
	}
}

func BuildInsights(txs []core.Transaction, now core.Date, opts Options) Insights {
	history := analytics.CategoryHistory(txs, now, opts.TrendWindow)
	return Insights{
		Date:       now,
		Trend:      analytics.Trend(txs, now, opts.TrendWindow),
		Breakdown:  analytics.Breakdown(txs, now, opts.Palette),
		Habits:     analytics.Habits(txs, now),
		Projection: projection.Estimate(history, opts.Projection),
	}
}
