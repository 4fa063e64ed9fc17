package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fiscal/internal/bills"
	"fiscal/internal/core"
)

func sample() []core.Transaction {
	return []core.Transaction{
		{ID: 1, Kind: core.Expense, Amount: core.FromUnits(5000), Category: "Rent/PG", Description: "PG Rent", Date: core.NewDate(2024, 5, 1)},
		{ID: 2, Kind: core.Expense, Amount: core.FromUnits(450), Category: "Food & Dining", Description: "Swiggy Order", Date: core.NewDate(2024, 5, 3)},
		{ID: 3, Kind: core.Income, Amount: core.FromUnits(25000), Category: "Salary/Stipend", Description: "Stipend", Date: core.NewDate(2024, 5, 5)},
		{ID: 4, Kind: core.Expense, Amount: core.FromUnits(280), Category: "Food & Dining", Description: "Cafe Coffee Day", Date: core.NewDate(2024, 5, 7)},
		{ID: 5, Kind: core.Expense, Amount: core.FromUnits(1200), Category: "Shopping", Description: "Myntra Purchase", Date: core.NewDate(2024, 5, 10)},
	}
}

func TestBuildDashboard(t *testing.T) {
	reminders := []bills.Bill{
		{ID: "n", Name: "Netflix Subscription", Amount: core.FromUnits(199), DueDate: core.NewDate(2024, 5, 18), Every: bills.Monthly},
	}
	now := core.NewDate(2024, 5, 15)
	d := BuildDashboard(sample(), reminders, now, DefaultOptions())

	assert.Equal(t, core.FromUnits(18070), d.Balance.CurrentBalance)
	assert.Equal(t, core.FromUnits(18070), d.Savings.Amount)
	assert.Equal(t, 36.14, d.Savings.ProgressPercent)
	assert.Equal(t, 36.14, d.SavingsBar)
	require.Len(t, d.Breakdown.Entries, 3)
	assert.Equal(t, core.FromUnits(730), d.Breakdown.Entries[1].Amount)
	assert.Len(t, d.Trend.Points, 6)
	require.Len(t, d.Recent.Items, 5)
	assert.Equal(t, int64(5), d.Recent.Items[0].Transaction.ID)
	require.Len(t, d.Upcoming, 1)
	assert.Equal(t, 3, d.Upcoming[0].DaysLeft)
}

func TestBuildInsights(t *testing.T) {
	now := core.NewDate(2024, 5, 15)
	in := BuildInsights(sample(), now, DefaultOptions())

	require.Len(t, in.Projection.PerCategory, 3)
	assert.Equal(t, "Rent/PG", in.Projection.PerCategory[0].Category)
	assert.Len(t, in.Trend.Points, 6)
	assert.Equal(t, in, BuildInsights(sample(), now, DefaultOptions()))
}

func TestDashboardJSONShape(t *testing.T) {
	d := BuildDashboard(nil, nil, core.NewDate(2024, 5, 15), DefaultOptions())
	b, err := json.Marshal(d)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, "2024-05-15", raw["date"])
	assert.Equal(t, []any{}, raw["upcomingBills"])
	breakdown := raw["breakdown"].(map[string]any)
	assert.Equal(t, []any{}, breakdown["entries"])
	balance := raw["balance"].(map[string]any)
	assert.Equal(t, 0.0, balance["currentBalance"])
}
