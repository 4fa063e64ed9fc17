package analytics

import (
	"time"

	"fiscal/internal/core"
)

// SpendingHabits splits the month's expenses between weekdays and weekends.
type SpendingHabits struct {
	Weekday        core.Money `json:"weekday"`
	Weekend        core.Money `json:"weekend"`
	WeekendPercent float64    `json:"weekendPercent"`
}

func Habits(txs []core.Transaction, now core.Date) SpendingHabits {
	period := core.PeriodOf(now)
	var h SpendingHabits
	for _, tx := range txs {
		if tx.Kind != core.Expense || tx.Period() != period {
			continue
		}
		amount := core.Money{Cents: amountOf(tx)}
		switch tx.Date.Weekday() {
		case time.Saturday, time.Sunday:
			h.Weekend = h.Weekend.Add(amount)
		default:
			h.Weekday = h.Weekday.Add(amount)
		}
	}
	h.WeekendPercent = core.Percent(h.Weekend, h.Weekday.Add(h.Weekend))
	return h
}
