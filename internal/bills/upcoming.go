package bills

import (
	"slices"

	"fiscal/internal/core"
)

type UpcomingBill struct {
	Bill     Bill      `json:"bill"`
	NextDue  core.Date `json:"nextDue"`
	DaysLeft int       `json:"daysLeft"`
}

// Upcoming lists the next occurrence of every bill that is still due on or
// after now, soonest first, keeping insertion order between bills due the
// same day. At most limit entries are returned.
func Upcoming(bills []Bill, now core.Date, limit int) []UpcomingBill {
	out := []UpcomingBill{}
	for _, b := range bills {
		s, err := SchedulerFor(b.Every)
		if err != nil {
			continue
		}
		due, ok := s.NextDue(b.DueDate, now)
		if !ok {
			continue
		}
		out = append(out, UpcomingBill{Bill: b, NextDue: due, DaysLeft: daysBetween(now, due)})
	}
	slices.SortStableFunc(out, func(a, b UpcomingBill) int {
		return a.NextDue.Compare(b.NextDue.Time)
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
