package bills

import (
	"fmt"
	"time"

	"fiscal/internal/core"
)

// Scheduler computes the next occurrence of a bill on or after now.
// Each frequency has its own implementation.
type Scheduler interface {
	// NextDue returns the first occurrence of a bill anchored at anchor
	// that is not before now. ok is false when no such occurrence exists.
	NextDue(anchor, now core.Date) (due core.Date, ok bool)
}

type OnceScheduler struct{}

// NextDue returns the anchor itself unless it has already passed.
func (OnceScheduler) NextDue(anchor, now core.Date) (core.Date, bool) {
	if anchor.Before(now) {
		return core.Date{}, false
	}
	return anchor, true
}

type DailyScheduler struct{}

func (DailyScheduler) NextDue(anchor, now core.Date) (core.Date, bool) {
	if anchor.Before(now) {
		return now, true
	}
	return anchor, true
}

type WeeklyScheduler struct{}

// NextDue advances the anchor by whole weeks.
func (WeeklyScheduler) NextDue(anchor, now core.Date) (core.Date, bool) {
	if !anchor.Before(now) {
		return anchor, true
	}
	days := daysBetween(anchor, now)
	weeks := (days + 6) / 7
	return core.DateOf(anchor.AddDate(0, 0, weeks*7)), true
}

type MonthlyScheduler struct{}

// NextDue keeps the anchor's day of month, using the last day of shorter
// months.
func (MonthlyScheduler) NextDue(anchor, now core.Date) (core.Date, bool) {
	if !anchor.Before(now) {
		return anchor, true
	}
	months := (now.Year()-anchor.Year())*12 + now.Month() - anchor.Month()
	for k := months; ; k++ {
		d := clampDay(anchor.Year(), time.Month(anchor.Month()+k), anchor.Day())
		if !d.Before(now) {
			return d, true
		}
	}
}

type YearlyScheduler struct{}

// NextDue keeps the anchor's month and day; 29 February falls back to the
// 28th in common years.
func (YearlyScheduler) NextDue(anchor, now core.Date) (core.Date, bool) {
	if !anchor.Before(now) {
		return anchor, true
	}
	for y := now.Year(); ; y++ {
		d := clampDay(y, time.Month(anchor.Month()), anchor.Day())
		if !d.Before(now) {
			return d, true
		}
	}
}

// clampDay builds the date year-month-day, using the month's last day when
// day does not exist in it. month may be out of range and is normalised.
func clampDay(year int, month time.Month, day int) core.Date {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	return core.NewDate(first.Year(), int(first.Month()), min(day, last))
}

func daysBetween(from, to core.Date) int {
	return int(to.Sub(from.Time).Hours() / 24)
}

var schedulers = map[Frequency]Scheduler{
	Once:    OnceScheduler{},
	Daily:   DailyScheduler{},
	Weekly:  WeeklyScheduler{},
	Monthly: MonthlyScheduler{},
	Yearly:  YearlyScheduler{},
}

// SchedulerFor returns the scheduler registered for f.
func SchedulerFor(f Frequency) (Scheduler, error) {
	s, ok := schedulers[f]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFrequency, f)
	}
	return s, nil
}
