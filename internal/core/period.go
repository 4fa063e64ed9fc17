package core

import "time"

// Period is a calendar month of a given year, the unit of aggregation.
type Period struct {
	Year  int
	Month time.Month
}

// PeriodOf returns the period containing d.
func PeriodOf(d Date) Period {
	return Period{Year: d.Year(), Month: time.Month(d.Month())}
}

// Add moves the period by n months, wrapping across year boundaries.
func (p Period) Add(n int) Period {
	t := time.Date(p.Year, p.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return Period{Year: t.Year(), Month: t.Month()}
}

// Contains reports whether d falls inside the period.
func (p Period) Contains(d Date) bool {
	return d.Year() == p.Year && time.Month(d.Month()) == p.Month
}

// Before reports whether p is strictly earlier than o.
func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Month < o.Month
}

// Label is the short month name used on chart axes, e.g. "Jan".
func (p Period) Label() string {
	return p.Month.String()[:3]
}

// Start returns the first day of the period.
func (p Period) Start() Date {
	return NewDate(p.Year, int(p.Month), 1)
}

// End returns the last day of the period.
func (p Period) End() Date {
	return Date{Time: time.Date(p.Year, p.Month+1, 0, 0, 0, 0, 0, time.UTC)}
}

func (p Period) String() string {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}
