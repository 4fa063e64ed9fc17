package bills

import (
	"testing"

	"fiscal/internal/core"
)

func d(s string) core.Date {
	out, err := core.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return out
}

func TestSchedulers_NextDue(t *testing.T) {
	tests := []struct {
		name   string
		every  Frequency
		anchor string
		now    string
		want   string
		ok     bool
	}{
		{"once future", Once, "2024-06-25", "2024-06-10", "2024-06-25", true},
		{"once today", Once, "2024-06-10", "2024-06-10", "2024-06-10", true},
		{"once past", Once, "2024-06-01", "2024-06-10", "", false},
		{"daily past rolls to today", Daily, "2024-01-01", "2024-06-10", "2024-06-10", true},
		{"weekly same weekday", Weekly, "2024-06-03", "2024-06-10", "2024-06-10", true},
		{"weekly next week", Weekly, "2024-06-04", "2024-06-10", "2024-06-11", true},
		{"monthly later this month", Monthly, "2024-01-15", "2024-06-10", "2024-06-15", true},
		{"monthly next month", Monthly, "2024-01-05", "2024-06-10", "2024-07-05", true},
		{"monthly clamps to month end", Monthly, "2024-01-31", "2024-02-10", "2024-02-29", true},
		{"monthly clamps in common year", Monthly, "2023-01-31", "2023-02-10", "2023-02-28", true},
		{"monthly across year", Monthly, "2024-11-20", "2024-12-25", "2025-01-20", true},
		{"yearly this year", Yearly, "2020-09-01", "2024-06-10", "2024-09-01", true},
		{"yearly next year", Yearly, "2020-03-01", "2024-06-10", "2025-03-01", true},
		{"yearly leap day", Yearly, "2024-02-29", "2024-03-01", "2025-02-28", true},
		{"future anchor kept", Monthly, "2024-08-31", "2024-06-10", "2024-08-31", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := SchedulerFor(tt.every)
			if err != nil {
				t.Fatal(err)
			}
			got, ok := s.NextDue(d(tt.anchor), d(tt.now))
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && got.String() != tt.want {
				t.Errorf("NextDue() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSchedulerFor_Unknown(t *testing.T) {
	if _, err := SchedulerFor("fortnightly"); err == nil {
		t.Fatal("expected error for unknown frequency")
	}
}
