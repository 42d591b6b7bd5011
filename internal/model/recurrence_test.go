package model

import (
	"testing"
	"time"
)

func TestDailyRecurrenceSameDayWhenStillAhead(t *testing.T) {
	rule := DailyRecurrence{At: TimeOfDay{Hour: 18, Minute: 45}}
	next, err := rule.NextAfter(time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("next failed: %v", err)
	}
	if next.Format("2006-01-02 15:04") != "2026-10-17 18:45" {
		t.Fatalf("unexpected next occurrence: %s", next.Format(time.RFC3339))
	}
}

func TestDailyRecurrenceRollsToTomorrow(t *testing.T) {
	rule := DailyRecurrence{At: TimeOfDay{Hour: 8, Minute: 0}}
	next, err := rule.NextAfter(time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("next failed: %v", err)
	}
	if next.Format("2006-01-02 15:04") != "2026-10-18 08:00" {
		t.Fatalf("unexpected next occurrence: %s", next.Format(time.RFC3339))
	}
}

func TestDailyRecurrenceChainsAcrossMonthEnd(t *testing.T) {
	rule := DailyRecurrence{At: TimeOfDay{Hour: 7, Minute: 30}}
	cursor := time.Date(2026, 10, 30, 12, 0, 0, 0, time.UTC)
	for _, want := range []string{"2026-10-31 07:30", "2026-11-01 07:30", "2026-11-02 07:30"} {
		next, err := rule.NextAfter(cursor)
		if err != nil {
			t.Fatalf("next after %s: %v", cursor, err)
		}
		if got := next.Format("2006-01-02 15:04"); got != want {
			t.Fatalf("got %s want %s", got, want)
		}
		cursor = next
	}
}

func TestDailyRecurrenceRejectsInvalidTime(t *testing.T) {
	rule := DailyRecurrence{At: TimeOfDay{Hour: 25}}
	if err := rule.Validate(); err == nil {
		t.Fatal("expected validation error")
	}
	if _, err := rule.NextAfter(time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)); err == nil {
		t.Fatal("expected next error")
	}
}
