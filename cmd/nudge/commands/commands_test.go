package commands

import (
	"testing"
	"time"
)

func TestUntilMidnightLandsOnNextDay(t *testing.T) {
	loc := time.FixedZone("PDT", -7*3600)
	now := time.Date(2026, 10, 17, 23, 59, 30, 0, loc)
	got := untilMidnight(now)
	if want := 31 * time.Second; got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if now.Add(got).Day() != 18 {
		t.Fatalf("expected wake on the 18th, got %v", now.Add(got))
	}
}
