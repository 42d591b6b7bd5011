package clock

import (
	"errors"
	"testing"
	"time"
)

func TestComposeOntoDay(t *testing.T) {
	day := time.Date(2026, 10, 17, 15, 42, 9, 0, time.UTC)
	got, err := Compose(day, 8, 30)
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}
	if got.Format("2006-01-02 15:04:05") != "2026-10-17 08:30:00" {
		t.Fatalf("unexpected composed time: %s", got.Format(time.RFC3339))
	}
}

func TestComposeRejectsOutOfRange(t *testing.T) {
	day := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	cases := [][2]int{{24, 0}, {-1, 0}, {10, 60}, {10, -5}}
	for _, tc := range cases {
		if _, err := Compose(day, tc[0], tc[1]); !errors.Is(err, ErrMalformedTime) {
			t.Fatalf("compose %v: expected ErrMalformedTime, got %v", tc, err)
		}
	}
}

func TestSameDayAndStamp(t *testing.T) {
	a := time.Date(2026, 10, 17, 0, 0, 1, 0, time.UTC)
	b := time.Date(2026, 10, 17, 23, 59, 59, 0, time.UTC)
	c := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	if !SameDay(a, b) {
		t.Fatal("expected same day")
	}
	if SameDay(b, c) {
		t.Fatal("expected different days")
	}
	if DateStamp(b) != "2026-10-17" {
		t.Fatalf("unexpected stamp: %s", DateStamp(b))
	}
	if got := StartOfDay(b); !got.Equal(time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start of day: %s", got)
	}
}

func TestFakeClockAdvance(t *testing.T) {
	start := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	c := NewFake(start)
	c.Advance(90 * time.Minute)
	if got := c.Now(); !got.Equal(start.Add(90 * time.Minute)) {
		t.Fatalf("unexpected fake time: %s", got)
	}
	c.Set(start)
	if !c.Now().Equal(start) {
		t.Fatal("expected fake clock reset")
	}
}
