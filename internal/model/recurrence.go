package model

import (
	"time"

	"github.com/sandeepkv93/nudge/internal/clock"
)

// DailyRecurrence fires every calendar day at the same wall-clock time.
type DailyRecurrence struct {
	At TimeOfDay
}

func (r DailyRecurrence) Validate() error {
	if !r.At.Valid() {
		return ErrInvalidTimeOfDay
	}
	return nil
}

// NextAfter returns the first occurrence strictly after from, in from's location.
func (r DailyRecurrence) NextAfter(from time.Time) (time.Time, error) {
	candidate, err := r.At.On(from)
	if err != nil {
		return time.Time{}, err
	}
	if candidate.After(from) {
		return candidate, nil
	}
	return r.At.On(clock.StartOfDay(from).AddDate(0, 0, 1))
}
