package reminder

import (
	"time"

	"github.com/sandeepkv93/nudge/internal/config"
)

// Policy holds the tunable constants of alert planning.
type Policy struct {
	// QuietStartHour and QuietEndHour bound the half-open window
	// [QuietStartHour:00, QuietEndHour:00) in which no nudge is planned.
	// The window may wrap past midnight.
	QuietStartHour int
	QuietEndHour   int
	MaxNudges      int
	SnoozeDelay    time.Duration
	DayBeforeHour  int
	DayOfHour      int
}

func DefaultPolicy() Policy {
	return Policy{
		QuietStartHour: 23,
		QuietEndHour:   7,
		MaxNudges:      12,
		SnoozeDelay:    30 * time.Minute,
		DayBeforeHour:  9,
		DayOfHour:      7,
	}
}

func PolicyFromConfig(cfg config.ReminderConfig) Policy {
	return Policy{
		QuietStartHour: cfg.QuietStartHour,
		QuietEndHour:   cfg.QuietEndHour,
		MaxNudges:      cfg.MaxNudges,
		SnoozeDelay:    time.Duration(cfg.SnoozeMinutes) * time.Minute,
		DayBeforeHour:  cfg.DayBeforeHour,
		DayOfHour:      cfg.DayOfHour,
	}
}

func (p Policy) InQuietHours(hour int) bool {
	switch {
	case p.QuietStartHour == p.QuietEndHour:
		return false
	case p.QuietStartHour > p.QuietEndHour:
		return hour >= p.QuietStartHour || hour < p.QuietEndHour
	default:
		return hour >= p.QuietStartHour && hour < p.QuietEndHour
	}
}
