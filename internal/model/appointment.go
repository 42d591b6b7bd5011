package model

import (
	"fmt"
	"strings"
	"time"
)

// Appointment is a calendar visit that gets a day-before and a day-of reminder.
type Appointment struct {
	ID        string `validate:"required"`
	Title     string
	Date      time.Time
	Notes     string
	CreatedAt time.Time
}

func (a Appointment) Validate() error {
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAppointment, err)
	}
	if a.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidAppointment)
	}
	return nil
}

func (a Appointment) Upcoming(now time.Time) bool {
	return a.Date.After(now)
}

func (a Appointment) DisplayTitle() string {
	if t := strings.TrimSpace(a.Title); t != "" {
		return t
	}
	return "Doctor's visit"
}
