package storage

import "time"

type Task struct {
	ID             string
	Title          string
	ReminderHour   int
	ReminderMinute int
	IsActive       bool
	IsCompleted    bool
	// LastCompletedDate keeps its zone offset so the calendar day it names
	// survives a round trip.
	LastCompletedDate *time.Time
	LastNudgeAt       *time.Time
	SnoozedUntil      *time.Time
	CreatedAt         time.Time
}

type Appointment struct {
	ID        string
	Title     string
	VisitAt   time.Time
	Notes     string
	CreatedAt time.Time
}

type TaskListFilter struct {
	Active *bool
	Limit  int
	Offset int
}

type AppointmentListFilter struct {
	// From keeps only visits at or after the instant.
	From   *time.Time
	Limit  int
	Offset int
}
