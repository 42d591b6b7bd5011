package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sandeepkv93/nudge/internal/clock"
)

var (
	ErrInvalidTask        = errors.New("model: invalid task")
	ErrInvalidAppointment = errors.New("model: invalid appointment")
)

var validate = validator.New()

// Task is a recurring daily to-do. Values are immutable; transitions return
// the next value and leave persistence to the caller.
type Task struct {
	ID                string `validate:"required"`
	Title             string `validate:"required"`
	Reminder          TimeOfDay
	Active            bool
	Completed         bool
	LastCompletedDate *time.Time
	// LastNudgeAt is carried through storage but nothing schedules from it.
	LastNudgeAt *time.Time
	// SnoozedUntil is the fire time of the latest snooze. It lives on the
	// task so any process sharing the store can re-derive the alert.
	SnoozedUntil *time.Time
	CreatedAt    time.Time
}

type TaskState string

const (
	TaskStatePending TaskState = "Pending"
	TaskStateDone    TaskState = "Done"
)

func NewTask(id, title string, at TimeOfDay, now time.Time) Task {
	return Task{
		ID:        id,
		Title:     strings.TrimSpace(title),
		Reminder:  at,
		Active:    true,
		CreatedAt: now,
	}
}

func (t Task) Validate() error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTask, err)
	}
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title is blank", ErrInvalidTask)
	}
	if t.CreatedAt.IsZero() {
		return fmt.Errorf("%w: created_at is required", ErrInvalidTask)
	}
	if t.Completed && t.LastCompletedDate == nil {
		return fmt.Errorf("%w: last_completed_date is required when completed", ErrInvalidTask)
	}
	return nil
}

// DoneOn reports whether the task was completed on now's calendar day.
func (t Task) DoneOn(now time.Time) bool {
	return t.Completed && t.LastCompletedDate != nil && clock.SameDay(now, *t.LastCompletedDate)
}

func (t Task) StateOn(now time.Time) TaskState {
	if t.DoneOn(now) {
		return TaskStateDone
	}
	return TaskStatePending
}

func (t Task) MarkComplete(now time.Time) Task {
	day := clock.StartOfDay(now)
	t.Completed = true
	t.LastCompletedDate = &day
	t.SnoozedUntil = nil
	return t
}

func (t Task) Snooze(until time.Time) Task {
	t.SnoozedUntil = &until
	return t
}

// PendingSnooze returns the snooze fire time while it is still ahead of now.
func (t Task) PendingSnooze(now time.Time) (time.Time, bool) {
	if t.SnoozedUntil == nil || !t.SnoozedUntil.After(now) {
		return time.Time{}, false
	}
	return *t.SnoozedUntil, true
}

func (t Task) MarkIncomplete() Task {
	t.Completed = false
	t.LastCompletedDate = nil
	return t
}

// Rollover clears a completion flag left over from a previous day.
func (t Task) Rollover(now time.Time) Task {
	if t.LastCompletedDate == nil || !clock.SameDay(now, *t.LastCompletedDate) {
		t.Completed = false
	}
	return t
}

func (t Task) WithReminder(at TimeOfDay) Task {
	t.Reminder = at
	return t
}

func (t Task) WithActive(active bool) Task {
	t.Active = active
	return t
}

func (t Task) TodayReminder(now time.Time) (time.Time, error) {
	return t.Reminder.On(now)
}

// NeedsAttention is true once today's reminder time has passed without completion.
func (t Task) NeedsAttention(now time.Time) bool {
	if !t.Active || t.DoneOn(now) {
		return false
	}
	at, err := t.TodayReminder(now)
	if err != nil {
		return false
	}
	return now.After(at)
}

// Schedulable reports whether alerts should exist for the task today.
func (t Task) Schedulable(now time.Time) bool {
	return t.Active && !t.DoneOn(now)
}
