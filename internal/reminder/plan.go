package reminder

import (
	"fmt"
	"time"

	"github.com/sandeepkv93/nudge/internal/model"
	"github.com/sandeepkv93/nudge/internal/notify"
)

// Alert is one planned submission to the delivery service.
type Alert struct {
	ID      model.AlertID
	FireAt  time.Time
	Payload notify.Payload
	Repeats bool
	At      model.TimeOfDay
}

// PlanToday computes the one-shot alerts that should exist for the task for
// the rest of now's calendar day. It does not check completion or activity.
func (e *Engine) PlanToday(task model.Task, now time.Time) []Alert {
	alerts, _ := e.planToday(task, now)
	return alerts
}

// planToday also reports candidates skipped because their time could not be
// composed. A skipped candidate never prevents the others from being planned.
func (e *Engine) planToday(task model.Task, now time.Time) ([]Alert, []error) {
	var (
		alerts  []Alert
		skipped []error
	)
	hour, minute := task.Reminder.Hour, task.Reminder.Minute

	main, err := task.Reminder.On(now)
	switch {
	case err != nil:
		skipped = append(skipped, fmt.Errorf("main: %w", err))
	case main.After(now):
		alerts = append(alerts, Alert{
			ID:      model.TaskAlert(task.ID, model.SlotMain, now),
			FireAt:  main,
			Payload: mainPayload(task),
		})
	}

	for offset := 1; offset <= e.policy.MaxNudges; offset++ {
		nudgeHour := (hour + offset) % 24
		if e.policy.InQuietHours(nudgeHour) {
			continue
		}
		at, err := model.TimeOfDay{Hour: nudgeHour, Minute: minute}.On(now)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("nudge-%d: %w", offset, err))
			continue
		}
		if !at.After(now) {
			continue
		}
		alerts = append(alerts, Alert{
			ID:      model.TaskAlert(task.ID, model.NudgeSlot(offset), now),
			FireAt:  at,
			Payload: nudgePayload(task),
		})
	}
	if until, ok := task.PendingSnooze(now); ok {
		alerts = append(alerts, snoozeAlert(task, until))
	}
	return alerts, skipped
}

// snoozeAlert is keyed by its own fire time, so re-deriving it from the
// stored task yields the id it was first submitted under.
func snoozeAlert(task model.Task, fireAt time.Time) Alert {
	return Alert{
		ID:      model.TaskAlert(task.ID, model.SnoozeSlot(fireAt), fireAt),
		FireAt:  fireAt,
		Payload: mainPayload(task),
	}
}

func backupAlert(task model.Task) Alert {
	p := mainPayload(task)
	p.Badge = false
	return Alert{
		ID:      model.TaskDailyAlert(task.ID),
		Payload: p,
		Repeats: true,
		At:      task.Reminder,
	}
}

func mainPayload(task model.Task) notify.Payload {
	return notify.Payload{
		Title:    "Reminder",
		Body:     task.Title,
		Category: model.CategoryTaskReminder,
		EntityID: task.ID,
		Badge:    true,
	}
}

func nudgePayload(task model.Task) notify.Payload {
	return notify.Payload{
		Title:    "Gentle Reminder",
		Body:     "Don't forget: " + task.Title,
		Category: model.CategoryTaskNudge,
		EntityID: task.ID,
	}
}
