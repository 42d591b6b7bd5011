package reminder

import (
	"context"
	"time"

	"github.com/sandeepkv93/nudge/internal/clock"
	"github.com/sandeepkv93/nudge/internal/model"
)

// ScheduleToday submits the main reminder (if still ahead) and every nudge
// still ahead for today. Re-running it yields the same ids, so the delivery
// service replaces rather than duplicates.
func (e *Engine) ScheduleToday(ctx context.Context, task model.Task) {
	unlock := e.locks.lock(task.ID)
	defer unlock()
	e.scheduleToday(ctx, task, e.clock.Now())
}

func (e *Engine) scheduleToday(ctx context.Context, task model.Task, now time.Time) {
	if !task.Schedulable(now) {
		return
	}
	alerts, skipped := e.planToday(task, now)
	for _, err := range skipped {
		e.log.WithTask(task.ID).Warnw("skipping alert candidate", "error", err)
	}
	for _, a := range alerts {
		e.submit(ctx, a)
	}
}

// EnsureBackup registers the completion-independent daily alert.
func (e *Engine) EnsureBackup(ctx context.Context, task model.Task) {
	if !task.Active {
		return
	}
	unlock := e.locks.lock(task.ID)
	defer unlock()
	e.submit(ctx, backupAlert(task))
}

// CancelAll retracts every alert of the task, whatever its slot or date.
func (e *Engine) CancelAll(ctx context.Context, taskID string) {
	unlock := e.locks.lock(taskID)
	defer unlock()
	e.cancelAll(ctx, taskID)
}

func (e *Engine) cancelAll(ctx context.Context, taskID string) {
	e.cancelMatching(ctx, "all", func(id model.AlertID) bool {
		return id.BelongsTo(model.KindTask, taskID)
	})
}

// CancelToday retracts the task's alerts stamped with today's date and any
// snooze, whatever day it was due. The daily backup survives.
func (e *Engine) CancelToday(ctx context.Context, taskID string) {
	unlock := e.locks.lock(taskID)
	defer unlock()
	e.cancelToday(ctx, taskID, e.clock.Now())
}

func (e *Engine) cancelToday(ctx context.Context, taskID string, now time.Time) {
	stamp := clock.DateStamp(now)
	e.cancelMatching(ctx, "today", func(id model.AlertID) bool {
		return id.BelongsTo(model.KindTask, taskID) && (id.DateStamp == stamp || id.Slot.IsSnooze())
	})
}

// Sync brings the task's alerts in line with its state: a task done today
// loses today's alerts, any other task gets them (re)submitted.
func (e *Engine) Sync(ctx context.Context, task model.Task) {
	unlock := e.locks.lock(task.ID)
	defer unlock()

	now := e.clock.Now()
	if task.DoneOn(now) {
		e.cancelToday(ctx, task.ID, now)
		return
	}
	e.scheduleToday(ctx, task, now)
}

// RescheduleAllForToday runs daily rollover over every task and reconciles
// the delivery service against tasks, the full stored set: active incomplete
// tasks get today's alerts, tasks done today lose them, paused tasks and
// tasks missing from the set lose everything. The rolled-over values are
// returned for the caller to persist.
func (e *Engine) RescheduleAllForToday(ctx context.Context, tasks []model.Task) []model.Task {
	now := e.clock.Now()
	out := make([]model.Task, 0, len(tasks))
	for _, task := range tasks {
		rolled := task.Rollover(now)
		if rolled.Completed != task.Completed {
			e.metrics.observeRollover()
			e.log.WithTask(task.ID).Debugw("completion reset by rollover")
		}
		out = append(out, rolled)
	}

	known := make(map[string]bool, len(out))
	for _, task := range out {
		known[task.ID] = true
		unlock := e.locks.lock(task.ID)
		switch {
		case !task.Active:
			e.cancelAll(ctx, task.ID)
		case task.DoneOn(now):
			e.cancelToday(ctx, task.ID, now)
		default:
			e.scheduleToday(ctx, task, now)
		}
		unlock()
	}
	e.cancelMatching(ctx, "orphan", func(id model.AlertID) bool {
		return id.Kind == model.KindTask && !known[id.EntityID]
	})

	e.ReconcileBadge(ctx, out)
	return out
}

// ReconcileBadge clears the unread badge once every active task is done
// today. It is cosmetic: failures are only logged.
func (e *Engine) ReconcileBadge(ctx context.Context, tasks []model.Task) {
	now := e.clock.Now()
	for _, task := range tasks {
		if task.Active && !task.DoneOn(now) {
			return
		}
	}
	if err := e.service.ClearBadge(ctx); err != nil {
		e.metrics.observeFailure("clear_badge")
		e.log.Warnw("clear badge failed", "error", err)
	}
}

// Snooze submits a one-shot reminder after the policy's snooze delay under
// a fresh id. It returns the task carrying the snooze, for the caller to
// persist, and the submitted id.
func (e *Engine) Snooze(ctx context.Context, task model.Task) (model.Task, model.AlertID) {
	unlock := e.locks.lock(task.ID)
	defer unlock()

	fireAt := e.clock.Now().Add(e.policy.SnoozeDelay)
	task = task.Snooze(fireAt)
	a := snoozeAlert(task, fireAt)
	e.submit(ctx, a)
	return task, a.ID
}

func (e *Engine) submit(ctx context.Context, a Alert) {
	id := a.ID.String()
	var err error
	if a.Repeats {
		err = e.service.SubmitRecurringDaily(ctx, id, a.At, a.Payload)
	} else {
		err = e.service.SubmitOneShot(ctx, id, a.FireAt, a.Payload)
	}
	if err != nil {
		e.metrics.observeFailure("submit")
		e.log.Warnw("alert submission failed", "alert_id", id, "error", err)
		return
	}
	e.metrics.observeSubmitted(a.ID.Slot.Kind())
	e.log.Debugw("alert submitted", "alert_id", id, "fire_at", a.FireAt)
}

// cancelMatching enumerates pending and delivered alerts, then retracts the
// ones whose parsed id satisfies match. Ids that do not parse belong to no
// entity and are left alone.
func (e *Engine) cancelMatching(ctx context.Context, reason string, match func(model.AlertID) bool) {
	seen := make(map[string]bool)
	ids := make([]string, 0)
	collect := func(raw string) {
		if seen[raw] {
			return
		}
		parsed, err := model.ParseAlertID(raw)
		if err != nil || !match(parsed) {
			return
		}
		seen[raw] = true
		ids = append(ids, raw)
	}

	pending, err := e.service.ListPending(ctx)
	if err != nil {
		e.metrics.observeFailure("list_pending")
		e.log.Warnw("listing pending alerts failed", "error", err)
	}
	for _, req := range pending {
		collect(req.ID)
	}
	delivered, err := e.service.ListDelivered(ctx)
	if err != nil {
		e.metrics.observeFailure("list_delivered")
		e.log.Warnw("listing delivered alerts failed", "error", err)
	}
	for _, d := range delivered {
		collect(d.ID)
	}

	if len(ids) == 0 {
		return
	}
	if err := e.service.Cancel(ctx, ids...); err != nil {
		e.metrics.observeFailure("cancel")
		e.log.Warnw("alert cancellation failed", "reason", reason, "error", err)
		return
	}
	e.metrics.observeCancelled(reason, len(ids))
}
