package reminder

import (
	"context"
	"time"

	"github.com/sandeepkv93/nudge/internal/clock"
	"github.com/sandeepkv93/nudge/internal/model"
	"github.com/sandeepkv93/nudge/internal/notify"
)

// PlanAppointment returns the day-before and day-of reminders whose
// instants are still ahead of now.
func (e *Engine) PlanAppointment(a model.Appointment, now time.Time) []Alert {
	out := make([]Alert, 0, 2)
	title := a.DisplayTitle()

	dayBefore, err := clock.Compose(clock.StartOfDay(a.Date).AddDate(0, 0, -1), e.policy.DayBeforeHour, 0)
	if err == nil && dayBefore.After(now) {
		out = append(out, Alert{
			ID:     model.VisitAlert(a.ID, model.SlotDayBefore),
			FireAt: dayBefore,
			Payload: notify.Payload{
				Title:    "Doctor's Visit Tomorrow",
				Body:     title + " is tomorrow. Don't forget to prepare any questions!",
				Category: model.CategoryVisit,
				EntityID: a.ID,
			},
		})
	}

	dayOf, err := clock.Compose(a.Date, e.policy.DayOfHour, 0)
	if err == nil && dayOf.After(now) {
		out = append(out, Alert{
			ID:     model.VisitAlert(a.ID, model.SlotDayOf),
			FireAt: dayOf,
			Payload: notify.Payload{
				Title:    "Doctor's Visit Today",
				Body:     title + " is today. Take care!",
				Category: model.CategoryVisit,
				EntityID: a.ID,
			},
		})
	}
	return out
}

// ScheduleAppointmentReminders submits the visit's reminders. Instants that
// already passed are skipped silently.
func (e *Engine) ScheduleAppointmentReminders(ctx context.Context, a model.Appointment) {
	unlock := e.locks.lock(string(model.KindVisit) + ":" + a.ID)
	defer unlock()
	for _, alert := range e.PlanAppointment(a, e.clock.Now()) {
		e.submit(ctx, alert)
	}
}

// CancelAppointmentReminders retracts both reminders by their fixed ids.
func (e *Engine) CancelAppointmentReminders(ctx context.Context, appointmentID string) {
	unlock := e.locks.lock(string(model.KindVisit) + ":" + appointmentID)
	defer unlock()
	ids := []string{
		model.VisitAlert(appointmentID, model.SlotDayBefore).String(),
		model.VisitAlert(appointmentID, model.SlotDayOf).String(),
	}
	if err := e.service.Cancel(ctx, ids...); err != nil {
		e.metrics.observeFailure("cancel")
		e.log.Warnw("appointment cancellation failed", "appointment_id", appointmentID, "error", err)
		return
	}
	e.metrics.observeCancelled("appointment", len(ids))
}

// RetainAppointments retracts visit alerts whose appointment is not in keep.
func (e *Engine) RetainAppointments(ctx context.Context, keep []string) {
	known := make(map[string]bool, len(keep))
	for _, id := range keep {
		known[id] = true
	}
	e.cancelMatching(ctx, "orphan", func(id model.AlertID) bool {
		return id.Kind == model.KindVisit && !known[id.EntityID]
	})
}

// RescheduleAppointment replaces the visit's reminders after an edit.
func (e *Engine) RescheduleAppointment(ctx context.Context, a model.Appointment) {
	e.CancelAppointmentReminders(ctx, a.ID)
	if a.Upcoming(e.clock.Now()) {
		e.ScheduleAppointmentReminders(ctx, a)
	}
}
