package app

import (
	"github.com/sandeepkv93/nudge/internal/model"
	"github.com/sandeepkv93/nudge/internal/storage"
)

func taskFromEntity(in storage.Task) model.Task {
	return model.Task{
		ID:                in.ID,
		Title:             in.Title,
		Reminder:          model.TimeOfDay{Hour: in.ReminderHour, Minute: in.ReminderMinute},
		Active:            in.IsActive,
		Completed:         in.IsCompleted,
		LastCompletedDate: in.LastCompletedDate,
		LastNudgeAt:       in.LastNudgeAt,
		SnoozedUntil:      in.SnoozedUntil,
		CreatedAt:         in.CreatedAt,
	}
}

func taskToEntity(in model.Task) storage.Task {
	return storage.Task{
		ID:                in.ID,
		Title:             in.Title,
		ReminderHour:      in.Reminder.Hour,
		ReminderMinute:    in.Reminder.Minute,
		IsActive:          in.Active,
		IsCompleted:       in.Completed,
		LastCompletedDate: in.LastCompletedDate,
		LastNudgeAt:       in.LastNudgeAt,
		SnoozedUntil:      in.SnoozedUntil,
		CreatedAt:         in.CreatedAt,
	}
}

func appointmentFromEntity(in storage.Appointment) model.Appointment {
	return model.Appointment{
		ID:        in.ID,
		Title:     in.Title,
		Date:      in.VisitAt,
		Notes:     in.Notes,
		CreatedAt: in.CreatedAt,
	}
}

func appointmentToEntity(in model.Appointment) storage.Appointment {
	return storage.Appointment{
		ID:        in.ID,
		Title:     in.Title,
		VisitAt:   in.Date,
		Notes:     in.Notes,
		CreatedAt: in.CreatedAt,
	}
}
