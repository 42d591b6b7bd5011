package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sandeepkv93/nudge/internal/clock"
	"github.com/sandeepkv93/nudge/internal/logger"
	"github.com/sandeepkv93/nudge/internal/model"
	"github.com/sandeepkv93/nudge/internal/notify"
	"github.com/sandeepkv93/nudge/internal/reminder"
	"github.com/sandeepkv93/nudge/internal/storage"
)

var (
	ErrTaskNotFound        = errors.New("app: task not found")
	ErrAmbiguousTask       = errors.New("app: task reference matches more than one task")
	ErrAppointmentNotFound = errors.New("app: appointment not found")
	ErrActionNotAllowed    = errors.New("app: action not offered by alert")
)

// App persists lifecycle changes and keeps the reminder engine in step with
// them. Storage errors are returned; alert failures never are.
type App struct {
	repo    storage.Repository
	engine  *reminder.Engine
	service notify.Service
	clock   clock.Clock
	newID   func() string
	log     *logger.Logger
}

type Option func(*App)

func WithLogger(l *logger.Logger) Option {
	return func(a *App) { a.log = l.WithComponent("app") }
}

func WithIDGenerator(next func() string) Option {
	return func(a *App) { a.newID = next }
}

func New(repo storage.Repository, engine *reminder.Engine, service notify.Service, clk clock.Clock, opts ...Option) *App {
	a := &App{
		repo:    repo,
		engine:  engine,
		service: service,
		clock:   clk,
		newID:   uuid.NewString,
		log:     logger.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *App) CreateTask(ctx context.Context, title string, at model.TimeOfDay) (model.Task, error) {
	task := model.NewTask(a.newID(), title, at, a.clock.Now())
	if err := task.Validate(); err != nil {
		return model.Task{}, err
	}
	if err := a.repo.CreateTask(ctx, taskToEntity(task)); err != nil {
		return model.Task{}, fmt.Errorf("create task: %w", err)
	}
	a.engine.EnsureBackup(ctx, task)
	a.engine.Sync(ctx, task)
	a.log.WithTask(task.ID).Infow("task created", "reminder", task.Reminder.String())
	return task, nil
}

// CompleteTask is a no-op for a task already done today.
func (a *App) CompleteTask(ctx context.Context, id string) (model.Task, error) {
	task, err := a.loadTask(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	now := a.clock.Now()
	if task.DoneOn(now) {
		return task, nil
	}
	task = task.MarkComplete(now)
	if err := a.saveTask(ctx, task); err != nil {
		return model.Task{}, err
	}
	a.engine.Sync(ctx, task)
	a.reconcileBadge(ctx)
	return task, nil
}

func (a *App) UncompleteTask(ctx context.Context, id string) (model.Task, error) {
	task, err := a.loadTask(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	task = task.MarkIncomplete()
	if err := a.saveTask(ctx, task); err != nil {
		return model.Task{}, err
	}
	a.engine.Sync(ctx, task)
	return task, nil
}

func (a *App) ToggleTask(ctx context.Context, id string) (model.Task, error) {
	task, err := a.loadTask(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	if task.DoneOn(a.clock.Now()) {
		return a.UncompleteTask(ctx, id)
	}
	return a.CompleteTask(ctx, id)
}

func (a *App) DeleteTask(ctx context.Context, id string) error {
	if err := a.repo.DeleteTask(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("delete task: %w", err)
	}
	a.engine.CancelAll(ctx, id)
	a.reconcileBadge(ctx)
	return nil
}

// SetTaskActive pauses or resumes a task. A paused task keeps no alerts at
// all, including its daily backup.
func (a *App) SetTaskActive(ctx context.Context, id string, active bool) (model.Task, error) {
	task, err := a.loadTask(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	task = task.WithActive(active)
	if err := a.saveTask(ctx, task); err != nil {
		return model.Task{}, err
	}
	if !active {
		a.engine.CancelAll(ctx, task.ID)
		a.reconcileBadge(ctx)
		return task, nil
	}
	a.engine.EnsureBackup(ctx, task)
	a.engine.Sync(ctx, task)
	return task, nil
}

// RetimeTask moves the daily target. Alerts derived from the old time are
// cancelled before anything is submitted for the new one.
func (a *App) RetimeTask(ctx context.Context, id string, at model.TimeOfDay) (model.Task, error) {
	if !at.Valid() {
		return model.Task{}, fmt.Errorf("%w: %s", model.ErrInvalidTimeOfDay, at)
	}
	task, err := a.loadTask(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	a.engine.CancelAll(ctx, task.ID)
	task = task.WithReminder(at)
	if err := a.saveTask(ctx, task); err != nil {
		return model.Task{}, err
	}
	a.engine.EnsureBackup(ctx, task)
	a.engine.Sync(ctx, task)
	return task, nil
}

// SnoozeTask asks for one more reminder after the policy's snooze delay.
// The snooze is stored on the task so other processes re-derive it.
func (a *App) SnoozeTask(ctx context.Context, id string) (model.AlertID, error) {
	task, err := a.loadTask(ctx, id)
	if err != nil {
		return model.AlertID{}, err
	}
	return a.snooze(ctx, task)
}

func (a *App) snooze(ctx context.Context, task model.Task) (model.AlertID, error) {
	task, alertID := a.engine.Snooze(ctx, task)
	if err := a.saveTask(ctx, task); err != nil {
		return model.AlertID{}, err
	}
	return alertID, nil
}

// Foreground runs daily rollover and reconciles the delivery service with
// the store, so changes made by another process sharing the database are
// picked up. It is called at launch, whenever the user returns, on the
// refresh interval and at each local midnight.
func (a *App) Foreground(ctx context.Context) ([]model.Task, error) {
	tasks, err := a.listTasks(ctx)
	if err != nil {
		return nil, err
	}
	for _, task := range tasks {
		a.engine.EnsureBackup(ctx, task)
	}

	rolled := a.engine.RescheduleAllForToday(ctx, tasks)
	for i, task := range rolled {
		if task.Completed == tasks[i].Completed {
			continue
		}
		if err := a.saveTask(ctx, task); err != nil {
			return nil, err
		}
	}

	now := a.clock.Now()
	visits, err := a.repo.ListAppointments(ctx, storage.AppointmentListFilter{From: &now})
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	keep := make([]string, 0, len(visits))
	for _, v := range visits {
		keep = append(keep, v.ID)
	}
	a.engine.RetainAppointments(ctx, keep)
	for _, v := range visits {
		a.engine.ScheduleAppointmentReminders(ctx, appointmentFromEntity(v))
	}
	a.log.Debugw("foreground refresh", "tasks", len(rolled), "appointments", len(visits))
	return rolled, nil
}

// SaveAppointment creates the visit when it has no id yet and updates it
// otherwise. Its reminders are always cancelled and re-derived.
func (a *App) SaveAppointment(ctx context.Context, in model.Appointment) (model.Appointment, error) {
	creating := strings.TrimSpace(in.ID) == ""
	if creating {
		in.ID = a.newID()
		in.CreatedAt = a.clock.Now()
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := in.Validate(); err != nil {
		return model.Appointment{}, err
	}

	var err error
	if creating {
		err = a.repo.CreateAppointment(ctx, appointmentToEntity(in))
	} else {
		err = a.repo.UpdateAppointment(ctx, appointmentToEntity(in))
	}
	if errors.Is(err, storage.ErrNotFound) {
		return model.Appointment{}, ErrAppointmentNotFound
	}
	if err != nil {
		return model.Appointment{}, fmt.Errorf("save appointment: %w", err)
	}
	a.engine.RescheduleAppointment(ctx, in)
	return in, nil
}

func (a *App) DeleteAppointment(ctx context.Context, id string) error {
	if err := a.repo.DeleteAppointment(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrAppointmentNotFound
		}
		return fmt.Errorf("delete appointment: %w", err)
	}
	a.engine.CancelAppointmentReminders(ctx, id)
	return nil
}

func (a *App) Appointments(ctx context.Context, includePast bool) ([]model.Appointment, error) {
	filter := storage.AppointmentListFilter{}
	if !includePast {
		now := a.clock.Now()
		filter.From = &now
	}
	rows, err := a.repo.ListAppointments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	out := make([]model.Appointment, 0, len(rows))
	for _, row := range rows {
		out = append(out, appointmentFromEntity(row))
	}
	return out, nil
}

// Activation reports what a delivered-alert action resolved to.
type Activation struct {
	Alert   model.AlertID
	Action  model.Action
	Task    *model.Task
	Snoozed *model.AlertID
}

// HandleActivation routes an action taken on a delivered alert. Visit
// alerts and plain opens only report back what was opened.
func (a *App) HandleActivation(ctx context.Context, alertID string, action model.Action) (Activation, error) {
	id, err := model.ParseAlertID(alertID)
	if err != nil {
		return Activation{}, err
	}
	out := Activation{Alert: id, Action: action}
	if !id.Category().Allows(action) {
		return out, fmt.Errorf("%w: %s on %s", ErrActionNotAllowed, action, id.Category())
	}
	if id.Kind != model.KindTask {
		return out, nil
	}

	switch action {
	case model.ActionMarkDone:
		task, err := a.CompleteTask(ctx, id.EntityID)
		if err != nil {
			return out, err
		}
		out.Task = &task
	case model.ActionSnooze:
		task, err := a.loadTask(ctx, id.EntityID)
		if err != nil {
			return out, err
		}
		snoozed, err := a.snooze(ctx, task)
		if err != nil {
			return out, err
		}
		out.Task = &task
		out.Snoozed = &snoozed
	default:
		task, err := a.loadTask(ctx, id.EntityID)
		if err != nil {
			return out, err
		}
		out.Task = &task
	}
	return out, nil
}

// TaskView is a task as shown on the today screen.
type TaskView struct {
	Task           model.Task
	State          model.TaskState
	NeedsAttention bool
	DueAt          time.Time
}

func (a *App) Today(ctx context.Context) ([]TaskView, error) {
	tasks, err := a.listTasks(ctx)
	if err != nil {
		return nil, err
	}
	now := a.clock.Now()
	out := make([]TaskView, 0, len(tasks))
	for _, task := range tasks {
		task = task.Rollover(now)
		due, _ := task.TodayReminder(now)
		out = append(out, TaskView{
			Task:           task,
			State:          task.StateOn(now),
			NeedsAttention: task.NeedsAttention(now),
			DueAt:          due,
		})
	}
	return out, nil
}

// Pending lists what the delivery service still holds, soonest first.
func (a *App) Pending(ctx context.Context) ([]notify.Request, error) {
	return a.service.ListPending(ctx)
}

// ResolveTask finds a task by id, unique id prefix, or case-insensitive
// title.
func (a *App) ResolveTask(ctx context.Context, ref string) (model.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Task{}, ErrTaskNotFound
	}
	if task, err := a.loadTask(ctx, ref); err == nil {
		return task, nil
	} else if !errors.Is(err, ErrTaskNotFound) {
		return model.Task{}, err
	}

	tasks, err := a.listTasks(ctx)
	if err != nil {
		return model.Task{}, err
	}
	var matches []model.Task
	for _, task := range tasks {
		if strings.HasPrefix(task.ID, ref) || strings.EqualFold(task.Title, ref) {
			matches = append(matches, task)
		}
	}
	switch len(matches) {
	case 0:
		return model.Task{}, ErrTaskNotFound
	case 1:
		return matches[0], nil
	default:
		return model.Task{}, fmt.Errorf("%w: %q", ErrAmbiguousTask, ref)
	}
}

func (a *App) loadTask(ctx context.Context, id string) (model.Task, error) {
	row, err := a.repo.GetTask(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return model.Task{}, ErrTaskNotFound
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("load task: %w", err)
	}
	return taskFromEntity(row), nil
}

func (a *App) saveTask(ctx context.Context, task model.Task) error {
	if err := a.repo.UpdateTask(ctx, taskToEntity(task)); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("save task: %w", err)
	}
	return nil
}

func (a *App) listTasks(ctx context.Context) ([]model.Task, error) {
	rows, err := a.repo.ListTasks(ctx, storage.TaskListFilter{})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	out := make([]model.Task, 0, len(rows))
	for _, row := range rows {
		out = append(out, taskFromEntity(row))
	}
	return out, nil
}

func (a *App) reconcileBadge(ctx context.Context) {
	tasks, err := a.listTasks(ctx)
	if err != nil {
		a.log.Warnw("badge reconciliation skipped", "error", err)
		return
	}
	a.engine.ReconcileBadge(ctx, tasks)
}
