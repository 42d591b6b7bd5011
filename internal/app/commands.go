package app

import (
	"context"
	"fmt"

	"github.com/sandeepkv93/nudge/internal/commands"
	"github.com/sandeepkv93/nudge/internal/model"
)

// Run parses one command line and applies it.
func (a *App) Run(ctx context.Context, line string) (commands.Result, error) {
	cmd, err := commands.ParseIn(line, a.clock.Now().Location())
	if err != nil {
		return commands.Result{}, err
	}
	return commands.Execute(cmd, a.Handlers(ctx))
}

// Handlers binds the command verbs to lifecycle operations.
func (a *App) Handlers(ctx context.Context) commands.Handlers {
	withTask := func(verb string, apply func(model.Task) (string, error)) func(commands.TaskArgs) (commands.Result, error) {
		return func(args commands.TaskArgs) (commands.Result, error) {
			task, err := a.ResolveTask(ctx, args.Target)
			if err != nil {
				return commands.Result{}, fmt.Errorf("%s: %w", verb, err)
			}
			msg, err := apply(task)
			if err != nil {
				return commands.Result{}, fmt.Errorf("%s: %w", verb, err)
			}
			return commands.Result{Message: msg}, nil
		}
	}

	return commands.Handlers{
		Add: func(args commands.AddArgs) (commands.Result, error) {
			task, err := a.CreateTask(ctx, args.Title, args.At)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("added %q at %s", task.Title, task.Reminder)}, nil
		},
		Done: withTask("done", func(t model.Task) (string, error) {
			_, err := a.CompleteTask(ctx, t.ID)
			return fmt.Sprintf("done: %s", t.Title), err
		}),
		Undo: withTask("undo", func(t model.Task) (string, error) {
			_, err := a.UncompleteTask(ctx, t.ID)
			return fmt.Sprintf("reopened: %s", t.Title), err
		}),
		Delete: withTask("delete", func(t model.Task) (string, error) {
			return fmt.Sprintf("deleted: %s", t.Title), a.DeleteTask(ctx, t.ID)
		}),
		Pause: withTask("pause", func(t model.Task) (string, error) {
			_, err := a.SetTaskActive(ctx, t.ID, false)
			return fmt.Sprintf("paused: %s", t.Title), err
		}),
		Resume: withTask("resume", func(t model.Task) (string, error) {
			_, err := a.SetTaskActive(ctx, t.ID, true)
			return fmt.Sprintf("resumed: %s", t.Title), err
		}),
		Snooze: withTask("snooze", func(t model.Task) (string, error) {
			_, err := a.SnoozeTask(ctx, t.ID)
			return fmt.Sprintf("snoozed %s for %s", t.Title, a.engine.Policy().SnoozeDelay), err
		}),
		Retime: func(args commands.RetimeArgs) (commands.Result, error) {
			task, err := a.ResolveTask(ctx, args.Target)
			if err != nil {
				return commands.Result{}, fmt.Errorf("retime: %w", err)
			}
			if _, err := a.RetimeTask(ctx, task.ID, args.At); err != nil {
				return commands.Result{}, fmt.Errorf("retime: %w", err)
			}
			return commands.Result{Message: fmt.Sprintf("%s now at %s", task.Title, args.At)}, nil
		},
		Visit: func(args commands.VisitArgs) (commands.Result, error) {
			visit, err := a.SaveAppointment(ctx, model.Appointment{Title: args.Title, Date: args.At})
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("visit %s on %s", visit.DisplayTitle(), visit.Date.Format("Mon Jan 2 15:04"))}, nil
		},
		Unvisit: func(args commands.UnvisitArgs) (commands.Result, error) {
			if err := a.DeleteAppointment(ctx, args.Target); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: "visit removed"}, nil
		},
		Refresh: func() (commands.Result, error) {
			tasks, err := a.Foreground(ctx)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("refreshed %d tasks", len(tasks))}, nil
		},
	}
}
