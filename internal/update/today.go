package update

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/nudge/internal/app"
	"github.com/sandeepkv93/nudge/internal/model"
	"github.com/sandeepkv93/nudge/internal/views"
)

func (m Model) handleTodayKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.Today.Cursor > 0 {
			m.Today.Cursor--
		}
		m.syncSelectedTaskToTodayCursor()
	case "down", "j":
		if m.Today.Cursor < len(m.Today.Items)-1 {
			m.Today.Cursor++
		}
		m.syncSelectedTaskToTodayCursor()
	case " ", "enter":
		item, ok := m.currentTodayItem()
		if !ok {
			return m, nil
		}
		id := item.Task.ID
		return m, m.actionCmd(func(ctx context.Context, b Backend) (string, error) {
			task, err := b.ToggleTask(ctx, id)
			if err != nil {
				return "", err
			}
			if task.Completed {
				return fmt.Sprintf("done: %s", task.Title), nil
			}
			return fmt.Sprintf("reopened: %s", task.Title), nil
		})
	case "s":
		item, ok := m.currentTodayItem()
		if !ok {
			return m, nil
		}
		id, title := item.Task.ID, item.Task.Title
		return m, m.actionCmd(func(ctx context.Context, b Backend) (string, error) {
			if _, err := b.SnoozeTask(ctx, id); err != nil {
				return "", err
			}
			return fmt.Sprintf("snoozed: %s", title), nil
		})
	case "p":
		item, ok := m.currentTodayItem()
		if !ok {
			return m, nil
		}
		id, active := item.Task.ID, !item.Task.Active
		return m, m.actionCmd(func(ctx context.Context, b Backend) (string, error) {
			task, err := b.SetTaskActive(ctx, id, active)
			if err != nil {
				return "", err
			}
			if task.Active {
				return fmt.Sprintf("resumed: %s", task.Title), nil
			}
			return fmt.Sprintf("paused: %s", task.Title), nil
		})
	case "x":
		item, ok := m.currentTodayItem()
		if !ok {
			return m, nil
		}
		id, title := item.Task.ID, item.Task.Title
		return m, m.actionCmd(func(ctx context.Context, b Backend) (string, error) {
			if err := b.DeleteTask(ctx, id); err != nil {
				return "", err
			}
			return fmt.Sprintf("deleted: %s", title), nil
		})
	}
	return m, nil
}

func (m *Model) syncSelectedTaskToTodayCursor() {
	if selected, ok := m.currentTodayItem(); ok {
		m.SelectedTaskID = selected.Task.ID
		return
	}
	m.SelectedTaskID = ""
}

func (m Model) currentTodayItem() (app.TaskView, bool) {
	if len(m.Today.Items) == 0 {
		return app.TaskView{}, false
	}
	if m.Today.Cursor < 0 || m.Today.Cursor >= len(m.Today.Items) {
		return app.TaskView{}, false
	}
	return m.Today.Items[m.Today.Cursor], true
}

func taskBucket(v app.TaskView) string {
	switch {
	case !v.Task.Active:
		return views.BucketPaused
	case v.State == model.TaskStateDone:
		return views.BucketDone
	case v.NeedsAttention:
		return views.BucketAttention
	default:
		return views.BucketUpcoming
	}
}

func (m Model) renderTodayView() string {
	rows := make([]views.TaskRowData, 0, len(m.Today.Items))
	done, active := 0, 0
	for i, v := range m.Today.Items {
		bucket := taskBucket(v)
		if v.Task.Active {
			active++
			if bucket == views.BucketDone {
				done++
			}
		}
		rows = append(rows, views.TaskRowData{
			ID:       v.Task.ID,
			Title:    v.Task.Title,
			At:       v.Task.Reminder.String(),
			Bucket:   bucket,
			Selected: i == m.Today.Cursor,
		})
	}
	return views.RenderTodayPanel(views.TodayPanelData{
		Date:     m.clock.Now().Format("Mon Jan 2"),
		ListView: m.todayList.View(),
		Items:    rows,
		Done:     done,
		Active:   active,
	})
}
