package update

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/nudge/internal/model"
	"github.com/sandeepkv93/nudge/internal/notify"
)

const (
	maxRecentDeliveries = 20
	backendTimeout      = 5 * time.Second
)

func (m Model) loadCmd() tea.Cmd {
	backend := m.backend
	if backend == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
		defer cancel()
		return loadSnapshot(ctx, backend)
	}
}

// foregroundCmd runs rollover and rescheduling before reloading.
func (m Model) foregroundCmd() tea.Cmd {
	backend := m.backend
	if backend == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
		defer cancel()
		if _, err := backend.Foreground(ctx); err != nil {
			return DataLoadedMsg{Err: err}
		}
		return loadSnapshot(ctx, backend)
	}
}

func loadSnapshot(ctx context.Context, backend Backend) DataLoadedMsg {
	tasks, err := backend.Today(ctx)
	if err != nil {
		return DataLoadedMsg{Err: err}
	}
	visits, err := backend.Appointments(ctx, true)
	if err != nil {
		return DataLoadedMsg{Err: err}
	}
	pending, err := backend.Pending(ctx)
	if err != nil {
		return DataLoadedMsg{Err: err}
	}
	return DataLoadedMsg{Tasks: tasks, Visits: visits, Pending: pending}
}

func (m Model) actionCmd(run func(ctx context.Context, b Backend) (string, error)) tea.Cmd {
	backend := m.backend
	if backend == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
		defer cancel()
		text, err := run(ctx, backend)
		return ActionResultMsg{Text: text, Err: err}
	}
}

func waitForDeliveryCmd(ch <-chan notify.Delivery) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		d, ok := <-ch
		if !ok {
			return nil
		}
		return AlertDeliveredMsg{Delivery: d}
	}
}

func (m Model) refreshTickCmd() tea.Cmd {
	if m.refreshInterval <= 0 {
		return nil
	}
	return tea.Tick(m.refreshInterval, func(time.Time) tea.Msg { return RefreshTickMsg{} })
}

func (m *Model) recordDelivery(d notify.Delivery) {
	m.Alerts.Recent = append(m.Alerts.Recent, d)
	if len(m.Alerts.Recent) > maxRecentDeliveries {
		m.Alerts.Recent = m.Alerts.Recent[len(m.Alerts.Recent)-maxRecentDeliveries:]
	}
}

func (m *Model) clampCursors() {
	m.Today.Cursor = clamp(m.Today.Cursor, len(m.Today.Items))
	m.Visits.Cursor = clamp(m.Visits.Cursor, len(m.Visits.Items))
	m.Alerts.Cursor = clamp(m.Alerts.Cursor, len(m.Alerts.Recent))
}

func clamp(cursor, n int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}

func levelFor(c model.Category) string {
	if c == model.CategoryTaskNudge {
		return "nudge"
	}
	return "info"
}
