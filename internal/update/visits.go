package update

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/nudge/internal/model"
	"github.com/sandeepkv93/nudge/internal/views"
)

func (m Model) handleVisitsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.Visits.Cursor > 0 {
			m.Visits.Cursor--
		}
	case "down", "j":
		if m.Visits.Cursor < len(m.Visits.Items)-1 {
			m.Visits.Cursor++
		}
	case "x":
		visit, ok := m.currentVisit()
		if !ok {
			return m, nil
		}
		id, title := visit.ID, visit.DisplayTitle()
		return m, m.actionCmd(func(ctx context.Context, b Backend) (string, error) {
			if err := b.DeleteAppointment(ctx, id); err != nil {
				return "", err
			}
			return fmt.Sprintf("visit removed: %s", title), nil
		})
	}
	return m, nil
}

func (m Model) currentVisit() (model.Appointment, bool) {
	if m.Visits.Cursor < 0 || m.Visits.Cursor >= len(m.Visits.Items) {
		return model.Appointment{}, false
	}
	return m.Visits.Items[m.Visits.Cursor], true
}

func (m Model) renderVisitsView() string {
	now := m.clock.Now()
	rows := make([]views.VisitRowData, 0, len(m.Visits.Items))
	for i, v := range m.Visits.Items {
		rows = append(rows, views.VisitRowData{
			ID:       v.ID,
			Title:    v.DisplayTitle(),
			Date:     v.Date.Format("2006-01-02"),
			Time:     v.Date.Format("15:04"),
			Notes:    v.Notes,
			Past:     !v.Upcoming(now),
			Selected: i == m.Visits.Cursor,
		})
	}
	return views.RenderVisitsPanel(views.VisitsPanelData{
		TableView: m.visitTable.View(),
		Items:     rows,
	})
}
