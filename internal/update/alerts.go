package update

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/nudge/internal/model"
	"github.com/sandeepkv93/nudge/internal/notify"
	"github.com/sandeepkv93/nudge/internal/views"
)

// handleAlertsKey acts on the selected delivered alert the way a tap on a
// notification action would.
func (m Model) handleAlertsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.Alerts.Cursor > 0 {
			m.Alerts.Cursor--
		}
		return m, nil
	case "down", "j":
		if m.Alerts.Cursor < len(m.Alerts.Recent)-1 {
			m.Alerts.Cursor++
		}
		return m, nil
	case "d":
		return m.activate(model.ActionMarkDone)
	case "s":
		return m.activate(model.ActionSnooze)
	case "o", "enter":
		return m.activate(model.ActionOpen)
	}
	return m, nil
}

func (m Model) activate(action model.Action) (Model, tea.Cmd) {
	d, ok := m.currentDelivery()
	if !ok {
		m.Status = StatusBar{Text: "no delivered alert selected", IsError: true}
		return m, nil
	}
	id := d.ID
	return m, m.actionCmd(func(ctx context.Context, b Backend) (string, error) {
		res, err := b.HandleActivation(ctx, id, action)
		if err != nil {
			return "", err
		}
		switch {
		case res.Snoozed != nil:
			return fmt.Sprintf("snoozed: %s", res.Task.Title), nil
		case res.Task != nil && action == model.ActionMarkDone:
			return fmt.Sprintf("done: %s", res.Task.Title), nil
		case res.Task != nil:
			return fmt.Sprintf("opened: %s", res.Task.Title), nil
		default:
			return fmt.Sprintf("opened: %s", id), nil
		}
	})
}

func (m Model) currentDelivery() (notify.Delivery, bool) {
	if m.Alerts.Cursor < 0 || m.Alerts.Cursor >= len(m.Alerts.Recent) {
		return notify.Delivery{}, false
	}
	return m.Alerts.Recent[m.Alerts.Cursor], true
}

func (m Model) renderAlertsView() string {
	recent := make([]views.DeliveryRowData, 0, len(m.Alerts.Recent))
	for i, d := range m.Alerts.Recent {
		actions := make([]string, 0, 2)
		for _, a := range d.Payload.Category.Actions() {
			actions = append(actions, string(a))
		}
		recent = append(recent, views.DeliveryRowData{
			ID:       d.ID,
			Title:    d.Payload.Title,
			Body:     d.Payload.Body,
			At:       d.DeliveredAt.Format("15:04"),
			Actions:  actions,
			Selected: i == m.Alerts.Cursor,
		})
	}
	badge := 0
	if m.badge != nil {
		badge = m.badge.Badge()
	}
	return views.RenderAlertsPanel(views.AlertsPanelData{
		TableView: m.pendingTable.View(),
		Pending:   len(m.Alerts.Pending),
		Badge:     badge,
		Recent:    recent,
	})
}
