package update

import (
	"fmt"
	"strings"
)

func (m Model) renderSelectionPane() string {
	switch m.CurrentView {
	case ViewToday:
		item, ok := m.currentTodayItem()
		if !ok {
			return "details:\n(no tasks yet, try /add 09:00 Prenatal vitamin)"
		}
		var b strings.Builder
		b.WriteString("details:\n")
		b.WriteString(fmt.Sprintf("id: %s\n", item.Task.ID))
		b.WriteString(fmt.Sprintf("daily at: %s\n", item.Task.Reminder))
		b.WriteString(fmt.Sprintf("state: %s\n", item.State))
		if !item.Task.Active {
			b.WriteString("reminders paused\n")
		}
		if item.Task.LastCompletedDate != nil {
			b.WriteString(fmt.Sprintf("last done: %s\n", item.Task.LastCompletedDate.Format("Mon Jan 2")))
		}
		b.WriteString(fmt.Sprintf("alerts queued: %d", m.pendingFor("task-"+item.Task.ID+"-")))
		return b.String()
	case ViewVisits:
		visit, ok := m.currentVisit()
		if !ok {
			return "details:\n(no visits, try /visit 2026-11-02T10:00 Ultrasound)"
		}
		return fmt.Sprintf("details:\nid: %s\nwhen: %s\nalerts queued: %d",
			visit.ID, visit.Date.Format("Mon Jan 2 15:04"), m.pendingFor("visit-"+visit.ID+"-"))
	case ViewAlerts:
		d, ok := m.currentDelivery()
		if !ok {
			return "details:\n(nothing delivered yet)"
		}
		return fmt.Sprintf("details:\nid: %s\ncategory: %s\ndelivered: %s",
			d.ID, d.Payload.Category, d.DeliveredAt.Format("15:04:05"))
	}
	return ""
}

func (m Model) pendingFor(prefix string) int {
	n := 0
	for _, p := range m.Alerts.Pending {
		if strings.HasPrefix(p.ID, prefix) {
			n++
		}
	}
	return n
}
