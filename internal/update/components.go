package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
)

type listItem struct {
	title       string
	description string
}

func (i listItem) FilterValue() string { return i.title + " " + i.description }
func (i listItem) Title() string       { return i.title }
func (i listItem) Description() string { return i.description }

func (m *Model) initBubbleComponents() {
	m.todayList = list.New([]list.Item{}, list.NewDefaultDelegate(), 56, 10)
	m.todayList.Title = "Today"
	m.todayList.SetShowHelp(false)
	m.todayList.SetFilteringEnabled(false)

	m.visitTable = table.New(table.WithColumns([]table.Column{
		{Title: "Date", Width: 12},
		{Title: "Time", Width: 7},
		{Title: "Title", Width: 30},
	}), table.WithRows([]table.Row{}), table.WithFocused(true), table.WithHeight(8))

	m.pendingTable = table.New(table.WithColumns([]table.Column{
		{Title: "Fires", Width: 12},
		{Title: "Title", Width: 18},
		{Title: "ID", Width: 22},
	}), table.WithRows([]table.Row{}), table.WithHeight(8))

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.loadSpinner = spinner.New()
	m.loadSpinner.Spinner = spinner.Dot

	m.helpModel = help.New()
}

func (m *Model) syncBubbleData() {
	now := m.clock.Now()

	items := make([]list.Item, 0, len(m.Today.Items))
	for _, v := range m.Today.Items {
		items = append(items, listItem{
			title:       v.Task.Title,
			description: fmt.Sprintf("%s | %s", v.Task.Reminder, taskBucket(v)),
		})
	}
	m.todayList.SetItems(items)
	if len(items) > 0 {
		m.todayList.Select(m.Today.Cursor)
	}

	visitRows := make([]table.Row, 0, len(m.Visits.Items))
	for _, v := range m.Visits.Items {
		visitRows = append(visitRows, table.Row{v.Date.Format("2006-01-02"), v.Date.Format("15:04"), v.DisplayTitle()})
	}
	m.visitTable.SetRows(visitRows)
	if len(visitRows) > 0 && m.Visits.Cursor < len(visitRows) {
		m.visitTable.SetCursor(m.Visits.Cursor)
	}

	pendingRows := make([]table.Row, 0, len(m.Alerts.Pending))
	for _, p := range m.Alerts.Pending {
		when := p.FireAt.Format("01-02 15:04")
		if p.FireAt.Before(now) {
			when = "due"
		}
		pendingRows = append(pendingRows, table.Row{when, p.Payload.Title, p.ID})
	}
	m.pendingTable.SetRows(pendingRows)

	m.commandInput.SetValue(m.Palette.Input)
	if m.Palette.Active {
		m.commandInput.Focus()
	}
}
