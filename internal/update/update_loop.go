package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/nudge/internal/views"
)

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.foregroundCmd(),
		m.loadSpinner.Tick,
		waitForDeliveryCmd(m.deliveries),
		m.refreshTickCmd(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.syncBubbleData()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			return m.handlePaletteKey(typed)
		}

		switch typed.String() {
		case "/":
			m.Palette.Active = true
			m.Palette.Input = ""
			m.commandInput.Focus()
			m.commandInput.SetValue("")
			m.Status = StatusBar{Text: "command palette active"}
			return m, nil
		case m.Keys.Today:
			m.CurrentView = ViewToday
			return m, nil
		case m.Keys.Visits:
			m.CurrentView = ViewVisits
			return m, nil
		case m.Keys.Alerts:
			m.CurrentView = ViewAlerts
			return m, nil
		case m.Keys.Refresh:
			m.Loading = true
			m.Status = StatusBar{Text: "refreshing"}
			return m, tea.Batch(m.loadSpinner.Tick, m.foregroundCmd())
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			if m.HelpVisible {
				m.Status = StatusBar{Text: "help shown"}
			} else {
				m.Status = StatusBar{Text: "help hidden"}
			}
			return m, nil
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}
		switch m.CurrentView {
		case ViewToday:
			return m.handleTodayKey(typed)
		case ViewVisits:
			return m.handleVisitsKey(typed)
		case ViewAlerts:
			return m.handleAlertsKey(typed)
		}
	case spinner.TickMsg:
		if m.Loading {
			var cmd tea.Cmd
			m.loadSpinner, cmd = m.loadSpinner.Update(typed)
			return m, cmd
		}
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.CurrentView = typed.View
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	case DataLoadedMsg:
		m.Loading = false
		if typed.Err != nil {
			m.LastError = typed.Err
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			return m, nil
		}
		m.Today.Items = typed.Tasks
		m.Visits.Items = typed.Visits
		m.Alerts.Pending = typed.Pending
		m.clampCursors()
		m.syncSelectedTaskToTodayCursor()
		return m, nil
	case ActionResultMsg:
		if typed.Err != nil {
			m.LastError = typed.Err
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		} else if typed.Text != "" {
			m.Status = StatusBar{Text: typed.Text}
		}
		return m, m.loadCmd()
	case AlertDeliveredMsg:
		m.recordDelivery(typed.Delivery)
		m.Status = StatusBar{Text: fmt.Sprintf("%s: %s", typed.Delivery.Payload.Title, typed.Delivery.Payload.Body)}
		return m, tea.Batch(m.loadCmd(), waitForDeliveryCmd(m.deliveries))
	case RefreshTickMsg:
		return m, tea.Batch(m.foregroundCmd(), m.refreshTickCmd())
	}

	return m, nil
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}
	leftPane := ""
	switch m.CurrentView {
	case ViewToday:
		leftPane = m.renderTodayView()
	case ViewVisits:
		leftPane = m.renderVisitsView()
	case ViewAlerts:
		leftPane = m.renderAlertsView()
	}
	rightPane := strings.TrimSpace(m.renderCommandPalette() + "\n" + m.renderHelpIfVisible())
	if rightPane == "" {
		rightPane = m.renderSelectionPane()
	}

	notification, level := "", ""
	if len(m.Alerts.Recent) > 0 {
		last := m.Alerts.Recent[len(m.Alerts.Recent)-1]
		level = levelFor(last.Payload.Category)
		notification = views.RenderNotification(level, fmt.Sprintf("%s @ %s", last.Payload.Title, last.DeliveredAt.Format("15:04")))
	}
	if m.Loading {
		notification = strings.TrimSpace(notification + "\nrefresh: " + m.loadSpinner.View() + " running")
	}
	badge := 0
	if m.badge != nil {
		badge = m.badge.Badge()
	}

	return views.RenderApp(views.AppData{
		Header:        fmt.Sprintf("nudge | view: %s | selected: %s", m.CurrentView, m.SelectedTaskID),
		Badge:         badge,
		LeftPane:      leftPane,
		RightPane:     rightPane,
		StatusLine:    status,
		StatusIsError: m.Status.IsError,
		Notification:  notification,
		NotifyLevel:   level,
		Footer:        fmt.Sprintf("keys: %s today | %s visits | %s alerts | %s refresh | / cmd | %s help | %s quit", m.Keys.Today, m.Keys.Visits, m.Keys.Alerts, m.Keys.Refresh, m.Keys.Help, m.Keys.Quit),
	})
}

func isKnownView(v View) bool {
	switch v {
	case ViewToday, ViewVisits, ViewAlerts:
		return true
	default:
		return false
	}
}
