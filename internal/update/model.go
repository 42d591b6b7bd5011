package update

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/sandeepkv93/nudge/internal/app"
	"github.com/sandeepkv93/nudge/internal/clock"
	"github.com/sandeepkv93/nudge/internal/commands"
	"github.com/sandeepkv93/nudge/internal/model"
	"github.com/sandeepkv93/nudge/internal/notify"
)

type View string

const (
	ViewToday  View = "Today"
	ViewVisits View = "Visits"
	ViewAlerts View = "Alerts"
)

// Backend is the slice of the application the TUI drives.
type Backend interface {
	Today(ctx context.Context) ([]app.TaskView, error)
	Appointments(ctx context.Context, includePast bool) ([]model.Appointment, error)
	Pending(ctx context.Context) ([]notify.Request, error)
	Foreground(ctx context.Context) ([]model.Task, error)
	ToggleTask(ctx context.Context, id string) (model.Task, error)
	SetTaskActive(ctx context.Context, id string, active bool) (model.Task, error)
	SnoozeTask(ctx context.Context, id string) (model.AlertID, error)
	DeleteTask(ctx context.Context, id string) error
	DeleteAppointment(ctx context.Context, id string) error
	HandleActivation(ctx context.Context, alertID string, action model.Action) (app.Activation, error)
	Run(ctx context.Context, line string) (commands.Result, error)
}

var _ Backend = (*app.App)(nil)

// BadgeCounter reports the delivery service's unread count.
type BadgeCounter interface {
	Badge() int
}

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Today   string
	Visits  string
	Alerts  string
	Refresh string
	Help    string
	Quit    string
}

type TodayState struct {
	Items  []app.TaskView
	Cursor int
}

type VisitsState struct {
	Items  []model.Appointment
	Cursor int
}

type AlertsState struct {
	Pending []notify.Request
	Recent  []notify.Delivery
	Cursor  int
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Model struct {
	CurrentView    View
	SelectedTaskID string
	Today          TodayState
	Visits         VisitsState
	Alerts         AlertsState
	Palette        CommandPaletteState
	HelpVisible    bool
	Status         StatusBar
	Keys           GlobalKeyMap
	Quitting       bool
	LastError      error
	Loading        bool

	backend         Backend
	deliveries      <-chan notify.Delivery
	badge           BadgeCounter
	clock           clock.Clock
	refreshInterval time.Duration

	todayList     list.Model
	visitTable    table.Model
	pendingTable  table.Model
	commandInput  textinput.Model
	loadSpinner   spinner.Model
	helpModel     help.Model
}

type Option func(*Model)

// WithDeliveries feeds alerts fired by the delivery service into the UI.
func WithDeliveries(ch <-chan notify.Delivery) Option {
	return func(m *Model) { m.deliveries = ch }
}

func WithBadge(b BadgeCounter) Option {
	return func(m *Model) { m.badge = b }
}

func WithClock(c clock.Clock) Option {
	return func(m *Model) { m.clock = c }
}

// WithRefreshInterval re-runs rollover and rescheduling periodically while
// the UI is open. Zero disables it.
func WithRefreshInterval(d time.Duration) Option {
	return func(m *Model) { m.refreshInterval = d }
}

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// DataLoadedMsg carries a fresh snapshot of everything the screens show.
type DataLoadedMsg struct {
	Tasks   []app.TaskView
	Visits  []model.Appointment
	Pending []notify.Request
	Err     error
}

// ActionResultMsg reports a finished mutation; a reload always follows.
type ActionResultMsg struct {
	Text string
	Err  error
}

type AlertDeliveredMsg struct {
	Delivery notify.Delivery
}

type RefreshTickMsg struct{}

func NewModel(backend Backend, opts ...Option) Model {
	m := Model{
		CurrentView: ViewToday,
		Loading:     true,
		backend:     backend,
		clock:       clock.Real{},
		Keys: GlobalKeyMap{
			Today:   "1",
			Visits:  "2",
			Alerts:  "3",
			Refresh: "r",
			Help:    "?",
			Quit:    "q",
		},
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.initBubbleComponents()
	m.syncBubbleData()
	return m
}
