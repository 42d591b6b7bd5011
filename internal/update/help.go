package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/sandeepkv93/nudge/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

const commandReference = "## Commands\n\n" +
	"| command | effect |\n" +
	"|---|---|\n" +
	"| `add HH:MM title` | new daily task |\n" +
	"| `done task` / `undo task` | complete or reopen for today |\n" +
	"| `snooze task` | one more reminder shortly |\n" +
	"| `pause task` / `resume task` | stop or restart reminders |\n" +
	"| `retime task HH:MM` | move the daily time |\n" +
	"| `delete task` | remove task and alerts |\n" +
	"| `visit YYYY-MM-DD[THH:MM] title` | add a doctor's visit |\n" +
	"| `unvisit id` | remove a visit |\n" +
	"| `refresh` | rollover and reschedule now |\n"

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return m.renderHelpView()
}

func (m Model) renderHelpView() string {
	bindings := m.helpBindings()
	var plain []string
	for _, kb := range m.viewBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		CurrentView: string(m.CurrentView),
		Bindings:    plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings,
			full:  [][]key.Binding{bindings},
		}),
		Commands: views.RenderMarkdown(commandReference),
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Today, Action: "switch to Today"},
		{Key: m.Keys.Visits, Action: "switch to Visits"},
		{Key: m.Keys.Alerts, Action: "switch to Alerts"},
		{Key: m.Keys.Refresh, Action: "rollover and reschedule"},
		{Key: "/", Action: "open command palette"},
		{Key: m.Keys.Help, Action: "toggle help panel"},
		{Key: m.Keys.Quit, Action: "quit app"},
	}
}

func (m Model) viewBindings() []KeyBinding {
	switch m.CurrentView {
	case ViewToday:
		return []KeyBinding{
			{Key: "j/k", Action: "move selection"},
			{Key: "space", Action: "mark done / undo"},
			{Key: "s", Action: "snooze"},
			{Key: "p", Action: "pause / resume"},
			{Key: "x", Action: "delete task"},
		}
	case ViewVisits:
		return []KeyBinding{
			{Key: "j/k", Action: "move selection"},
			{Key: "x", Action: "delete visit"},
		}
	case ViewAlerts:
		return []KeyBinding{
			{Key: "j/k", Action: "move through delivered alerts"},
			{Key: "d", Action: "mark done"},
			{Key: "s", Action: "snooze"},
			{Key: "o", Action: "open"},
		}
	default:
		return []KeyBinding{{Key: "-", Action: "no contextual bindings"}}
	}
}

func (m Model) helpBindings() []key.Binding {
	out := make([]key.Binding, 0, len(m.globalBindings())+len(m.viewBindings()))
	for _, kb := range m.globalBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	for _, kb := range m.viewBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
