package update

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/nudge/internal/views"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	case m.Keys.Help:
		if m.Palette.Input == "" {
			m.HelpVisible = !m.HelpVisible
			return m, nil
		}
	}
	if msg.Type == tea.KeyRunes {
		m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
		m.Palette.Input = m.commandInput.Value()
		return m, nil
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	m.Palette.Input = m.commandInput.Value()
	return m, cmd
}

func (m Model) executePaletteCommand() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m.closePalette()
	if raw == "" {
		m.Status = StatusBar{Text: "command is empty", IsError: true}
		return m, nil
	}
	return m, m.actionCmd(func(ctx context.Context, b Backend) (string, error) {
		res, err := b.Run(ctx, raw)
		return res.Message, err
	})
}

func (m *Model) closePalette() {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

func (m Model) renderCommandPalette() string {
	return views.RenderCommandPalette(m.Palette.Active, m.Palette.Input)
}
