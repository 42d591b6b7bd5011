package views

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const paneWidth = 58

type AppData struct {
	Header        string
	Badge         int
	LeftPane      string
	RightPane     string
	StatusLine    string
	StatusIsError bool
	Footer        string
	Notification  string
	NotifyLevel   string
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	badgeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("9")).Padding(0, 1)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	nudgeStyle  = panelStyle.BorderForeground(lipgloss.Color("11"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func RenderApp(data AppData) string {
	left := panelStyle.Width(paneWidth).Render(data.LeftPane)
	right := panelStyle.Width(paneWidth).Render(data.RightPane)
	row := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	header := headerStyle.Render(data.Header)
	if data.Badge > 0 {
		header = lipgloss.JoinHorizontal(lipgloss.Center, header, " ", badgeStyle.Render(fmt.Sprintf("%d", data.Badge)))
	}

	status := statusStyle.Render(data.StatusLine)
	if data.StatusIsError {
		status = errorStyle.Render(data.StatusLine)
	}

	lines := []string{header, row, status}
	if data.Notification != "" {
		style := panelStyle
		if data.NotifyLevel == "nudge" {
			style = nudgeStyle
		}
		lines = append(lines, style.Render(data.Notification))
	}
	if data.Footer != "" {
		lines = append(lines, footerStyle.Render(data.Footer))
	}
	return strings.Join(lines, "\n")
}

var (
	markdownOnce     sync.Once
	markdownRenderer *glamour.TermRenderer
)

// RenderMarkdown renders md wrapped to a pane. The raw text is returned if
// the renderer cannot be built.
func RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	markdownOnce.Do(func() {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(paneWidth-4),
		)
		if err == nil {
			markdownRenderer = r
		}
	})
	if markdownRenderer == nil {
		return md
	}
	out, err := markdownRenderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
