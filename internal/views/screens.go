package views

import (
	"fmt"
	"sort"
	"strings"
)

// Task buckets on the today screen.
const (
	BucketAttention = "Needs attention"
	BucketUpcoming  = "Upcoming"
	BucketDone      = "Done"
	BucketPaused    = "Paused"
)

type TaskRowData struct {
	ID       string
	Title    string
	At       string
	Bucket   string
	Selected bool
}

type TodayPanelData struct {
	Date     string
	ListView string
	Items    []TaskRowData
	Done     int
	Active   int
}

type VisitRowData struct {
	ID       string
	Title    string
	Date     string
	Time     string
	Notes    string
	Past     bool
	Selected bool
}

type VisitsPanelData struct {
	TableView string
	Items     []VisitRowData
}

type DeliveryRowData struct {
	ID       string
	Title    string
	Body     string
	At       string
	Actions  []string
	Selected bool
}

type AlertsPanelData struct {
	TableView string
	Pending   int
	Badge     int
	Recent    []DeliveryRowData
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
	Commands    string
}

func RenderTodayPanel(data TodayPanelData) string {
	grouped := make(map[string][]TaskRowData)
	for _, item := range data.Items {
		grouped[item.Bucket] = append(grouped[item.Bucket], item)
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("today: %s (%d/%d done)\n", data.Date, data.Done, data.Active))
	b.WriteString("actions: [space]done/undo [s]snooze [p]pause/resume [x]delete\n")
	if data.ListView != "" {
		b.WriteString(data.ListView + "\n")
	}
	for _, bucket := range []string{BucketAttention, BucketUpcoming, BucketDone, BucketPaused} {
		renderTaskSection(&b, bucket, grouped[bucket])
	}
	return strings.TrimSpace(b.String())
}

func RenderVisitsPanel(data VisitsPanelData) string {
	var b strings.Builder
	b.WriteString("visits:\n")
	b.WriteString("actions: [j/k]move [x]delete  add with /visit YYYY-MM-DD[THH:MM] title\n")
	if data.TableView != "" {
		b.WriteString(data.TableView + "\n")
	}
	if len(data.Items) == 0 {
		b.WriteString("(no visits)")
		return b.String()
	}

	byDay := make(map[string][]VisitRowData)
	days := make([]string, 0)
	for _, item := range data.Items {
		if _, ok := byDay[item.Date]; !ok {
			days = append(days, item.Date)
		}
		byDay[item.Date] = append(byDay[item.Date], item)
	}
	sort.Strings(days)
	for _, day := range days {
		b.WriteString(fmt.Sprintf("\n%s:\n", day))
		for _, item := range byDay[day] {
			cursor := " "
			if item.Selected {
				cursor = ">"
			}
			state := ""
			if item.Past {
				state = " (past)"
			}
			b.WriteString(fmt.Sprintf("%s %s %s%s\n", cursor, item.Time, item.Title, state))
			if item.Selected && item.Notes != "" {
				b.WriteString(fmt.Sprintf("    notes: %s\n", item.Notes))
			}
		}
	}
	return strings.TrimSpace(b.String())
}

func RenderAlertsPanel(data AlertsPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("alerts: %d pending | badge %d\n", data.Pending, data.Badge))
	b.WriteString("actions: [j/k]move [d]mark done [s]snooze [o]open\n")
	if data.TableView != "" {
		b.WriteString(data.TableView + "\n")
	}
	b.WriteString("\ndelivered:\n")
	if len(data.Recent) == 0 {
		b.WriteString("  (none yet)")
		return b.String()
	}
	for _, item := range data.Recent {
		cursor := " "
		if item.Selected {
			cursor = ">"
		}
		b.WriteString(fmt.Sprintf("%s %s %s: %s", cursor, item.At, item.Title, item.Body))
		if len(item.Actions) > 0 {
			b.WriteString(fmt.Sprintf(" [%s]", strings.ToLower(strings.Join(item.Actions, "|"))))
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("notification: [%s] %s", strings.ToUpper(level), body)
}

func RenderHelpPanel(data HelpPanelData) string {
	out := fmt.Sprintf("help:\n%s view:\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
	if data.Commands != "" {
		out += "\n\n" + data.Commands
	}
	return out
}

func renderTaskSection(b *strings.Builder, title string, items []TaskRowData) {
	if len(items) == 0 && title != BucketUpcoming {
		return
	}
	b.WriteString(fmt.Sprintf("\n%s:\n", title))
	if len(items) == 0 {
		b.WriteString("  (none)\n")
		return
	}
	for _, item := range items {
		cursor := " "
		if item.Selected {
			cursor = ">"
		}
		b.WriteString(fmt.Sprintf("%s %s %s @%s\n", cursor, bucketBadge(item.Bucket), item.Title, item.At))
	}
}

func bucketBadge(bucket string) string {
	switch bucket {
	case BucketAttention:
		return "[RED]"
	case BucketUpcoming:
		return "[YELLOW]"
	case BucketDone:
		return "[GREEN]"
	default:
		return "[GREY]"
	}
}
