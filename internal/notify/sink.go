package notify

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/sandeepkv93/nudge/internal/model"
	"golang.org/x/time/rate"
)

var _ Service = (*Center)(nil)

var ErrRateLimited = errors.New("notify: sink rate limited")

type Notification struct {
	ID       string
	Title    string
	Body     string
	Category model.Category
	At       time.Time
}

func notificationFor(d Delivery) Notification {
	return Notification{
		ID:       d.ID,
		Title:    d.Payload.Title,
		Body:     d.Payload.Body,
		Category: d.Payload.Category,
		At:       d.DeliveredAt,
	}
}

// Sink presents a delivered alert to the user.
type Sink interface {
	Send(Notification) error
}

type NoopSink struct{}

func (NoopSink) Send(Notification) error { return nil }

type ExecSink struct{}

func (ExecSink) Send(n Notification) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", n.Title, n.Body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

// escapeAppleScript quotes s for an AppleScript string literal. Backslashes
// go first so an escaped quote cannot be re-opened.
func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// RateLimitedSink drops sends beyond the configured rate, so a backlog of
// alerts delivered at once after a suspend does not flood the desktop.
type RateLimitedSink struct {
	next    Sink
	limiter *rate.Limiter
}

func NewRateLimitedSink(next Sink, perMinute float64, burst int) *RateLimitedSink {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimitedSink{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perMinute/60), burst),
	}
}

func (s *RateLimitedSink) Send(n Notification) error {
	if !s.limiter.Allow() {
		return fmt.Errorf("%w: %s", ErrRateLimited, n.ID)
	}
	return s.next.Send(n)
}
