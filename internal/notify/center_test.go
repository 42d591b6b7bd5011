package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sandeepkv93/nudge/internal/clock"
	"github.com/sandeepkv93/nudge/internal/model"
)

type recordingSink struct {
	mu   sync.Mutex
	sent []Notification
}

func (s *recordingSink) Send(n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func TestCenterEmitsInFireOrder(t *testing.T) {
	center := NewCenter(WithBuffer(8))
	center.Start()
	defer center.Stop()

	ctx := context.Background()
	now := time.Now()
	if err := center.SubmitOneShot(ctx, "later", now.Add(80*time.Millisecond), Payload{Title: "later"}); err != nil {
		t.Fatalf("submit later: %v", err)
	}
	if err := center.SubmitOneShot(ctx, "sooner", now.Add(20*time.Millisecond), Payload{Title: "sooner"}); err != nil {
		t.Fatalf("submit sooner: %v", err)
	}

	first := waitDelivery(t, center.C(), time.Second)
	second := waitDelivery(t, center.C(), time.Second)
	if first.ID != "sooner" || second.ID != "later" {
		t.Fatalf("unexpected order: first=%s second=%s", first.ID, second.ID)
	}
}

func TestCenterNonBlockingDropsWhenConsumerIsSlow(t *testing.T) {
	center := NewCenter(WithBuffer(1))
	center.Start()
	defer center.Stop()

	at := time.Now().Add(20 * time.Millisecond)
	for i := 0; i < 25; i++ {
		if err := center.SubmitOneShot(context.Background(), fmt.Sprintf("evt-%d", i), at, Payload{}); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	time.Sleep(120 * time.Millisecond)
	if center.Dropped() == 0 {
		t.Fatalf("expected dropped deliveries > 0, got %d", center.Dropped())
	}
}

func TestSubmitValidatesInput(t *testing.T) {
	center := NewCenter()
	if err := center.SubmitOneShot(context.Background(), "bad", time.Time{}, Payload{}); err != ErrInvalidFireTime {
		t.Fatalf("expected ErrInvalidFireTime, got %v", err)
	}
	if err := center.SubmitOneShot(context.Background(), " ", time.Now(), Payload{}); err != ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestSubmitSameIDReplaces(t *testing.T) {
	ctx := context.Background()
	center := NewCenter()
	at := time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if err := center.SubmitOneShot(ctx, "task-1-main-2026-10-17", at.Add(time.Duration(i)*time.Minute), Payload{Title: "x"}); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	pending, _ := center.ListPending(ctx)
	if len(pending) != 1 {
		t.Fatalf("expected a single pending request, got %d", len(pending))
	}
	if !pending[0].FireAt.Equal(at.Add(2 * time.Minute)) {
		t.Fatalf("expected last submission to win, got %s", pending[0].FireAt)
	}
}

func TestCancelRemovesPendingAndDeliveredAndIgnoresUnknown(t *testing.T) {
	ctx := context.Background()
	fake := clock.NewFake(time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC))
	center := NewCenter(WithClock(fake))

	_ = center.SubmitOneShot(ctx, "a", fake.Now().Add(time.Minute), Payload{})
	_ = center.SubmitOneShot(ctx, "b", fake.Now().Add(time.Hour), Payload{})
	_ = center.SubmitOneShot(ctx, "c", fake.Now().Add(2*time.Hour), Payload{})

	fake.Advance(2 * time.Minute)
	if got := center.DeliverDue(fake.Now()); len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("unexpected deliveries: %+v", got)
	}

	if err := center.Cancel(ctx, "a", "b", "missing"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	pending, _ := center.ListPending(ctx)
	delivered, _ := center.ListDelivered(ctx)
	if len(pending) != 1 || pending[0].ID != "c" {
		t.Fatalf("unexpected pending after cancel: %+v", pending)
	}
	if len(delivered) != 0 {
		t.Fatalf("expected delivered cleared, got %+v", delivered)
	}
}

func TestRecurringDailyRearmsAfterDelivery(t *testing.T) {
	ctx := context.Background()
	fake := clock.NewFake(time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC))
	sink := &recordingSink{}
	center := NewCenter(WithClock(fake), WithSink(sink))

	if err := center.SubmitRecurringDaily(ctx, "task-1-daily", model.TimeOfDay{Hour: 8, Minute: 0}, Payload{Title: "daily", Badge: true}); err != nil {
		t.Fatalf("submit daily: %v", err)
	}
	pending, _ := center.ListPending(ctx)
	if len(pending) != 1 || pending[0].FireAt.Format("2006-01-02 15:04") != "2026-10-18 08:00" {
		t.Fatalf("expected first fire tomorrow 08:00, got %+v", pending)
	}

	fake.Set(time.Date(2026, 10, 18, 8, 0, 30, 0, time.UTC))
	center.DeliverDue(fake.Now())

	pending, _ = center.ListPending(ctx)
	if len(pending) != 1 || pending[0].FireAt.Format("2006-01-02 15:04") != "2026-10-19 08:00" {
		t.Fatalf("expected re-arm for the following day, got %+v", pending)
	}
	if sink.count() != 1 || center.Badge() != 1 {
		t.Fatalf("expected one sink send and badge 1, got sends=%d badge=%d", sink.count(), center.Badge())
	}
	_ = center.ClearBadge(ctx)
	if center.Badge() != 0 {
		t.Fatal("expected badge cleared")
	}
}

func TestPermissionDeniedRejectsSubmissions(t *testing.T) {
	ctx := context.Background()
	center := NewCenter()
	center.SetAuthorized(false)
	err := center.SubmitOneShot(ctx, "x", time.Now().Add(time.Hour), Payload{})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if err := center.Cancel(ctx, "x"); err != nil {
		t.Fatalf("cancel must still succeed: %v", err)
	}
	center.SetAuthorized(true)
	if err := center.SubmitOneShot(ctx, "x", time.Now().Add(time.Hour), Payload{}); err != nil {
		t.Fatalf("expected submit after grant, got %v", err)
	}
}

func TestSubmitAfterStopFails(t *testing.T) {
	center := NewCenter()
	center.Start()
	center.Stop()
	if err := center.SubmitOneShot(context.Background(), "x", time.Now(), Payload{}); err != ErrStopped {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}

func TestRateLimitedSinkDropsBurst(t *testing.T) {
	inner := &recordingSink{}
	sink := NewRateLimitedSink(inner, 1, 2)
	var limited int
	for i := 0; i < 5; i++ {
		if err := sink.Send(Notification{ID: fmt.Sprintf("n-%d", i)}); errors.Is(err, ErrRateLimited) {
			limited++
		}
	}
	if inner.count() != 2 || limited != 3 {
		t.Fatalf("expected 2 sends and 3 limited, got sends=%d limited=%d", inner.count(), limited)
	}
}

func waitDelivery(t *testing.T, ch <-chan Delivery, timeout time.Duration) Delivery {
	t.Helper()
	select {
	case d := <-ch:
		return d
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for delivery")
		return Delivery{}
	}
}

func TestRequestAuthorizationReportsDecision(t *testing.T) {
	c := NewCenter()
	granted, err := c.RequestAuthorization(context.Background())
	if err != nil || !granted {
		t.Fatalf("expected granted by default, got %v %v", granted, err)
	}
	c.SetAuthorized(false)
	granted, err = c.RequestAuthorization(context.Background())
	if err != nil || granted {
		t.Fatalf("expected denial without error, got %v %v", granted, err)
	}
}

func TestEscapeAppleScriptKeepsLiteralClosed(t *testing.T) {
	cases := map[string]string{
		`Vitamin`:      `Vitamin`,
		`say "hi"`:     `say \"hi\"`,
		`trailing \`:   `trailing \\`,
		`break \" out`: `break \\\" out`,
	}
	for in, want := range cases {
		if got := escapeAppleScript(in); got != want {
			t.Fatalf("escapeAppleScript(%q) = %q, want %q", in, got, want)
		}
	}
}
