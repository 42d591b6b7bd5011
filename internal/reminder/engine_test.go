package reminder

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sandeepkv93/nudge/internal/clock"
	"github.com/sandeepkv93/nudge/internal/model"
	"github.com/sandeepkv93/nudge/internal/notify"
)

func setupEngine(t *testing.T, now time.Time, opts ...Option) (*Engine, *notify.Center, *clock.Fake) {
	t.Helper()
	fake := clock.NewFake(now)
	center := notify.NewCenter(notify.WithClock(fake))
	return NewEngine(fake, center, opts...), center, fake
}

func newTask(id string, hour, minute int) model.Task {
	created := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	return model.NewTask(id, "Take vitamins", model.TimeOfDay{Hour: hour, Minute: minute}, created)
}

func pendingIDs(t *testing.T, center *notify.Center) []string {
	t.Helper()
	pending, err := center.ListPending(context.Background())
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	ids := make([]string, 0, len(pending))
	for _, p := range pending {
		ids = append(ids, p.ID)
	}
	sort.Strings(ids)
	return ids
}

func pendingByID(t *testing.T, center *notify.Center) map[string]notify.Request {
	t.Helper()
	pending, _ := center.ListPending(context.Background())
	out := make(map[string]notify.Request, len(pending))
	for _, p := range pending {
		out[p.ID] = p
	}
	return out
}

func TestScheduleTodayIsIdempotent(t *testing.T) {
	ctx := context.Background()
	engine, center, _ := setupEngine(t, time.Date(2026, 10, 17, 6, 0, 0, 0, time.UTC))
	task := newTask("t1", 9, 0)

	engine.ScheduleToday(ctx, task)
	first := pendingIDs(t, center)
	engine.ScheduleToday(ctx, task)
	second := pendingIDs(t, center)

	if len(first) != 13 {
		t.Fatalf("expected main + 12 nudges, got %d: %v", len(first), first)
	}
	if strings.Join(first, ",") != strings.Join(second, ",") {
		t.Fatalf("re-run changed the id set:\n%v\n%v", first, second)
	}
}

func TestNudgesSkipQuietHours(t *testing.T) {
	ctx := context.Background()
	engine, center, _ := setupEngine(t, time.Date(2026, 10, 17, 6, 0, 0, 0, time.UTC))
	task := newTask("t1", 22, 30)

	engine.ScheduleToday(ctx, task)
	pending := pendingByID(t, center)

	if _, ok := pending["task-t1-nudge-1-2026-10-17"]; ok {
		t.Fatal("offset 1 lands at 23:30 and must be excluded")
	}
	for offset := 2; offset <= 8; offset++ {
		if _, ok := pending[model.TaskAlert("t1", model.NudgeSlot(offset), time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)).String()]; ok {
			t.Fatalf("offset %d lands inside the quiet window", offset)
		}
	}
	nine, ok := pending["task-t1-nudge-9-2026-10-17"]
	if !ok {
		t.Fatal("offset 9 lands at 07:30 and must be included")
	}
	if nine.FireAt.Format("15:04") != "07:30" {
		t.Fatalf("unexpected nudge-9 time: %s", nine.FireAt)
	}
	if nine.Payload.Body != "Don't forget: Take vitamins" || nine.Payload.Category != model.CategoryTaskNudge {
		t.Fatalf("unexpected nudge payload: %+v", nine.Payload)
	}
	if _, ok := pending["task-t1-main-2026-10-17"]; !ok {
		t.Fatal("expected main reminder at 22:30")
	}
	if len(pending) != 5 {
		t.Fatalf("expected main + nudges 9..12, got %d", len(pending))
	}
}

func TestPastMainStillPlansNudges(t *testing.T) {
	ctx := context.Background()
	engine, center, _ := setupEngine(t, time.Date(2026, 10, 17, 12, 15, 0, 0, time.UTC))
	task := newTask("t1", 9, 0)

	engine.ScheduleToday(ctx, task)
	pending := pendingByID(t, center)

	if _, ok := pending["task-t1-main-2026-10-17"]; ok {
		t.Fatal("main reminder time has passed and must not be submitted")
	}
	if _, ok := pending["task-t1-nudge-3-2026-10-17"]; ok {
		t.Fatal("nudge at 12:00 is already past")
	}
	four, ok := pending["task-t1-nudge-4-2026-10-17"]
	if !ok || four.FireAt.Format("15:04") != "13:00" {
		t.Fatalf("expected nudge-4 at 13:00, got %+v", four)
	}
	if len(pending) != 9 {
		t.Fatalf("expected nudges 4..12, got %d", len(pending))
	}
}

func TestCompletionRetractsOnlyTodaysAlerts(t *testing.T) {
	ctx := context.Background()
	engine, center, fake := setupEngine(t, time.Date(2026, 10, 17, 19, 0, 0, 0, time.UTC))
	task := newTask("t1", 20, 0)

	engine.EnsureBackup(ctx, task)
	engine.Sync(ctx, task)
	before := pendingIDs(t, center)
	want := []string{
		"task-t1-daily",
		"task-t1-main-2026-10-17",
		"task-t1-nudge-1-2026-10-17",
		"task-t1-nudge-2-2026-10-17",
	}
	if strings.Join(before, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected alerts before completion: %v", before)
	}

	done := task.MarkComplete(fake.Now())
	engine.Sync(ctx, done)

	after := pendingIDs(t, center)
	if len(after) != 1 || after[0] != "task-t1-daily" {
		t.Fatalf("expected only the daily backup to remain, got %v", after)
	}
}

func TestCompletionRetractsDeliveredToday(t *testing.T) {
	ctx := context.Background()
	engine, center, fake := setupEngine(t, time.Date(2026, 10, 17, 19, 0, 0, 0, time.UTC))
	task := newTask("t1", 20, 0)
	engine.Sync(ctx, task)

	fake.Set(time.Date(2026, 10, 17, 20, 0, 5, 0, time.UTC))
	if got := center.DeliverDue(fake.Now()); len(got) != 1 {
		t.Fatalf("expected the main reminder to fire, got %d", len(got))
	}

	engine.Sync(ctx, task.MarkComplete(fake.Now()))
	delivered, _ := center.ListDelivered(ctx)
	if len(delivered) != 0 {
		t.Fatalf("expected delivered main retracted, got %+v", delivered)
	}
}

func TestUndoRederivesFreshAlertSet(t *testing.T) {
	ctx := context.Background()
	engine, center, fake := setupEngine(t, time.Date(2026, 10, 17, 10, 20, 0, 0, time.UTC))
	task := newTask("t1", 10, 0)

	engine.Sync(ctx, task)
	done := task.MarkComplete(fake.Now())
	engine.Sync(ctx, done)
	if n := len(pendingIDs(t, center)); n != 0 {
		t.Fatalf("expected no pending alerts after completion, got %d", n)
	}

	fake.Advance(2 * time.Hour)
	engine.Sync(ctx, done.MarkIncomplete())

	fresh := engine.PlanToday(task, fake.Now())
	want := make([]string, 0, len(fresh))
	for _, a := range fresh {
		want = append(want, a.ID.String())
	}
	sort.Strings(want)
	if got := pendingIDs(t, center); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("undo set mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestRescheduleAllRollsOverStaleCompletion(t *testing.T) {
	ctx := context.Background()
	yesterday := time.Date(2026, 10, 16, 21, 0, 0, 0, time.UTC)
	engine, center, _ := setupEngine(t, time.Date(2026, 10, 17, 6, 30, 0, 0, time.UTC))

	stale := newTask("t1", 8, 0).MarkComplete(yesterday)
	inactive := newTask("t2", 8, 0).WithActive(false)

	out := engine.RescheduleAllForToday(ctx, []model.Task{stale, inactive})
	if len(out) != 2 {
		t.Fatalf("expected both tasks returned, got %d", len(out))
	}
	if out[0].Completed {
		t.Fatal("expected stale completion reset")
	}
	pending := pendingByID(t, center)
	if _, ok := pending["task-t1-main-2026-10-17"]; !ok {
		t.Fatal("rolled-over task must get today's main reminder")
	}
	for id := range pending {
		if strings.HasPrefix(id, "task-t2-") {
			t.Fatalf("inactive task must not be scheduled, found %s", id)
		}
	}
}

func TestRescheduleAllSkipsTasksDoneToday(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 17, 6, 30, 0, 0, time.UTC)
	engine, center, _ := setupEngine(t, now)

	done := newTask("t1", 8, 0).MarkComplete(now.Add(-time.Hour))
	out := engine.RescheduleAllForToday(ctx, []model.Task{done})
	if !out[0].Completed {
		t.Fatal("completion from today must survive rollover")
	}
	if n := len(pendingIDs(t, center)); n != 0 {
		t.Fatalf("expected nothing scheduled for a done task, got %d", n)
	}
}

func TestCancelAllRemovesEverySlot(t *testing.T) {
	ctx := context.Background()
	engine, center, fake := setupEngine(t, time.Date(2026, 10, 17, 6, 0, 0, 0, time.UTC))
	at := fake.Now().Add(time.Hour)

	preload := []string{
		"task-t1-main-2026-10-17",
		"task-t1-nudge-1-2026-10-17",
		"task-t1-nudge-2-2026-10-17",
		"task-t1-main-2026-10-16",
		"task-t11-main-2026-10-17",
		"visit-t1-day-of",
	}
	for _, id := range preload {
		if err := center.SubmitOneShot(ctx, id, at, notify.Payload{}); err != nil {
			t.Fatalf("preload %s: %v", id, err)
		}
	}
	if err := center.SubmitRecurringDaily(ctx, "task-t1-daily", model.TimeOfDay{Hour: 9}, notify.Payload{}); err != nil {
		t.Fatalf("preload daily: %v", err)
	}

	engine.CancelAll(ctx, "t1")

	got := pendingIDs(t, center)
	want := []string{"task-t11-main-2026-10-17", "visit-t1-day-of"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected survivors: %v", got)
	}
}

func TestCancelTodayKeepsOtherDays(t *testing.T) {
	ctx := context.Background()
	engine, center, fake := setupEngine(t, time.Date(2026, 10, 17, 6, 0, 0, 0, time.UTC))
	at := fake.Now().Add(time.Hour)
	_ = center.SubmitOneShot(ctx, "task-t1-main-2026-10-17", at, notify.Payload{})
	_ = center.SubmitOneShot(ctx, "task-t1-main-2026-10-18", at.Add(24*time.Hour), notify.Payload{})

	engine.CancelToday(ctx, "t1")

	got := pendingIDs(t, center)
	if len(got) != 1 || got[0] != "task-t1-main-2026-10-18" {
		t.Fatalf("unexpected pending after cancel today: %v", got)
	}
}

func TestPermissionDeniedDegradesSilently(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	engine, center, _ := setupEngine(t, time.Date(2026, 10, 17, 6, 0, 0, 0, time.UTC), WithMetrics(metrics))
	center.SetAuthorized(false)

	task := newTask("t1", 9, 0)
	engine.EnsureBackup(ctx, task)
	engine.Sync(ctx, task)

	if n := len(pendingIDs(t, center)); n != 0 {
		t.Fatalf("expected nothing pending while denied, got %d", n)
	}
	if got := testutil.ToFloat64(metrics.failures.WithLabelValues("submit")); got != 14 {
		t.Fatalf("expected 14 failed submissions, got %v", got)
	}
}

func TestMalformedTimeDoesNotAbortBatch(t *testing.T) {
	ctx := context.Background()
	engine, center, _ := setupEngine(t, time.Date(2026, 10, 17, 6, 0, 0, 0, time.UTC))

	broken := newTask("bad", 9, 75)
	good := newTask("good", 9, 0)
	engine.RescheduleAllForToday(ctx, []model.Task{broken, good})

	pending := pendingByID(t, center)
	for id := range pending {
		if strings.HasPrefix(id, "task-bad-") {
			t.Fatalf("malformed task produced %s", id)
		}
	}
	if _, ok := pending["task-good-main-2026-10-17"]; !ok {
		t.Fatal("expected the well-formed task to be scheduled")
	}
}

func TestInactiveTaskIsNeverScheduled(t *testing.T) {
	ctx := context.Background()
	engine, center, _ := setupEngine(t, time.Date(2026, 10, 17, 6, 0, 0, 0, time.UTC))
	task := newTask("t1", 9, 0).WithActive(false)

	engine.EnsureBackup(ctx, task)
	engine.Sync(ctx, task)
	if n := len(pendingIDs(t, center)); n != 0 {
		t.Fatalf("expected no alerts for inactive task, got %d", n)
	}
}

func TestBadgeClearedWhenAllActiveTasksDone(t *testing.T) {
	ctx := context.Background()
	engine, center, fake := setupEngine(t, time.Date(2026, 10, 17, 8, 59, 0, 0, time.UTC))
	a := newTask("a", 9, 0)
	b := newTask("b", 9, 0)
	paused := newTask("c", 9, 0).WithActive(false)
	engine.Sync(ctx, a)
	engine.Sync(ctx, b)

	fake.Set(time.Date(2026, 10, 17, 9, 0, 1, 0, time.UTC))
	center.DeliverDue(fake.Now())
	if center.Badge() != 2 {
		t.Fatalf("expected badge 2 after two main reminders, got %d", center.Badge())
	}

	a = a.MarkComplete(fake.Now())
	engine.ReconcileBadge(ctx, []model.Task{a, b, paused})
	if center.Badge() != 2 {
		t.Fatal("badge must stay while a task is still pending")
	}

	b = b.MarkComplete(fake.Now())
	engine.ReconcileBadge(ctx, []model.Task{a, b, paused})
	if center.Badge() != 0 {
		t.Fatalf("expected badge cleared, got %d", center.Badge())
	}
}

func TestSnoozeUsesFreshIDAndIsRetractedOnCompletion(t *testing.T) {
	ctx := context.Background()
	engine, center, fake := setupEngine(t, time.Date(2026, 10, 17, 14, 0, 0, 0, time.UTC))
	task := newTask("t1", 9, 0)

	snoozed, id := engine.Snooze(ctx, task)
	if snoozed.SnoozedUntil == nil || !snoozed.SnoozedUntil.Equal(fake.Now().Add(30*time.Minute)) {
		t.Fatalf("expected snooze carried on the task, got %+v", snoozed.SnoozedUntil)
	}
	if !id.Slot.IsSnooze() || id.DateStamp != "2026-10-17" {
		t.Fatalf("unexpected snooze id: %+v", id)
	}
	req, ok := pendingByID(t, center)[id.String()]
	if !ok || !req.FireAt.Equal(fake.Now().Add(30*time.Minute)) {
		t.Fatalf("expected snooze at now+30m, got %+v", req)
	}

	done := snoozed.MarkComplete(fake.Now())
	if done.SnoozedUntil != nil {
		t.Fatal("completion must clear the stored snooze")
	}
	engine.Sync(ctx, done)
	if _, ok := pendingByID(t, center)[id.String()]; ok {
		t.Fatal("completing the task must retract the snooze")
	}
}

func TestSnoozeAcrossMidnightIsRetractedOnCompletion(t *testing.T) {
	ctx := context.Background()
	engine, center, fake := setupEngine(t, time.Date(2026, 10, 17, 23, 45, 0, 0, time.UTC))
	task := newTask("t1", 9, 0)

	snoozed, id := engine.Snooze(ctx, task)
	if id.DateStamp != "2026-10-18" {
		t.Fatalf("expected snooze due tomorrow, got %+v", id)
	}

	engine.Sync(ctx, snoozed.MarkComplete(fake.Now()))
	if ids := pendingIDs(t, center); len(ids) != 0 {
		t.Fatalf("expected late snooze retracted, got %v", ids)
	}
}

func TestSnoozeIsRederivedFromStoredTask(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 17, 14, 0, 0, 0, time.UTC)
	first, _, _ := setupEngine(t, now)
	second, center, _ := setupEngine(t, now.Add(5*time.Minute))

	snoozed, id := first.Snooze(ctx, newTask("t1", 9, 0))
	second.RescheduleAllForToday(ctx, []model.Task{snoozed})

	req, ok := pendingByID(t, center)[id.String()]
	if !ok || !req.FireAt.Equal(now.Add(30*time.Minute)) {
		t.Fatalf("expected snooze %s re-derived at 14:30, got %v", id, pendingIDs(t, center))
	}
}

func TestRescheduleAllReconcilesAgainstStoredTasks(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 17, 6, 0, 0, 0, time.UTC)
	engine, center, _ := setupEngine(t, now)

	done := newTask("t1", 9, 0)
	deleted := newTask("t2", 10, 0)
	paused := newTask("t3", 11, 0)
	for _, task := range []model.Task{done, deleted, paused} {
		engine.EnsureBackup(ctx, task)
		engine.ScheduleToday(ctx, task)
	}

	engine.RescheduleAllForToday(ctx, []model.Task{done.MarkComplete(now), paused.WithActive(false)})

	ids := pendingIDs(t, center)
	if len(ids) != 1 || ids[0] != "task-t1-daily" {
		t.Fatalf("expected only the done task's daily backup, got %v", ids)
	}
}

func TestSubmittedMetricsBySlot(t *testing.T) {
	ctx := context.Background()
	metrics := NewMetrics(prometheus.NewRegistry())
	engine, _, _ := setupEngine(t, time.Date(2026, 10, 17, 6, 0, 0, 0, time.UTC), WithMetrics(metrics))
	task := newTask("t1", 9, 0)

	engine.EnsureBackup(ctx, task)
	engine.ScheduleToday(ctx, task)

	if got := testutil.ToFloat64(metrics.submitted.WithLabelValues("main")); got != 1 {
		t.Fatalf("expected 1 main submission, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.submitted.WithLabelValues("nudge")); got != 12 {
		t.Fatalf("expected 12 nudge submissions, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.submitted.WithLabelValues("daily")); got != 1 {
		t.Fatalf("expected 1 daily submission, got %v", got)
	}
}

func TestCustomPolicyLimitsNudges(t *testing.T) {
	policy := DefaultPolicy()
	policy.MaxNudges = 3
	engine, _, fake := setupEngine(t, time.Date(2026, 10, 17, 6, 0, 0, 0, time.UTC), WithPolicy(policy))

	alerts := engine.PlanToday(newTask("t1", 9, 0), fake.Now())
	if len(alerts) != 4 {
		t.Fatalf("expected main + 3 nudges, got %d", len(alerts))
	}
}

func TestQuietWindowShapes(t *testing.T) {
	wrap := DefaultPolicy()
	for hour, want := range map[int]bool{22: false, 23: true, 0: true, 6: true, 7: false} {
		if got := wrap.InQuietHours(hour); got != want {
			t.Fatalf("wrapping window hour %d: got %v want %v", hour, got, want)
		}
	}
	flat := Policy{QuietStartHour: 13, QuietEndHour: 15}
	if !flat.InQuietHours(14) || flat.InQuietHours(15) {
		t.Fatal("unexpected same-day window")
	}
	if (Policy{QuietStartHour: 5, QuietEndHour: 5}).InQuietHours(5) {
		t.Fatal("empty window must never be quiet")
	}
}
