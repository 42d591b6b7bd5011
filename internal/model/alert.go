package model

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sandeepkv93/nudge/internal/clock"
)

var (
	ErrInvalidAlertID  = errors.New("model: invalid alert id")
	ErrInvalidCategory = errors.New("model: invalid alert category")
)

type EntityKind string

const (
	KindTask  EntityKind = "task"
	KindVisit EntityKind = "visit"
)

type Slot string

const (
	SlotMain      Slot = "main"
	SlotDaily     Slot = "daily"
	SlotDayBefore Slot = "day-before"
	SlotDayOf     Slot = "day-of"
)

const (
	nudgePrefix  = "nudge-"
	snoozePrefix = "snooze-"
)

func NudgeSlot(offset int) Slot {
	return Slot(nudgePrefix + strconv.Itoa(offset))
}

func SnoozeSlot(at time.Time) Slot {
	return Slot(snoozePrefix + strconv.FormatInt(at.Unix(), 10))
}

func (s Slot) IsNudge() bool  { return strings.HasPrefix(string(s), nudgePrefix) }
func (s Slot) IsSnooze() bool { return strings.HasPrefix(string(s), snoozePrefix) }

// NudgeOffset returns the hour offset encoded in a nudge slot.
func (s Slot) NudgeOffset() (int, bool) {
	if !s.IsNudge() {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(string(s), nudgePrefix))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Kind groups slots for metrics labels.
func (s Slot) Kind() string {
	switch {
	case s.IsNudge():
		return "nudge"
	case s.IsSnooze():
		return "snooze"
	default:
		return string(s)
	}
}

// AlertID is the structured form of {kind}-{entityId}-{slot}[-{dateStamp}].
// DateStamp is empty for recurring and fixed-identifier slots.
type AlertID struct {
	Kind      EntityKind
	EntityID  string
	Slot      Slot
	DateStamp string
}

var alertIDPattern = regexp.MustCompile(`^(task|visit)-(.+)-(main|daily|day-before|day-of|nudge-\d+|snooze-\d+)(?:-(\d{4}-\d{2}-\d{2}))?$`)

func TaskAlert(taskID string, slot Slot, day time.Time) AlertID {
	return AlertID{Kind: KindTask, EntityID: taskID, Slot: slot, DateStamp: clock.DateStamp(day)}
}

func TaskDailyAlert(taskID string) AlertID {
	return AlertID{Kind: KindTask, EntityID: taskID, Slot: SlotDaily}
}

func VisitAlert(visitID string, slot Slot) AlertID {
	return AlertID{Kind: KindVisit, EntityID: visitID, Slot: slot}
}

func (a AlertID) String() string {
	id := fmt.Sprintf("%s-%s-%s", a.Kind, a.EntityID, a.Slot)
	if a.DateStamp != "" {
		id += "-" + a.DateStamp
	}
	return id
}

func ParseAlertID(raw string) (AlertID, error) {
	m := alertIDPattern.FindStringSubmatch(raw)
	if m == nil {
		return AlertID{}, fmt.Errorf("%w: %q", ErrInvalidAlertID, raw)
	}
	return AlertID{
		Kind:      EntityKind(m[1]),
		EntityID:  m[2],
		Slot:      Slot(m[3]),
		DateStamp: m[4],
	}, nil
}

// BelongsTo reports whether the alert targets the given entity.
func (a AlertID) BelongsTo(kind EntityKind, entityID string) bool {
	return a.Kind == kind && a.EntityID == entityID
}

// Category selects the set of actions a delivered alert offers.
type Category string

const (
	CategoryTaskReminder Category = "TASK_REMINDER"
	CategoryTaskNudge    Category = "TASK_NUDGE"
	CategoryVisit        Category = "VISIT_REMINDER"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryTaskReminder, CategoryTaskNudge, CategoryVisit:
		return true
	default:
		return false
	}
}

type Action string

const (
	ActionOpen     Action = "OPEN"
	ActionMarkDone Action = "MARK_DONE"
	ActionSnooze   Action = "SNOOZE"
)

func (c Category) Actions() []Action {
	switch c {
	case CategoryTaskReminder:
		return []Action{ActionMarkDone, ActionSnooze}
	case CategoryTaskNudge:
		return []Action{ActionMarkDone}
	default:
		return nil
	}
}

func (c Category) Allows(a Action) bool {
	if a == ActionOpen {
		return true
	}
	for _, allowed := range c.Actions() {
		if allowed == a {
			return true
		}
	}
	return false
}

// Category is the action set a delivery with this id was submitted under.
func (a AlertID) Category() Category {
	switch {
	case a.Kind == KindVisit:
		return CategoryVisit
	case a.Slot.IsNudge():
		return CategoryTaskNudge
	default:
		return CategoryTaskReminder
	}
}
