package notify

import (
	"context"
	"errors"
	"time"

	"github.com/sandeepkv93/nudge/internal/model"
)

var (
	ErrPermissionDenied = errors.New("notify: permission denied")
	ErrInvalidFireTime  = errors.New("notify: invalid fire time")
	ErrInvalidID        = errors.New("notify: alert id is required")
	ErrStopped          = errors.New("notify: center stopped")
)

// Payload is what the user sees plus a back-reference for routing actions.
type Payload struct {
	Title    string
	Body     string
	Category model.Category
	EntityID string
	Badge    bool
}

type Request struct {
	ID      string
	FireAt  time.Time
	Payload Payload
	Repeats bool
	// Daily is the wall-clock time a repeating request re-arms at.
	Daily model.TimeOfDay
}

type Delivery struct {
	Request
	DeliveredAt time.Time
}

// Service is the notification delivery surface the reminder engine depends on.
// Submitting an id that already exists replaces the earlier request.
// Cancelling an unknown id is a no-op.
type Service interface {
	SubmitOneShot(ctx context.Context, id string, fireAt time.Time, payload Payload) error
	SubmitRecurringDaily(ctx context.Context, id string, at model.TimeOfDay, payload Payload) error
	Cancel(ctx context.Context, ids ...string) error
	ListPending(ctx context.Context) ([]Request, error)
	ListDelivered(ctx context.Context) ([]Delivery, error)
	ClearBadge(ctx context.Context) error
}
