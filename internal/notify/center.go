package notify

import (
	"container/heap"
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sandeepkv93/nudge/internal/clock"
	"github.com/sandeepkv93/nudge/internal/logger"
	"github.com/sandeepkv93/nudge/internal/model"
)

const maxDelivered = 256

type entry struct {
	req   Request
	index int
}

type alertQueue []*entry

func (q alertQueue) Len() int { return len(q) }

func (q alertQueue) Less(i, j int) bool {
	if q[i].req.FireAt.Equal(q[j].req.FireAt) {
		return q[i].req.ID < q[j].req.ID
	}
	return q[i].req.FireAt.Before(q[j].req.FireAt)
}

func (q alertQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *alertQueue) Push(x any) {
	e := x.(*entry)
	e.index = len(*q)
	*q = append(*q, e)
}

func (q *alertQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*q = old[0 : n-1]
	return e
}

// Center is an in-process delivery service. Pending requests sit in a
// fire-time heap; a single loop goroutine delivers them when due.
type Center struct {
	mu         sync.Mutex
	clock      clock.Clock
	queue      alertQueue
	index      map[string]*entry
	delivered  []Delivery
	badge      int
	authorized bool
	sink       Sink
	log        *logger.Logger

	out     chan Delivery
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped uint64
}

type Option func(*Center)

func WithClock(c clock.Clock) Option {
	return func(center *Center) { center.clock = c }
}

func WithSink(s Sink) Option {
	return func(center *Center) { center.sink = s }
}

func WithLogger(l *logger.Logger) Option {
	return func(center *Center) { center.log = l.WithComponent("notify") }
}

func WithBuffer(size int) Option {
	return func(center *Center) {
		if size > 0 {
			center.out = make(chan Delivery, size)
		}
	}
}

func NewCenter(opts ...Option) *Center {
	c := &Center{
		clock:      clock.Real{},
		queue:      make(alertQueue, 0),
		index:      make(map[string]*entry),
		authorized: true,
		sink:       NoopSink{},
		log:        logger.NewNop(),
		out:        make(chan Delivery, 1),
		wakeup:     make(chan struct{}, 1),
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// C streams deliveries as they fire. Slow consumers lose deliveries; see Dropped.
func (c *Center) C() <-chan Delivery {
	return c.out
}

func (c *Center) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return
	}
	c.started = true
	go c.loop()
}

func (c *Center) Stop() {
	c.mu.Lock()
	if !c.started || c.stopped {
		c.stopped = true
		c.mu.Unlock()
		return
	}
	c.stopped = true
	close(c.stopCh)
	c.mu.Unlock()
	<-c.doneCh
}

// SetAuthorized models the user's permission decision. While denied every
// submission fails with ErrPermissionDenied.
func (c *Center) SetAuthorized(granted bool) {
	c.mu.Lock()
	c.authorized = granted
	c.mu.Unlock()
}

// RequestAuthorization reports the current permission decision. Callers ask
// once at startup; a denial is not an error.
func (c *Center) RequestAuthorization(context.Context) (bool, error) {
	granted := c.Authorized()
	if !granted {
		c.log.Warnw("alert permission denied, submissions will fail")
	}
	return granted, nil
}

func (c *Center) Authorized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authorized
}

func (c *Center) SubmitOneShot(_ context.Context, id string, fireAt time.Time, payload Payload) error {
	if fireAt.IsZero() {
		return ErrInvalidFireTime
	}
	return c.submit(Request{ID: id, FireAt: fireAt, Payload: payload})
}

func (c *Center) SubmitRecurringDaily(_ context.Context, id string, at model.TimeOfDay, payload Payload) error {
	next, err := model.DailyRecurrence{At: at}.NextAfter(c.clock.Now())
	if err != nil {
		return err
	}
	return c.submit(Request{ID: id, FireAt: next, Payload: payload, Repeats: true, Daily: at})
}

func (c *Center) submit(req Request) error {
	if strings.TrimSpace(req.ID) == "" {
		return ErrInvalidID
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return ErrStopped
	}
	if !c.authorized {
		return ErrPermissionDenied
	}

	if existing, ok := c.index[req.ID]; ok {
		existing.req = req
		heap.Fix(&c.queue, existing.index)
	} else {
		e := &entry{req: req}
		heap.Push(&c.queue, e)
		c.index[req.ID] = e
	}
	c.signalWakeup()
	return nil
}

// Cancel removes the ids from both the pending and delivered sets.
func (c *Center) Cancel(_ context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for id := range drop {
		if e, ok := c.index[id]; ok {
			heap.Remove(&c.queue, e.index)
			delete(c.index, id)
		}
	}
	kept := c.delivered[:0]
	for _, d := range c.delivered {
		if !drop[d.ID] {
			kept = append(kept, d)
		}
	}
	c.delivered = kept
	c.signalWakeup()
	return nil
}

func (c *Center) ListPending(context.Context) ([]Request, error) {
	c.mu.Lock()
	out := make([]Request, 0, len(c.queue))
	for _, e := range c.queue {
		out = append(out, e.req)
	}
	c.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].FireAt.Equal(out[j].FireAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].FireAt.Before(out[j].FireAt)
	})
	return out, nil
}

func (c *Center) ListDelivered(context.Context) ([]Delivery, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Delivery, len(c.delivered))
	copy(out, c.delivered)
	return out, nil
}

func (c *Center) ClearBadge(context.Context) error {
	c.mu.Lock()
	c.badge = 0
	c.mu.Unlock()
	return nil
}

func (c *Center) Badge() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.badge
}

func (c *Center) Dropped() uint64 {
	return atomic.LoadUint64(&c.dropped)
}

// DeliverDue fires every pending request whose time is at or before now.
func (c *Center) DeliverDue(now time.Time) []Delivery {
	due := c.popDue(now)
	for _, d := range due {
		if err := c.sink.Send(notificationFor(d)); err != nil {
			c.log.Warnw("sink rejected delivery", "alert_id", d.ID, "error", err)
		}
		select {
		case c.out <- d:
		default:
			atomic.AddUint64(&c.dropped, 1)
		}
	}
	return due
}

func (c *Center) popDue(now time.Time) []Delivery {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Delivery, 0)
	for len(c.queue) > 0 {
		next := c.queue[0]
		if next.req.FireAt.After(now) {
			break
		}
		d := Delivery{Request: next.req, DeliveredAt: now}
		if next.req.Repeats {
			following, err := model.DailyRecurrence{At: next.req.Daily}.NextAfter(now)
			if err == nil {
				next.req.FireAt = following
				heap.Fix(&c.queue, next.index)
			} else {
				heap.Pop(&c.queue)
				delete(c.index, next.req.ID)
			}
		} else {
			heap.Pop(&c.queue)
			delete(c.index, next.req.ID)
		}
		c.recordDelivered(d)
		if d.Payload.Badge {
			c.badge++
		}
		out = append(out, d)
	}
	return out
}

func (c *Center) recordDelivered(d Delivery) {
	kept := c.delivered[:0]
	for _, prev := range c.delivered {
		if prev.ID != d.ID {
			kept = append(kept, prev)
		}
	}
	c.delivered = append(kept, d)
	if len(c.delivered) > maxDelivered {
		c.delivered = c.delivered[len(c.delivered)-maxDelivered:]
	}
}

func (c *Center) loop() {
	defer close(c.doneCh)
	defer close(c.out)

	var timer *time.Timer
	for {
		next, hasNext := c.peek()
		if !hasNext {
			select {
			case <-c.wakeup:
				continue
			case <-c.stopCh:
				return
			}
		}

		wait := next.FireAt.Sub(c.clock.Now())
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			c.DeliverDue(c.clock.Now())
		case <-c.wakeup:
			continue
		case <-c.stopCh:
			if timer != nil {
				stopTimer(timer)
			}
			return
		}
	}
}

func (c *Center) signalWakeup() {
	select {
	case c.wakeup <- struct{}{}:
	default:
	}
}

func (c *Center) peek() (Request, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) == 0 {
		return Request{}, false
	}
	return c.queue[0].req, true
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
