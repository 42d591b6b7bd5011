package reminder

import (
	"sync"

	"github.com/sandeepkv93/nudge/internal/clock"
	"github.com/sandeepkv93/nudge/internal/logger"
	"github.com/sandeepkv93/nudge/internal/notify"
)

// Engine decides which alerts must exist for today and keeps the delivery
// service in line with task state. Service failures are logged and counted,
// never returned to lifecycle callers: the worst outcome of any failure is
// a notification that does not appear.
type Engine struct {
	clock   clock.Clock
	service notify.Service
	policy  Policy
	log     *logger.Logger
	metrics *Metrics
	locks   keyedMutex
}

type Option func(*Engine)

func WithPolicy(p Policy) Option {
	return func(e *Engine) { e.policy = p }
}

func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) { e.log = l.WithComponent("reminder") }
}

func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func NewEngine(clk clock.Clock, service notify.Service, opts ...Option) *Engine {
	e := &Engine{
		clock:   clk,
		service: service,
		policy:  DefaultPolicy(),
		log:     logger.NewNop(),
		locks:   keyedMutex{locks: make(map[string]*refLock)},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Policy() Policy {
	return e.policy
}

// keyedMutex serializes work per entity id while letting distinct ids run
// concurrently.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

type refLock struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &refLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
