package event

import (
	"errors"
	"sync"
	"sync/atomic"
)

// Sentinel errors returned by Bus.Subscribe.
var (
	// ErrNilHandler is returned when subscribing with a nil handler.
	ErrNilHandler = errors.New("event: nil handler")

	// ErrInvalidPattern is returned when a subscription pattern is
	// malformed.
	ErrInvalidPattern = errors.New("event: invalid topic pattern")
)

// Handler receives a published event.
type Handler func(Event)

// PanicHandler is called when a subscriber panics during dispatch.
type PanicHandler func(ev Event, recovered any)

// Stats holds bus delivery counters.
type Stats struct {
	Published     uint64
	Delivered     uint64
	HandlerPanics uint64
	Subscriptions int
}

type subscription struct {
	id      int
	pattern Topic
	fn      Handler
}

// Bus delivers events to subscribers synchronously, in subscription
// order. Publish returns only after every matching handler has run, so
// a caller that publishes after committing a state change knows all
// observers have seen it before the next change begins.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID int

	onPanic PanicHandler

	published     atomic.Uint64
	delivered     atomic.Uint64
	handlerPanics atomic.Uint64
}

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithPanicHandler sets the callback invoked when a subscriber panics.
// Without it, panics are swallowed after being counted.
func WithPanicHandler(h PanicHandler) BusOption {
	return func(b *Bus) { b.onPanic = h }
}

// NewBus creates an empty bus.
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{nextID: 1}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a handler for every event whose topic matches the
// pattern. The pattern may use wildcards ("feature.*", "session.**").
// It returns a token for Unsubscribe.
func (b *Bus) Subscribe(pattern Topic, fn Handler) (int, error) {
	if fn == nil {
		return 0, ErrNilHandler
	}
	if !patternValid(pattern) {
		return 0, ErrInvalidPattern
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.subs = append(b.subs, subscription{id: id, pattern: pattern, fn: fn})
	return id, nil
}

// Unsubscribe removes the subscription with the given token. It returns
// false if the token is unknown.
func (b *Bus) Unsubscribe(id int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Publish delivers the event to every matching subscriber before
// returning. A panicking handler is recovered and counted; the
// remaining handlers still run.
func (b *Bus) Publish(ev Event) {
	b.published.Add(1)

	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		if !ev.Topic.Matches(s.pattern) {
			continue
		}
		b.dispatch(s, ev)
	}
}

func (b *Bus) dispatch(s subscription, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.handlerPanics.Add(1)
			if b.onPanic != nil {
				b.onPanic(ev, r)
			}
		}
	}()
	s.fn(ev)
	b.delivered.Add(1)
}

// Stats returns a snapshot of the bus counters.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	n := len(b.subs)
	b.mu.RUnlock()
	return Stats{
		Published:     b.published.Load(),
		Delivered:     b.delivered.Load(),
		HandlerPanics: b.handlerPanics.Load(),
		Subscriptions: n,
	}
}

// patternValid accepts well-formed topics where any segment may be a
// wildcard.
func patternValid(pattern Topic) bool {
	if pattern == "" {
		return false
	}
	for _, seg := range pattern.Segments() {
		if seg == "" {
			return false
		}
	}
	return true
}
