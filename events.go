package authclient

import (
	"sort"
	"sync"
	"time"
)

// SessionEventType enumerates the broadcast session changes.
type SessionEventType string

const (
	SessionEventLogin         SessionEventType = "session.login"
	SessionEventLogout        SessionEventType = "session.logout"
	SessionEventExpiryWarning SessionEventType = "session.expiry.warning"
)

// SessionEvent notifies subscribers of a session change so dependent
// surfaces (header, role-gated navigation) can re-render without polling.
type SessionEvent struct {
	Type       SessionEventType
	Email      string
	Role       Role
	OccurredAt time.Time
	Metadata   map[string]any
}

// SessionListener consumes session events.
type SessionListener interface {
	Notify(event SessionEvent)
}

// SessionListenerFunc adapts a function to the SessionListener interface.
type SessionListenerFunc func(event SessionEvent)

// Notify implements SessionListener.
func (f SessionListenerFunc) Notify(event SessionEvent) {
	if f == nil {
		return
	}
	f(event)
}

// eventBroadcaster fans session events out to subscribers. Delivery is
// synchronous and in subscription order; listeners must not block.
type eventBroadcaster struct {
	mu   sync.Mutex
	next int
	subs map[int]SessionListener
}

func newEventBroadcaster() *eventBroadcaster {
	return &eventBroadcaster{subs: make(map[int]SessionListener)}
}

// subscribe registers a listener and returns its teardown. Unsubscribing
// twice is safe.
func (b *eventBroadcaster) subscribe(l SessionListener) func() {
	if l == nil {
		return func() {}
	}

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = l
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

func (b *eventBroadcaster) emit(event SessionEvent) {
	b.mu.Lock()
	listeners := make([]SessionListener, 0, len(b.subs))
	ids := make([]int, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	// map iteration order is random; keep delivery order stable
	sort.Ints(ids)
	for _, id := range ids {
		listeners = append(listeners, b.subs[id])
	}
	b.mu.Unlock()

	for _, l := range listeners {
		l.Notify(event)
	}
}
