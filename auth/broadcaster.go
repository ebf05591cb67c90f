package auth

import "sync"

// Reason tags a session-expiry broadcast with what killed the session.
type Reason string

const (
	ReasonInvalidRefreshToken Reason = "invalid_refresh_token"
	ReasonRefreshFailed       Reason = "refresh_failed"
	ReasonMissingRefreshToken Reason = "missing_refresh_token"
)

// Broadcaster is the process-wide session-expired channel. It is an explicit
// object owned by the composition root and injected into the coordinator,
// the transport and the manager; there is no global event bus.
//
// Delivery is synchronous and best-effort. A failure episode is broadcast
// exactly once: after the first emission further emissions are suppressed
// until Reset re-arms the broadcaster (done on successful login).
type Broadcaster struct {
	mu      sync.Mutex
	subs    map[int]func(Reason)
	nextID  int
	tripped bool
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]func(Reason))}
}

// Subscribe registers a handler and returns its unsubscribe function.
// Handlers are invoked synchronously on the emitting goroutine.
func (b *Broadcaster) Subscribe(fn func(Reason)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subs[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Emit notifies all subscribers that the session has expired. Repeated
// emissions within one failure episode are dropped.
func (b *Broadcaster) Emit(reason Reason) {
	b.mu.Lock()
	if b.tripped {
		b.mu.Unlock()
		return
	}
	b.tripped = true

	handlers := make([]func(Reason), 0, len(b.subs))
	for _, fn := range b.subs {
		handlers = append(handlers, fn)
	}
	b.mu.Unlock()

	for _, fn := range handlers {
		fn(reason)
	}
}

// Reset re-arms the broadcaster for the next failure episode.
func (b *Broadcaster) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tripped = false
}
