package dashboard

import (
	"sync"
)

// Subscription receives values from a Broadcaster until closed.
// C has a one-slot buffer holding the most recent undelivered value.
type Subscription[T any] struct {
	C <-chan T

	once   sync.Once
	cancel func()
}

// Updates returns the delivery channel. It is closed after Close.
func (s *Subscription[T]) Updates() <-chan T {
	return s.C
}

// Close detaches the subscription. It is safe to call more than once.
func (s *Subscription[T]) Close() {
	s.once.Do(s.cancel)
}

// Broadcaster owns a single "latest value" cell and a subscriber list.
// Publish never blocks: a slow subscriber only ever holds the newest value.
type Broadcaster[T any] struct {
	mu     sync.Mutex
	latest T
	has    bool
	subs   map[uint64]chan T
	nextID uint64

	// older reports whether a was produced before b. Values older than the
	// current one are dropped so subscribers never go back in time.
	older func(a, b T) bool
}

// NewBroadcaster creates a broadcaster. older may be nil to accept every value.
func NewBroadcaster[T any](older func(a, b T) bool) *Broadcaster[T] {
	return &Broadcaster[T]{
		subs:  make(map[uint64]chan T),
		older: older,
	}
}

// Publish replaces the latest value and notifies every subscriber.
// It returns false when the value was dropped as out of order.
func (b *Broadcaster[T]) Publish(v T) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.has && b.older != nil && b.older(v, b.latest) {
		return false
	}
	b.latest = v
	b.has = true

	for _, ch := range b.subs {
		offer(ch, v)
	}
	return true
}

// Subscribe attaches a new subscriber. When prime is set and a value exists,
// it is delivered immediately. onClose runs once after the subscriber is removed.
func (b *Broadcaster[T]) Subscribe(prime bool, onClose func()) *Subscription[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan T, 1)
	b.subs[id] = ch

	if prime && b.has {
		ch <- b.latest
	}

	return &Subscription[T]{
		C: ch,
		cancel: func() {
			b.mu.Lock()
			delete(b.subs, id)
			close(ch)
			b.mu.Unlock()
			if onClose != nil {
				onClose()
			}
		},
	}
}

// Latest returns the current value, if any.
func (b *Broadcaster[T]) Latest() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.latest, b.has
}

// Len returns the number of attached subscribers.
func (b *Broadcaster[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// offer delivers v, replacing a stale undelivered value if the slot is full.
// Callers hold the broadcaster lock, so no other sender races on ch.
func offer[T any](ch chan T, v T) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}
