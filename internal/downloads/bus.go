package downloads

import (
	"sync"

	"vidgrab/internal/models"
)

// subscriberBuffer bounds each listener's pending events. A listener that
// stops draining loses events rather than blocking the publisher.
const subscriberBuffer = 64

// Subscription is one listener's registration on a ProgressBus. Receive
// from C; the channel closes when the bus shuts down.
type Subscription struct {
	C  <-chan models.ProgressEvent
	ch chan models.ProgressEvent
}

// ProgressBus fans progress events out to every subscribed listener. It is
// constructed at server startup and passed by reference into whatever
// handles a download request; there is no package-level instance.
type ProgressBus struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool
}

// NewProgressBus returns an empty bus.
func NewProgressBus() *ProgressBus {
	return &ProgressBus{subs: make(map[*Subscription]struct{})}
}

// Subscribe registers a new listener.
func (b *ProgressBus) Subscribe() *Subscription {
	ch := make(chan models.ProgressEvent, subscriberBuffer)
	sub := &Subscription{C: ch, ch: ch}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return sub
	}
	b.subs[sub] = struct{}{}
	return sub
}

// Unsubscribe removes a listener and closes its channel. Safe to call more
// than once.
func (b *ProgressBus) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub]; ok {
		delete(b.subs, sub)
		close(sub.ch)
	}
}

// Publish delivers ev to every current listener, best-effort. A full
// listener buffer drops the event for that listener only.
func (b *ProgressBus) Publish(ev models.ProgressEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs {
		select {
		case sub.ch <- ev:
		default:
		}
	}
}

// Close tears down every remaining subscription. Called at server shutdown.
func (b *ProgressBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for sub := range b.subs {
		delete(b.subs, sub)
		close(sub.ch)
	}
}
