// Package broadcast provides the process-wide session-invalidated signal.
// The refresh coordinator publishes to it when a token refresh fails
// terminally; the session manager and any other interested collaborator
// subscribe. The two sides never call each other directly.
package broadcast

import "sync"

// Bus fans a payload-less signal out to all current subscribers. Delivery is
// non-blocking: each subscriber channel is buffered one deep, and a signal
// arriving while one is already pending is coalesced.
type Bus struct {
	mu     sync.Mutex
	closed bool
	subs   map[chan struct{}]struct{}
}

// NewBus constructs an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[chan struct{}]struct{})}
}

// Subscribe registers a listener and returns its channel plus an unsubscribe
// function. Unsubscribing closes the channel so range loops terminate.
// Unsubscribe is idempotent.
func (b *Bus) Subscribe() (<-chan struct{}, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan struct{}, 1)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	b.subs[ch] = struct{}{}

	unsub := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[ch]; !ok {
			return
		}
		delete(b.subs, ch)
		drainAndClose(ch)
	}
	return ch, unsub
}

// Broadcast signals all current subscribers.
func (b *Bus) Broadcast() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Close tears down the bus, closing all subscriber channels. Subsequent
// Subscribe calls receive an already-closed channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		drainAndClose(ch)
		delete(b.subs, ch)
	}
}

// drainAndClose removes any buffered signal before closing the channel so
// receivers observe a closed channel immediately.
func drainAndClose(ch chan struct{}) {
	for {
		select {
		case <-ch:
		default:
			close(ch)
			return
		}
	}
}
