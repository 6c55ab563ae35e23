package broadcast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recvSignal(t *testing.T, ch <-chan struct{}) bool {
	t.Helper()
	select {
	case _, ok := <-ch:
		return ok
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for signal")
		return false
	}
}

func TestBus_BroadcastReachesAllSubscribers(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch1, unsub1 := bus.Subscribe()
	ch2, unsub2 := bus.Subscribe()
	defer unsub1()
	defer unsub2()

	bus.Broadcast()

	assert.True(t, recvSignal(t, ch1))
	assert.True(t, recvSignal(t, ch2))
}

func TestBus_SignalsCoalesceWhilePending(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch, unsub := bus.Subscribe()
	defer unsub()

	bus.Broadcast()
	bus.Broadcast()
	bus.Broadcast()

	assert.True(t, recvSignal(t, ch))

	// Only one pending signal was buffered.
	select {
	case <-ch:
		t.Fatal("expected coalesced signal, got a second delivery")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBus_UnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch, unsub := bus.Subscribe()
	bus.Broadcast()
	unsub()
	unsub() // idempotent

	// Buffered signal was drained; channel reads as closed.
	_, ok := <-ch
	assert.False(t, ok)

	// Broadcasting after unsubscribe must not panic.
	bus.Broadcast()
}

func TestBus_CloseTearsDownSubscribers(t *testing.T) {
	bus := NewBus()
	ch, _ := bus.Subscribe()

	bus.Close()
	bus.Close() // idempotent

	_, ok := <-ch
	require.False(t, ok)

	late, _ := bus.Subscribe()
	_, ok = <-late
	assert.False(t, ok)
}

func TestBus_ConcurrentBroadcastAndSubscribe(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			bus.Broadcast()
		}
	}()

	for i := 0; i < 50; i++ {
		_, unsub := bus.Subscribe()
		unsub()
	}
	<-done
}
