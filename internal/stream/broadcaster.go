// Package stream pushes playback frames to live preview clients.
package stream

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/satindergrewal/figura/internal/playback"
)

// ListenerBuffer is how many frames a listener may fall behind before
// frames are dropped for it (3 seconds at 30 fps).
const ListenerBuffer = 90

// Broadcaster fans out frames from one source to N listeners.
type Broadcaster struct {
	mu        sync.RWMutex
	listeners map[uuid.UUID]*Listener
}

// Listener receives frames from the broadcaster.
type Listener struct {
	ID   uuid.UUID
	C    chan playback.Frame
	done chan struct{}
}

// NewBroadcaster creates a new broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		listeners: make(map[uuid.UUID]*Listener),
	}
}

// Subscribe registers a new listener.
func (b *Broadcaster) Subscribe() *Listener {
	l := &Listener{
		ID:   uuid.New(),
		C:    make(chan playback.Frame, ListenerBuffer),
		done: make(chan struct{}),
	}
	b.mu.Lock()
	b.listeners[l.ID] = l
	b.mu.Unlock()
	return l
}

// Unsubscribe removes a listener and signals it to stop. Repeated calls
// are no-ops.
func (b *Broadcaster) Unsubscribe(l *Listener) {
	b.mu.Lock()
	_, ok := b.listeners[l.ID]
	delete(b.listeners, l.ID)
	b.mu.Unlock()
	if ok {
		close(l.done)
	}
}

// Done is closed once the listener is unsubscribed.
func (l *Listener) Done() <-chan struct{} { return l.done }

// ListenerCount returns the number of active listeners.
func (b *Broadcaster) ListenerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

// Run reads frames from source and fans out to all listeners.
// Slow listeners get frames dropped rather than blocking the broadcast.
func (b *Broadcaster) Run(ctx context.Context, source <-chan playback.Frame) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-source:
			if !ok {
				return
			}
			b.mu.RLock()
			for _, l := range b.listeners {
				select {
				case l.C <- frame:
				default:
					// listener too slow, drop frame to keep broadcast moving
				}
			}
			b.mu.RUnlock()
		}
	}
}
