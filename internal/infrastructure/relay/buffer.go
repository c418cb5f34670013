package relay

import (
	"sync"

	"github.com/adboard/ad-directory/internal/core/domain"
)

// DefaultBufferCapacity bounds how many relayed events are kept in memory.
const DefaultBufferCapacity = 100

// Buffer is a bounded, append-only ring of relayed events. When full, the
// oldest entry is dropped. Reads get a copied snapshot, so holders never see
// later mutations.
type Buffer struct {
	mu       sync.Mutex
	events   []domain.RelayEvent
	capacity int
}

// NewBuffer creates a Buffer with the given capacity.
// If capacity <= 0, DefaultBufferCapacity is used.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultBufferCapacity
	}
	return &Buffer{events: make([]domain.RelayEvent, 0, capacity), capacity: capacity}
}

// Append adds an event, evicting the oldest one when the buffer is full.
func (b *Buffer) Append(event domain.RelayEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.events) == b.capacity {
		copy(b.events, b.events[1:])
		b.events[len(b.events)-1] = event
		return
	}
	b.events = append(b.events, event)
}

// Snapshot returns a copy of the buffered events, oldest first.
func (b *Buffer) Snapshot() []domain.RelayEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]domain.RelayEvent, len(b.events))
	copy(out, b.events)
	return out
}

// Len reports how many events are currently buffered.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}
