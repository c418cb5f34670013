package relay

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/adboard/ad-directory/internal/core/domain"
)

type memDedup struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newMemDedup() *memDedup {
	return &memDedup{seen: make(map[string]bool)}
}

func (d *memDedup) IsDuplicate(_ context.Context, payload []byte) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seen[string(payload)], nil
}

func (d *memDedup) Mark(_ context.Context, payload []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen[string(payload)] = true
	return nil
}

func waitForLen(t *testing.T, b *Buffer, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if b.Len() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("buffer never reached %d events, has %d", want, b.Len())
}

func TestDispatcher_RelaysInOrderPerKey(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	buffer := NewBuffer(10)
	d := NewDispatcher(4, buffer, newMemDedup(), zerolog.Nop())
	d.Start(ctx)

	// Same routing key lands on the same worker, so order is preserved.
	d.Enqueue("ads.created", []byte(`{"n":1}`), domain.RelayEvent{"n": 1})
	d.Enqueue("ads.created", []byte(`{"n":2}`), domain.RelayEvent{"n": 2})
	d.Enqueue("ads.created", []byte(`{"n":3}`), domain.RelayEvent{"n": 3})

	waitForLen(t, buffer, 3)
	snap := buffer.Snapshot()
	for i, want := range []int{1, 2, 3} {
		if snap[i]["n"] != want {
			t.Fatalf("position %d: expected %d, got %v", i, want, snap[i]["n"])
		}
	}
}

func TestDispatcher_DropsDuplicates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	buffer := NewBuffer(10)
	d := NewDispatcher(1, buffer, newMemDedup(), zerolog.Nop())
	d.Start(ctx)

	payload := []byte(`{"id":"abc"}`)
	d.Enqueue("ads.created", payload, domain.RelayEvent{"id": "abc"})
	d.Enqueue("ads.created", payload, domain.RelayEvent{"id": "abc"})
	d.Enqueue("ads.created", []byte(`{"id":"def"}`), domain.RelayEvent{"id": "def"})

	waitForLen(t, buffer, 2)

	// Give the duplicate a moment to (wrongly) land.
	time.Sleep(50 * time.Millisecond)
	if buffer.Len() != 2 {
		t.Fatalf("duplicate was relayed, buffer has %d events", buffer.Len())
	}
}

func TestDispatcher_ShardIsDeterministic(t *testing.T) {
	d := NewDispatcher(4, NewBuffer(1), newMemDedup(), zerolog.Nop())
	first := d.shardIndex("ads.created")
	for i := 0; i < 10; i++ {
		if d.shardIndex("ads.created") != first {
			t.Fatalf("shard index not stable")
		}
	}
}
