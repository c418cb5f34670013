package relay

import (
	"fmt"
	"testing"

	"github.com/adboard/ad-directory/internal/core/domain"
)

func TestBuffer_AppendAndSnapshot(t *testing.T) {
	b := NewBuffer(3)

	b.Append(domain.RelayEvent{"n": 1})
	b.Append(domain.RelayEvent{"n": 2})

	snap := b.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 events, got %d", len(snap))
	}
	if snap[0]["n"] != 1 || snap[1]["n"] != 2 {
		t.Fatalf("unexpected order: %v", snap)
	}
}

func TestBuffer_OverflowDropsOldest(t *testing.T) {
	b := NewBuffer(3)
	for i := 1; i <= 5; i++ {
		b.Append(domain.RelayEvent{"n": i})
	}

	snap := b.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("expected 3 events, got %d", len(snap))
	}
	for i, want := range []int{3, 4, 5} {
		if snap[i]["n"] != want {
			t.Fatalf("position %d: expected %d, got %v", i, want, snap[i]["n"])
		}
	}
}

func TestBuffer_SnapshotIsolation(t *testing.T) {
	b := NewBuffer(3)
	b.Append(domain.RelayEvent{"n": 1})

	snap := b.Snapshot()
	b.Append(domain.RelayEvent{"n": 2})

	if len(snap) != 1 {
		t.Fatalf("snapshot mutated after later append: %v", snap)
	}
}

func TestBuffer_DefaultCapacity(t *testing.T) {
	b := NewBuffer(0)
	for i := 0; i < DefaultBufferCapacity+10; i++ {
		b.Append(domain.RelayEvent{"n": fmt.Sprintf("%d", i)})
	}
	if b.Len() != DefaultBufferCapacity {
		t.Fatalf("expected %d events, got %d", DefaultBufferCapacity, b.Len())
	}
}
