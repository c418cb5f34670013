package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = time.Hour

// DedupChecker provides idempotency checks for relayed events backed by
// Redis. A relayed payload is identified by its content digest, so the exact
// same broker message delivered twice is mirrored only once.
type DedupChecker struct {
	client *redis.Client
}

// NewDedupChecker creates a DedupChecker wrapping the given Redis client.
func NewDedupChecker(client *redis.Client) *DedupChecker {
	return &DedupChecker{client: client}
}

// IsDuplicate reports whether a payload with this content has already been relayed.
func (d *DedupChecker) IsDuplicate(ctx context.Context, payload []byte) (bool, error) {
	n, err := d.client.Exists(ctx, key(payload)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this payload has been relayed (expires after dedupTTL).
func (d *DedupChecker) Mark(ctx context.Context, payload []byte) error {
	return d.client.Set(ctx, key(payload), "1", dedupTTL).Err()
}

func key(payload []byte) string {
	sum := sha256.Sum256(payload)
	return "relay:" + hex.EncodeToString(sum[:])
}
