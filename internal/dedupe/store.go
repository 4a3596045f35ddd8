// Package dedupe collapses provider webhook retries into at-most-one
// effective processing per event id.
package dedupe

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is the dedupe horizon. Shorter windows only degrade safety
// (a very late provider retry would reprocess); they are never functionally
// wrong.
const DefaultTTL = 30 * 24 * time.Hour

// Store records event ids that have already been processed.
type Store interface {
	// MarkSeen records eventID and reports whether it had been seen before.
	// First observation returns false; every later observation within the
	// dedupe horizon returns true.
	MarkSeen(ctx context.Context, eventID string) (bool, error)
}

// RedisStore implements Store with a single SET NX EX per event. The
// set-if-absent is atomic on the redis side, so concurrent gateway instances
// need no further coordination.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a redis-backed dedupe store. ttl <= 0 uses DefaultTTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func key(eventID string) string { return "dedupe:event:" + eventID }

// MarkSeen performs the atomic first-writer-wins check.
func (s *RedisStore) MarkSeen(ctx context.Context, eventID string) (bool, error) {
	set, err := s.client.SetNX(ctx, key(eventID), 1, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedupe setnx %s: %w", eventID, err)
	}
	return !set, nil
}

// Disabled is a Store that never suppresses anything. Running with it is
// supported but unsafe for production: every provider retry reprocesses.
type Disabled struct{}

// MarkSeen always reports unseen.
func (Disabled) MarkSeen(ctx context.Context, eventID string) (bool, error) {
	return false, nil
}
