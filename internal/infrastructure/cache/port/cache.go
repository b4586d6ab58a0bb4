package port

import (
	"context"
	"time"
)

// Cache is the minimal key-value contract the chat service needs: the
// realtime gateway keeps best-effort presence keys in it so other processes
// can answer "is this user online" without reaching the in-memory hub.
// Presence only ever writes, so the contract carries no read operation.
// Implementations must be concurrency-safe and context-aware.
type Cache interface {
	// Set stores value at key with the provided TTL. Zero or negative TTL
	// means no expiration.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Del removes one or more keys and returns the number of keys removed.
	Del(ctx context.Context, keys ...string) (int64, error)

	// Close releases any resources held by the cache.
	Close() error
}
