package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long rendered artifacts are kept.
const DefaultTTL = 30 * 24 * time.Hour

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Func produces an artifact from a text input, e.g. SVG from DOT source.
type Func func(ctx context.Context, input string) ([]byte, error)

// Memo wraps fn so results are stored in c under Key(prefix, input).
//
// Cache failures never fail the call: a Get error counts as a miss and a Set
// error is dropped. Errors from fn are returned and not cached.
func Memo(c Cache, prefix string, ttl time.Duration, fn Func) Func {
	if c == nil {
		return fn
	}
	return func(ctx context.Context, input string) ([]byte, error) {
		key := Key(prefix, input)
		if data, ok, err := c.Get(ctx, key); err == nil && ok {
			return data, nil
		}
		data, err := fn(ctx, input)
		if err != nil {
			return nil, err
		}
		_ = c.Set(ctx, key, data, ttl)
		return data, nil
	}
}
