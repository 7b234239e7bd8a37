// Package store provides key-value storage for rundown documents.
//
// A document is an opaque byte slice stored under a key. Every write replaces
// the whole value; there are no partial updates. Backends:
//   - memory: in-process map for tests and throwaway servers
//   - file: one JSON file per key, written atomically (default for the CLI)
//   - sqlite, postgres: a single documents table (database/sql)
//   - redis: one string per key
//   - mongo: one document per key in a collection
//
// # Usage
//
//	s, err := store.Open(ctx, store.Config{Backend: store.BackendFile, Path: dir})
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	data, ok, err := s.Get(ctx, "rundown-project")
//
// # Errors
//
// A missing key is not an error: Get reports it with ok == false. Backend
// failures are wrapped with [errors.ErrCodeStorage]. Redis and Mongo wrap
// transient network failures with [Retryable] and retry them internally with
// [RetryWithBackoff]; callers never retry.
package store

import (
	"context"
	"errors"
	"time"

	rerrors "github.com/matzehuels/rundown/pkg/errors"
)

// Store is the interface for document storage backends.
type Store interface {
	// Get retrieves the value stored under key. ok is false when the key does
	// not exist.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the store.
	Close() error
}

// Backend names a storage implementation.
type Backend string

// Supported backends.
const (
	BackendMemory   Backend = "memory"
	BackendFile     Backend = "file"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendRedis    Backend = "redis"
	BackendMongo    Backend = "mongo"
)

// BackendOf reports which backend s is. Stores from outside this package
// report "custom".
func BackendOf(s Store) Backend {
	if n, ok := s.(interface{ Backend() Backend }); ok {
		return n.Backend()
	}
	return "custom"
}

// =============================================================================
// Retry
// =============================================================================

// RetryableError wraps an error to indicate it should trigger a retry.
type RetryableError struct{ Err error }

// Retryable wraps an error as a RetryableError.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// Error returns the error message of the wrapped error.
func (e *RetryableError) Error() string { return e.Err.Error() }

// Unwrap returns the wrapped error.
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable checks if an error is wrapped with RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// retryDelay is the first backoff interval; tests shorten it.
var retryDelay = 200 * time.Millisecond

// RetryWithBackoff retries fn up to 3 times with exponential backoff.
// Only errors wrapped with Retryable will trigger retries. The last error is
// returned unwrapped from its RetryableError.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	const attempts = 3
	delay := retryDelay
	var lastErr error

	for i := 0; i < attempts; i++ {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	var re *RetryableError
	if errors.As(lastErr, &re) {
		return re.Err
	}
	return lastErr
}

// storageErr wraps a backend failure, passing context errors through so
// callers can still match them.
func storageErr(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return rerrors.Wrap(rerrors.ErrCodeStorage, err, format, args...)
}
