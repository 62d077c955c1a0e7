package store

import (
	"context"
	"log/slog"
	"strconv"
)

// Persisted keys.
const (
	// KeyMode holds the display mode ("hide", "keep" or "gray").
	KeyMode = "mode"

	// KeyCurrentCount holds the number of flagged results on the active page.
	KeyCurrentCount = "current_count"

	// KeyTotalCount holds the cumulative number of flagged results.
	KeyTotalCount = "total_count"
)

// Backend names.
const (
	// BackendSync is the durable backend shared across runs.
	BackendSync = "sync"

	// BackendLocal is the process-local fallback backend.
	BackendLocal = "local"
)

// Change announces one write to a store.
type Change struct {
	// Keys maps every written key to its new value.
	Keys map[string]string

	// Backend is the Name of the store that was written.
	Backend string
}

// Value returns the new value of key and whether the change touched it.
func (c Change) Value(key string) (string, bool) {
	v, ok := c.Keys[key]
	return v, ok
}

// Store is a persisted string key-value map with change notifications.
//
// Design decision: Set takes a map so that related keys (the two counters)
// are written and announced together, the way extension storage does it.
// A reader therefore never sees a current count without its matching total.
type Store interface {
	// Name returns the backend name carried by every Change.
	Name() string

	// Get returns the value of key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set writes all values atomically and notifies subscribers once.
	Set(ctx context.Context, values map[string]string) error

	// Subscribe returns a channel of changes to keys (every key when none
	// are given) and a function that ends the subscription. A change only
	// carries the watched keys. The channel is closed when the subscription
	// ends or the store is closed.
	Subscribe(keys ...string) (<-chan Change, func())

	// Close releases the backend and ends all subscriptions.
	Close() error
}

// GetString returns the value of key, or def when the key is missing or
// the read fails.
func GetString(ctx context.Context, s Store, key, def string) string {
	v, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return def
	}
	return v
}

// GetInt returns the integer value of key, or def when the key is missing,
// the read fails, or the value is not an integer.
func GetInt(ctx context.Context, s Store, key string, def int) int {
	v, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Put writes values and logs a failure instead of returning it.
func Put(ctx context.Context, s Store, logger *slog.Logger, values map[string]string) {
	if err := s.Set(ctx, values); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("failed to persist values",
			"backend", s.Name(),
			"keys", len(values),
			"error", err,
		)
	}
}

// Itoa formats a counter value for storage.
func Itoa(n int) string {
	return strconv.Itoa(n)
}
