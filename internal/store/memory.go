package store

import (
	"context"
	"log/slog"
	"maps"
	"sync"
)

// Memory is a process-local Store. Its backend name is BackendLocal.
type Memory struct {
	mu       sync.RWMutex
	values   map[string]string
	closed   bool
	notifier *Notifier
}

// MemoryOption configures a Memory store.
type MemoryOption func(*memoryOptions)

type memoryOptions struct {
	logger *slog.Logger
}

// WithMemoryLogger sets the logger used for dropped notifications.
func WithMemoryLogger(logger *slog.Logger) MemoryOption {
	return func(o *memoryOptions) {
		o.logger = logger
	}
}

// NewMemory creates an empty in-memory store.
func NewMemory(opts ...MemoryOption) *Memory {
	o := memoryOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	return &Memory{
		values:   make(map[string]string),
		notifier: NewNotifier(o.logger),
	}
}

// Name returns BackendLocal.
func (m *Memory) Name() string {
	return BackendLocal
}

// Get returns the value of key.
func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return "", false, ErrClosed
	}
	v, ok := m.values[key]
	return v, ok, nil
}

// Set writes values and notifies subscribers.
func (m *Memory) Set(ctx context.Context, values map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	maps.Copy(m.values, values)
	m.mu.Unlock()

	m.notifier.Notify(Change{Keys: maps.Clone(values), Backend: m.Name()})
	return nil
}

// Subscribe returns a change subscription.
func (m *Memory) Subscribe(keys ...string) (<-chan Change, func()) {
	return m.notifier.Subscribe(keys...)
}

// Close ends all subscriptions. Later reads and writes fail with ErrClosed.
func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.notifier.Close()
	return nil
}
