package counter

import (
	"context"
	"log/slog"

	"github.com/nao1215/nogrok/internal/store"
)

// Counter holds the current and cumulative flagged counts of one session.
// It is not safe for concurrent use.
//
// Design decision: The total only ever grows by positive deltas of the
// current count. Results that disappear from the page lower current but
// never total, and a result that reappears counts again, matching what
// the user actually saw being filtered.
type Counter struct {
	current int
	total   int
	store   store.Store
	logger  *slog.Logger
}

// New creates a Counter that persists to s.
func New(s store.Store, logger *slog.Logger) *Counter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Counter{store: s, logger: logger}
}

// Load reads the persisted total. Failures leave it at zero.
func (c *Counter) Load(ctx context.Context) {
	c.total = store.GetInt(ctx, c.store, store.KeyTotalCount, 0)
	if c.total < 0 {
		c.total = 0
	}
}

// Reset zeroes the current count and persists it. The total is kept.
func (c *Counter) Reset(ctx context.Context) {
	c.current = 0
	store.Put(ctx, c.store, c.logger, map[string]string{
		store.KeyCurrentCount: store.Itoa(0),
	})
}

// Update records a new flagged count. It returns false and writes nothing
// when count equals the current count.
func (c *Counter) Update(ctx context.Context, count int) bool {
	if count == c.current {
		return false
	}
	if delta := count - c.current; delta > 0 {
		c.total += delta
	}
	c.current = count

	store.Put(ctx, c.store, c.logger, map[string]string{
		store.KeyCurrentCount: store.Itoa(c.current),
		store.KeyTotalCount:   store.Itoa(c.total),
	})
	return true
}

// Current returns the flagged count of the page.
func (c *Counter) Current() int {
	return c.current
}

// Total returns the cumulative count.
func (c *Counter) Total() int {
	return c.total
}
