package store

import (
	"log/slog"
	"sync"
)

// subscriberBuffer is the channel capacity of each subscription.
const subscriberBuffer = 16

// Notifier fans changes out to subscribers. Backends embed it.
//
// Design decision: Delivery never blocks the writer. A subscriber whose
// buffer is full loses its oldest pending change, so the newest value of
// every key it watches is always delivered, and the loss is logged.
// Subscribers may restrict themselves to a few keys so that frequent writes
// to other keys never reach their buffer.
type Notifier struct {
	mu     sync.Mutex
	subs   map[int]*subscriber
	nextID int
	closed bool
	logger *slog.Logger
}

// subscriber is one subscription. An empty keys set watches every key.
type subscriber struct {
	ch   chan Change
	keys map[string]struct{}
}

// filter returns the part of change the subscriber watches.
func (s *subscriber) filter(change Change) (Change, bool) {
	if len(s.keys) == 0 {
		return change, true
	}
	keys := make(map[string]string, len(s.keys))
	for k, v := range change.Keys {
		if _, ok := s.keys[k]; ok {
			keys[k] = v
		}
	}
	if len(keys) == 0 {
		return Change{}, false
	}
	return Change{Keys: keys, Backend: change.Backend}, true
}

// NewNotifier creates a Notifier. A nil logger uses slog.Default().
func NewNotifier(logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		subs:   make(map[int]*subscriber),
		logger: logger,
	}
}

// Subscribe registers a subscriber for changes to keys, or to every key
// when none are given. After Close, the returned channel is already closed.
func (n *Notifier) Subscribe(keys ...string) (<-chan Change, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(chan Change, subscriberBuffer)
	if n.closed {
		close(ch)
		return ch, func() {}
	}

	sub := &subscriber{ch: ch, keys: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		sub.keys[k] = struct{}{}
	}

	id := n.nextID
	n.nextID++
	n.subs[id] = sub

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			if s, ok := n.subs[id]; ok {
				delete(n.subs, id)
				close(s.ch)
			}
		})
	}
	return ch, cancel
}

// Notify delivers change to every subscriber that watches one of its keys.
// It never blocks.
func (n *Notifier) Notify(change Change) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for id, sub := range n.subs {
		c, ok := sub.filter(change)
		if !ok {
			continue
		}
		select {
		case sub.ch <- c:
			continue
		default:
		}

		// Full. Notify is the only sender and holds mu, so there is room
		// after one receive, whether or not the reader got there first.
		select {
		case <-sub.ch:
		default:
		}
		sub.ch <- c
		n.logger.Warn("dropped oldest store change for slow subscriber",
			"backend", change.Backend,
			"subscriber", id,
		)
	}
}

// Close closes every subscription. Later subscriptions are closed at once.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	n.closed = true
	for id, sub := range n.subs {
		delete(n.subs, id)
		close(sub.ch)
	}
}
