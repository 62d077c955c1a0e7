package store

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

// failingStore is a Store whose operations always fail.
type failingStore struct{}

var errBackend = errors.New("backend unavailable")

func (failingStore) Name() string { return "broken" }
func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errBackend
}
func (failingStore) Set(context.Context, map[string]string) error { return errBackend }
func (failingStore) Subscribe(...string) (<-chan Change, func()) {
	ch := make(chan Change)
	close(ch)
	return ch, func() {}
}
func (failingStore) Close() error { return nil }

// TestGetHelpers tests default fallbacks of GetString and GetInt.
func TestGetHelpers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory()
	defer m.Close()

	if err := m.Set(ctx, map[string]string{KeyMode: "gray", KeyTotalCount: "7", "bad": "x"}); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"existing string", GetString(ctx, m, KeyMode, "hide"), "gray"},
		{"missing string", GetString(ctx, m, "missing", "hide"), "hide"},
		{"existing int", GetInt(ctx, m, KeyTotalCount, 0), 7},
		{"missing int", GetInt(ctx, m, KeyCurrentCount, 3), 3},
		{"non-numeric int", GetInt(ctx, m, "bad", 5), 5},
		{"failing string", GetString(ctx, failingStore{}, KeyMode, "hide"), "hide"},
		{"failing int", GetInt(ctx, failingStore{}, KeyTotalCount, 0), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if tt.got != tt.want {
				t.Errorf("got %v, expected %v", tt.got, tt.want)
			}
		})
	}
}

// TestPut tests that write failures are logged, not returned.
func TestPut(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	Put(context.Background(), failingStore{}, logger, map[string]string{KeyCurrentCount: "1"})

	out := buf.String()
	if !strings.Contains(out, "failed to persist values") || !strings.Contains(out, "backend=broken") {
		t.Errorf("expected warning in log, got %q", out)
	}
}

// TestMemory tests the in-memory backend.
func TestMemory(t *testing.T) {
	t.Parallel()

	t.Run("set notifies once per write", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		m := NewMemory()
		defer m.Close()

		ch, cancel := m.Subscribe()
		defer cancel()

		if err := m.Set(ctx, map[string]string{KeyCurrentCount: "2", KeyTotalCount: "5"}); err != nil {
			t.Fatalf("set failed: %v", err)
		}

		change := <-ch
		if change.Backend != BackendLocal {
			t.Errorf("backend = %q, expected %q", change.Backend, BackendLocal)
		}
		if v, ok := change.Value(KeyTotalCount); !ok || v != "5" {
			t.Errorf("expected total 5 in change, got %q", v)
		}
		if len(change.Keys) != 2 {
			t.Errorf("expected both keys in one change, got %v", change.Keys)
		}
		select {
		case extra := <-ch:
			t.Errorf("unexpected second change %v", extra)
		default:
		}
	})

	t.Run("empty write is a no-op", func(t *testing.T) {
		t.Parallel()

		m := NewMemory()
		defer m.Close()

		ch, cancel := m.Subscribe()
		defer cancel()

		if err := m.Set(context.Background(), nil); err != nil {
			t.Fatalf("set failed: %v", err)
		}
		select {
		case c := <-ch:
			t.Errorf("unexpected change %v", c)
		default:
		}
	})

	t.Run("change does not alias caller map", func(t *testing.T) {
		t.Parallel()

		m := NewMemory()
		defer m.Close()
		ch, cancel := m.Subscribe()
		defer cancel()

		values := map[string]string{KeyMode: "keep"}
		_ = m.Set(context.Background(), values)
		values[KeyMode] = "gray"

		if v, _ := (<-ch).Value(KeyMode); v != "keep" {
			t.Errorf("expected keep, got %q", v)
		}
	})

	t.Run("closed store", func(t *testing.T) {
		t.Parallel()

		m := NewMemory()
		ch, _ := m.Subscribe()
		if err := m.Close(); err != nil {
			t.Fatalf("close failed: %v", err)
		}

		if _, open := <-ch; open {
			t.Error("expected subscription to be closed")
		}
		if _, _, err := m.Get(context.Background(), KeyMode); !errors.Is(err, ErrClosed) {
			t.Errorf("expected ErrClosed, got %v", err)
		}
		if err := m.Set(context.Background(), map[string]string{KeyMode: "hide"}); !errors.Is(err, ErrClosed) {
			t.Errorf("expected ErrClosed, got %v", err)
		}
		late, _ := m.Subscribe()
		if _, open := <-late; open {
			t.Error("expected late subscription to be closed")
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()

		m := NewMemory()
		defer m.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, _, err := m.Get(ctx, KeyMode); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

// TestNotifier tests fan-out and slow-subscriber handling.
func TestNotifier(t *testing.T) {
	t.Parallel()

	t.Run("full subscriber keeps newest and logs", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n := NewNotifier(slog.New(slog.NewTextHandler(&buf, nil)))
		ch, cancel := n.Subscribe()
		defer cancel()

		for i := 0; i < subscriberBuffer+3; i++ {
			n.Notify(Change{Keys: map[string]string{KeyCurrentCount: Itoa(i)}, Backend: BackendSync})
		}

		if len(ch) != subscriberBuffer {
			t.Errorf("expected %d buffered changes, got %d", subscriberBuffer, len(ch))
		}
		if got := strings.Count(buf.String(), "dropped oldest store change"); got != 3 {
			t.Errorf("expected 3 drop warnings, got %d", got)
		}
		if v, _ := (<-ch).Value(KeyCurrentCount); v != "3" {
			t.Errorf("expected oldest kept change 3, got %q", v)
		}
		var last Change
		for len(ch) > 0 {
			last = <-ch
		}
		if v, _ := last.Value(KeyCurrentCount); v != Itoa(subscriberBuffer+2) {
			t.Errorf("expected newest change %d, got %q", subscriberBuffer+2, v)
		}
	})

	t.Run("key filter", func(t *testing.T) {
		t.Parallel()

		n := NewNotifier(nil)
		ch, cancel := n.Subscribe(KeyMode)
		defer cancel()

		for i := 0; i < subscriberBuffer*2; i++ {
			n.Notify(Change{Keys: map[string]string{KeyCurrentCount: Itoa(i), KeyTotalCount: Itoa(i)}, Backend: BackendSync})
		}
		n.Notify(Change{Keys: map[string]string{KeyMode: "gray", KeyTotalCount: "99"}, Backend: BackendSync})

		if len(ch) != 1 {
			t.Fatalf("expected only the mode change, got %d changes", len(ch))
		}
		c := <-ch
		if v, ok := c.Value(KeyMode); !ok || v != "gray" {
			t.Errorf("expected gray, got %q", v)
		}
		if _, ok := c.Value(KeyTotalCount); ok {
			t.Errorf("expected unwatched keys removed, got %v", c.Keys)
		}
		if c.Backend != BackendSync {
			t.Errorf("expected backend kept, got %q", c.Backend)
		}
	})

	t.Run("cancel closes only that subscription", func(t *testing.T) {
		t.Parallel()

		n := NewNotifier(nil)
		a, cancelA := n.Subscribe()
		b, cancelB := n.Subscribe()
		defer cancelB()

		cancelA()
		cancelA()

		n.Notify(Change{Keys: map[string]string{KeyMode: "gray"}, Backend: BackendLocal})

		if _, open := <-a; open {
			t.Error("expected canceled subscription to be closed")
		}
		if c := <-b; c.Keys[KeyMode] != "gray" {
			t.Errorf("unexpected change %v", c)
		}
	})
}
