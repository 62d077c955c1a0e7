package database

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/nogrok/internal/model"
	"github.com/nao1215/nogrok/internal/store"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *StateDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("unexpected path %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false fails for missing database", func(t *testing.T) {
		t.Parallel()

		opts := DefaultOptions()
		opts.CreateIfNotExists = false
		_, err := Open(filepath.Join(t.TempDir(), "missing"), opts)
		if !errors.Is(err, ErrDatabaseNotFound) {
			t.Errorf("expected ErrDatabaseNotFound, got %v", err)
		}
	})

	t.Run("reopen keeps values", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		ctx := context.Background()

		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		if err := db.Set(ctx, map[string]string{store.KeyMode: "gray"}); err != nil {
			t.Fatalf("set failed: %v", err)
		}
		_ = db.Close()

		opts := DefaultOptions()
		opts.CreateIfNotExists = false
		db, err = Open(dir, opts)
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer db.Close()

		if got := store.GetString(ctx, db, store.KeyMode, "hide"); got != "gray" {
			t.Errorf("expected gray after reopen, got %q", got)
		}
	})
}

// TestDefaultOptions tests the default database options.
func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	if !opts.CreateIfNotExists {
		t.Error("expected CreateIfNotExists to be true")
	}
	if !opts.EnableWAL {
		t.Error("expected EnableWAL to be true")
	}
}

// TestStore tests the store.Store implementation.
func TestStore(t *testing.T) {
	t.Parallel()

	t.Run("get missing key", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		_, ok, err := db.Get(context.Background(), store.KeyMode)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if ok {
			t.Error("expected missing key")
		}
	})

	t.Run("set upserts and notifies", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		db := setupTestDB(t)
		ch, cancel := db.Subscribe()
		defer cancel()

		if err := db.Set(ctx, map[string]string{store.KeyCurrentCount: "1", store.KeyTotalCount: "1"}); err != nil {
			t.Fatalf("set failed: %v", err)
		}
		if err := db.Set(ctx, map[string]string{store.KeyCurrentCount: "3", store.KeyTotalCount: "4"}); err != nil {
			t.Fatalf("set failed: %v", err)
		}

		if got := store.GetInt(ctx, db, store.KeyTotalCount, 0); got != 4 {
			t.Errorf("expected total 4, got %d", got)
		}

		first := <-ch
		second := <-ch
		if first.Backend != store.BackendSync || second.Backend != store.BackendSync {
			t.Errorf("expected sync backend, got %q and %q", first.Backend, second.Backend)
		}
		if second.Keys[store.KeyCurrentCount] != "3" {
			t.Errorf("unexpected second change %v", second.Keys)
		}
	})

	t.Run("close ends subscriptions", func(t *testing.T) {
		t.Parallel()

		db, err := Open(t.TempDir(), DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		ch, _ := db.Subscribe()
		if err := db.Close(); err != nil {
			t.Fatalf("close failed: %v", err)
		}
		if _, open := <-ch; open {
			t.Error("expected subscription to be closed")
		}
		if err := db.Set(context.Background(), map[string]string{store.KeyMode: "hide"}); err == nil {
			t.Error("expected error after close")
		}
	})
}

// TestRunHistory tests run recording and retrieval.
func TestRunHistory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)

	pages := []string{
		"https://www.google.com/search?q=first",
		"https://www.bing.com/search?q=second",
		"https://www.google.com/search?q=third",
	}
	for i, p := range pages {
		u, err := url.Parse(p)
		if err != nil {
			t.Fatal(err)
		}
		report := model.NewFilterReport(u, "google", model.ModeGray)
		report.Current = i + 1
		report.Total = 10 + i
		report.Detections = append(report.Detections,
			model.Detection{Container: "div.g", Match: model.CandidateURL{Depth: model.DepthDirect}},
			model.Detection{Container: "div.g", Match: model.CandidateURL{Depth: model.DepthDecoded}},
		)
		if err := db.RecordRun(ctx, report); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}

	runs, err := db.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("recent runs failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Flagged != 3 || runs[0].Total != 12 {
		t.Errorf("expected newest run first, got %+v", runs[0])
	}
	if runs[0].Direct != 1 || runs[0].Decoded != 1 {
		t.Errorf("unexpected depth split %+v", runs[0])
	}
	if runs[1].Host != "www.bing.com" {
		t.Errorf("expected bing host, got %q", runs[1].Host)
	}
	if runs[0].Mode != "gray" {
		t.Errorf("expected gray mode, got %q", runs[0].Mode)
	}
	if runs[0].Timestamp.IsZero() {
		t.Error("expected timestamp to be parsed")
	}
	for _, r := range runs {
		if strings.Contains(r.PageHash, "search") || len(r.PageHash) != 64 {
			t.Errorf("expected hex fingerprint, got %q", r.PageHash)
		}
	}

	all, err := db.RecentRuns(ctx, 0)
	if err != nil {
		t.Fatalf("recent runs failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 runs with default limit, got %d", len(all))
	}

	sum, err := db.Summarize(ctx)
	if err != nil {
		t.Fatalf("summarize failed: %v", err)
	}
	if sum.Runs != 3 || sum.Flagged != 6 || sum.Hosts != 2 {
		t.Errorf("unexpected summary %+v", sum)
	}
}

// TestPageFingerprint tests the page hash.
func TestPageFingerprint(t *testing.T) {
	t.Parallel()

	a := PageFingerprint("https://www.google.com/search")
	b := PageFingerprint("https://www.google.com/search")
	c := PageFingerprint("https://www.bing.com/search")

	if a != b {
		t.Error("expected stable fingerprint")
	}
	if a == c {
		t.Error("expected different pages to differ")
	}
}

// TestParseTimestamp tests timestamp parsing with multiple formats.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		zero  bool
	}{
		{"2024-01-02 03:04:05", false},
		{"2024-01-02T03:04:05Z", false},
		{"2024-01-02T03:04:05+09:00", false},
		{"not a time", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := parseTimestamp(tt.input); got.IsZero() != tt.zero {
				t.Errorf("parseTimestamp(%q) zero = %v, expected %v", tt.input, got.IsZero(), tt.zero)
			}
		})
	}
}
