package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/nogrok/internal/store"
)

// FileName is the database file created inside the data directory.
const FileName = "nogrok.db"

// StateDB provides SQLite-based storage for settings, counters and run
// history. It implements store.Store.
//
// Design decision: Change notifications are delivered in-process only.
// Several nogrok processes may share the file, but each process reacts to
// its own writes, which is all a filter session needs.
type StateDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	// notifier fans out changes to subscribers.
	notifier *store.Notifier
}

// Options configures StateDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool

	// Logger receives warnings about dropped change notifications.
	// If nil, slog.Default() is used.
	Logger *slog.Logger
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a StateDB in dbDir.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error
// wrapping ErrDatabaseNotFound is returned.
func Open(dbDir string, opts Options) (*StateDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite takes the open mode as a query parameter:
	// mode=rw refuses to create a file, mode=rwc allows it.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &StateDB{
		db:       db,
		dbPath:   dbPath,
		notifier: store.NewNotifier(opts.Logger),
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// Path returns the database file path.
func (sdb *StateDB) Path() string {
	return sdb.dbPath
}

// Name returns store.BackendSync.
func (sdb *StateDB) Name() string {
	return store.BackendSync
}

// Close ends all subscriptions and closes the database connection.
func (sdb *StateDB) Close() error {
	sdb.notifier.Close()
	return sdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (sdb *StateDB) createTables() error {
	schema := `
	-- Settings and counters, one row per key
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- One row per filtered page
	CREATE TABLE IF NOT EXISTS filter_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		host TEXT NOT NULL,
		page_hash TEXT NOT NULL,
		provider TEXT NOT NULL,
		mode TEXT NOT NULL,
		flagged INTEGER NOT NULL DEFAULT 0,
		direct INTEGER NOT NULL DEFAULT 0,
		decoded INTEGER NOT NULL DEFAULT 0,
		total INTEGER NOT NULL DEFAULT 0,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_host ON filter_runs(host);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON filter_runs(timestamp);
	`

	_, err := sdb.db.ExecContext(context.Background(), schema)
	return err
}

// Get returns the value stored under key.
func (sdb *StateDB) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := sdb.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %q: %w", key, err)
	}
	return value, true, nil
}

// Set writes all values in one transaction and then notifies subscribers.
func (sdb *StateDB) Set(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	tx, err := sdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	query := `
	INSERT INTO kv (key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET
		value = excluded.value,
		updated_at = CURRENT_TIMESTAMP
	`
	// Sorted keys keep the statement order deterministic.
	for _, key := range slices.Sorted(maps.Keys(values)) {
		if _, err := tx.ExecContext(ctx, query, key, values[key]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to set %q: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit values: %w", err)
	}

	sdb.notifier.Notify(store.Change{Keys: maps.Clone(values), Backend: sdb.Name()})
	return nil
}

// Subscribe returns a change subscription.
func (sdb *StateDB) Subscribe(keys ...string) (<-chan store.Change, func()) {
	return sdb.notifier.Subscribe(keys...)
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

var _ store.Store = (*StateDB)(nil)
