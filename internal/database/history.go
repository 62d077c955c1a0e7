package database

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/url"

	"golang.org/x/crypto/sha3"

	"github.com/nao1215/nogrok/internal/model"
)

// DefaultHistoryLimit is the number of runs RecentRuns returns for a
// non-positive limit.
const DefaultHistoryLimit = 20

// PageFingerprint returns the hex SHA3-256 digest of a page label.
func PageFingerprint(page string) string {
	sum := sha3.Sum256([]byte(page))
	return hex.EncodeToString(sum[:])
}

// RecordRun stores the summary of a filter session.
func (sdb *StateDB) RecordRun(ctx context.Context, report *model.FilterReport) error {
	host := ""
	if u, err := url.Parse(report.Page); err == nil {
		host = u.Hostname()
	}

	query := `
	INSERT INTO filter_runs (host, page_hash, provider, mode, flagged, direct, decoded, total)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := sdb.db.ExecContext(ctx, query,
		host,
		PageFingerprint(report.Page),
		report.Provider,
		string(report.Mode),
		report.Current,
		report.DirectCount(),
		report.DecodedCount(),
		report.Total,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (sdb *StateDB) RecentRuns(ctx context.Context, limit int) ([]model.RunRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	query := `
	SELECT id, host, page_hash, provider, mode, flagged, direct, decoded, total, timestamp
	FROM filter_runs
	ORDER BY id DESC
	LIMIT ?
	`

	rows, err := sdb.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	results := make([]model.RunRecord, 0)
	for rows.Next() {
		var rec model.RunRecord
		var timestamp string

		err := rows.Scan(
			&rec.ID,
			&rec.Host,
			&rec.PageHash,
			&rec.Provider,
			&rec.Mode,
			&rec.Flagged,
			&rec.Direct,
			&rec.Decoded,
			&rec.Total,
			&timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		rec.Timestamp = parseTimestamp(timestamp)
		results = append(results, rec)
	}

	return results, rows.Err()
}

// Summarize aggregates every recorded run.
func (sdb *StateDB) Summarize(ctx context.Context) (model.RunSummary, error) {
	query := `
	SELECT COUNT(*), COALESCE(SUM(flagged), 0), COUNT(DISTINCT host)
	FROM filter_runs
	`

	var s model.RunSummary
	if err := sdb.db.QueryRowContext(ctx, query).Scan(&s.Runs, &s.Flagged, &s.Hosts); err != nil {
		return model.RunSummary{}, fmt.Errorf("failed to summarize runs: %w", err)
	}
	return s, nil
}
