package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nao1215/nogrok/internal/config"
	"github.com/nao1215/nogrok/internal/database"
	"github.com/nao1215/nogrok/internal/log"
	"github.com/nao1215/nogrok/internal/report"
	"github.com/nao1215/nogrok/internal/store"
	"github.com/spf13/cobra"
)

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getDBDir retrieves the state database directory.
func getDBDir(cmd *cobra.Command) string {
	dir, err := cmd.Flags().GetString("db-dir")
	if err != nil || dir == "" {
		return config.XDGDataDir()
	}
	return dir
}

// setupLogger creates the privacy-preserving logger on w.
func setupLogger(w io.Writer, verbose bool) *slog.Logger {
	return log.NewLogger(w, verbose)
}

// openStateDB opens the sync backend.
func openStateDB(dbDir string, logger *slog.Logger) (*database.StateDB, error) {
	opts := database.DefaultOptions()
	opts.Logger = logger
	db, err := database.Open(dbDir, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	return db, nil
}

// openStore opens the sync backend and falls back to the local in-memory
// backend when it cannot be opened. The returned StateDB is nil after a
// fallback, so callers know there is no run history.
func openStore(dbDir string, logger *slog.Logger) (store.Store, *database.StateDB) {
	db, err := openStateDB(dbDir, logger)
	if err != nil {
		logger.Warn("using local store; counts will not persist", "error", err)
		return store.NewMemory(store.WithMemoryLogger(logger)), nil
	}
	return db, db
}

// newReportWriter selects the report format.
func newReportWriter(w io.Writer, jsonReport, markdownReport, verbose bool) report.Writer {
	switch {
	case jsonReport:
		return report.NewJSONWriter(w, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case markdownReport:
		return report.NewMarkdownWriter(w)
	default:
		return report.NewSimpleWriter(w, report.WithVerbose(verbose))
	}
}

// openReportFile creates the report file and its directories.
// Reports name the filtered pages, so the file is only readable by the owner.
func openReportFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided report path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}
	return f, nil
}
