package main

import (
	"fmt"

	"github.com/nao1215/nogrok/internal/config"
	"github.com/nao1215/nogrok/internal/database"
	"github.com/nao1215/nogrok/internal/model"
	"github.com/nao1215/nogrok/internal/store"
	"github.com/spf13/cobra"
)

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show treated-result counts and recent runs",
		Long: `Stats shows the persisted mode, the number of results treated on the last
page, the cumulative number of treated results, and the most recent runs.

Run history stores the page host and a fingerprint of the page URL, never
the search query.

Examples:
  nogrok stats
  nogrok stats --limit 5 --markdown`,
		Args: cobra.NoArgs,
		RunE: runStatsCmd,
	}

	cmd.Flags().IntP("limit", "l", database.DefaultHistoryLimit, "Number of recent runs to show")
	cmd.Flags().BoolP("json", "j", false, "Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown (mutually exclusive with --json)")

	return cmd
}

// runStatsCmd executes the stats command.
func runStatsCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return config.ErrConflictingReportFormats
	}

	verbose := getVerboseFlag(cmd)
	logger := setupLogger(cmd.ErrOrStderr(), verbose)

	db, err := openStateDB(getDBDir(cmd), logger)
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := collectStats(cmd, db, limit)
	if err != nil {
		return err
	}

	writer := newReportWriter(cmd.OutOrStdout(), jsonOutput, markdownOutput, verbose)
	_, err = writer.WriteStats(stats)
	return err
}

// collectStats reads counters and history from db.
func collectStats(cmd *cobra.Command, db *database.StateDB, limit int) (*model.Stats, error) {
	ctx := cmd.Context()

	mode, err := model.ParseMode(store.GetString(ctx, db, store.KeyMode, model.DefaultMode.String()))
	if err != nil {
		mode = model.DefaultMode
	}

	summary, err := db.Summarize(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize history: %w", err)
	}
	recent, err := db.RecentRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	return &model.Stats{
		Backend: db.Name(),
		Mode:    mode,
		Current: store.GetInt(ctx, db, store.KeyCurrentCount, 0),
		Total:   store.GetInt(ctx, db, store.KeyTotalCount, 0),
		Summary: summary,
		Recent:  recent,
	}, nil
}
