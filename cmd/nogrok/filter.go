package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/nogrok/internal/config"
	"github.com/nao1215/nogrok/internal/engine"
	"github.com/nao1215/nogrok/internal/model"
	"github.com/nao1215/nogrok/internal/pipeline"
	"github.com/nao1215/nogrok/internal/provider"
	"github.com/nao1215/nogrok/internal/report"
	"github.com/nao1215/nogrok/internal/store"
	"github.com/spf13/cobra"
)

// NewFilterCmd creates the filter command.
func NewFilterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter [file...]",
		Short: "Treat target-domain results in saved search pages",
		Long: `Filter reads saved search results pages, finds every result that links
to the target domain and applies the persisted mode to the whole result:

  hide  the result is not displayed
  gray  the result is dimmed and labelled "Filtered: Grokipedia"
  keep  the result is left as is

The filtered page is written to stdout, or to --output-dir with one file per
page. A report of the treated results follows on stderr, or on stdout when
--output-dir is set. --report also saves it to a file.

Pages that load more results later can be replayed with --append: each
fragment is added to the page after the initial scan and filtered as it
arrives.

Examples:
  # Filter a saved Google page
  nogrok filter --url "https://www.google.com/search?q=go" results.html

  # Gray out instead of hiding, and keep that mode for later runs
  nogrok filter --mode gray --url "https://www.bing.com/search?q=go" bing.html

  # Filter many pages and write a Markdown report
  nogrok filter -O out/ --markdown --report report.md pages/*.html

  # Read from stdin; the URL comes from the page's canonical link
  curl -s file:///tmp/saved.html | nogrok filter -

Configuration file (.nogrok) example:
  target: grokipedia
  pillLabel: "Filtered: Grokipedia"
  redirectParams: [goto]
  providers:
    - name: example
      host: search.example
      selectors: [div.hit]`,
		Args: cobra.ArbitraryArgs,
		RunE: runFilterCmd,
	}

	cmd.Flags().StringP("url", "u", "",
		"URL the pages were rendered at (default: each page's canonical link)")
	cmd.Flags().String("mode", "",
		"Persist this mode before filtering (hide, keep, gray)")
	cmd.Flags().StringArrayP("append", "a", nil,
		"HTML fragment file appended after the initial scan (repeatable)")
	cmd.Flags().StringP("output-dir", "O", "",
		"Write filtered pages to this directory instead of stdout")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of pages loaded or written concurrently")
	cmd.Flags().Int("max-rounds", config.DefaultMaxDrainRounds,
		"Mutation batches one page change may cause before the rest are dropped")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .nogrok in current or home directory)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("report", "r", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runFilterCmd executes the filter command.
func runFilterCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runFilter(ctx, cmd, cfg, logger)
}

// buildConfig creates a Config from cobra command flags and the config file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)
	cfg.DBDir = getDBDir(cmd)
	cfg.Targets = args

	var err error
	if cfg.PageURL, err = cmd.Flags().GetString("url"); err != nil {
		return nil, err
	}
	if cfg.Mode, err = cmd.Flags().GetString("mode"); err != nil {
		return nil, err
	}
	if cfg.AppendFiles, err = cmd.Flags().GetStringArray("append"); err != nil {
		return nil, err
	}
	if cfg.OutputDir, err = cmd.Flags().GetString("output-dir"); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = cmd.Flags().GetInt("batch"); err != nil {
		return nil, err
	}
	if cfg.MaxDrainRounds, err = cmd.Flags().GetInt("max-rounds"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("report"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = cmd.Flags().GetString("config"); err != nil {
		return nil, err
	}

	cfg.File, err = loadConfigFile(cfg.ConfigFilePath)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadConfigFile loads the config file.
// If the user explicitly specified a path, a missing file is an error.
// Otherwise an empty File is used when no file is found.
func loadConfigFile(explicitPath string) (*config.File, error) {
	configPath := config.FindConfigFile(explicitPath)
	if configPath == "" {
		if explicitPath != "" {
			return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, explicitPath)
		}
		return &config.File{}, nil
	}

	file, err := config.LoadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	return file, nil
}

// newEngine builds the engine from the config file.
func newEngine(cfg *config.Config, logger *slog.Logger) *engine.Engine {
	file := cfg.File
	if file == nil {
		file = &config.File{}
	}
	return engine.New(
		engine.WithRegistry(provider.NewRegistry(file.Strategies()...)),
		engine.WithTarget(file.Target),
		engine.WithRedirectParams(file.RedirectParams...),
		engine.WithPillLabel(file.PillLabel),
		engine.WithMaxDrainRounds(cfg.MaxDrainRounds),
		engine.WithLogger(logger),
	)
}

// readFragments reads the --append files in order.
func readFragments(paths []string) ([]string, error) {
	fragments := make([]string, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path) //nolint:gosec // User-provided fragment path is intentional
		if err != nil {
			return nil, fmt.Errorf("failed to read fragment: %w", err)
		}
		fragments = append(fragments, string(data))
	}
	return fragments, nil
}

// runFilter filters every page and writes the reports.
func runFilter(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	fragments, err := readFragments(cfg.AppendFiles)
	if err != nil {
		return err
	}

	st, db := openStore(cfg.DBDir, logger)
	defer st.Close()

	if cfg.Mode != "" {
		mode, err := model.ParseMode(cfg.Mode)
		if err != nil {
			return err
		}
		if err := st.Set(ctx, map[string]string{store.KeyMode: mode.String()}); err != nil {
			return fmt.Errorf("failed to set mode: %w", err)
		}
	}

	filterSteps := []pipeline.Step{
		pipeline.NewFilterStep(newEngine(cfg, logger), st, pipeline.WithFilterLogger(logger)),
	}
	if db != nil {
		filterSteps = append(filterSteps, pipeline.NewRecordStep(db, logger))
	}

	bp := pipeline.NewBatchProcessor(
		pipeline.New([]pipeline.Step{pipeline.NewLoadStep(cmd.InOrStdin())}, pipeline.WithLogger(logger)),
		pipeline.New(filterSteps, pipeline.WithLogger(logger)),
		pipeline.New([]pipeline.Step{pipeline.NewWriteStep(cfg.OutputDir, cmd.OutOrStdout())}, pipeline.WithLogger(logger)),
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	jobs := make([]*pipeline.Job, 0, len(cfg.Targets))
	for _, target := range cfg.Targets {
		jobs = append(jobs, pipeline.NewJob(target, cfg.PageURL, fragments...))
	}

	jobs, err = bp.ProcessBatch(ctx, jobs)
	if err != nil {
		return err
	}

	if err := outputReports(cmd, cfg, jobs); err != nil {
		return err
	}
	return summarizeFailures(cmd.ErrOrStderr(), jobs)
}

// outputReports writes one report per filtered page.
// Reports go to stdout when the pages went to --output-dir, and to stderr
// otherwise so they never mix with a page. With --report the chosen format
// goes to the file and a text summary still goes to the terminal.
func outputReports(cmd *cobra.Command, cfg *config.Config, jobs []*pipeline.Job) error {
	terminal := cmd.ErrOrStderr()
	if cfg.OutputDir != "" {
		terminal = cmd.OutOrStdout()
	}

	var writer report.Writer
	if cfg.ReportFile != "" {
		f, err := openReportFile(cfg.ReportFile)
		if err != nil {
			return err
		}
		defer f.Close()
		writer = report.NewMultiWriter(
			newReportWriter(f, cfg.JSONReport, cfg.MarkdownReport, cfg.Verbose),
			report.NewSimpleWriter(terminal, report.WithVerbose(cfg.Verbose)),
		)
	} else {
		writer = newReportWriter(terminal, cfg.JSONReport, cfg.MarkdownReport, cfg.Verbose)
	}

	for _, job := range jobs {
		if job.Report == nil {
			continue
		}
		if _, err := writer.Write(job.Report); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	return nil
}

// summarizeFailures prints failed pages. It returns an error only when no
// page could be filtered.
func summarizeFailures(w io.Writer, jobs []*pipeline.Job) error {
	var errs []error
	for _, job := range jobs {
		if job.Failed() {
			fmt.Fprintf(w, "Filter error for %s: %v\n", job.Source, job.Err)
			errs = append(errs, job.Err)
		}
	}
	if len(errs) > 0 && len(errs) == len(jobs) {
		return fmt.Errorf("no page could be filtered: %w", errors.Join(errs...))
	}
	return nil
}
