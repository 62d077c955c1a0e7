package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of pages loaded or written at once.
const DefaultConcurrency = 10

// BatchProcessor runs many pages through the load, filter and finish
// pipelines.
//
// Design decision: We use a separate BatchProcessor rather than adding
// batch handling to Pipeline so that a Pipeline stays a plain sequence of
// steps over one job, and so that the concurrency policy of each stage is
// decided in one place.
type BatchProcessor struct {
	// load parses pages. Runs concurrently.
	load *Pipeline

	// filter runs sessions and records them. Runs one job at a time.
	filter *Pipeline

	// finish writes pages. Runs concurrently.
	finish *Pipeline

	// concurrency is the maximum number of concurrent load or finish jobs.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent jobs in the load
// and finish stages. Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor. Any stage may be nil.
func NewBatchProcessor(load, filter, finish *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		load:        load,
		filter:      filter,
		finish:      finish,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch runs every job through the three stages and returns the
// jobs in input order. A job that fails keeps its error in Job.Err and
// skips the later stages; the other jobs go on.
//
// The returned error is only set when ctx ends.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, jobs []*Job) ([]*Job, error) {
	bp.logger.Info("starting batch processing",
		"total_pages", len(jobs),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	if err := bp.concurrent(ctx, bp.load, jobs); err != nil {
		return jobs, err
	}
	if err := bp.sequential(ctx, bp.filter, jobs); err != nil {
		return jobs, err
	}
	if err := bp.concurrent(ctx, bp.finish, jobs); err != nil {
		return jobs, err
	}

	bp.logger.Info("batch processing complete",
		"total_pages", len(jobs),
		"failed", countFailed(jobs),
		"elapsed", time.Since(startTime),
	)
	return jobs, nil
}

// concurrent runs p over the jobs that have not failed, at most
// bp.concurrency at a time.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because errgroup already bounds the goroutines and propagates
// cancellation. Job failures are not returned to the group, so one broken
// page never cancels the others.
func (bp *BatchProcessor) concurrent(ctx context.Context, p *Pipeline, jobs []*Job) error {
	if p == nil {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for _, job := range jobs {
		if job.Failed() {
			continue
		}
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			if err := p.Execute(gctx, job); err != nil {
				bp.logger.Warn("page failed", "source", job.Source, "error", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// sequential runs p over the jobs that have not failed, in order.
func (bp *BatchProcessor) sequential(ctx context.Context, p *Pipeline, jobs []*Job) error {
	if p == nil {
		return nil
	}

	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if job.Failed() {
			continue
		}
		bp.logger.Info("filtering page",
			"source", job.Source,
			"index", i+1,
			"total", len(jobs),
		)
		if err := p.Execute(ctx, job); err != nil {
			bp.logger.Warn("page failed", "source", job.Source, "error", err)
		}
	}
	return nil
}

func countFailed(jobs []*Job) int {
	n := 0
	for _, job := range jobs {
		if job.Failed() {
			n++
		}
	}
	return n
}
