package pipeline

import (
	"context"
	"log/slog"
)

// Step is one stage of page processing.
//
// Design decision: Steps are values with a Name rather than bare functions
// so they can carry their dependencies (engine, store, output directory)
// and so logs and Job.Performed can say which stage ran.
type Step interface {
	// Do executes the step on job. A returned error stops the job unless
	// the pipeline continues on error; problems a step can live with are
	// logged and nil is returned.
	Do(ctx context.Context, job *Job) error

	// Name returns the step's name for logging.
	Name() string
}

// Pipeline runs steps over a job in order.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// continueOnError keeps executing steps after one fails.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to keep going after a step
// fails. The first error stays recorded in Job.Err.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a Pipeline with the given steps and options.
func New(steps []Step, opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: append(make([]Step, 0, len(steps)), steps...),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// Execute runs all steps over job. Cancellation is checked before each
// step; steps handle their own blocking.
//
// It returns the first step error when the pipeline stops on error, or nil.
// The error is also recorded in job.Err.
func (p *Pipeline) Execute(ctx context.Context, job *Job) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"source", job.Source,
				"reason", ctx.Err(),
			)
			if job.Err == nil {
				job.Err = ctx.Err()
			}
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"source", job.Source,
		)

		if err := step.Do(ctx, job); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"source", job.Source,
				"error", err,
			)
			if job.Err == nil {
				job.Err = err
			}
			if !p.continueOnError {
				return err
			}
		}

		job.Performed = append(job.Performed, step.Name())
	}
	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
