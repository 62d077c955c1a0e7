package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/nogrok/internal/dom"
	"github.com/nao1215/nogrok/internal/engine"
	"github.com/nao1215/nogrok/internal/model"
	"github.com/nao1215/nogrok/internal/store"
)

// LoadStep reads and parses the page of a job.
type LoadStep struct {
	// stdin is read for jobs whose Source is StdinName.
	stdin io.Reader
}

// NewLoadStep creates a load step. stdin serves pages named StdinName.
func NewLoadStep(stdin io.Reader) *LoadStep {
	return &LoadStep{stdin: stdin}
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return "load"
}

// Do parses the page into job.Doc.
func (s *LoadStep) Do(_ context.Context, job *Job) error {
	data, err := s.read(job)
	if err != nil {
		return err
	}

	pageURL := job.PageURL
	if pageURL == "" {
		pageURL, err = canonicalURL(data)
		if err != nil {
			return err
		}
	}

	doc, err := dom.Parse(bytes.NewReader(data), pageURL)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", job.Source, err)
	}
	job.Doc = doc
	return nil
}

func (s *LoadStep) read(job *Job) ([]byte, error) {
	switch {
	case job.Input != nil:
		return io.ReadAll(job.Input)
	case job.Source == StdinName && s.stdin != nil:
		return io.ReadAll(s.stdin)
	default:
		data, err := os.ReadFile(job.Source) //nolint:gosec // User-provided page path is intentional
		if err != nil {
			return nil, fmt.Errorf("failed to read page: %w", err)
		}
		return data, nil
	}
}

// canonicalURL takes the page location from a saved page's
// <link rel="canonical"> or og:url meta tag.
func canonicalURL(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to parse page: %w", err)
	}
	if href, ok := doc.Find(`link[rel="canonical"][href]`).First().Attr("href"); ok && strings.TrimSpace(href) != "" {
		return strings.TrimSpace(href), nil
	}
	if content, ok := doc.Find(`meta[property="og:url"][content]`).First().Attr("content"); ok && strings.TrimSpace(content) != "" {
		return strings.TrimSpace(content), nil
	}
	return "", ErrNoPageURL
}

// FilterStep runs one engine session over the page of a job.
//
// The session is served by Session.Run on its own goroutine, which is the
// only goroutine touching the document. This step plays the page: each
// fragment is posted as a task that appends it to the body, then the task
// stream is closed and the step waits for Run to finish the queue.
type FilterStep struct {
	engine *engine.Engine
	store  store.Store
	logger *slog.Logger
}

// FilterStepOption configures a FilterStep.
type FilterStepOption func(*FilterStep)

// WithFilterLogger sets a custom logger for the filter step.
func WithFilterLogger(logger *slog.Logger) FilterStepOption {
	return func(s *FilterStep) {
		s.logger = logger
	}
}

// NewFilterStep creates a filter step that persists to st.
func NewFilterStep(e *engine.Engine, st store.Store, opts ...FilterStepOption) *FilterStep {
	s := &FilterStep{
		engine: e,
		store:  st,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *FilterStep) Name() string {
	return "filter"
}

// Do filters job.Doc and stores the session report in job.Report.
func (s *FilterStep) Do(ctx context.Context, job *Job) error {
	if job.Doc == nil {
		return ErrNotLoaded
	}

	session := s.engine.NewSession(job.Doc, s.store)
	done := make(chan error, 1)
	go func() {
		done <- session.Run(ctx)
	}()

	for i, fragment := range job.Fragments {
		err := job.Doc.Post(ctx, func(d *dom.Document) {
			if _, err := d.AppendHTML(d.Body(), fragment); err != nil {
				s.logger.Warn("skipping fragment", "index", i, "error", err)
			}
		})
		if err != nil {
			job.Doc.Close()
			<-done
			return fmt.Errorf("failed to post fragment %d: %w", i, err)
		}
	}
	job.Doc.Close()

	if err := <-done; err != nil {
		return fmt.Errorf("session ended early: %w", err)
	}

	job.Report = session.Report()
	s.logger.Debug("page filtered",
		"source", job.Source,
		"flagged", job.Report.Current,
		"total", job.Report.Total,
	)
	return nil
}

// RunRecorder stores finished filter reports.
type RunRecorder interface {
	RecordRun(ctx context.Context, report *model.FilterReport) error
}

// RecordStep adds the job's report to the run history.
type RecordStep struct {
	recorder RunRecorder
	logger   *slog.Logger
}

// NewRecordStep creates a record step. A nil logger uses slog.Default.
func NewRecordStep(recorder RunRecorder, logger *slog.Logger) *RecordStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordStep{recorder: recorder, logger: logger}
}

// Name returns the step name.
func (s *RecordStep) Name() string {
	return "record"
}

// Do records job.Report. History is bookkeeping, so a failed write is
// logged and the job goes on.
func (s *RecordStep) Do(ctx context.Context, job *Job) error {
	if job.Report == nil {
		return ErrNoReport
	}
	if err := s.recorder.RecordRun(ctx, job.Report); err != nil {
		s.logger.Warn("failed to record run", "source", job.Source, "error", err)
	}
	return nil
}

// WriteStep renders the filtered page.
type WriteStep struct {
	// outputDir receives one file per page. When empty, pages go to w.
	outputDir string

	// w receives pages when outputDir is empty.
	w io.Writer

	// mu serialises writes to w.
	mu sync.Mutex
}

// NewWriteStep creates a write step. Pages are written to outputDir when
// it is set and to w otherwise.
func NewWriteStep(outputDir string, w io.Writer) *WriteStep {
	return &WriteStep{outputDir: outputDir, w: w}
}

// Name returns the step name.
func (s *WriteStep) Name() string {
	return "write"
}

// Do writes job.Doc.
func (s *WriteStep) Do(_ context.Context, job *Job) error {
	if job.Doc == nil {
		return ErrNotLoaded
	}

	if s.outputDir == "" {
		s.mu.Lock()
		defer s.mu.Unlock()
		if err := job.Doc.Render(s.w); err != nil {
			return fmt.Errorf("failed to write page: %w", err)
		}
		return nil
	}

	if err := os.MkdirAll(s.outputDir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(s.outputDir, job.Name())
	f, err := os.Create(path) //nolint:gosec // Output path is built from the user's output directory
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := job.Doc.Render(f); err != nil {
		_ = f.Close() //nolint:errcheck // Render error takes precedence
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	job.Output = path
	return nil
}
