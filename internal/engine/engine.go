package engine

import (
	"log/slog"

	"github.com/nao1215/nogrok/internal/counter"
	"github.com/nao1215/nogrok/internal/dom"
	"github.com/nao1215/nogrok/internal/link"
	"github.com/nao1215/nogrok/internal/model"
	"github.com/nao1215/nogrok/internal/provider"
	"github.com/nao1215/nogrok/internal/store"
	"github.com/nao1215/nogrok/internal/treatment"
)

// DefaultMaxDrainRounds bounds the batches handled per drain.
const DefaultMaxDrainRounds = 32

// Engine creates sessions that share one configuration.
// It is read-only after New and safe for concurrent use.
//
// Design decision: The engine itself holds no page state. Everything that
// changes while a page is filtered lives in a Session, so one Engine can
// serve many pages and a fresh page always starts from a clean context.
type Engine struct {
	// registry selects the container strategy per page host.
	registry *provider.Registry

	// detector decides whether a link reaches the target domain.
	detector *link.Detector

	// redirectParams are extra redirect query keys.
	redirectParams []string

	// pillLabel is the gray-mode label text.
	pillLabel string

	// maxDrainRounds is the livelock guard for Drain.
	maxDrainRounds int

	// logger receives session diagnostics.
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRegistry sets the provider registry.
func WithRegistry(r *provider.Registry) Option {
	return func(e *Engine) {
		e.registry = r
	}
}

// WithTarget sets the host substring to detect.
func WithTarget(target string) Option {
	return func(e *Engine) {
		e.detector = link.NewDetector(target)
	}
}

// WithRedirectParams adds redirect query keys on top of the defaults.
func WithRedirectParams(keys ...string) Option {
	return func(e *Engine) {
		e.redirectParams = append(e.redirectParams, keys...)
	}
}

// WithPillLabel sets the gray-mode label text.
func WithPillLabel(label string) Option {
	return func(e *Engine) {
		e.pillLabel = label
	}
}

// WithMaxDrainRounds sets how many batches one drain may handle.
// Non-positive values keep the default.
func WithMaxDrainRounds(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxDrainRounds = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an Engine with the built-in providers and the default target.
func New(opts ...Option) *Engine {
	e := &Engine{
		maxDrainRounds: DefaultMaxDrainRounds,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = provider.NewRegistry()
	}
	if e.detector == nil {
		e.detector = link.NewDetector(link.DefaultTarget)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Detector returns the engine's detector.
func (e *Engine) Detector() *link.Detector {
	return e.detector
}

// Registry returns the engine's provider registry.
func (e *Engine) Registry() *provider.Registry {
	return e.registry
}

// NewSession creates a session for doc that persists to s.
// The strategy is chosen from the page host.
func (e *Engine) NewSession(doc *dom.Document, s store.Store) *Session {
	strategy := e.registry.Select(doc.Hostname())
	logger := e.logger.With("provider", strategy.Name)

	return &Session{
		doc:       doc,
		strategy:  strategy,
		store:     s,
		locator:   provider.NewLocator(strategy),
		resolver:  link.NewDocumentResolver(doc, link.WithRedirectParams(e.redirectParams...)),
		detector:  e.detector,
		applier:   treatment.NewApplier(doc, treatment.WithPillLabel(e.pillLabel)),
		counter:   counter.New(s, logger),
		mode:      model.DefaultMode,
		maxRounds: e.maxDrainRounds,
		logger:    logger,
	}
}
