package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/nogrok/internal/counter"
	"github.com/nao1215/nogrok/internal/dom"
	"github.com/nao1215/nogrok/internal/link"
	"github.com/nao1215/nogrok/internal/model"
	"github.com/nao1215/nogrok/internal/provider"
	"github.com/nao1215/nogrok/internal/store"
	"github.com/nao1215/nogrok/internal/treatment"
	"golang.org/x/net/html"
)

// anchorSelector matches every element that can carry a link target.
const anchorSelector = "a[data-iwb-href], a[data-href], a[href]"

// Session is the filtering context of one page.
//
// A Session is not safe for concurrent use. All of its methods run on the
// goroutine that owns the document, normally inside Run. Other goroutines
// change the page through dom.Document.Post and the mode through the store.
type Session struct {
	doc       *dom.Document
	store     store.Store
	strategy  provider.Strategy
	locator   *provider.Locator
	resolver  *link.Resolver
	detector  *link.Detector
	applier   *treatment.Applier
	counter   *counter.Counter
	mode      model.Mode
	maxRounds int
	logger    *slog.Logger

	started bool
	report  *model.FilterReport
}

// Start loads persisted state, treats the initial page and persists the
// counts. Mutation records produced before Start returns are discarded,
// because the full scan already covered them.
func (s *Session) Start(ctx context.Context) error {
	if s.started {
		return ErrSessionStarted
	}

	s.mode = s.loadMode(ctx)
	s.counter.Load(ctx)
	s.counter.Reset(ctx)
	s.report = model.NewFilterReport(s.doc.Location(), s.strategy.Name, s.mode)
	s.report.Target = s.detector.Target()
	s.report.Backend = s.store.Name()

	s.applier.InjectStyles()
	s.Scan(ctx, s.doc.Body())
	s.counter.Update(ctx, s.applier.FlaggedCount())
	s.doc.TakeRecords()
	s.started = true

	s.logger.Debug("session started",
		"page", s.doc.Location().String(),
		"mode", s.mode,
		"flagged", s.counter.Current(),
		"total", s.counter.Total(),
	)
	return nil
}

// loadMode reads the persisted mode. Missing, unreadable or unknown values
// give the default mode.
func (s *Session) loadMode(ctx context.Context) model.Mode {
	raw := store.GetString(ctx, s.store, store.KeyMode, string(model.DefaultMode))
	mode, err := model.ParseMode(raw)
	if err != nil {
		s.logger.Warn("ignoring persisted mode", "value", raw, "error", err)
		return model.DefaultMode
	}
	return mode
}

// Scan looks for target links in root and below, and marks the container
// of every one it finds. It returns the number of newly flagged containers.
// Text and comment nodes are ignored.
func (s *Session) Scan(ctx context.Context, root *html.Node) int {
	if root == nil || (root.Type != html.ElementNode && root.Type != html.DocumentNode) {
		return 0
	}

	anchors := make([]*html.Node, 0)
	if dom.IsAnchor(root) {
		anchors = append(anchors, root)
	}
	anchors = append(anchors, dom.Select(root).Find(anchorSelector).Nodes...)

	flagged := 0
	for _, anchor := range anchors {
		match, ok := s.detector.Match(s.resolver.Resolve(anchor))
		if !ok {
			continue
		}
		container := s.locator.Locate(anchor)
		if container == nil {
			s.logger.Debug("no container for target link", "depth", match.Depth)
			continue
		}
		if s.mark(ctx, container) {
			flagged++
			s.record(container, anchor, match)
		}
	}
	return flagged
}

// mark flags container, applies the current mode and recomputes counts.
// It returns true when the container was not flagged before.
func (s *Session) mark(ctx context.Context, container *html.Node) bool {
	added := s.applier.Flag(container)
	s.applier.ApplyTo(container, s.mode)
	s.counter.Update(ctx, s.applier.FlaggedCount())
	return added
}

// record appends a detection to the report.
func (s *Session) record(container, anchor *html.Node, match model.CandidateURL) {
	if s.report == nil {
		return
	}
	href, _ := dom.Attr(anchor, link.AttrHref)
	s.report.Detections = append(s.report.Detections, model.Detection{
		Container:   dom.Describe(container),
		Anchor:      href,
		Match:       match,
		Incremental: s.started,
	})
}

// HandleBatch scans the nodes added in batch and recomputes counts once.
// Records outside the body, records inside a pill, and added nodes that
// are or sit inside a pill are skipped.
func (s *Session) HandleBatch(ctx context.Context, batch dom.Batch) {
	body := s.doc.Body()
	for _, rec := range batch.Records {
		if !dom.Contains(body, rec.Target) || treatment.IsPill(rec.Target) {
			continue
		}
		for _, n := range rec.Added {
			if treatment.IsPill(n) {
				continue
			}
			s.Scan(ctx, n)
		}
	}
	s.counter.Update(ctx, s.applier.FlaggedCount())
	if s.report != nil {
		s.report.Batches++
	}
}

// Drain handles pending mutation records batch by batch until none are
// left. It stops with ErrNotSettled after the configured number of rounds
// and drops the records still pending.
func (s *Session) Drain(ctx context.Context) (int, error) {
	rounds := 0
	for {
		batch := s.doc.TakeRecords()
		if batch.Empty() {
			return rounds, nil
		}
		if rounds >= s.maxRounds {
			return rounds, fmt.Errorf("%w after %d rounds", ErrNotSettled, rounds)
		}
		s.HandleBatch(ctx, batch)
		rounds++
	}
}

// HandleChange reacts to a store change. Only a mode change from the
// session's own backend is applied; it returns whether the mode was set.
func (s *Session) HandleChange(change store.Change) bool {
	if change.Backend != s.store.Name() {
		return false
	}
	raw, ok := change.Value(store.KeyMode)
	if !ok || raw == "" {
		return false
	}
	mode, err := model.ParseMode(raw)
	if err != nil {
		s.logger.Warn("ignoring mode change", "value", raw, "error", err)
		return false
	}
	s.SetMode(mode)
	return true
}

// SetMode switches the session mode and re-applies it to every flagged
// container.
func (s *Session) SetMode(mode model.Mode) {
	s.mode = mode
	n := s.applier.ApplyToAllFlagged(mode)
	if s.report != nil {
		s.report.Mode = mode
	}
	s.logger.Debug("mode applied", "mode", mode, "containers", n)
}

// Mode returns the active mode.
func (s *Session) Mode() model.Mode {
	return s.mode
}

// Strategy returns the container strategy of the page.
func (s *Session) Strategy() provider.Strategy {
	return s.strategy
}

// Document returns the page.
func (s *Session) Document() *dom.Document {
	return s.doc
}

// Current returns the number of flagged containers at the last recount.
func (s *Session) Current() int {
	return s.counter.Current()
}

// Total returns the cumulative count.
func (s *Session) Total() int {
	return s.counter.Total()
}

// Report returns a snapshot of the session report. Before Start it
// returns an empty report for the page.
func (s *Session) Report() *model.FilterReport {
	if s.report == nil {
		r := model.NewFilterReport(s.doc.Location(), s.strategy.Name, s.mode)
		r.Target = s.detector.Target()
		r.Backend = s.store.Name()
		return r
	}
	r := *s.report
	r.Detections = append([]model.Detection(nil), s.report.Detections...)
	r.Mode = s.mode
	r.Current = s.counter.Current()
	r.Total = s.counter.Total()
	return &r
}
