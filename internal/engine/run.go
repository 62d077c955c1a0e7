package engine

import (
	"context"
	"errors"

	"github.com/nao1215/nogrok/internal/store"
)

// Run starts the session if needed and then serves it until the document
// is closed or ctx ends. It is the single execution context of the page:
// page tasks, store changes and the scans they cause all run here, one at
// a time. Run returns nil when the document's task stream is closed and
// ctx.Err() when ctx ends first.
//
// Design decision: Run subscribes to the store before Start, so a mode
// change made while the initial scan runs is not lost. It watches only the
// mode key; the session's own counter writes would otherwise fill the
// subscription while nothing reads it.
func (s *Session) Run(ctx context.Context) error {
	changes, cancel := s.store.Subscribe(store.KeyMode)
	defer cancel()

	if !s.started {
		if err := s.Start(ctx); err != nil {
			return err
		}
	}
	s.settle(ctx)

	tasks := s.doc.Tasks()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case task, ok := <-tasks:
			if !ok {
				return nil
			}
			task(s.doc)
			s.settle(ctx)
		case change, ok := <-changes:
			if !ok {
				// The store is closed; keep serving the page.
				changes = nil
				continue
			}
			s.HandleChange(change)
			s.settle(ctx)
		}
	}
}

// settle drains mutation records and logs a livelock instead of failing.
func (s *Session) settle(ctx context.Context) {
	rounds, err := s.Drain(ctx)
	if errors.Is(err, ErrNotSettled) {
		s.logger.Warn("dropping mutation records", "rounds", rounds, "error", err)
		s.doc.TakeRecords()
	}
}
