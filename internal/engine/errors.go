package engine

import "errors"

var (
	// ErrSessionStarted is returned by Start on a session that already started.
	ErrSessionStarted = errors.New("session already started")

	// ErrNotSettled is returned by Drain when mutation records keep arriving
	// after the configured number of rounds.
	ErrNotSettled = errors.New("mutation records did not settle")
)
