package pipeline

import "errors"

var (
	// ErrNoPageURL is returned when a page has no --url and carries no
	// canonical link to take its location from.
	ErrNoPageURL = errors.New("page URL unknown: pass --url or save the page with a canonical link")

	// ErrNotLoaded is returned by steps that need a parsed document when
	// the load step did not run or failed.
	ErrNotLoaded = errors.New("page not loaded")

	// ErrNoReport is returned by steps that need a session report when the
	// filter step did not run or failed.
	ErrNoReport = errors.New("page not filtered")
)
