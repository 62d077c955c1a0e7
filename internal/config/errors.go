package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and File.Validate().
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling. Validation of the config
// file wraps them with the offending provider or selector.
var (
	// ErrNoTarget is returned when no page is given to filter.
	ErrNoTarget = errors.New("no page specified: provide at least one HTML file or - for stdin")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidDrainRounds is returned when the drain round limit is not positive.
	ErrInvalidDrainRounds = errors.New("invalid drain rounds: must be positive")

	// ErrInvalidProvider is returned when a provider in the config file
	// lacks a name, a host or selectors.
	ErrInvalidProvider = errors.New("invalid provider: name, host and at least one selector are required")

	// ErrInvalidSelector is returned when a provider selector is not valid CSS.
	ErrInvalidSelector = errors.New("invalid selector")
)
