package model

import "time"

// RunRecord is one filter run kept in the history.
//
// Design decision: Runs carry the page host and a fingerprint of the page
// label instead of the page itself, so the history can group repeat visits
// without keeping anything that resembles a search query.
type RunRecord struct {
	// ID is the unique identifier of the run in the history.
	ID int64 `json:"id"`

	// Host is the host of the filtered page.
	Host string `json:"host"`

	// PageHash is the SHA3-256 fingerprint of the page label.
	PageHash string `json:"page_hash"`

	// Provider is the strategy that located the containers.
	Provider string `json:"provider"`

	// Mode is the display mode at the end of the run.
	Mode Mode `json:"mode"`

	// Flagged is the number of flagged results on the page.
	Flagged int `json:"flagged"`

	// Direct and Decoded split the detections by match depth.
	Direct  int `json:"direct"`
	Decoded int `json:"decoded"`

	// Total is the cumulative count after the run.
	Total int `json:"total"`

	// Timestamp is when the run was recorded.
	Timestamp time.Time `json:"timestamp"`
}

// RunSummary aggregates the whole history.
type RunSummary struct {
	// Runs is the number of recorded runs.
	Runs int `json:"runs"`

	// Flagged is the sum of flagged results over all runs.
	Flagged int `json:"flagged"`

	// Hosts is the number of distinct hosts.
	Hosts int `json:"hosts"`
}

// Stats is the persisted state shown by the stats command.
type Stats struct {
	// Backend is the store the values were read from.
	Backend string `json:"backend"`

	// Mode is the persisted display mode.
	Mode Mode `json:"mode"`

	// Current is the flagged count of the last filtered page.
	Current int `json:"current_count"`

	// Total is the cumulative count.
	Total int `json:"total_count"`

	// Summary aggregates the history. It is empty without a history backend.
	Summary RunSummary `json:"summary"`

	// Recent lists the newest runs first.
	Recent []RunRecord `json:"recent,omitempty"`
}
