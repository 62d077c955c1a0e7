package model

import (
	"net/url"
	"time"
)

// Detection records one search result that was flagged during a session.
// Only the first detection of a container is recorded; re-scans of an
// already flagged container do not add entries.
type Detection struct {
	// Container is a short CSS-like description of the flagged element,
	// for example "div.MjjYud" or "li#result-3".
	Container string `json:"container"`

	// Anchor is the raw href attribute of the link that triggered the flag.
	Anchor string `json:"anchor,omitempty"`

	// Match is the candidate whose host contained the target domain.
	Match CandidateURL `json:"match"`

	// Incremental is true when the result appeared after the initial scan,
	// through a mutation batch.
	Incremental bool `json:"incremental"`
}

// FilterReport summarizes one filtering session over a page.
//
// Design decision: The report carries the persisted counters as they were
// at the end of the session rather than recomputing them. The total is
// shared across sessions and may have been advanced by earlier runs.
type FilterReport struct {
	// Page is the page location with query and fragment removed.
	// Search pages carry the user's query in the URL, so it is never stored.
	Page string `json:"page"`

	// Provider is the name of the selected container strategy.
	Provider string `json:"provider"`

	// Mode is the treatment active when the session ended.
	Mode Mode `json:"mode"`

	// Target is the host substring that was searched for.
	Target string `json:"target"`

	// Backend is the name of the persisted store backend ("sync" or "local").
	Backend string `json:"backend"`

	// DateFiltered is when the session started.
	DateFiltered time.Time `json:"date_filtered"`

	// Detections lists flagged results in detection order.
	Detections []Detection `json:"detections,omitempty"`

	// Current is the number of flagged results in the document.
	Current int `json:"current_count"`

	// Total is the cross-session cumulative count.
	Total int `json:"total_count"`

	// Batches is the number of mutation batches processed after the initial scan.
	Batches int `json:"batches"`
}

// NewFilterReport creates an empty report for the given page.
func NewFilterReport(page *url.URL, provider string, mode Mode) *FilterReport {
	return &FilterReport{
		Page:         PageLabel(page),
		Provider:     provider,
		Mode:         mode,
		DateFiltered: time.Now(),
		Detections:   make([]Detection, 0),
	}
}

// DirectCount returns the number of detections matched on an anchor attribute.
func (r *FilterReport) DirectCount() int {
	n := 0
	for _, d := range r.Detections {
		if !d.Match.Decoded() {
			n++
		}
	}
	return n
}

// DecodedCount returns the number of detections matched through a redirect parameter.
func (r *FilterReport) DecodedCount() int {
	return len(r.Detections) - r.DirectCount()
}

// HasDetections reports whether anything was flagged.
func (r *FilterReport) HasDetections() bool {
	return len(r.Detections) > 0
}

// PageLabel returns scheme, host and path of u. Query and fragment are
// dropped because they carry search terms.
func PageLabel(u *url.URL) string {
	if u == nil {
		return ""
	}
	clean := url.URL{
		Scheme: u.Scheme,
		Host:   u.Host,
		Path:   u.Path,
	}
	return clean.String()
}
