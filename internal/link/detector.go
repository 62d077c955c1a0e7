package link

import (
	"strings"

	"github.com/nao1215/nogrok/internal/model"
)

// DefaultTarget is the host substring searched for in link destinations.
const DefaultTarget = "grokipedia"

// Detector decides whether a candidate set reaches the target domain.
// It is pure and safe for concurrent use.
type Detector struct {
	target string
}

// NewDetector creates a Detector for the given host substring.
// An empty target selects DefaultTarget.
func NewDetector(target string) *Detector {
	target = strings.ToLower(strings.TrimSpace(target))
	if target == "" {
		target = DefaultTarget
	}
	return &Detector{target: target}
}

// Target returns the lower-cased host substring.
func (d *Detector) Target() string {
	return d.target
}

// Match returns the first candidate whose lower-cased host contains the
// target substring.
func (d *Detector) Match(cands []model.CandidateURL) (model.CandidateURL, bool) {
	for _, c := range cands {
		if c.Host != "" && strings.Contains(strings.ToLower(c.Host), d.target) {
			return c, true
		}
	}
	return model.CandidateURL{}, false
}

// IsTarget reports whether any candidate reaches the target domain.
// An empty candidate set yields false.
func (d *Detector) IsTarget(cands []model.CandidateURL) bool {
	_, ok := d.Match(cands)
	return ok
}
