package model

import "net/url"

// Decoding depths of a CandidateURL.
const (
	// DepthDirect marks a URL read straight from an anchor attribute.
	DepthDirect = 0

	// DepthDecoded marks a URL recovered from a redirect query parameter,
	// either as-is or after base64 decoding. Decoding never goes deeper.
	DepthDecoded = 1
)

// CandidateURL is an absolute URL an anchor could lead to.
type CandidateURL struct {
	// URL is the parsed absolute URL.
	URL *url.URL `json:"-"`

	// Raw is the absolute URL string. Candidate sets are de-duplicated on it.
	Raw string `json:"url"`

	// Host is the hostname without port, as parsed.
	Host string `json:"host"`

	// Depth is DepthDirect or DepthDecoded.
	Depth int `json:"depth"`
}

// NewCandidateURL builds a CandidateURL from a parsed absolute URL.
func NewCandidateURL(u *url.URL, depth int) CandidateURL {
	return CandidateURL{
		URL:   u,
		Raw:   u.String(),
		Host:  u.Hostname(),
		Depth: depth,
	}
}

// Decoded reports whether the candidate came from a redirect parameter.
func (c CandidateURL) Decoded() bool {
	return c.Depth >= DepthDecoded
}
