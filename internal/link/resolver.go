package link

import (
	"net/url"
	"strings"

	"github.com/nao1215/nogrok/internal/dom"
	"github.com/nao1215/nogrok/internal/model"
	"golang.org/x/net/html"
)

// Anchor attributes read for depth-0 candidates, in resolution order.
const (
	// AttrProviderHref is set by some providers (Qwant) to the real destination.
	AttrProviderHref = "data-iwb-href"

	// AttrDataHref is a secondary override used by several result layouts.
	AttrDataHref = "data-href"

	// AttrHref is the plain link target.
	AttrHref = "href"
)

// DefaultRedirectParams are the query keys that conventionally carry an
// embedded destination on search and redirect services. Matching is
// case-insensitive.
var DefaultRedirectParams = []string{
	"q", "url", "u", "target", "dest", "redirect", "rurl", "l", "lurl", "href", "to",
}

// Resolver produces the candidate URLs of an anchor.
//
// Design decision: The resolver holds two URLs because a browser resolves
// them differently. Attribute values are parsed against the page location,
// while the anchor's href property is resolved against the document base
// URL, which a <base> element can change.
type Resolver struct {
	// location is the page URL.
	location *url.URL

	// base is the document base URL.
	base *url.URL

	// params is the lower-cased set of redirect keys.
	params map[string]bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRedirectParams adds redirect keys on top of DefaultRedirectParams.
func WithRedirectParams(keys ...string) Option {
	return func(r *Resolver) {
		for _, k := range keys {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				r.params[k] = true
			}
		}
	}
}

// NewResolver creates a Resolver for a page. If base is nil the location
// is used as base.
func NewResolver(location, base *url.URL, opts ...Option) *Resolver {
	if base == nil {
		base = location
	}
	r := &Resolver{
		location: location,
		base:     base,
		params:   make(map[string]bool, len(DefaultRedirectParams)),
	}
	for _, k := range DefaultRedirectParams {
		r.params[k] = true
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewDocumentResolver creates a Resolver bound to a parsed document.
func NewDocumentResolver(doc *dom.Document, opts ...Option) *Resolver {
	return NewResolver(doc.Location(), doc.BaseURL(), opts...)
}

// Resolve returns every distinct absolute URL the anchor could lead to.
// Depth-0 candidates come first in attribute order, followed by the
// depth-1 candidates decoded from their redirect parameters.
func (r *Resolver) Resolve(anchor *html.Node) []model.CandidateURL {
	if !dom.IsElement(anchor) {
		return nil
	}

	set := newCandidateSet()
	for _, key := range []string{AttrProviderHref, AttrDataHref, AttrHref} {
		if v, ok := dom.Attr(anchor, key); ok {
			set.add(parseAgainst(r.location, v), model.DepthDirect)
		}
	}
	// The browser-resolved href property.
	if v, ok := dom.Attr(anchor, AttrHref); ok {
		set.add(parseAgainst(r.base, v), model.DepthDirect)
	}

	r.expand(set)
	return set.list()
}

// ResolveHref resolves a single href value as if it were the only
// attribute of an anchor on the page.
func (r *Resolver) ResolveHref(href string) []model.CandidateURL {
	set := newCandidateSet()
	set.add(parseAgainst(r.location, href), model.DepthDirect)
	set.add(parseAgainst(r.base, href), model.DepthDirect)
	r.expand(set)
	return set.list()
}

// expand adds the depth-1 candidates of every depth-0 candidate in set.
// Only the depth-0 snapshot is walked, so decoding stops at one level.
func (r *Resolver) expand(set *candidateSet) {
	direct := set.list()
	for _, c := range direct {
		for _, v := range r.redirectValues(c.URL) {
			set.add(parseAgainst(r.location, v), model.DepthDecoded)
			if decoded, ok := decodeBase64(v); ok {
				set.add(parseAgainst(r.location, decoded), model.DepthDecoded)
			}
		}
	}
}

// redirectValues returns the values of redirect keys in u's query string,
// in query order. Pairs that fail to unescape are skipped.
//
// Design decision: We walk RawQuery by hand instead of using url.Query()
// because the map loses parameter order, and candidate order should be
// stable for reports.
func (r *Resolver) redirectValues(u *url.URL) []string {
	if u == nil || u.RawQuery == "" {
		return nil
	}

	values := make([]string, 0)
	for _, pair := range strings.Split(u.RawQuery, "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil || !r.params[strings.ToLower(key)] {
			continue
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil || value == "" {
			continue
		}
		values = append(values, value)
	}
	return values
}

// parseAgainst parses value relative to base. It returns nil for empty or
// unparsable values.
func parseAgainst(base *url.URL, value string) *url.URL {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	ref, err := url.Parse(value)
	if err != nil {
		return nil
	}
	if base == nil {
		if !ref.IsAbs() {
			return nil
		}
		return ref
	}
	return base.ResolveReference(ref)
}

// candidateSet keeps candidates in insertion order, unique by raw value.
type candidateSet struct {
	seen  map[string]bool
	items []model.CandidateURL
}

func newCandidateSet() *candidateSet {
	return &candidateSet{
		seen:  make(map[string]bool),
		items: make([]model.CandidateURL, 0),
	}
}

// add inserts u unless it is nil or its raw value is already present.
func (s *candidateSet) add(u *url.URL, depth int) {
	if u == nil {
		return
	}
	c := model.NewCandidateURL(u, depth)
	if s.seen[c.Raw] {
		return
	}
	s.seen[c.Raw] = true
	s.items = append(s.items, c)
}

// list returns a copy of the candidates.
func (s *candidateSet) list() []model.CandidateURL {
	out := make([]model.CandidateURL, len(s.items))
	copy(out, s.items)
	return out
}
