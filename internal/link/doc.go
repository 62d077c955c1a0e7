// Package link resolves where an anchor could lead and decides whether any
// of those destinations belongs to the target domain.
//
// # Resolution
//
// An anchor yields depth-0 candidates from, in order, the data-iwb-href and
// data-href override attributes, the raw href attribute, and the
// browser-resolved href. Every depth-0 URL is then inspected for redirect
// query parameters (q, url, u, target, ...). Each such value is resolved
// once as a URL and once through a base64 heuristic; those are the depth-1
// candidates. Depth-1 URLs are never inspected further.
//
// # Failure model
//
// Nothing in this package returns an error. A value that fails to parse or
// decode simply contributes no candidate. A missed detection is preferred
// over a visible failure.
package link
