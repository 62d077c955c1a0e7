// Package provider maps search providers to the element that wraps one
// search result.
//
// A Strategy knows how a provider lays out its result list: which host it
// serves and which ancestors of a result link form the result "card". The
// Registry picks the strategy for a page host, and the Locator walks from a
// link to its container, with a generic fallback for unknown hosts.
package provider
