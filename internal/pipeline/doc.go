// Package pipeline runs saved search pages through the filtering engine.
//
// A page is described by a Job. Three pipelines of steps process it:
// loading parses the page, filtering runs an engine session over it and
// records the run, and finishing writes the filtered HTML. Each step
// receives the Job and fills in what later steps need.
//
// Design decision: Loading and writing touch only their own Job, so the
// BatchProcessor runs them concurrently with errgroup. Filtering shares
// the persisted counters across pages and therefore runs one page at a
// time, in input order, so the cumulative total grows exactly as it would
// if the pages had been visited one after another.
package pipeline
