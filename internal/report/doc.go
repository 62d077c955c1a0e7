// Package report provides report generation and output functionality.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - MarkdownWriter: Markdown output with a mermaid chart for sharing
//   - JSONWriter: Structured JSON output for tool integration
//
// Every writer renders two documents: the FilterReport of one page and the
// Stats of the persisted store.
//
// Design decision: We separate report writing from report data structures
// (which are in the model package) to follow the single responsibility
// principle. This allows adding new output formats without modifying
// the core data structures.
package report
