// Package model defines the core data structures shared across nogrok.
//
// This package contains the following main types:
//   - Mode: The visual treatment applied to flagged result containers
//   - CandidateURL: A destination a link could lead to, with its decoding depth
//   - Detection: One flagged search result and the link that triggered it
//   - FilterReport: The summary of one filtering session over a page
//
// Design decision: We keep these types in their own package so the link,
// provider, engine, database, and report packages can share them without
// import cycles.
//
// The report types are serializable to JSON for report output and history
// storage.
package model
