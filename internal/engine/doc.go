// Package engine runs filtering sessions over search result pages.
//
// An Engine holds the configuration shared by every page: the provider
// registry, the detector, redirect keys and the pill label. For each page it
// creates a Session, the explicit context that owns that page's mode,
// counters and stylesheet state.
//
// # Session lifecycle
//
//  1. Start loads the persisted mode and total, resets the current count,
//     injects the stylesheet, scans the whole body and persists counts.
//  2. Run consumes page-side tasks and store changes on one goroutine.
//     After each task or change the mutation records are drained and
//     scanned batch by batch until the page is quiet.
//  3. Report summarizes what was flagged.
//
// The engine's own pill insertions also produce mutation records. Those are
// filtered before scanning, so treating a result never re-triggers a scan of
// it.
package engine
