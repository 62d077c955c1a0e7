// Package database provides SQLite-based storage for nogrok.
//
// This package implements the StateDB, which stores:
//   - The persisted settings and counters (mode, current and total counts)
//   - A history of filter runs for the stats command
//
// StateDB satisfies store.Store under the backend name "sync", the durable
// backend shared by every run on the machine.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of a flat
// settings file because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Writes of several keys are atomic inside one transaction
// 4. WAL mode lets a stats reader run next to a filter run
//
// Run history never stores a search page URL. Search URLs carry the user's
// query, so only the host and a SHA3 fingerprint of the page path are kept.
package database
