// Package store defines the persisted key-value port used for the display
// mode and the result counters, together with an in-memory backend.
//
// A Store behaves like browser extension storage: values are strings,
// writes of several keys land together, and every write is announced to
// subscribers as one Change naming the backend it came from. Readers that
// hit a failure fall back to their defaults and writers never block the
// caller on errors.
package store
