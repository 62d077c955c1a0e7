package model

import (
	"errors"
	"fmt"
	"strings"
)

// Mode is the visual treatment applied to a flagged search result.
// Exactly one mode is active per session. It is read from the persisted
// store at startup and changed only through a store change notification.
//
// Design decision: We use string constants rather than iota values because
// the mode is persisted as text and shared with other consumers of the
// store. The string form is the wire format.
type Mode string

const (
	// ModeHide removes the result from the layout (display: none).
	ModeHide Mode = "hide"

	// ModeKeep leaves the result untouched, restoring any earlier treatment.
	ModeKeep Mode = "keep"

	// ModeGray dims the result, desaturates it, and adds a visible label.
	ModeGray Mode = "gray"
)

// DefaultMode is the mode used when nothing valid is persisted.
const DefaultMode = ModeHide

// ErrInvalidMode is returned by ParseMode for values outside {hide, keep, gray}.
var ErrInvalidMode = errors.New("invalid mode: must be one of hide, keep, gray")

// Modes returns all valid modes in display order.
func Modes() []Mode {
	return []Mode{ModeHide, ModeKeep, ModeGray}
}

// ParseMode converts a persisted or user-supplied value into a Mode.
// Surrounding whitespace and letter case are ignored.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeHide, ModeKeep, ModeGray:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// String returns the persisted representation of the mode.
func (m Mode) String() string {
	return string(m)
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	_, err := ParseMode(string(m))
	return err == nil
}
