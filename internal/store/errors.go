package store

import "errors"

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store is closed")
