package dom

import "errors"

var (
	// ErrInvalidPageURL is returned when the page location is not an absolute URL.
	ErrInvalidPageURL = errors.New("invalid page URL: must be absolute (e.g. https://www.google.com/search)")

	// ErrDocumentClosed is returned by Post after Close.
	ErrDocumentClosed = errors.New("document is closed")

	// ErrQueueFull is returned by TryPost when the task queue has no room.
	ErrQueueFull = errors.New("document task queue is full")
)
