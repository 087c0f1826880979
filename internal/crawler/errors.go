package crawler

import "errors"

var (
	// ErrIO is returned when a snapshot file or directory cannot be written.
	ErrIO = errors.New("i/o error")

	// ErrURL is returned when a link or asset reference cannot be parsed or
	// resolved to an absolute URL.
	ErrURL = errors.New("url error")
)
