package fetch

import "errors"

// ErrHTTPClient is returned when a request cannot be completed or the
// server answers with a non-success status. The underlying transport error
// or the status line is wrapped alongside it.
var ErrHTTPClient = errors.New("HTTP client error")
