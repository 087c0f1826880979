package report

import "errors"

var (
	// ErrCSV is returned when a row cannot be written as CSV.
	ErrCSV = errors.New("csv error")

	// ErrJSON is returned when a row cannot be written as JSON.
	ErrJSON = errors.New("json error")
)
