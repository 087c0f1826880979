package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/nao1215/frenscrape/internal/model"
)

// CSVWriter writes rows as headerless CSV records of
// screen name, display name, title and URL.
type CSVWriter struct {
	w *csv.Writer
}

// NewCSVWriter creates a CSVWriter on output.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(output)}
}

// WriteRow writes one record and flushes it, so rows reach the output as
// soon as they are produced.
func (c *CSVWriter) WriteRow(_ context.Context, row model.Row) error {
	if err := c.w.Write(row.Record()); err != nil {
		return fmt.Errorf("%w: %w", ErrCSV, err)
	}
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrCSV, err)
	}
	return nil
}
