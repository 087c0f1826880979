package report

import (
	"context"
	"fmt"
	"io"

	"github.com/nao1215/frenscrape/internal/model"
)

// RowWriter consumes rows as the walk produces them.
type RowWriter interface {
	WriteRow(ctx context.Context, row model.Row) error
}

// Format selects the row output encoding.
type Format string

// Supported row formats.
const (
	FormatCSV       Format = "csv"
	FormatJSONLines Format = "jsonl"
)

// NewRowWriter returns the writer for format. The empty format is CSV.
func NewRowWriter(output io.Writer, format Format) (RowWriter, error) {
	switch format {
	case FormatCSV, "":
		return NewCSVWriter(output), nil
	case FormatJSONLines:
		return NewJSONLinesWriter(output), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want csv or jsonl)", format)
	}
}

// MultiWriter writes each row to several RowWriters in order.
// It stops at the first error.
type MultiWriter struct {
	writers []RowWriter
}

// NewMultiWriter creates a RowWriter that writes to all provided writers.
// Nil writers are skipped.
func NewMultiWriter(writers ...RowWriter) *MultiWriter {
	m := &MultiWriter{}
	for _, w := range writers {
		if w != nil {
			m.writers = append(m.writers, w)
		}
	}
	return m
}

// WriteRow writes row to every writer.
func (m *MultiWriter) WriteRow(ctx context.Context, row model.Row) error {
	for _, w := range m.writers {
		if err := w.WriteRow(ctx, row); err != nil {
			return err
		}
	}
	return nil
}
