package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/nao1215/frenscrape/internal/model"
)

// JSONLinesWriter writes each row as a single-line JSON object.
type JSONLinesWriter struct {
	enc *json.Encoder
}

// NewJSONLinesWriter creates a JSONLinesWriter on output.
func NewJSONLinesWriter(output io.Writer) *JSONLinesWriter {
	enc := json.NewEncoder(output)
	enc.SetEscapeHTML(false)
	return &JSONLinesWriter{enc: enc}
}

// WriteRow encodes row followed by a newline.
func (j *JSONLinesWriter) WriteRow(_ context.Context, row model.Row) error {
	if err := j.enc.Encode(row); err != nil {
		return fmt.Errorf("%w: %w", ErrJSON, err)
	}
	return nil
}
