package report

import (
	"context"
	"time"

	"github.com/nao1215/frenscrape/internal/model"
)

// Summary accumulates what happened during one run.
// It is fed by the walker as a page recorder and by the row pipeline as a
// RowWriter.
type Summary struct {
	BaseURL     string
	SnapshotDir string
	StartedAt   time.Time
	FinishedAt  time.Time

	// Index is the visit of the index page, nil until it was fetched.
	Index *model.PageVisit

	// Profiles holds the profile visits in walk order.
	Profiles []model.PageVisit

	// RowCount is the number of rows written.
	RowCount int

	// Err is the error that ended the run, if any.
	Err error
}

// NewSummary starts a summary for a run of base beginning at start.
// snapshotDir is empty when snapshots are disabled.
func NewSummary(base, snapshotDir string, start time.Time) *Summary {
	return &Summary{
		BaseURL:     base,
		SnapshotDir: snapshotDir,
		StartedAt:   start,
	}
}

// RecordPage stores a page visit.
func (s *Summary) RecordPage(_ context.Context, visit model.PageVisit) error {
	if visit.Kind == model.PageIndex {
		s.Index = &visit
		return nil
	}
	s.Profiles = append(s.Profiles, visit)
	return nil
}

// WriteRow counts a row.
func (s *Summary) WriteRow(_ context.Context, _ model.Row) error {
	s.RowCount++
	return nil
}

// Finish marks the run as ended with the given error, nil on success.
func (s *Summary) Finish(at time.Time, err error) {
	s.FinishedAt = at
	s.Err = err
}

// Duration returns how long the run took, zero before Finish.
func (s *Summary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// Mismatches returns the profiles whose heading differs from the display
// name on the index page.
func (s *Summary) Mismatches() []model.PageVisit {
	var out []model.PageVisit
	for _, p := range s.Profiles {
		if !p.HeadingMatches() {
			out = append(out, p)
		}
	}
	return out
}

// AssetCount returns the number of assets mirrored across all pages.
func (s *Summary) AssetCount() int {
	n := 0
	if s.Index != nil {
		n += len(s.Index.Assets)
	}
	for _, p := range s.Profiles {
		n += len(p.Assets)
	}
	return n
}
