package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/nao1215/frenscrape/internal/model"
)

// RunTimestampLayout names the per-run snapshot directory.
const RunTimestampLayout = "20060102150405"

// indexFile is the file name a mirrored page is written to.
const indexFile = "index.html"

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// AssetFetcher downloads raw asset bytes.
type AssetFetcher interface {
	Bytes(ctx context.Context, u *url.URL) ([]byte, error)
}

// Snapshotter mirrors pages and their assets to local directories.
type Snapshotter struct {
	fetcher AssetFetcher
	logger  *slog.Logger
}

// SnapshotOption configures a Snapshotter.
type SnapshotOption func(*Snapshotter)

// WithSnapshotLogger sets the logger used for snapshot progress.
func WithSnapshotLogger(logger *slog.Logger) SnapshotOption {
	return func(s *Snapshotter) {
		s.logger = logger
	}
}

// NewSnapshotter creates a Snapshotter that downloads assets with fetcher.
func NewSnapshotter(fetcher AssetFetcher, opts ...SnapshotOption) *Snapshotter {
	s := &Snapshotter{fetcher: fetcher}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// RunDir returns the snapshot directory for a run started at start.
// The timestamp is formatted in UTC.
func RunDir(root string, start time.Time) string {
	return filepath.Join(root, start.UTC().Format(RunTimestampLayout))
}

// Snapshot writes raw to dir/index.html and then downloads the page's
// stylesheet, banner and profile image, in that order, next to it.
// Asset references are resolved against pageURL.
//
// An empty dir disables snapshotting and nothing is touched. Any failure
// aborts the snapshot; files already written are left in place.
func (s *Snapshotter) Snapshot(ctx context.Context, pageURL *url.URL, doc *Document, raw, dir string) ([]model.AssetRef, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %w", ErrIO, dir, err)
	}
	if err := writeFile(filepath.Join(dir, indexFile), []byte(raw)); err != nil {
		return nil, err
	}
	s.logger.Debug("wrote page snapshot", "url", pageURL.String(), "dir", dir)

	var written []model.AssetRef
	for _, q := range assetQueries {
		ref, err := doc.asset(q, pageURL)
		if err != nil {
			return written, err
		}
		if ref == nil {
			continue
		}

		data, err := s.fetcher.Bytes(ctx, ref.SourceURL)
		if err != nil {
			return written, err
		}
		if err := writeFile(filepath.Join(dir, ref.Filename), data); err != nil {
			return written, err
		}
		s.logger.Debug("wrote asset", "kind", ref.Kind.String(), "url", ref.SourceURL.String(), "file", ref.Filename)

		written = append(written, *ref)
	}
	return written, nil
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, filePerm); err != nil { //nolint:gosec // mirrored pages are meant to be readable
		return fmt.Errorf("%w: writing %s: %w", ErrIO, path, err)
	}
	return nil
}
