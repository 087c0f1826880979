package crawler

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"net/url"
	"path/filepath"

	"github.com/nao1215/frenscrape/internal/model"
)

// Fetcher downloads page text and asset bytes.
type Fetcher interface {
	AssetFetcher
	Text(ctx context.Context, u *url.URL) (string, error)
}

// Recorder is told about every page the walker fetches.
// A recorder error ends the walk like any other error.
type Recorder interface {
	RecordPage(ctx context.Context, visit model.PageVisit) error
}

// errStopped signals that the consumer stopped ranging over the rows.
var errStopped = errors.New("walk stopped by consumer")

// Walker performs the two-level walk over the directory site.
type Walker struct {
	fetcher     Fetcher
	snapshotter *Snapshotter
	recorders   []Recorder
	logger      *slog.Logger
}

// WalkerOption configures a Walker.
type WalkerOption func(*Walker)

// WithLogger sets the logger for walk progress.
func WithLogger(logger *slog.Logger) WalkerOption {
	return func(w *Walker) {
		w.logger = logger
	}
}

// WithSnapshotter replaces the Snapshotter used when a run directory is
// given. By default one is built on top of the walker's fetcher.
func WithSnapshotter(s *Snapshotter) WalkerOption {
	return func(w *Walker) {
		w.snapshotter = s
	}
}

// WithRecorder adds a recorder. Recorders are called in the order added.
func WithRecorder(r Recorder) WalkerOption {
	return func(w *Walker) {
		w.recorders = append(w.recorders, r)
	}
}

// NewWalker creates a Walker that fetches pages with fetcher.
func NewWalker(fetcher Fetcher, opts ...WalkerOption) *Walker {
	w := &Walker{fetcher: fetcher}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	if w.snapshotter == nil {
		w.snapshotter = NewSnapshotter(fetcher, WithSnapshotLogger(w.logger))
	}
	return w
}

// Walk returns the rows of the site rooted at base, in order: users in
// index order, and each user's links in profile order.
//
// When runDir is not empty, the index page is mirrored into runDir and each
// profile into runDir/<screen name>.
//
// The first error is yielded once with a zero Row and ends the sequence.
// Breaking out of the range loop stops the walk before the next fetch.
func (w *Walker) Walk(ctx context.Context, base *url.URL, runDir string) iter.Seq2[model.Row, error] {
	return func(yield func(model.Row, error) bool) {
		err := w.walk(ctx, base, runDir, func(row model.Row) bool {
			return yield(row, nil)
		})
		if err != nil && !errors.Is(err, errStopped) {
			yield(model.Row{}, err)
		}
	}
}

func (w *Walker) walk(ctx context.Context, base *url.URL, runDir string, emit func(model.Row) bool) error {
	index := model.PageVisit{
		Kind:        model.PageIndex,
		URL:         base.String(),
		SnapshotDir: runDir,
	}
	doc, err := w.visit(ctx, base, &index)
	if err != nil {
		return err
	}

	users, err := doc.UserLinks()
	if err != nil {
		return err
	}
	index.LinkCount = len(users)
	w.logger.Info("downloading users", "count", len(users))
	if err := w.record(ctx, index); err != nil {
		return err
	}

	for _, user := range users {
		if err := w.walkUser(ctx, base, runDir, user, emit); err != nil {
			return err
		}
	}
	return nil
}

// walkUser fetches one profile page and emits its rows.
func (w *Walker) walkUser(ctx context.Context, base *url.URL, runDir string, user model.Link, emit func(model.Row) bool) error {
	ref, err := url.Parse(user.URL)
	if err != nil {
		return fmt.Errorf("%w: user link %q: %v", ErrURL, user.URL, err)
	}
	userURL := base.ResolveReference(ref)

	screenName, err := model.ScreenName(user.URL)
	if err != nil {
		return err
	}
	w.logger.Info("downloading user", "screenName", screenName, "displayName", user.Label, "url", userURL.String())

	profile := model.PageVisit{
		Kind:        model.PageProfile,
		URL:         userURL.String(),
		ScreenName:  screenName,
		DisplayName: user.Label,
	}
	if runDir != "" {
		profile.SnapshotDir = filepath.Join(runDir, screenName)
	}

	doc, err := w.visit(ctx, userURL, &profile)
	if err != nil {
		return err
	}

	heading, ok, err := doc.Heading()
	if err != nil {
		return err
	}
	profile.Heading, profile.HasHeading = heading, ok
	if !profile.HeadingMatches() {
		w.logger.Warn("display name does not match page heading",
			"screenName", screenName,
			"displayName", user.Label,
			"heading", heading,
		)
	}

	links, err := doc.TitleLinks()
	if err != nil {
		return err
	}
	profile.LinkCount = len(links)
	w.logger.Debug("extracted links", "screenName", screenName, "count", len(links))
	if err := w.record(ctx, profile); err != nil {
		return err
	}

	for _, link := range links {
		row := model.Row{
			ScreenName:  screenName,
			DisplayName: user.Label,
			Title:       link.Label,
			URL:         link.URL,
		}
		if !emit(row) {
			return errStopped
		}
	}
	return nil
}

// visit fetches and parses a page and mirrors it when visit.SnapshotDir is
// set. The written assets are stored on visit.
func (w *Walker) visit(ctx context.Context, u *url.URL, visit *model.PageVisit) (*Document, error) {
	text, err := w.fetcher.Text(ctx, u)
	if err != nil {
		return nil, err
	}

	doc, err := ParseDocument(text)
	if err != nil {
		return nil, err
	}

	assets, err := w.snapshotter.Snapshot(ctx, u, doc, text, visit.SnapshotDir)
	if err != nil {
		return nil, err
	}
	visit.Assets = assets
	return doc, nil
}

func (w *Walker) record(ctx context.Context, visit model.PageVisit) error {
	for _, r := range w.recorders {
		if err := r.RecordPage(ctx, visit); err != nil {
			return err
		}
	}
	return nil
}
