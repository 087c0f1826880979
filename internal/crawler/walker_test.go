package crawler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/nao1215/frenscrape/internal/fetch"
	"github.com/nao1215/frenscrape/internal/model"
)

const (
	testIndex = `<html><head><link rel="stylesheet" href="/style.css"></head><body>
<a href="/users/alice/">Alice</a>
<a href="/users/bob/">Bob</a>
</body></html>`

	testAlice = `<html><body><main><h1>Alice</h1>
<a href="https://alice.example/blog">Blog</a>
<a href="https://alice.example/shop">Shop</a>
</main></body></html>`

	testBob = `<html><body><header><img src="/banner.png"></header><main><h1>Bob</h1>
<a href="https://bob.example/">Home</a>
</main></body></html>`
)

func testSitePages() map[string]string {
	return map[string]string{
		"/":             testIndex,
		"/style.css":    "body{}",
		"/users/alice/": testAlice,
		"/users/bob/":   testBob,
		"/banner.png":   "PNG",
	}
}

// collect drains a walk into rows and the terminating error.
func collect(t *testing.T, w *Walker, site *fakeSite, runDir string) ([]model.Row, error) {
	t.Helper()

	var rows []model.Row
	for row, err := range w.Walk(context.Background(), site.baseURL(t), runDir) {
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// pageRecorder stores every visit it is given.
type pageRecorder struct {
	visits []model.PageVisit
	err    error
}

func (r *pageRecorder) RecordPage(_ context.Context, visit model.PageVisit) error {
	r.visits = append(r.visits, visit)
	return r.err
}

// TestWalker tests the two-level walk.
func TestWalker(t *testing.T) {
	t.Parallel()

	t.Run("yields one row per profile link in order", func(t *testing.T) {
		t.Parallel()

		site := newFakeSite(t, testSitePages())
		rows, err := collect(t, NewWalker(site.client()), site, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []model.Row{
			{ScreenName: "alice", DisplayName: "Alice", Title: "Blog", URL: "https://alice.example/blog"},
			{ScreenName: "alice", DisplayName: "Alice", Title: "Shop", URL: "https://alice.example/shop"},
			{ScreenName: "bob", DisplayName: "Bob", Title: "Home", URL: "https://bob.example/"},
		}
		if !slices.Equal(rows, want) {
			t.Errorf("expected rows %+v, got %+v", want, rows)
		}
	})

	t.Run("fetches every profile in index order", func(t *testing.T) {
		t.Parallel()

		site := newFakeSite(t, testSitePages())
		if _, err := collect(t, NewWalker(site.client()), site, ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{"/", "/users/alice/", "/users/bob/"}
		if got := site.requested(); !slices.Equal(got, want) {
			t.Errorf("expected requests %v, got %v", want, got)
		}
	})

	t.Run("snapshot tree mirrors the site", func(t *testing.T) {
		t.Parallel()

		site := newFakeSite(t, testSitePages())
		runDir := filepath.Join(t.TempDir(), "20240301120000")

		if _, err := collect(t, NewWalker(site.client()), site, runDir); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := listDir(t, runDir); !slices.Equal(got, []string{"alice", "bob", "index.html", "style.css"}) {
			t.Errorf("unexpected run dir contents %v", got)
		}
		if got := listDir(t, filepath.Join(runDir, "alice")); !slices.Equal(got, []string{"index.html"}) {
			t.Errorf("unexpected alice dir contents %v", got)
		}
		if got := listDir(t, filepath.Join(runDir, "bob")); !slices.Equal(got, []string{"banner.png", "index.html"}) {
			t.Errorf("unexpected bob dir contents %v", got)
		}

		data, err := os.ReadFile(filepath.Join(runDir, "alice", "index.html"))
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != testAlice {
			t.Errorf("expected verbatim profile HTML, got %q", data)
		}
	})

	t.Run("disabled snapshot writes nothing and fetches no assets", func(t *testing.T) {
		t.Parallel()

		site := newFakeSite(t, testSitePages())
		root := t.TempDir()

		if _, err := collect(t, NewWalker(site.client()), site, ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := listDir(t, root); len(got) != 0 {
			t.Errorf("expected empty directory, got %v", got)
		}
		for _, p := range site.requested() {
			if strings.HasSuffix(p, ".css") || strings.HasSuffix(p, ".png") {
				t.Errorf("unexpected asset request %q", p)
			}
		}
	})

	t.Run("heading mismatch warns and keeps going", func(t *testing.T) {
		t.Parallel()

		pages := testSitePages()
		pages["/users/alice/"] = `<html><body><main><h1>Bob</h1><a href="/x">X</a></main></body></html>`
		site := newFakeSite(t, pages)

		var logs bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn}))

		rows, err := collect(t, NewWalker(site.client(), WithLogger(logger)), site, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rows) != 2 || rows[0].ScreenName != "alice" || rows[0].Title != "X" {
			t.Errorf("expected alice's row to be kept, got %+v", rows)
		}
		if !strings.Contains(logs.String(), "level=WARN") || !strings.Contains(logs.String(), "heading=Bob") {
			t.Errorf("expected heading warning, got %q", logs.String())
		}
	})

	t.Run("missing href aborts with ErrInvalidHTML", func(t *testing.T) {
		t.Parallel()

		pages := testSitePages()
		pages["/"] = `<html><body><a href="/users/alice/">Alice</a><a>Broken</a></body></html>`
		site := newFakeSite(t, pages)

		rows, err := collect(t, NewWalker(site.client()), site, "")
		if !errors.Is(err, model.ErrInvalidHTML) {
			t.Fatalf("expected ErrInvalidHTML, got %v", err)
		}
		if len(rows) != 0 {
			t.Errorf("expected no rows, got %+v", rows)
		}
		if got := site.requested(); !slices.Equal(got, []string{"/"}) {
			t.Errorf("expected only the index to be fetched, got %v", got)
		}
	})

	t.Run("missing href on a profile stops later users", func(t *testing.T) {
		t.Parallel()

		pages := testSitePages()
		pages["/users/alice/"] = `<html><body><main><a href="/ok">OK</a><a>Broken</a></main></body></html>`
		site := newFakeSite(t, pages)

		rows, err := collect(t, NewWalker(site.client()), site, "")
		if !errors.Is(err, model.ErrInvalidHTML) {
			t.Fatalf("expected ErrInvalidHTML, got %v", err)
		}
		if len(rows) != 0 {
			t.Errorf("expected no rows, got %+v", rows)
		}
		if slices.Contains(site.requested(), "/users/bob/") {
			t.Error("expected bob not to be fetched")
		}
	})

	t.Run("listing href without screen name is ErrInvalidHTML", func(t *testing.T) {
		t.Parallel()

		pages := testSitePages()
		pages["/"] = `<html><body><a href="/users/">Everyone</a></body></html>`
		site := newFakeSite(t, pages)

		_, err := collect(t, NewWalker(site.client()), site, "")
		if !errors.Is(err, model.ErrInvalidHTML) {
			t.Errorf("expected ErrInvalidHTML, got %v", err)
		}
	})

	t.Run("unreachable profile is ErrHTTPClient after earlier rows", func(t *testing.T) {
		t.Parallel()

		pages := testSitePages()
		delete(pages, "/users/bob/")
		site := newFakeSite(t, pages)

		rows, err := collect(t, NewWalker(site.client()), site, "")
		if !errors.Is(err, fetch.ErrHTTPClient) {
			t.Fatalf("expected ErrHTTPClient, got %v", err)
		}
		if len(rows) != 2 {
			t.Errorf("expected alice's 2 rows before the failure, got %d", len(rows))
		}
	})

	t.Run("error is yielded exactly once", func(t *testing.T) {
		t.Parallel()

		site := newFakeSite(t, map[string]string{})
		var errs int
		for _, err := range NewWalker(site.client()).Walk(context.Background(), site.baseURL(t), "") {
			if err != nil {
				errs++
			}
		}
		if errs != 1 {
			t.Errorf("expected 1 error, got %d", errs)
		}
	})

	t.Run("breaking out stops further fetches", func(t *testing.T) {
		t.Parallel()

		site := newFakeSite(t, testSitePages())
		for _, err := range NewWalker(site.client()).Walk(context.Background(), site.baseURL(t), "") {
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			break
		}

		if slices.Contains(site.requested(), "/users/bob/") {
			t.Error("expected bob not to be fetched after break")
		}
	})

	t.Run("recorders see every page", func(t *testing.T) {
		t.Parallel()

		pages := testSitePages()
		pages["/users/bob/"] = `<html><body><main><h1>Robert</h1><a href="/x">X</a></main></body></html>`
		site := newFakeSite(t, pages)
		rec := &pageRecorder{}
		runDir := t.TempDir()

		if _, err := collect(t, NewWalker(site.client(), WithRecorder(rec)), site, runDir); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rec.visits) != 3 {
			t.Fatalf("expected 3 visits, got %d", len(rec.visits))
		}

		index := rec.visits[0]
		if index.Kind != model.PageIndex || index.LinkCount != 2 || len(index.Assets) != 1 {
			t.Errorf("unexpected index visit %+v", index)
		}
		alice := rec.visits[1]
		if alice.ScreenName != "alice" || alice.LinkCount != 2 || !alice.HeadingMatches() {
			t.Errorf("unexpected alice visit %+v", alice)
		}
		if alice.SnapshotDir != filepath.Join(runDir, "alice") {
			t.Errorf("unexpected alice snapshot dir %q", alice.SnapshotDir)
		}
		bob := rec.visits[2]
		if bob.Heading != "Robert" || bob.HeadingMatches() {
			t.Errorf("expected bob heading mismatch, got %+v", bob)
		}
	})

	t.Run("recorder error aborts", func(t *testing.T) {
		t.Parallel()

		site := newFakeSite(t, testSitePages())
		recErr := errors.New("disk full")

		rows, err := collect(t, NewWalker(site.client(), WithRecorder(&pageRecorder{err: recErr})), site, "")
		if !errors.Is(err, recErr) {
			t.Errorf("expected recorder error, got %v", err)
		}
		if len(rows) != 0 {
			t.Errorf("expected no rows, got %+v", rows)
		}
	})
}
