package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/nao1215/frenscrape/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); err != nil {
			t.Errorf("database file was not created: %v", err)
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("unexpected path %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false fails for missing database", func(t *testing.T) {
		t.Parallel()

		_, err := Open(t.TempDir(), Options{CreateIfNotExists: false})
		if !errors.Is(err, ErrDatabaseNotFound) {
			t.Errorf("expected ErrDatabaseNotFound, got %v", err)
		}
	})

	t.Run("reopens existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		id, err := db.BeginRun(context.Background(), "https://findmyfrens.net/", "", time.Now())
		if err != nil {
			t.Fatalf("failed to begin run: %v", err)
		}
		_ = db.Close()

		db, err = Open(dir, Options{CreateIfNotExists: false})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer db.Close()

		if _, err := db.GetRun(context.Background(), id); err != nil {
			t.Errorf("expected run to survive reopen: %v", err)
		}
	})
}

// TestRunLifecycle tests begin, record and finish of a run.
func TestRunLifecycle(t *testing.T) {
	t.Parallel()

	t.Run("complete run", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		db := setupTestDB(t)
		start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

		id, err := db.BeginRun(ctx, "https://findmyfrens.net/", "snapshot/20240301120000", start)
		if err != nil {
			t.Fatalf("failed to begin run: %v", err)
		}

		run, err := db.GetRun(ctx, id)
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if run.Status != StatusRunning {
			t.Errorf("expected running status, got %q", run.Status)
		}
		if !run.StartedAt.Equal(start) {
			t.Errorf("expected start %v, got %v", start, run.StartedAt)
		}
		if !run.FinishedAt.IsZero() {
			t.Errorf("expected zero finish time, got %v", run.FinishedAt)
		}

		rows := []model.Row{
			{ScreenName: "alice", DisplayName: "Alice", Title: "Blog", URL: "https://alice.example/blog"},
			{ScreenName: "bob", DisplayName: "Bob", Title: "Home", URL: "/home"},
		}
		rec := db.Recorder(id)
		for _, r := range rows {
			if err := rec.WriteRow(ctx, r); err != nil {
				t.Fatalf("failed to record row: %v", err)
			}
		}

		finish := start.Add(2 * time.Second)
		if err := db.FinishRun(ctx, id, finish, nil); err != nil {
			t.Fatalf("failed to finish run: %v", err)
		}

		run, err = db.GetRun(ctx, id)
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if run.Status != StatusComplete || run.Error != "" {
			t.Errorf("expected complete run, got %+v", run)
		}
		if run.RowCount != 2 {
			t.Errorf("expected row count 2, got %d", run.RowCount)
		}
		if !run.FinishedAt.Equal(finish) {
			t.Errorf("expected finish %v, got %v", finish, run.FinishedAt)
		}

		got, err := db.RowsForRun(ctx, id)
		if err != nil {
			t.Fatalf("failed to get rows: %v", err)
		}
		if !slices.Equal(got, rows) {
			t.Errorf("expected rows %+v, got %+v", rows, got)
		}
	})

	t.Run("failed run keeps the error", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		db := setupTestDB(t)

		id, err := db.BeginRun(ctx, "https://findmyfrens.net/", "", time.Now())
		if err != nil {
			t.Fatalf("failed to begin run: %v", err)
		}
		if err := db.FinishRun(ctx, id, time.Now(), errors.New("invalid HTML: anchor 1 has no href")); err != nil {
			t.Fatalf("failed to finish run: %v", err)
		}

		run, err := db.GetRun(ctx, id)
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if run.Status != StatusFailed {
			t.Errorf("expected failed status, got %q", run.Status)
		}
		if run.Error != "invalid HTML: anchor 1 has no href" {
			t.Errorf("unexpected error text %q", run.Error)
		}
	})

	t.Run("unknown run", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		db := setupTestDB(t)

		if _, err := db.GetRun(ctx, 42); !errors.Is(err, ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
		if err := db.FinishRun(ctx, 42, time.Now(), nil); !errors.Is(err, ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})
}

// TestRecordPage tests page visit storage.
func TestRecordPage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)

	id, err := db.BeginRun(ctx, "https://findmyfrens.net/", "snap", time.Now())
	if err != nil {
		t.Fatalf("failed to begin run: %v", err)
	}

	visits := []model.PageVisit{
		{Kind: model.PageIndex, URL: "https://findmyfrens.net/", SnapshotDir: "snap", LinkCount: 2,
			Assets: []model.AssetRef{{Kind: model.AssetStylesheet, Filename: "style.css"}}},
		{Kind: model.PageProfile, URL: "https://findmyfrens.net/users/bob/", ScreenName: "bob", DisplayName: "Bob",
			Heading: "Robert", HasHeading: true, SnapshotDir: "snap/bob", LinkCount: 1},
	}
	rec := db.Recorder(id)
	if rec.RunID() != id {
		t.Errorf("expected run ID %d, got %d", id, rec.RunID())
	}
	for _, v := range visits {
		if err := rec.RecordPage(ctx, v); err != nil {
			t.Fatalf("failed to record page: %v", err)
		}
	}

	pages, err := db.PagesForRun(ctx, id)
	if err != nil {
		t.Fatalf("failed to get pages: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if pages[0].Kind != model.PageIndex || len(pages[0].Assets) != 1 || pages[0].Assets[0].Filename != "style.css" {
		t.Errorf("unexpected index page %+v", pages[0])
	}
	if pages[1].ScreenName != "bob" || pages[1].HeadingMatches() {
		t.Errorf("expected bob with mismatched heading, got %+v", pages[1])
	}
}

// TestListRuns tests run listing order and limits.
func TestListRuns(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)

	var ids []int64
	for i := range 3 {
		id, err := db.BeginRun(ctx, "https://findmyfrens.net/", "", time.Now().Add(time.Duration(i)*time.Minute))
		if err != nil {
			t.Fatalf("failed to begin run: %v", err)
		}
		ids = append(ids, id)
	}

	all, err := db.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(all))
	}
	if all[0].ID != ids[2] || all[2].ID != ids[0] {
		t.Errorf("expected newest first, got %d..%d", all[0].ID, all[2].ID)
	}

	limited, err := db.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("expected 2 runs, got %d", len(limited))
	}
}

// TestParseTimestamp tests stored timestamp parsing.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		zero bool
	}{
		{in: "2024-03-01T12:00:00.5Z"},
		{in: "2024-03-01T12:00:00Z"},
		{in: "2024-03-01 12:00:00"},
		{in: "2024-03-01T12:00:00"},
		{in: "", zero: true},
		{in: "yesterday", zero: true},
	}

	for _, tt := range tests {
		got := parseTimestamp(tt.in)
		if got.IsZero() != tt.zero {
			t.Errorf("parseTimestamp(%q) = %v, expected zero=%v", tt.in, got, tt.zero)
		}
	}
}
