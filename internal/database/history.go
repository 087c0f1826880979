package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/frenscrape/internal/model"
)

// FileName is the database file inside the history directory.
const FileName = "frenscrape.db"

// Run statuses.
const (
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

// HistoryDB stores runs, the pages they visited and the rows they emitted.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if needed.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	dsn := dbPath + "?mode=rwc"
	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	} else {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One writer; the walk is sequential anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	h := &HistoryDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := h.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return h, nil
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		base_url TEXT NOT NULL,
		snapshot_dir TEXT NOT NULL DEFAULT '',
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		row_count INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- One entry per fetched page, index and profiles alike
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		kind TEXT NOT NULL,
		url TEXT NOT NULL,
		screen_name TEXT NOT NULL DEFAULT '',
		display_name TEXT NOT NULL DEFAULT '',
		heading TEXT NOT NULL DEFAULT '',
		heading_matches INTEGER NOT NULL DEFAULT 1,
		snapshot_dir TEXT NOT NULL DEFAULT '',
		link_count INTEGER NOT NULL DEFAULT 0,
		assets TEXT NOT NULL DEFAULT '[]'
	);

	CREATE INDEX IF NOT EXISTS idx_pages_run ON pages(run_id);

	-- Emitted rows, in output order
	CREATE TABLE IF NOT EXISTS output_rows (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		screen_name TEXT NOT NULL,
		display_name TEXT NOT NULL,
		title TEXT NOT NULL,
		url TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_rows_run ON output_rows(run_id);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// Run is a stored run.
type Run struct {
	ID          int64
	BaseURL     string
	SnapshotDir string
	StartedAt   time.Time
	FinishedAt  time.Time
	Status      string
	Error       string
	RowCount    int
}

// BeginRun inserts a run in the running state and returns its ID.
func (h *HistoryDB) BeginRun(ctx context.Context, baseURL, snapshotDir string, startedAt time.Time) (int64, error) {
	query := `INSERT INTO runs (base_url, snapshot_dir, started_at, status) VALUES (?, ?, ?, ?)`

	result, err := h.db.ExecContext(ctx, query, baseURL, snapshotDir, formatTimestamp(startedAt), StatusRunning)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return result.LastInsertId()
}

// RecordPage stores one page visit of a run.
func (h *HistoryDB) RecordPage(ctx context.Context, runID int64, visit model.PageVisit) error {
	assets := make([]string, 0, len(visit.Assets))
	for _, a := range visit.Assets {
		assets = append(assets, a.Filename)
	}
	assetsJSON, err := json.Marshal(assets)
	if err != nil {
		return fmt.Errorf("failed to serialize assets: %w", err)
	}

	query := `
	INSERT INTO pages (run_id, kind, url, screen_name, display_name, heading, heading_matches, snapshot_dir, link_count, assets)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = h.db.ExecContext(ctx, query,
		runID,
		visit.Kind.String(),
		visit.URL,
		visit.ScreenName,
		visit.DisplayName,
		visit.Heading,
		visit.HeadingMatches(),
		visit.SnapshotDir,
		visit.LinkCount,
		string(assetsJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert page: %w", err)
	}
	return nil
}

// RecordRow stores one emitted row and bumps the run's row count.
func (h *HistoryDB) RecordRow(ctx context.Context, runID int64, row model.Row) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `INSERT INTO output_rows (run_id, screen_name, display_name, title, url) VALUES (?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, query, runID, row.ScreenName, row.DisplayName, row.Title, row.URL); err != nil {
		return fmt.Errorf("failed to insert row: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE runs SET row_count = row_count + 1 WHERE id = ?`, runID); err != nil {
		return fmt.Errorf("failed to update row count: %w", err)
	}
	return tx.Commit()
}

// FinishRun marks a run complete, or failed when runErr is not nil.
func (h *HistoryDB) FinishRun(ctx context.Context, runID int64, finishedAt time.Time, runErr error) error {
	status, message := StatusComplete, ""
	if runErr != nil {
		status, message = StatusFailed, runErr.Error()
	}

	query := `UPDATE runs SET finished_at = ?, status = ?, error = ? WHERE id = ?`
	result, err := h.db.ExecContext(ctx, query, formatTimestamp(finishedAt), status, message, runID)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %d", ErrRunNotFound, runID)
	}
	return nil
}

const runColumns = `id, base_url, snapshot_dir, started_at, finished_at, status, error, row_count`

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var (
		run               Run
		started, finished string
	)
	if err := s.Scan(&run.ID, &run.BaseURL, &run.SnapshotDir, &started, &finished, &run.Status, &run.Error, &run.RowCount); err != nil {
		return nil, err
	}
	run.StartedAt = parseTimestamp(started)
	run.FinishedAt = parseTimestamp(finished)
	return &run, nil
}

// GetRun returns the run with the given ID.
func (h *HistoryDB) GetRun(ctx context.Context, id int64) (*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = ?`

	run, err := scanRun(h.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first. A limit of 0 or less returns
// every run.
func (h *HistoryDB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY id DESC LIMIT ?`

	rows, err := h.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// RowsForRun returns the rows a run emitted, in output order.
func (h *HistoryDB) RowsForRun(ctx context.Context, runID int64) ([]model.Row, error) {
	query := `SELECT screen_name, display_name, title, url FROM output_rows WHERE run_id = ? ORDER BY id`

	rows, err := h.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}
	defer rows.Close()

	var out []model.Row
	for rows.Next() {
		var r model.Row
		if err := rows.Scan(&r.ScreenName, &r.DisplayName, &r.Title, &r.URL); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// PagesForRun returns the pages a run fetched, in walk order.
// Asset source URLs are not stored, so only asset file names are filled in.
func (h *HistoryDB) PagesForRun(ctx context.Context, runID int64) ([]model.PageVisit, error) {
	query := `
	SELECT kind, url, screen_name, display_name, heading, snapshot_dir, link_count, assets
	FROM pages WHERE run_id = ? ORDER BY id
	`

	rows, err := h.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer rows.Close()

	var out []model.PageVisit
	for rows.Next() {
		var (
			v          model.PageVisit
			kind       string
			assetsJSON string
		)
		if err := rows.Scan(&kind, &v.URL, &v.ScreenName, &v.DisplayName, &v.Heading, &v.SnapshotDir, &v.LinkCount, &assetsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		v.Kind = model.PageKind(kind)
		v.HasHeading = v.Heading != ""

		var names []string
		if err := json.Unmarshal([]byte(assetsJSON), &names); err != nil {
			return nil, fmt.Errorf("failed to parse assets: %w", err)
		}
		for _, name := range names {
			v.Assets = append(v.Assets, model.AssetRef{Filename: name})
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// RunRecorder binds a HistoryDB to one run so it can be handed to the
// walker as a page recorder and to the row pipeline as a row writer.
type RunRecorder struct {
	db    *HistoryDB
	runID int64
}

// Recorder returns a RunRecorder for runID.
func (h *HistoryDB) Recorder(runID int64) *RunRecorder {
	return &RunRecorder{db: h, runID: runID}
}

// RunID returns the run being recorded.
func (r *RunRecorder) RunID() int64 {
	return r.runID
}

// RecordPage stores a page visit for the bound run.
func (r *RunRecorder) RecordPage(ctx context.Context, visit model.PageVisit) error {
	return r.db.RecordPage(ctx, r.runID, visit)
}

// WriteRow stores a row for the bound run.
func (r *RunRecorder) WriteRow(ctx context.Context, row model.Row) error {
	return r.db.RecordRow(ctx, r.runID, row)
}

// timestampFormats lists the layouts parseTimestamp accepts.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTimestamp parses a stored timestamp, returning the zero time for
// empty or unrecognized values.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
