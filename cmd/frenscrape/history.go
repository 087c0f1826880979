package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/nao1215/frenscrape/internal/config"
	"github.com/nao1215/frenscrape/internal/database"
	"github.com/nao1215/frenscrape/internal/report"
)

// historyTimeFormat is used for run times in the run listing.
const historyTimeFormat = "2006-01-02 15:04:05"

// openHistory opens an existing history database without creating one.
func openHistory(cfg *config.Config) (*database.HistoryDB, error) {
	return database.Open(cfg.HistoryDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
}

// runListRuns prints the most recent runs as a Markdown table.
func runListRuns(ctx context.Context, w io.Writer, cfg *config.Config) error {
	db, err := openHistory(cfg)
	if errors.Is(err, database.ErrDatabaseNotFound) {
		_, err = fmt.Fprintln(w, "No runs recorded yet. Use --history to record a run.")
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	runs, err := db.ListRuns(ctx, config.DefaultListLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		_, err = fmt.Fprintln(w, "No runs recorded yet. Use --history to record a run.")
		return err
	}

	rows := make([][]string, len(runs))
	for i, run := range runs {
		finished := "-"
		if !run.FinishedAt.IsZero() {
			finished = run.FinishedAt.Format(historyTimeFormat)
		}
		rows[i] = []string{
			strconv.FormatInt(run.ID, 10),
			run.StartedAt.Format(historyTimeFormat),
			finished,
			run.BaseURL,
			run.Status,
			strconv.Itoa(run.RowCount),
			run.Error,
		}
	}

	return markdown.NewMarkdown(w).
		Table(markdown.TableSet{
			Header: []string{"ID", "Started (UTC)", "Finished (UTC)", "Base URL", "Status", "Rows", "Error"},
			Rows:   rows,
		}).
		Build()
}

// runReplay writes the stored rows of a run in the configured format, and
// rebuilds the run summary when a summary file is configured.
func runReplay(ctx context.Context, w io.Writer, cfg *config.Config, runID int64) error {
	db, err := openHistory(cfg)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	run, err := db.GetRun(ctx, runID)
	if err != nil {
		return err
	}

	rows, err := db.RowsForRun(ctx, runID)
	if err != nil {
		return err
	}

	out, err := report.NewRowWriter(w, report.Format(cfg.OutputFormat))
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := out.WriteRow(ctx, row); err != nil {
			return err
		}
	}

	if cfg.SummaryFile == "" {
		return nil
	}
	summary, err := replaySummary(ctx, db, run, len(rows))
	if err != nil {
		return err
	}
	return writeSummary(cfg.SummaryFile, summary)
}

// replaySummary rebuilds the summary of a stored run from its pages.
func replaySummary(ctx context.Context, db *database.HistoryDB, run *database.Run, rowCount int) (*report.Summary, error) {
	pages, err := db.PagesForRun(ctx, run.ID)
	if err != nil {
		return nil, err
	}

	summary := report.NewSummary(run.BaseURL, run.SnapshotDir, run.StartedAt)
	for _, page := range pages {
		if err := summary.RecordPage(ctx, page); err != nil {
			return nil, err
		}
	}
	summary.RowCount = rowCount

	var runErr error
	if run.Status == database.StatusFailed {
		runErr = errors.New(run.Error)
	}
	summary.Finish(run.FinishedAt, runErr)
	return summary, nil
}
