package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/frenscrape/internal/config"
	"github.com/nao1215/frenscrape/internal/crawler"
	"github.com/nao1215/frenscrape/internal/database"
	"github.com/nao1215/frenscrape/internal/fetch"
	"github.com/nao1215/frenscrape/internal/log"
	"github.com/nao1215/frenscrape/internal/model"
	"github.com/nao1215/frenscrape/internal/report"
)

// buildConfig layers defaults, the configuration file and explicitly set
// flags, in that order.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// A missing file is only an error when the user named it.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.Apply(file)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	stringFlags := []struct {
		name string
		dst  *string
	}{
		{"base", &cfg.BaseURL},
		{"snapshot-dir", &cfg.SnapshotRoot},
		{"format", &cfg.OutputFormat},
		{"summary", &cfg.SummaryFile},
		{"log-format", &cfg.LogFormat},
		{"history-dir", &cfg.HistoryDir},
	}
	for _, f := range stringFlags {
		if !flags.Changed(f.name) {
			continue
		}
		if *f.dst, err = flags.GetString(f.name); err != nil {
			return nil, err
		}
	}

	boolFlags := []struct {
		name string
		dst  *bool
	}{
		{"disable-snapshot", &cfg.DisableSnapshot},
		{"history", &cfg.SaveHistory},
	}
	for _, f := range boolFlags {
		if !flags.Changed(f.name) {
			continue
		}
		if *f.dst, err = flags.GetBool(f.name); err != nil {
			return nil, err
		}
	}

	if flags.Changed("rate") {
		if cfg.RequestRate, err = flags.GetFloat64("rate"); err != nil {
			return nil, err
		}
	}

	if flags.Changed("verbose") {
		if cfg.Verbosity, err = flags.GetCount("verbose"); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// setupLogger creates the stderr logger for the configured verbosity.
func setupLogger(w io.Writer, cfg *config.Config) (*slog.Logger, error) {
	format, err := log.ParseFormat(cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	return log.NewLogger(w, log.LevelForVerbosity(cfg.Verbosity), format)
}

// runScrape walks the site and streams rows to stdout. Rows written before
// a failure stay written.
func runScrape(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer, start time.Time) error {
	logger, err := setupLogger(stderr, cfg)
	if err != nil {
		return err
	}

	base, err := cfg.ParsedBaseURL()
	if err != nil {
		return err
	}

	runDir := ""
	if cfg.SnapshotEnabled() {
		runDir = crawler.RunDir(cfg.SnapshotRoot, start)
	}

	logger.Info("starting scrape",
		"base", base.String(),
		"snapshotDir", runDir,
		"logLevel", log.LevelName(log.LevelForVerbosity(cfg.Verbosity)),
		"history", cfg.SaveHistory,
	)

	out, err := report.NewRowWriter(stdout, report.Format(cfg.OutputFormat))
	if err != nil {
		return err
	}
	writers := []report.RowWriter{out}

	client := fetch.NewClient(fetch.WithLogger(logger), fetch.WithRateLimit(cfg.RequestRate))
	walkerOpts := []crawler.WalkerOption{
		crawler.WithLogger(logger),
		crawler.WithSnapshotter(crawler.NewSnapshotter(client, crawler.WithSnapshotLogger(logger))),
	}

	var summary *report.Summary
	if cfg.SummaryFile != "" {
		summary = report.NewSummary(base.String(), runDir, start)
		writers = append(writers, summary)
		walkerOpts = append(walkerOpts, crawler.WithRecorder(summary))
	}

	var (
		db    *database.HistoryDB
		runID int64
	)
	if cfg.SaveHistory {
		db, err = database.Open(cfg.HistoryDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer db.Close()

		runID, err = db.BeginRun(ctx, base.String(), runDir, start)
		if err != nil {
			return err
		}
		rec := db.Recorder(runID)
		writers = append(writers, rec)
		walkerOpts = append(walkerOpts, crawler.WithRecorder(rec))
		logger.Info("recording run", "id", runID, "database", db.Path())
	}

	walker := crawler.NewWalker(client, walkerOpts...)
	sink := report.NewMultiWriter(writers...)

	walkErr := drain(ctx, walker.Walk(ctx, base, runDir), sink)
	if walkErr != nil {
		logger.Error("scrape failed", "error", walkErr)
	}
	finished := time.Now().UTC()

	errs := []error{walkErr}
	if db != nil {
		if err := db.FinishRun(ctx, runID, finished, walkErr); err != nil {
			errs = append(errs, err)
		}
	}
	if summary != nil {
		summary.Finish(finished, walkErr)
		if err := writeSummary(cfg.SummaryFile, summary); err != nil {
			errs = append(errs, err)
		} else {
			logger.Info("wrote summary", "file", cfg.SummaryFile)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	logger.Info("scrape complete", "duration", finished.Sub(start).String())
	return nil
}

// drain writes every row of seq to sink and returns the first error from
// either side.
func drain(ctx context.Context, seq iter.Seq2[model.Row, error], sink report.RowWriter) error {
	for row, err := range seq {
		if err != nil {
			return err
		}
		if err := sink.WriteRow(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

// writeSummary renders the Markdown summary to path, creating parent
// directories as needed.
func writeSummary(path string, summary *report.Summary) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create summary directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer f.Close()

	if _, err := report.NewMarkdownWriter(f).Write(summary); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}
