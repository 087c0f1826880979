package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/frenscrape/internal/config"
)

// NewRootCmd creates the root command for frenscrape.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "frenscrape",
		Short: "Scrape a friends directory into CSV",
		Long: `frenscrape fetches the index page of a friends directory, visits the
profile page of every listed user and writes one CSV row per link found on a
profile to standard output:

  screen_name,display_name,title,url

Every fetched page is mirrored, together with its stylesheet, banner and
profile image, to <snapshot-dir>/<YYYYMMDDHHMMSS>/ (profiles in a
subdirectory named after the user). Use --disable-snapshot to skip this.

Logging is off by default. Each -v raises the level:
error, warn, info, debug, trace.

Examples:
  # Scrape the default site
  frenscrape > frens.csv

  # Scrape a local copy without writing snapshots, with info logs
  frenscrape --base http://localhost:8080/ --disable-snapshot -vvv

  # Record the run and write a Markdown summary
  frenscrape --history --summary summary.md

  # List recorded runs and print the rows of run 3 again
  frenscrape --list-runs
  frenscrape --replay 3
  frenscrape --replay 3 --summary run3.md

Configuration file (.frenscrape, or config.yaml in the XDG config dir) example:
  base: https://findmyfrens.net/
  snapshot:
    dir: /srv/mirror
  verbose: 2
  rate: 2
  history:
    enabled: true`,
		Args:          cobra.NoArgs,
		Version:       currentBuildInfo().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRootCmd,
	}
	cmd.SetVersionTemplate(versionTemplate())

	// Walk flags
	cmd.Flags().String("base", config.DefaultBaseURL,
		"Index page URL to start from")
	cmd.Flags().Bool("disable-snapshot", false,
		"Do not mirror pages and assets to disk")
	cmd.Flags().String("snapshot-dir", config.DefaultSnapshotRoot,
		"Directory receiving one timestamped snapshot directory per run")
	cmd.Flags().Float64("rate", 0,
		"Maximum requests per second (0 means unlimited)")

	// Output flags
	cmd.Flags().StringP("format", "f", config.DefaultOutputFormat,
		"Row output format: csv or jsonl")
	cmd.Flags().String("summary", "",
		"Write a Markdown run summary to this file")

	// Logging flags
	cmd.Flags().CountP("verbose", "v",
		"Increase log verbosity (repeatable: -v error ... -vvvvv trace)")
	cmd.Flags().String("log-format", config.DefaultLogFormat,
		"Log format on stderr: text or json")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .frenscrape in current or home directory)")

	// History flags
	cmd.Flags().Bool("history", false,
		"Record the run in the history database")
	cmd.Flags().String("history-dir", config.XDGDataDir(),
		"Directory containing the history database")
	cmd.Flags().Bool("list-runs", false,
		"List recorded runs and exit")
	cmd.Flags().Int64("replay", 0,
		"Write the rows of a recorded run and exit")

	return cmd
}

// runRootCmd executes a scrape, or a history query when requested.
func runRootCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	listRuns, err := cmd.Flags().GetBool("list-runs")
	if err != nil {
		return err
	}
	if listRuns {
		return runListRuns(cmd.Context(), cmd.OutOrStdout(), cfg)
	}

	replayID, err := cmd.Flags().GetInt64("replay")
	if err != nil {
		return err
	}
	if replayID != 0 {
		return runReplay(cmd.Context(), cmd.OutOrStdout(), cfg, replayID)
	}

	// The run timestamp is taken once and names the snapshot directory.
	start := time.Now().UTC()

	return runScrape(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), start)
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
