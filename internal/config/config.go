package config

import (
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultBaseURL is the index page of the directory site.
	DefaultBaseURL = "https://findmyfrens.net/"

	// DefaultSnapshotRoot is the directory that receives one timestamped
	// subdirectory per run.
	DefaultSnapshotRoot = "snapshot"

	// DefaultLogFormat is the log handler used when none is configured.
	DefaultLogFormat = "text"

	// DefaultOutputFormat is the row encoding written to stdout.
	DefaultOutputFormat = "csv"

	// DefaultListLimit is how many runs the run listing shows.
	DefaultListLimit = 20

	// AppName is the application name used for XDG directory paths.
	AppName = "frenscrape"
)

// Config holds every option of a single run. It is built once in cmd and
// passed down; nothing reads it from global state.
type Config struct {
	// BaseURL is the index page to start from.
	BaseURL string

	// SnapshotRoot is the parent directory of the per-run snapshot directory.
	SnapshotRoot string

	// DisableSnapshot turns the mirroring of pages and assets off.
	DisableSnapshot bool

	// Verbosity is the number of -v flags (0 disables logging).
	Verbosity int

	// LogFormat is "text" or "json".
	LogFormat string

	// OutputFormat is the row encoding: "csv" or "jsonl".
	OutputFormat string

	// RequestRate caps requests per second. Zero means unlimited.
	RequestRate float64

	// ConfigFilePath is an explicit configuration file path. When empty the
	// default locations are searched.
	ConfigFilePath string

	// SaveHistory records the run in the SQLite history database.
	SaveHistory bool

	// HistoryDir is the directory containing the history database.
	// Defaults to the XDG data directory.
	HistoryDir string

	// SummaryFile is where the Markdown run summary is written.
	// Empty disables the summary.
	SummaryFile string
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		BaseURL:      DefaultBaseURL,
		SnapshotRoot: DefaultSnapshotRoot,
		LogFormat:    DefaultLogFormat,
		OutputFormat: DefaultOutputFormat,
		HistoryDir:   XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for frenscrape.
// On Linux: ~/.local/share/frenscrape
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for frenscrape.
// On Linux: ~/.config/frenscrape
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ParsedBaseURL parses BaseURL, which must be absolute http or https.
func (c *Config) ParsedBaseURL() (*url.URL, error) {
	if c.BaseURL == "" {
		return nil, ErrInvalidBaseURL
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.BaseURL)
	}
	return u, nil
}

// SnapshotEnabled reports whether pages should be mirrored to disk.
func (c *Config) SnapshotEnabled() bool {
	return !c.DisableSnapshot
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if _, err := c.ParsedBaseURL(); err != nil {
		return err
	}

	if c.SnapshotEnabled() && c.SnapshotRoot == "" {
		return ErrEmptySnapshotRoot
	}

	if c.Verbosity < 0 {
		return ErrInvalidVerbosity
	}

	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.LogFormat)
	}

	switch c.OutputFormat {
	case "", "csv", "jsonl":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOutputFormat, c.OutputFormat)
	}

	if c.RequestRate < 0 {
		return ErrInvalidRequestRate
	}

	if c.SaveHistory && c.HistoryDir == "" {
		return ErrEmptyHistoryDir
	}

	return nil
}
