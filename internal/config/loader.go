package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the configuration file name searched for in the
// current and home directories.
const DefaultConfigFile = ".frenscrape"

// XDGConfigFileName is the file name inside XDGConfigDir.
const XDGConfigFileName = "config.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the YAML configuration file. Zero values leave the corresponding
// setting untouched.
type File struct {
	// Base overrides the index page URL.
	Base string `yaml:"base,omitempty"`

	// Snapshot configures page mirroring.
	Snapshot SnapshotFile `yaml:"snapshot,omitempty"`

	// Verbose is the default verbosity, as if -v was given that many times.
	Verbose int `yaml:"verbose,omitempty"`

	// LogFormat is "text" or "json".
	LogFormat string `yaml:"log_format,omitempty"`

	// Format is the row encoding, "csv" or "jsonl".
	Format string `yaml:"format,omitempty"`

	// Rate caps requests per second.
	Rate float64 `yaml:"rate,omitempty"`

	// History configures the run history database.
	History HistoryFile `yaml:"history,omitempty"`

	// Summary is the Markdown summary output path.
	Summary string `yaml:"summary,omitempty"`
}

// SnapshotFile is the snapshot section of the configuration file.
type SnapshotFile struct {
	Dir      string `yaml:"dir,omitempty"`
	Disabled bool   `yaml:"disabled,omitempty"`
}

// HistoryFile is the history section of the configuration file.
type HistoryFile struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
}

// LoadConfigFile reads a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cf, nil
}

// Apply copies every non-zero setting of f onto c.
func (c *Config) Apply(f *File) {
	if f == nil {
		return
	}
	if f.Base != "" {
		c.BaseURL = f.Base
	}
	if f.Snapshot.Dir != "" {
		c.SnapshotRoot = f.Snapshot.Dir
	}
	if f.Snapshot.Disabled {
		c.DisableSnapshot = true
	}
	if f.Verbose != 0 {
		c.Verbosity = f.Verbose
	}
	if f.LogFormat != "" {
		c.LogFormat = f.LogFormat
	}
	if f.Format != "" {
		c.OutputFormat = f.Format
	}
	if f.Rate != 0 {
		c.RequestRate = f.Rate
	}
	if f.History.Enabled {
		c.SaveHistory = true
	}
	if f.History.Dir != "" {
		c.HistoryDir = f.History.Dir
	}
	if f.Summary != "" {
		c.SummaryFile = f.Summary
	}
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. .frenscrape in the current directory
// 3. config.yaml in the XDG config directory
// 4. .frenscrape in the user's home directory
//
// Returns the path of the first file found, or an empty string.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), XDGConfigFileName))
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}

	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
