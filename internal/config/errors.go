package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrInvalidBaseURL is returned when the base URL is empty, unparsable
	// or not an absolute http(s) URL.
	ErrInvalidBaseURL = errors.New("invalid base URL: must be an absolute http or https URL")

	// ErrEmptySnapshotRoot is returned when snapshots are enabled but no
	// snapshot directory is configured.
	ErrEmptySnapshotRoot = errors.New("invalid snapshot directory: must not be empty when snapshots are enabled")

	// ErrInvalidVerbosity is returned for a negative verbosity.
	ErrInvalidVerbosity = errors.New("invalid verbosity: must be non-negative")

	// ErrInvalidLogFormat is returned for a log format other than text or json.
	ErrInvalidLogFormat = errors.New("invalid log format: must be text or json")

	// ErrInvalidOutputFormat is returned for a row format other than csv or jsonl.
	ErrInvalidOutputFormat = errors.New("invalid output format: must be csv or jsonl")

	// ErrInvalidRequestRate is returned for a negative request rate.
	ErrInvalidRequestRate = errors.New("invalid request rate: must be non-negative")

	// ErrEmptyHistoryDir is returned when history is enabled without a directory.
	ErrEmptyHistoryDir = errors.New("invalid history directory: must not be empty when history is enabled")
)
