package log

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ErrLogInit is returned when a logger cannot be constructed from the
// requested settings.
var ErrLogInit = errors.New("logging initialization error")

// Extra levels around the four built into slog.
const (
	// LevelTrace is more detailed than slog.LevelDebug.
	LevelTrace = slog.LevelDebug - 4

	// LevelOff is above every level a record is ever logged at.
	LevelOff = slog.LevelError + 100
)

// Format selects the handler used for log output.
type Format string

// Supported log formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat converts a format name to a Format.
// The empty string selects FormatText.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(FormatText):
		return FormatText, nil
	case string(FormatJSON):
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown log format %q (want text or json)", ErrLogInit, s)
	}
}

// LevelForVerbosity maps the number of -v flags to a level:
// 0 off, 1 error, 2 warn, 3 info, 4 debug, 5 or more trace.
func LevelForVerbosity(verbosity int) slog.Level {
	switch {
	case verbosity <= 0:
		return LevelOff
	case verbosity == 1:
		return slog.LevelError
	case verbosity == 2:
		return slog.LevelWarn
	case verbosity == 3:
		return slog.LevelInfo
	case verbosity == 4:
		return slog.LevelDebug
	default:
		return LevelTrace
	}
}

// LevelName returns a lowercase name for the level, including the extra
// trace and off levels.
func LevelName(level slog.Level) string {
	switch {
	case level >= LevelOff:
		return "off"
	case level <= LevelTrace:
		return "trace"
	default:
		return strings.ToLower(level.String())
	}
}

// NewLogger creates a logger writing to w at the given level.
// Records are sanitized by SecureHandler before formatting.
func NewLogger(w io.Writer, level slog.Level, format Format) (*slog.Logger, error) {
	if w == nil {
		return nil, fmt.Errorf("%w: nil writer", ErrLogInit)
	}

	opts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevelName,
	}

	var handler slog.Handler
	switch format {
	case FormatText, "":
		handler = slog.NewTextHandler(w, opts)
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("%w: unknown log format %q", ErrLogInit, format)
	}

	return slog.New(NewSecureHandler(handler)), nil
}

// replaceLevelName prints LevelTrace as "TRACE" instead of "DEBUG-4".
func replaceLevelName(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if level, ok := a.Value.Any().(slog.Level); ok && level <= LevelTrace {
		a.Value = slog.StringValue("TRACE")
	}
	return a
}
