// Package log builds the slog loggers used by frenscrape.
//
// Log output always goes to stderr so that standard output carries nothing
// but CSV rows. The verbosity counter of the CLI (-v, -vv, ...) maps onto six
// levels: off, error, warn, info, debug and trace. LevelTrace and LevelOff
// extend the slog levels at both ends.
//
// Records pass through SecureHandler, which masks attribute values that look
// like credentials (cookies, tokens, passwords) and strips passwords from
// URLs embedded in attribute values, e.g. a --base URL carrying basic-auth
// user info.
//
// # Usage
//
//	logger, err := log.NewLogger(os.Stderr, log.LevelForVerbosity(3), log.FormatText)
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger)
package log
