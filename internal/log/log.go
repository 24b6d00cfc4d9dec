// Package log provides JSON-lines structured logging for easybranch.
//
// The picker owns the terminal while it runs, so log output goes to a file
// rather than stderr. Records look like:
//
//	{"ts":"2026-10-19T10:30:00Z","level":"INFO","msg":"pick finished","session_id":"…","outcome":"selected"}
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config configures the structured logger.
type Config struct {
	// Output is the writer for log output (default: io.Discard)
	Output io.Writer

	// Level is the minimum log level (default: LevelInfo)
	Level slog.Level
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() *Config {
	return &Config{
		Output: io.Discard,
		Level:  slog.LevelInfo,
	}
}

// New creates a new JSON-lines structured logger.
func New(cfg *Config) *slog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	output := cfg.Output
	if output == nil {
		output = io.Discard
	}

	opts := &slog.HandlerOptions{
		Level: cfg.Level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Key = "ts"
			}
			return a
		},
	}

	return slog.New(slog.NewJSONHandler(output, opts))
}

// ParseLevel maps a config level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
}

// OpenFile opens path for appending, creating its directory, and returns a
// logger writing to it together with a close function.
func OpenFile(path string, level slog.Level) (*slog.Logger, func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return New(&Config{Output: f, Level: level}), f.Close, nil
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return New(nil)
}

// PickInfo describes one finished picker session.
type PickInfo struct {
	SessionID  string
	Backend    string
	Candidates int
	Selected   bool
	Duration   time.Duration
	Err        error
}

// LogPick logs the outcome of a picker session.
func LogPick(logger *slog.Logger, info PickInfo) {
	outcome := "cancelled"
	switch {
	case info.Err != nil:
		outcome = "error"
	case info.Selected:
		outcome = "selected"
	case info.Candidates == 0:
		outcome = "empty"
	}

	attrs := []any{
		"session_id", info.SessionID,
		"backend", info.Backend,
		"candidates", info.Candidates,
		"outcome", outcome,
		"duration_ms", info.Duration.Milliseconds(),
	}
	if info.Err != nil {
		logger.Error("pick failed", append(attrs, "error", info.Err)...)
		return
	}
	logger.Info("pick finished", attrs...)
}

// LogGitCommand logs a git invocation at debug level.
func LogGitCommand(logger *slog.Logger, args []string, dir string, err error) {
	if err != nil {
		logger.Warn("git command failed", "args", args, "dir", dir, "error", err)
		return
	}
	logger.Debug("git command", "args", args, "dir", dir)
}

// LogFetchRetry logs a fetch triggered by an empty branch list.
func LogFetchRetry(logger *slog.Logger, search string, attempt int) {
	logger.Info("no branches matched, fetching", "search", search, "attempt", attempt)
}
