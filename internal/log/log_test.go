package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNew_DefaultConfig(t *testing.T) {
	t.Parallel()

	logger := New(nil)
	assert.NotNil(t, logger)
	logger.Info("dropped")
}

func TestNew_JSONOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&Config{Output: &buf, Level: slog.LevelInfo})
	logger.Info("test message", "key", "value")

	entry := decode(t, &buf)
	assert.Contains(t, entry, "ts")
	assert.Contains(t, entry, "level")
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "value", entry["key"])
}

func TestNew_DebugLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&Config{Output: &buf, Level: slog.LevelDebug})
	logger.Debug("debug message")
	assert.Contains(t, buf.String(), "debug message")
}

func TestNew_InfoHidesDebug(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&Config{Output: &buf, Level: slog.LevelInfo})
	logger.Debug("debug message")
	assert.Empty(t, buf.String())
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestOpenFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "easybranch.log")
	logger, closeFn, err := OpenFile(path, slog.LevelInfo)
	require.NoError(t, err)

	logger.Info("hello")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}

func TestLogPick_Outcomes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		info    PickInfo
		outcome string
		level   string
	}{
		{"selected", PickInfo{Candidates: 3, Selected: true}, "selected", "INFO"},
		{"cancelled", PickInfo{Candidates: 3}, "cancelled", "INFO"},
		{"empty", PickInfo{}, "empty", "INFO"},
		{"error", PickInfo{Candidates: 3, Err: errors.New("tty gone")}, "error", "ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(&Config{Output: &buf})
			tt.info.SessionID = "abc"
			tt.info.Backend = "builtin"
			tt.info.Duration = 1500 * time.Millisecond
			LogPick(logger, tt.info)

			entry := decode(t, &buf)
			assert.Equal(t, tt.outcome, entry["outcome"])
			assert.Equal(t, tt.level, entry["level"])
			assert.Equal(t, "abc", entry["session_id"])
			assert.EqualValues(t, 1500, entry["duration_ms"])
		})
	}
}

func TestLogGitCommand(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&Config{Output: &buf, Level: slog.LevelDebug})
	LogGitCommand(logger, []string{"branch"}, "/repo", nil)
	entry := decode(t, &buf)
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "/repo", entry["dir"])

	buf.Reset()
	LogGitCommand(logger, []string{"fetch"}, "/repo", errors.New("exit status 128"))
	entry = decode(t, &buf)
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "exit status 128", entry["error"])
}
