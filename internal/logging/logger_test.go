package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerLevels(t *testing.T) {
	tests := []struct {
		name      string
		minLevel  Level
		logLevel  Level
		shouldLog bool
	}{
		{"debug allowed at debug", LevelDebug, LevelDebug, true},
		{"info allowed at debug", LevelDebug, LevelInfo, true},
		{"error allowed at debug", LevelDebug, LevelError, true},
		{"debug blocked at info", LevelInfo, LevelDebug, false},
		{"info allowed at info", LevelInfo, LevelInfo, true},
		{"debug blocked at warn", LevelWarn, LevelDebug, false},
		{"info blocked at warn", LevelWarn, LevelInfo, false},
		{"warn allowed at warn", LevelWarn, LevelWarn, true},
		{"warn blocked at error", LevelError, LevelWarn, false},
		{"error allowed at error", LevelError, LevelError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New()
			logger.SetLevel(tt.minLevel)
			logger.SetOutput(&buf)

			switch tt.logLevel {
			case LevelDebug:
				logger.Debug("test message")
			case LevelInfo:
				logger.Info("test message")
			case LevelWarn:
				logger.Warn("test message")
			case LevelError:
				logger.Error("test message")
			}

			if tt.shouldLog {
				assert.Contains(t, buf.String(), "test message")
			} else {
				assert.Empty(t, buf.String(), "expected no log output")
			}
		})
	}
}

func TestLoggerWith(t *testing.T) {
	var buf bytes.Buffer
	logger := New()
	logger.SetLevel(LevelDebug)
	logger.SetOutput(&buf)

	child := logger.With("exercise", "intro1")
	child.Warn("check failed")

	output := buf.String()
	assert.Contains(t, output, "WARN: check failed")
	assert.Contains(t, output, "exercise")
	assert.Contains(t, output, "intro1")
}

func TestLoggerWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New()
	logger.SetLevel(LevelDebug)
	logger.SetOutput(&buf)

	child := logger.WithFields(map[string]interface{}{
		"exercise": "vecs2",
		"index":    17,
	})
	child.Error("spawn failed")

	output := buf.String()
	assert.Contains(t, output, "ERROR: spawn failed")
	assert.Contains(t, output, "vecs2")
	assert.Contains(t, output, "17")
}

func TestLoggerInlineKeyVals(t *testing.T) {
	var buf bytes.Buffer
	logger := New()
	logger.SetLevel(LevelDebug)
	logger.SetOutput(&buf)

	logger.Warn("failed to save state", "error", errors.New("disk full"), "retry", 3)

	output := buf.String()
	assert.Contains(t, output, "WARN: failed to save state")
	assert.Contains(t, output, "disk full")
	assert.Contains(t, output, "retry")
}

func TestLoggerChildSharesOutput(t *testing.T) {
	logger := New()
	logger.SetLevel(LevelDebug)
	child := logger.With("component", "watcher")

	var buf bytes.Buffer
	logger.SetOutput(&buf)
	child.Info("started")

	assert.Contains(t, buf.String(), "started")
	assert.Contains(t, buf.String(), "watcher")
}

func TestLoggerOriginalUnmodified(t *testing.T) {
	var buf bytes.Buffer
	logger := New()
	logger.SetLevel(LevelDebug)
	logger.SetOutput(&buf)

	_ = logger.With("exercise", "intro1")
	logger.Info("original logger")

	assert.NotContains(t, buf.String(), "intro1")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"", LevelWarn, false},
		{"error", LevelError, false},
		{"loud", LevelWarn, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevelNames(t *testing.T) {
	tests := []struct {
		level Level
		name  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New()
			logger.SetLevel(LevelDebug)
			logger.SetOutput(&buf)

			switch tt.level {
			case LevelDebug:
				logger.Debug("test")
			case LevelInfo:
				logger.Info("test")
			case LevelWarn:
				logger.Warn("test")
			case LevelError:
				logger.Error("test")
			}

			assert.True(t, strings.HasPrefix(buf.String(), tt.name+":"), buf.String())
			assert.Equal(t, tt.name, tt.level.String())
		})
	}
}

func TestConfigure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "rustlings.log")

	closer, err := Configure(FileOptions{Path: path, Level: LevelInfo})
	require.NoError(t, err)

	Info("watch started", "exercises", 3)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "INFO: watch started")

	_, err = Configure(FileOptions{})
	assert.Error(t, err)
}
