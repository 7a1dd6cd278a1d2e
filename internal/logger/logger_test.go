package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" warn "))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestNew_WritesToRotatingFile(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	path := filepath.Join(t.TempDir(), "logs", "app.log")

	l, err := New(Config{Level: "info", Format: "json", FilePath: path})
	require.NoError(t, err)

	l.Info("task created", "task_id", "t1")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"task_id":"t1"`)
}

func TestRotatingFile_UsesConfiguredLimits(t *testing.T) {
	file := rotatingFile(Config{FilePath: "app.log", MaxSizeMB: 10, MaxBackups: 2, MaxAgeDays: 7})
	assert.Equal(t, 10, file.MaxSize)
	assert.Equal(t, 2, file.MaxBackups)
	assert.Equal(t, 7, file.MaxAge)

	file = rotatingFile(Config{FilePath: "app.log"})
	assert.Equal(t, 100, file.MaxSize)
	assert.Equal(t, 5, file.MaxBackups)
	assert.Equal(t, 30, file.MaxAge)
}
