package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantLevel zerolog.Level
	}{
		{"default warn level", 0, zerolog.WarnLevel},
		{"info level", 1, zerolog.InfoLevel},
		{"debug level", 2, zerolog.DebugLevel},
		{"trace level", 3, zerolog.TraceLevel},
		{"high verbosity defaults to trace", 5, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			t.Setenv("HOSTSUB_STATE_DIR", "")
			t.Setenv("XDG_STATE_HOME", tempDir)

			SetupLoggerTo(&bytes.Buffer{}, tt.verbosity)

			assert.Equal(t, tt.wantLevel, zerolog.GlobalLevel())

			logPath := filepath.Join(tempDir, "hostsub", "hostsub.log")
			_, err := os.Stat(logPath)
			assert.NoError(t, err, "log file should exist at %s", logPath)
		})
	}
}

func TestGetLogFilePath(t *testing.T) {
	t.Run("state dir override", func(t *testing.T) {
		t.Setenv("HOSTSUB_STATE_DIR", "/custom/hostsub")
		assert.Equal(t, "/custom/hostsub/hostsub.log", getLogFilePath())
	})

	t.Run("xdg state home", func(t *testing.T) {
		t.Setenv("HOSTSUB_STATE_DIR", "")
		t.Setenv("XDG_STATE_HOME", "/custom/state")
		assert.Equal(t, "/custom/state/hostsub/hostsub.log", getLogFilePath())
	})

	t.Run("home fallback", func(t *testing.T) {
		t.Setenv("HOSTSUB_STATE_DIR", "")
		t.Setenv("XDG_STATE_HOME", "")
		assert.Contains(t, getLogFilePath(), filepath.Join(".local", "state", "hostsub", "hostsub.log"))
	})
}

func TestGetLogger(t *testing.T) {
	var buf bytes.Buffer
	original := log.Logger
	t.Cleanup(func() { log.Logger = original })

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = zerolog.New(&buf)

	logger := GetLogger("backup")
	logger.Info().Msg("snapshot written")

	assert.Contains(t, buf.String(), `"component":"backup"`)
	assert.Contains(t, buf.String(), "snapshot written")
}

func TestLogOperationStart(t *testing.T) {
	var buf bytes.Buffer
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	logger := zerolog.New(&buf)

	done := LogOperationStart(logger, "subscribe")
	require.Contains(t, buf.String(), "Operation started")
	done()
	assert.Contains(t, buf.String(), "Operation completed")
	assert.Contains(t, buf.String(), `"operation":"subscribe"`)
}
