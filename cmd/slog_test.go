package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelativeSource(t *testing.T) {
	assert.Equal(t, "internal/auth/service.go", relativeSource("/home/dev/profiledesk/internal/auth/service.go"))
	assert.Equal(t, "cmd/main.go", relativeSource("github.com/loganlanou/profiledesk/cmd/main.go"))
	assert.Equal(t, "/opt/app/main.go", relativeSource("/opt/app/main.go"))
}

func TestNewLogHandler_JSON(t *testing.T) {
	var buf bytes.Buffer
	handler, err := newLogHandler(&buf, "warn", "")
	require.NoError(t, err)

	logger := slog.New(handler)
	logger.Info("dropped")
	logger.Warn("kept", "session_id", "sid-1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, "sid-1", line["session_id"])
}

func TestNewLogHandler_MirrorsToFile(t *testing.T) {
	var buf bytes.Buffer
	file := filepath.Join(t.TempDir(), "profiledesk.log")
	handler, err := newLogHandler(&buf, "", file)
	require.NoError(t, err)

	slog.New(handler).Info("hello")

	written, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, buf.String(), string(written))
}

func TestNewLogHandler_Debug(t *testing.T) {
	var buf bytes.Buffer
	handler, err := newLogHandler(&buf, "debug", "")
	require.NoError(t, err)

	slog.New(handler).Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestNewLogHandler_InvalidLevel(t *testing.T) {
	_, err := newLogHandler(&bytes.Buffer{}, "loud", "")
	assert.Error(t, err)
}
