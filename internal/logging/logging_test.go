package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := New(Options{Level: "debug", Output: &buf})
	require.NoError(t, err)
	defer closeFn()

	logger.WithField("image", "north.png").Debug("frame located")
	out := buf.String()
	assert.Contains(t, out, "frame located")
	assert.Contains(t, out, "image=north.png")
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := New(Options{Format: "json", Output: &buf})
	require.NoError(t, err)
	defer closeFn()

	logger.Info("sheet written")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "sheet written", entry["msg"])
	assert.Equal(t, "info", entry["level"])
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Options{Level: "warn", Output: &buf})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_InvalidOptions(t *testing.T) {
	_, _, err := New(Options{Level: "chatty"})
	assert.Error(t, err)

	_, _, err = New(Options{Format: "yaml"})
	assert.Error(t, err)
}

func TestNew_LogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "impostor.log")
	var buf bytes.Buffer
	logger, closeFn, err := New(Options{File: path, Output: &buf})
	require.NoError(t, err)

	logger.Info("to both")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to both")
	assert.Contains(t, buf.String(), "to both")
}

func TestWithRunID(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Options{Format: "json", Output: &buf})
	require.NoError(t, err)

	WithRunID(logger).Info("batch started")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	id, ok := entry[RunIDKey].(string)
	require.True(t, ok, "run_id missing from %s", strings.TrimSpace(buf.String()))
	_, err = uuid.Parse(id)
	assert.NoError(t, err)
}

func TestNewRunID_Unique(t *testing.T) {
	assert.NotEqual(t, NewRunID(), NewRunID())
}

func TestDiscard(t *testing.T) {
	Discard().Error("nowhere")
}
