// Package logging builds the logrus logger shared by the command, the
// sheet builder and the MCP server.
//
// Output always goes to stderr because stdout carries the MCP protocol in
// serve mode. When a log file is configured, entries are also written to a
// size-rotated file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// RunIDKey is the field carrying the identifier of one batch or request.
const RunIDKey = "run_id"

// Options configures New.
type Options struct {
	Level  string
	Format string // "text" or "json"
	File   string

	// Output replaces stderr; used by tests.
	Output io.Writer
}

// New creates a logger from opts.
//
// An empty level means info. The returned close function flushes and closes
// the rotating file writer, if any, and is always safe to call.
func New(opts Options) (*logrus.Logger, func() error, error) {
	logger := logrus.New()

	level := opts.Level
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}
	logger.SetLevel(lvl)

	switch opts.Format {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "02 Jan 06 - 15:04:05",
		})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	var out io.Writer = os.Stderr
	if opts.Output != nil {
		out = opts.Output
	}
	closer := func() error { return nil }

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("log directory: %w", err)
		}
		fileWriter := &lumberjack.Logger{
			Filename:   opts.File,
			LocalTime:  true,
			Compress:   true,
			MaxSize:    100,
			MaxAge:     7,
			MaxBackups: 3,
		}
		out = io.MultiWriter(out, fileWriter)
		closer = fileWriter.Close
	}

	logger.SetOutput(out)
	return logger, closer, nil
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// NewRunID returns a fresh identifier for correlating log entries.
func NewRunID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return "unknown"
	}
	return id.String()
}

// WithRunID returns an entry tagged with a new run identifier.
func WithRunID(logger logrus.FieldLogger) *logrus.Entry {
	return logger.WithField(RunIDKey, NewRunID())
}
