package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/impostor-maker/internal/config"
	"github.com/ironsheep/impostor-maker/internal/impostor"
	"github.com/ironsheep/impostor-maker/internal/logging"
	"github.com/ironsheep/impostor-maker/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const usageText = `impostormaker - build impostor sprite sheets from framed green-screen renders

Usage:
  impostormaker [options] files...   Build a sheet from one render per face
  impostormaker serve [options]      Run the MCP server on stdin/stdout
  impostormaker --version            Print version information
  impostormaker --help               Print this help message

Options:
`

const envText = `
Environment variables (also read from ./.env):
  IMPOSTOR_LOG_LEVEL=debug           Log level (trace, debug, info, warn, error)
  IMPOSTOR_LOG_FORMAT=json           Log format (text, json)
  IMPOSTOR_LOG_FILE=path             Also log to a rotating file
  IMPOSTOR_CHROMA_RANGE=h,s,v:h,s,v  Fixed green-screen HSV range
  IMPOSTOR_<FIELD>=value             Any other configuration field

Logs go to stderr. In serve mode stdout carries the MCP protocol.
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		switch args[0] {
		case "--version", "version":
			fmt.Fprintf(stdout, "impostormaker %s\n", Version)
			fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
			return 0
		}
	}

	serve := len(args) > 0 && args[0] == "serve"
	if serve {
		args = args[1:]
	}

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(stderr, "impostormaker: %v\n", err)
		return 1
	}

	fs := newFlagSet(&cfg, stderr)
	output := fs.String("o", "impostor.png", "output sheet `path`")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	cfg.Form = strings.ToUpper(cfg.Form)
	if cfg.Verbose {
		cfg.LogLevel = "debug"
	}

	logger, closeLog, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
		Output: stderr,
	})
	if err != nil {
		fmt.Fprintf(stderr, "impostormaker: %v\n", err)
		return 1
	}
	defer closeLog()

	logger.WithFields(logrus.Fields{
		"version": Version,
		"built":   BuildTime,
		"commit":  GitCommit,
	}).Debug("impostormaker starting")

	if serve {
		server.Version = Version
		srv := server.New(cfg, logger)
		if err := srv.RunIO(ctx, stdin, stdout); err != nil && !errors.Is(err, context.Canceled) {
			logger.WithError(err).Error("server error")
			return 1
		}
		return 0
	}

	files := fs.Args()
	if len(files) == 0 {
		fmt.Fprintln(stderr, "impostormaker: no input files")
		fs.Usage()
		return 2
	}

	if err := build(ctx, cfg, logger, files, *output); err != nil {
		logger.WithError(err).Error("build failed")
		return 1
	}
	return 0
}

// newFlagSet binds the command-line options to cfg. Flag defaults are the
// values already in cfg, so flags override environment settings.
func newFlagSet(cfg *config.Config, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("impostormaker", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() {
		fmt.Fprint(out, usageText)
		fs.PrintDefaults()
		fmt.Fprint(out, envText)
	}

	fs.Float64Var(&cfg.FrameWidth, "width", cfg.FrameWidth, "billboard width in meters")
	fs.Float64Var(&cfg.FrameHeight, "height", cfg.FrameHeight, "billboard height in meters")
	fs.IntVar(&cfg.Rez, "rez", cfg.Rez, "face width in pixels")
	fs.IntVar(&cfg.Faces, "faces", cfg.Faces, "number of renders; must match the file count")
	fs.StringVar(&cfg.Form, "form", cfg.Form, "sheet layout: STAR (all sides) or TSTAR (sides, top, bottom)")
	fs.BoolVar(&cfg.SkipFailed, "skip-failed", cfg.SkipFailed, "leave out renders that fail instead of aborting")
	fs.StringVar(&cfg.DebugDir, "debug-dir", cfg.DebugDir, "write frame overlays and tiles to `dir`")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "verbose (debug) logging")
	return fs
}

func build(ctx context.Context, cfg config.Config, logger *logrus.Logger, files []string, output string) error {
	b, err := impostor.New(cfg, impostor.WithLogger(logger))
	if err != nil {
		return err
	}

	sheet, err := b.Build(ctx, files)
	if err != nil {
		return err
	}
	for _, s := range sheet.Skipped {
		logger.WithField("image", s.Path).Warnf("skipped: %v", s.Err)
	}

	if err := sheet.Save(output); err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"output": output,
		"width":  sheet.Image.Bounds().Dx(),
		"height": sheet.Image.Bounds().Dy(),
		"tiles":  len(sheet.Tiles),
	}).Info("impostor sheet written")
	return nil
}
