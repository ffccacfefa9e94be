package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/pspoerri/tilewarp/internal/config"
	"github.com/pspoerri/tilewarp/internal/tile"
)

// Set via -ldflags at build time.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// Exit codes.
const (
	exitOK          = 0
	exitError       = 1
	exitInterrupted = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	def := config.Default()
	fs := flag.NewFlagSet("tilewarp", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		configPath  = fs.String("config", "", "YAML configuration file (flags override its values)")
		srcCRS      = fs.String("src-crs", def.SrcCRS, "CRS of the input tiles, e.g. EPSG:32632")
		dstCRS      = fs.String("dst-crs", def.DstCRS, "CRS of the output tiles")
		resampling  = fs.String("resampling", def.Resampling, "Interpolation method (only bilinear)")
		engine      = fs.String("engine", def.Engine, "Projection engine: native, wgs84")
		concurrency = fs.Int("concurrency", def.Concurrency, "Number of tiles converted in parallel")
		jpegQuality = fs.Int("jpeg-quality", def.JPEGQuality, "JPEG quality 1-100")
		webpQuality = fs.Int("webp-quality", def.WebPQuality, "WebP quality 0-100")
		worldFiles  = fs.Bool("world-files", def.WorldFiles, "Write a world file next to every output tile")
		report      = fs.String("report", "", "Write the run summary to this .json or .yaml file")
		logFile     = fs.String("log-file", "", "Also log to this file (rotated)")
		logLevel    = fs.String("log-level", def.Log.Level, "Log level: debug, info, warn, error")
		verbose     = fs.Bool("verbose", false, "Verbose output (same as -log-level debug)")
		showVersion = fs.Bool("version", false, "Print version and exit")
		cpuProfile  = fs.String("cpuprofile", "", "Write CPU profile to file")
	)

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: tilewarp [flags] [input_root output_root]\n\n")
		fmt.Fprintf(stderr, "Reproject a z/x/y tile pyramid into another CRS, keeping its layout and formats.\n")
		fmt.Fprintf(stderr, "Defaults to %s -> %s.\n\n", def.InputRoot, def.OutputRoot)
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitError
	}

	if *showVersion {
		fmt.Fprintf(stdout, "tilewarp %s (commit %s, built %s)\n", version, commit, buildDate)
		return exitOK
	}

	cfg := def
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(stderr, "tilewarp: %v\n", err)
			return exitError
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "src-crs":
			cfg.SrcCRS = *srcCRS
		case "dst-crs":
			cfg.DstCRS = *dstCRS
		case "resampling":
			cfg.Resampling = *resampling
		case "engine":
			cfg.Engine = *engine
		case "concurrency":
			cfg.Concurrency = *concurrency
		case "jpeg-quality":
			cfg.JPEGQuality = *jpegQuality
		case "webp-quality":
			cfg.WebPQuality = *webpQuality
		case "world-files":
			cfg.WorldFiles = *worldFiles
		case "report":
			cfg.Report = *report
		case "log-file":
			cfg.Log.File = *logFile
		case "log-level":
			cfg.Log.Level = *logLevel
		}
	})
	if *verbose {
		cfg.Log.Level = "debug"
	}

	switch fs.NArg() {
	case 0:
	case 2:
		cfg.InputRoot, cfg.OutputRoot = fs.Arg(0), fs.Arg(1)
	default:
		fs.Usage()
		return exitError
	}

	logger, closeLog, err := newLogger(cfg.Log, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "tilewarp: %v\n", err)
		return exitError
	}
	defer closeLog()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			logger.Error("creating CPU profile", "error", err)
			return exitError
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			logger.Error("starting CPU profile", "error", err)
			return exitError
		}
		defer pprof.StopCPUProfile()
		logger.Debug("CPU profiling enabled", "file", *cpuProfile)
	}

	logger.Info("starting",
		"version", version,
		"input", cfg.InputRoot,
		"output", cfg.OutputRoot,
		"src_crs", cfg.SrcCRS,
		"dst_crs", cfg.DstCRS,
		"engine", cfg.Engine,
		"concurrency", cfg.Concurrency)

	summary, err := tile.Convert(ctx, cfg, stdout, logger)
	switch {
	case errors.Is(err, config.ErrConfiguration):
		logger.Error("invalid configuration", "error", err)
		return exitError
	case errors.Is(err, context.Canceled):
		logger.Warn("interrupted, remaining tiles were not attempted")
	case err != nil:
		logger.Error("conversion aborted", "error", err)
		return exitError
	}

	fmt.Fprintln(stdout)
	tile.PrintSummary(stdout, summary)

	if cfg.Report != "" {
		if err := tile.WriteReport(cfg.Report, summary); err != nil {
			logger.Error("writing report", "error", err)
			return exitError
		}
		logger.Info("report written", "file", cfg.Report)
	}

	if err != nil {
		return exitInterrupted
	}
	return exitOK
}

// newLogger builds the process logger: text records on stderr, mirrored to a
// size-rotated file when one is configured.
func newLogger(cfg config.Log, stderr io.Writer) (*slog.Logger, func(), error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(cfg.Level))); err != nil {
		return nil, nil, errors.Wrapf(config.ErrConfiguration, "log level %q", cfg.Level)
	}

	out := stderr
	closeFn := func() {}
	if cfg.File != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}
		out = io.MultiWriter(stderr, lj)
		closeFn = func() { lj.Close() }
	}

	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	return logger, closeFn, nil
}
