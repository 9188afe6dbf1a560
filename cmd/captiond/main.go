package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/captionlabs/caption-core/internal/config"
	"github.com/captionlabs/caption-core/internal/runtime"
)

var version = "0.1.0-dev"

func main() {
	var (
		configPath  string
		inputPath   string
		useStdin    bool
		format      string
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.StringVar(&inputPath, "input", "", "Path to a WAV file to transcribe (batch mode)")
	flag.BoolVar(&useStdin, "stdin", false, "Read raw 16kHz mono s16le PCM from stdin (streaming mode)")
	flag.StringVar(&format, "format", "", "Output format: json or text (overrides config)")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println(version)
		return
	}

	// stdout carries the event stream; all logging goes to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(cfg.Telemetry.LogLevel)}))

	if inputPath == "" && !useStdin {
		logger.Error("specify either -input <file.wav> or -stdin")
		os.Exit(1)
	}
	if inputPath != "" && useStdin {
		logger.Error("-input and -stdin are mutually exclusive")
		os.Exit(1)
	}

	rt := runtime.New(cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rt.Run(ctx, runtime.Mode{InputPath: inputPath, Stdin: useStdin, Format: format}); err != nil {
		logger.Error("session exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func logLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
