// Command trunkline is the main entry point for the Trunkline media server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/trunkline-ai/trunkline/internal/app"
	"github.com/trunkline-ai/trunkline/internal/config"
	"github.com/trunkline-ai/trunkline/internal/observe"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	envFile := flag.String("env-file", "", "optional .env file loaded before the config (for API keys)")
	flag.Parse()

	// ── Environment preload ───────────────────────────────────────────────────
	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			fmt.Fprintf(os.Stderr, "trunkline: load env file %q: %v\n", *envFile, err)
			return 1
		}
	} else {
		// Best effort; a missing .env is fine.
		_ = godotenv.Load()
	}

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "trunkline: config file %q not found\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "trunkline: %v\n", err)
		}
		return 1
	}
	if cfg.STT.APIKey == "" {
		cfg.STT.APIKey = os.Getenv("TRUNKLINE_STT_API_KEY")
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("trunkline starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName: "trunkline",
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(flushCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Startup summary ───────────────────────────────────────────────────────
	printStartupSummary(cfg)

	application, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialise application", "err", err)
		return 1
	}

	slog.Info("server ready, press Ctrl+C to shut down")

	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}

	slog.Info("goodbye")
	return 0
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config) {
	stt := cfg.STT.Name
	if stt == "" {
		stt = "(not configured)"
	} else if cfg.STT.Model != "" {
		stt = cfg.STT.Name + " / " + cfg.STT.Model
	}
	stats := "memory"
	if cfg.Stats.PostgresDSN != "" {
		stats = "postgres"
	}
	slog.Info("configuration",
		"media_path", cfg.Media.Path,
		"continuity", cfg.Media.Continuity,
		"drop_silent_frames", cfg.Media.DropSilentFrames,
		"stt", stt,
		"stats", stats,
		"tls", cfg.Server.TLS != nil,
	)
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
