// Package app wires all Trunkline subsystems into a running HTTP server.
//
// The App struct owns the full lifecycle: New creates and connects all
// subsystems, Run serves until the context is cancelled, and Shutdown tears
// everything down in order.
//
// For testing, inject doubles via functional options (WithSTTProvider,
// WithStatsStore, WithMetrics). When an option is not provided, New creates
// real implementations from the config.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/trunkline-ai/trunkline/internal/callstats"
	"github.com/trunkline-ai/trunkline/internal/config"
	"github.com/trunkline-ai/trunkline/internal/health"
	"github.com/trunkline-ai/trunkline/internal/mediastream"
	"github.com/trunkline-ai/trunkline/internal/observe"
	"github.com/trunkline-ai/trunkline/pkg/provider/stt"
	"github.com/trunkline-ai/trunkline/pkg/provider/stt/deepgram"
	sttmock "github.com/trunkline-ai/trunkline/pkg/provider/stt/mock"
)

// shutdownGrace is how long the HTTP server gets to drain connections once
// Run's context is cancelled.
const shutdownGrace = 10 * time.Second

// App owns all subsystem lifetimes for the Trunkline media server.
type App struct {
	cfg *config.Config

	stt     stt.Provider
	store   callstats.Store
	metrics *observe.Metrics
	srv     *http.Server

	// closers are called in order during Shutdown.
	closers []func() error

	// stopOnce guards the Shutdown path.
	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithSTTProvider injects a speech engine instead of creating one from config.
func WithSTTProvider(p stt.Provider) Option {
	return func(a *App) { a.stt = p }
}

// WithStatsStore injects a stats store instead of creating one from config.
func WithStatsStore(s callstats.Store) Option {
	return func(a *App) { a.store = s }
}

// WithMetrics injects a metrics instance instead of using the global default.
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// DefaultRegistry returns a [config.Registry] with the built-in STT provider
// factories registered.
func DefaultRegistry() *config.Registry {
	reg := config.NewRegistry()
	reg.RegisterSTT("deepgram", func(entry config.ProviderEntry) (stt.Provider, error) {
		var opts []deepgram.Option
		if entry.Model != "" {
			opts = append(opts, deepgram.WithModel(entry.Model))
		}
		if entry.Language != "" {
			opts = append(opts, deepgram.WithLanguage(entry.Language))
		}
		if entry.BaseURL != "" {
			opts = append(opts, deepgram.WithEndpoint(entry.BaseURL))
		}
		return deepgram.New(entry.APIKey, opts...)
	})
	reg.RegisterSTT("mock", func(config.ProviderEntry) (stt.Provider, error) {
		return &sttmock.Provider{}, nil
	})
	return reg
}

// ─── New ─────────────────────────────────────────────────────────────────────

// New creates an App by wiring all subsystems together: the STT provider from
// the registry, the stats store, the media stream server, health checks, and
// the /metrics endpoint. Use Option functions to inject test doubles.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{cfg: cfg}
	for _, o := range opts {
		o(a)
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}

	// ── 1. Speech engine ─────────────────────────────────────────────────
	if err := a.initSTT(); err != nil {
		return nil, fmt.Errorf("app: init stt: %w", err)
	}

	// ── 2. Stats store ───────────────────────────────────────────────────
	if err := a.initStore(ctx); err != nil {
		return nil, fmt.Errorf("app: init stats store: %w", err)
	}

	// ── 3. HTTP server ───────────────────────────────────────────────────
	a.srv = &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: a.buildHandler(),
	}

	return a, nil
}

// initSTT creates the configured speech engine provider via the registry.
func (a *App) initSTT() error {
	if a.stt != nil || a.cfg.STT.Name == "" {
		return nil
	}
	prov, err := DefaultRegistry().CreateSTT(a.cfg.STT)
	if err != nil {
		return err
	}
	a.stt = prov
	slog.Info("speech engine configured", "provider", a.cfg.STT.Name)
	return nil
}

// initStore connects the Postgres stats store, falling back to memory when no
// DSN is configured.
func (a *App) initStore(ctx context.Context) error {
	if a.store != nil {
		return nil
	}
	if a.cfg.Stats.PostgresDSN == "" {
		a.store = callstats.NewMemStore()
		slog.Info("call stats kept in memory only")
		return nil
	}
	store, err := callstats.Connect(ctx, a.cfg.Stats.PostgresDSN)
	if err != nil {
		return err
	}
	a.store = store
	a.closers = append(a.closers, func() error {
		store.Close()
		return nil
	})
	slog.Info("call stats persisted to postgres")
	return nil
}

// buildHandler assembles the HTTP mux: the media WebSocket endpoint, health
// probes, and Prometheus metrics, all behind the observability middleware.
func (a *App) buildHandler() http.Handler {
	media := mediastream.New(mediastream.Config{
		Continuity:       a.cfg.Media.Continuity,
		DropSilentFrames: a.cfg.Media.DropSilentFrames,
		SilenceThreshold: a.cfg.Transcode.SilenceThreshold,
		Language:         a.cfg.STT.Language,
	}, a.stt, a.store, a.metrics)

	checks := []health.Checker{
		{Name: "stats_store", Check: a.store.Ping},
	}
	if a.cfg.STT.Name != "" {
		checks = append(checks, health.Checker{Name: "stt", Check: func(context.Context) error {
			if a.stt == nil {
				return errors.New("provider not initialised")
			}
			return nil
		}})
	}

	mux := http.NewServeMux()
	mux.Handle("GET "+a.cfg.Media.Path, media)
	health.New(checks...).Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	return observe.Middleware(a.metrics)(mux)
}

// ─── Run ─────────────────────────────────────────────────────────────────────

// Run serves HTTP until ctx is cancelled, then drains connections and returns.
// A clean shutdown returns nil.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("listening", "addr", a.cfg.Server.ListenAddr, "media_path", a.cfg.Media.Path, "tls", a.cfg.Server.TLS != nil)
		var err error
		if tls := a.cfg.Server.TLS; tls != nil {
			err = a.srv.ListenAndServeTLS(tls.CertFile, tls.KeyFile)
		} else {
			err = a.srv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return a.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// ─── Shutdown ────────────────────────────────────────────────────────────────

// Shutdown stops the HTTP server and tears down subsystems in order. It
// respects the context deadline; closers remaining when ctx expires are
// skipped and the context error is returned.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		slog.Info("shutting down", "closers", len(a.closers))

		if err := a.srv.Shutdown(ctx); err != nil {
			slog.Warn("http shutdown error", "err", err)
		}

		for i, closer := range a.closers {
			select {
			case <-ctx.Done():
				slog.Warn("shutdown deadline exceeded", "remaining", len(a.closers)-i)
				shutdownErr = ctx.Err()
				return
			default:
			}
			if err := closer(); err != nil {
				slog.Warn("closer error", "index", i, "err", err)
			}
		}

		slog.Info("shutdown complete")
	})
	return shutdownErr
}

// Handler exposes the assembled HTTP handler for tests.
func (a *App) Handler() http.Handler {
	return a.srv.Handler
}
