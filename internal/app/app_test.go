package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/trunkline-ai/trunkline/internal/callstats"
	"github.com/trunkline-ai/trunkline/internal/config"
	sttmock "github.com/trunkline-ai/trunkline/pkg/provider/stt/mock"
)

// testConfig returns a pure-defaults config for app construction.
func testConfig() *config.Config {
	cfg, err := config.LoadFromReader(strings.NewReader(""))
	if err != nil {
		panic(err)
	}
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config, opts ...Option) *App {
	t.Helper()
	a, err := New(context.Background(), cfg, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func TestNew_DefaultsToMemStore(t *testing.T) {
	a := newTestApp(t, testConfig())
	if _, ok := a.store.(*callstats.MemStore); !ok {
		t.Errorf("store = %T, want *callstats.MemStore", a.store)
	}
}

func TestNew_InjectedStoreWins(t *testing.T) {
	store := callstats.NewMemStore()
	a := newTestApp(t, testConfig(), WithStatsStore(store))
	if a.store != callstats.Store(store) {
		t.Error("injected store was not used")
	}
}

func TestNew_CreatesMockProviderFromConfig(t *testing.T) {
	cfg := testConfig()
	cfg.STT = config.ProviderEntry{Name: "mock"}
	a := newTestApp(t, cfg)
	if a.stt == nil {
		t.Fatal("stt provider not created")
	}
	if _, ok := a.stt.(*sttmock.Provider); !ok {
		t.Errorf("stt = %T, want *mock.Provider", a.stt)
	}
}

func TestNew_UnknownProviderFails(t *testing.T) {
	cfg := testConfig()
	cfg.STT = config.ProviderEntry{Name: "no-such-engine"}
	_, err := New(context.Background(), cfg)
	if !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Errorf("err = %v, want ErrProviderNotRegistered", err)
	}
}

func TestHandler_HealthAndMetricsRoutes(t *testing.T) {
	a := newTestApp(t, testConfig(), WithSTTProvider(&sttmock.Provider{}))

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest("GET", path, nil)
			rec := httptest.NewRecorder()
			a.Handler().ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Errorf("status = %d, want 200", rec.Code)
			}
		})
	}
}

// failingStore always reports an unreachable backend.
type failingStore struct{ callstats.MemStore }

func (f *failingStore) Ping(context.Context) error { return errors.New("unreachable") }

func TestHandler_ReadyzFailsWhenStoreDown(t *testing.T) {
	a := newTestApp(t, testConfig(), WithStatsStore(&failingStore{}))

	req := httptest.NewRequest("GET", "/readyz", nil)
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHandler_MediaEndpointRejectsPlainGET(t *testing.T) {
	a := newTestApp(t, testConfig())

	// Without an Upgrade header the WebSocket accept fails.
	req := httptest.NewRequest("GET", "/media", nil)
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)

	if rec.Code == http.StatusOK {
		t.Error("plain GET should not succeed on the media endpoint")
	}
}

func TestDefaultRegistry_DeepgramRequiresKey(t *testing.T) {
	reg := DefaultRegistry()
	_, err := reg.CreateSTT(config.ProviderEntry{Name: "deepgram"})
	if err == nil {
		t.Error("deepgram factory should fail without an API key")
	}
}

func TestShutdown_Idempotent(t *testing.T) {
	a := newTestApp(t, testConfig())

	ctx := context.Background()
	if err := a.Shutdown(ctx); err != nil {
		t.Fatalf("first Shutdown: %v", err)
	}
	if err := a.Shutdown(ctx); err != nil {
		t.Fatalf("second Shutdown: %v", err)
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	cfg := testConfig()
	cfg.Server.ListenAddr = "127.0.0.1:0"
	a := newTestApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run returned %v, want nil on clean shutdown", err)
	}
}
