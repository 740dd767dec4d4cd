// Package e2e wires the full service in-process: real sqlite store, memory
// sessions, fake nutrition backends, and the HTTP API exercised through the
// public client.
package e2e

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/hardikSrivastav/cal.it/internal/api"
	"github.com/hardikSrivastav/cal.it/internal/interpret"
	"github.com/hardikSrivastav/cal.it/internal/session"
	"github.com/hardikSrivastav/cal.it/internal/store"
	"github.com/hardikSrivastav/cal.it/internal/types"
	"github.com/hardikSrivastav/cal.it/pkg/calit"
)

// envOptions configures one in-process service instance.
type envOptions struct {
	mode     interpret.Mode
	backends interpret.Backends
	apiKey   string
	ttl      time.Duration
}

// env is one running service instance plus handles for assertions.
type env struct {
	client   *calit.Client
	store    *store.SQLiteStore
	sessions *session.MemoryStore
	server   *httptest.Server
}

// startEnv boots the full stack and returns a client pointed at it.
// Everything is torn down via t.Cleanup.
func startEnv(t *testing.T, opts envOptions) *env {
	t.Helper()

	if opts.mode == "" {
		opts.mode = interpret.ModeAPI
	}
	if opts.ttl == 0 {
		opts.ttl = time.Minute
	}

	db, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "calit.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	sessions := session.NewMemoryStore()
	manager := session.NewManager(sessions, opts.ttl)

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	interpreter := interpret.NewInterpreter(opts.mode, opts.backends, quiet)

	handler := api.NewHandler(interpreter, manager, db, opts.apiKey, "e2e")
	server := httptest.NewServer(api.NewRouter(handler))
	t.Cleanup(server.Close)

	client, err := calit.New(calit.Config{
		BaseURL: server.URL,
		APIKey:  opts.apiKey,
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}

	return &env{
		client:   client,
		store:    db,
		sessions: sessions,
		server:   server,
	}
}

// fakeAnalyzer is a scripted language model backend.
type fakeAnalyzer struct {
	available bool
	analyze   func(ctx context.Context, message string) (*types.NutritionEstimate, error)
	extract   func(ctx context.Context, foodName, results string) (*types.NutritionEstimate, error)
}

func (f *fakeAnalyzer) Available() bool { return f.available }

func (f *fakeAnalyzer) ModelName() string { return "fake-model" }

func (f *fakeAnalyzer) Analyze(ctx context.Context, message string) (*types.NutritionEstimate, error) {
	if f.analyze == nil {
		return nil, nil
	}
	return f.analyze(ctx, message)
}

func (f *fakeAnalyzer) ExtractNutrition(ctx context.Context, foodName, results string) (*types.NutritionEstimate, error) {
	if f.extract == nil {
		return nil, nil
	}
	return f.extract(ctx, foodName, results)
}

// fakeSource is a scripted nutrition lookup backend.
type fakeSource struct {
	available bool
	lookup    func(ctx context.Context, foodName string) (*types.NutritionEstimate, error)
}

func (f *fakeSource) Available() bool { return f.available }

func (f *fakeSource) Lookup(ctx context.Context, foodName string) (*types.NutritionEstimate, error) {
	if f.lookup == nil {
		return nil, nil
	}
	return f.lookup(ctx, foodName)
}
