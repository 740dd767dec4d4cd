package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hardikSrivastav/cal.it/internal/api"
	"github.com/hardikSrivastav/cal.it/internal/config"
	"github.com/hardikSrivastav/cal.it/internal/interpret"
	"github.com/hardikSrivastav/cal.it/internal/session"
	"github.com/hardikSrivastav/cal.it/internal/snapshot"
	"github.com/hardikSrivastav/cal.it/internal/store"
	"github.com/hardikSrivastav/cal.it/internal/worker"
)

// Version is set at build time via ldflags: -ldflags "-X main.Version=1.0.0"
var Version = "dev"

var (
	configPath  string
	logLevelArg string
)

var rootCmd = &cobra.Command{
	Use:   "calit",
	Short: "cal.it - conversational food logging service",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file path (overrides CALIT_CONFIG_PATH)")
	rootCmd.PersistentFlags().StringVar(&logLevelArg, "log-level", "",
		"Log level: debug, info, warn, error (overrides config)")
	rootCmd.AddCommand(interpretCmd)
}

// loadConfig resolves configuration from the --config flag or the default
// search path.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

func run(cmd *cobra.Command, args []string) error {
	// 1. Signal handling
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// 2. Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if logLevelArg != "" {
		cfg.Log.Level = logLevelArg
	}
	slog.Info("configuration loaded")

	// 3. Initialize logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)
	slog.Info("logger initialized", "level", cfg.Log.Level)

	// 4. Initialize store (migrations, WAL mode)
	db, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	slog.Info("store initialized", "path", cfg.Database.Path)

	// 5. Initialize session store and manager
	var sessions session.Store
	var memSessions *session.MemoryStore
	switch cfg.Session.Backend {
	case "redis":
		rdb, err := session.NewRedisClient(cfg.Redis.URL)
		if err != nil {
			db.Close()
			return err
		}
		sessions = session.NewRedisStore(rdb)
	default:
		memSessions = session.NewMemoryStore()
		sessions = memSessions
	}
	manager := session.NewManager(sessions, time.Duration(cfg.Session.TTL))
	slog.Info("sessions initialized",
		"backend", cfg.Session.Backend,
		"ttl", time.Duration(cfg.Session.TTL).String())

	// 6. Initialize interpretation pipeline
	interpreter := interpret.NewInterpreter(
		interpret.Mode(cfg.Interpreter.Mode), buildBackends(cfg), logger)
	slog.Info("interpreter initialized", "mode", string(interpreter.Mode()))

	// 7. Initialize HTTP router
	handler := api.NewHandler(interpreter, manager, db, cfg.Server.APIKey, Version)
	router := api.NewRouter(handler)
	slog.Info("router initialized")

	// 8. Configure HTTP server
	addr := cfg.Server.Addr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout),
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout),
	}

	// 9. Background workers
	var wg sync.WaitGroup
	if memSessions != nil {
		sweeper := worker.NewSessionSweeper(memSessions,
			time.Duration(cfg.Session.SweepInterval))
		startWorker(ctx, &wg, "session-sweeper", sweeper.Run)
	}
	if cfg.Snapshot.Enabled {
		uploader, err := snapshot.NewUploader(cfg.Snapshot)
		if err != nil {
			db.Close()
			return fmt.Errorf("snapshot uploader: %w", err)
		}
		sw := worker.NewSnapshotWorker(db, uploader,
			time.Duration(cfg.Snapshot.Interval))
		startWorker(ctx, &wg, "snapshot", sw.Run)
	}

	// 10. Start HTTP server in goroutine
	go func() {
		slog.Info("server starting", "address", addr)
		// ErrServerClosed is the expected error when Shutdown() is called
		// gracefully; anything else is a real failure.
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	// 11. Block until signal received
	<-ctx.Done()
	slog.Info("shutdown initiated")

	// 12. Graceful shutdown: drain HTTP, stop workers, close the store last.
	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout))
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	wg.Wait()

	if err := db.Close(); err != nil {
		slog.Error("store close error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
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

// startWorker launches a background worker goroutine that respects context
// cancellation. Workers are tracked via WaitGroup for graceful shutdown.
func startWorker(ctx context.Context, wg *sync.WaitGroup, name string, fn func(ctx context.Context)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("worker started", "worker", name)
		fn(ctx)
		slog.Info("worker stopped", "worker", name)
	}()
}
