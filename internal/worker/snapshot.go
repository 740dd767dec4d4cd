package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/hardikSrivastav/cal.it/internal/snapshot"
)

// SnapshotStore defines the store operations needed by the snapshot worker.
type SnapshotStore interface {
	GenerateSnapshot(ctx context.Context) error
	GetSnapshotPath(ctx context.Context) (string, error)
}

// SnapshotWorker generates periodic database snapshots and ships them to
// remote storage when an uploader is configured.
type SnapshotWorker struct {
	store     SnapshotStore
	uploader  snapshot.Uploader
	interval  time.Duration
	retryBase time.Duration
}

// NewSnapshotWorker creates a worker with the given store, uploader, and
// interval. A nil uploader keeps snapshots local.
func NewSnapshotWorker(store SnapshotStore, uploader snapshot.Uploader, interval time.Duration) *SnapshotWorker {
	return &SnapshotWorker{
		store:     store,
		uploader:  uploader,
		interval:  interval,
		retryBase: time.Second,
	}
}

// Run starts the worker loop. Generates a snapshot immediately on start,
// then on each interval. Respects context cancellation for graceful shutdown.
func (w *SnapshotWorker) Run(ctx context.Context) {
	slog.Info("worker started",
		"component", "worker",
		"worker", "snapshot",
		"interval", w.interval.String(),
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Generate a snapshot immediately on start
	w.cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopped",
				"component", "worker",
				"worker", "snapshot",
				"reason", "context_cancelled",
			)
			return
		case <-ticker.C:
			w.cycle(ctx)
		}
	}
}

// cycle generates one snapshot and uploads it when configured.
func (w *SnapshotWorker) cycle(ctx context.Context) {
	start := time.Now()

	if err := w.store.GenerateSnapshot(ctx); err != nil {
		if ctx.Err() != nil {
			return // graceful shutdown
		}
		slog.Warn("snapshot generation failed",
			"component", "worker",
			"worker", "snapshot",
			"action", "snapshot_failed",
			"error", err,
		)
		return
	}

	slog.Info("snapshot generated",
		"component", "worker",
		"worker", "snapshot",
		"action", "snapshot_complete",
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if w.uploader != nil {
		w.upload(ctx)
	}
}

// upload ships the snapshot, retrying transient failures with fibonacci
// backoff. Upload failures are logged as warnings and are NOT fatal: the
// local snapshot remains valid.
func (w *SnapshotWorker) upload(ctx context.Context) {
	path, err := w.store.GetSnapshotPath(ctx)
	if err != nil {
		slog.Warn("failed to resolve snapshot path for upload",
			"component", "worker",
			"worker", "snapshot",
			"action", "upload_failed",
			"error", err,
		)
		return
	}

	var key string
	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(w.retryBase))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		k, uploadErr := w.uploader.Upload(ctx, path)
		if uploadErr != nil {
			return retry.RetryableError(uploadErr)
		}
		key = k
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Warn("snapshot upload failed",
			"component", "worker",
			"worker", "snapshot",
			"action", "upload_failed",
			"error", err,
		)
		return
	}

	// NoopUploader returns an empty key; nothing was shipped
	if key != "" {
		slog.Info("snapshot uploaded",
			"component", "worker",
			"worker", "snapshot",
			"action", "upload_complete",
			"object_key", key,
		)
	}
}
