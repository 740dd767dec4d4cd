package worker

import (
	"context"
	"log/slog"
	"time"
)

// SweepableStore defines the session store operations needed by the sweeper.
type SweepableStore interface {
	Sweep(now time.Time) int
}

// SessionSweeper evicts expired pending interactions on an interval. Only
// the in-memory session backend needs it; Redis expires keys on its own.
type SessionSweeper struct {
	store    SweepableStore
	interval time.Duration
}

// NewSessionSweeper creates a sweeper with the given store and interval.
func NewSessionSweeper(store SweepableStore, interval time.Duration) *SessionSweeper {
	return &SessionSweeper{
		store:    store,
		interval: interval,
	}
}

// Run starts the sweeper loop. It blocks until ctx is cancelled.
func (s *SessionSweeper) Run(ctx context.Context) {
	slog.Info("worker started",
		"component", "worker",
		"worker", "session-sweeper",
		"interval", s.interval.String(),
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopped",
				"component", "worker",
				"worker", "session-sweeper",
				"reason", "context_cancelled",
			)
			return
		case <-ticker.C:
			if swept := s.store.Sweep(time.Now().UTC()); swept > 0 {
				slog.Info("expired interactions swept",
					"component", "worker",
					"worker", "session-sweeper",
					"swept", swept,
				)
			}
		}
	}
}
