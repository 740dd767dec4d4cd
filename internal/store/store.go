package store

import (
	"context"
	"time"

	"github.com/hardikSrivastav/cal.it/internal/types"
)

// DefaultListLimit caps ListEntries results when the filter sets no limit.
const DefaultListLimit = 50

// EntryFilter narrows ListEntries results. Zero-value fields leave the
// corresponding dimension unfiltered.
type EntryFilter struct {
	UserID   string
	MealType types.MealType
	From     time.Time // inclusive lower bound on logged_at
	To       time.Time // exclusive upper bound on logged_at
	Limit    int
}

// Store defines the interface contract for food entry storage operations.
type Store interface {
	SaveEntry(ctx context.Context, entry *types.FoodEntry) error
	GetEntry(ctx context.Context, id string) (*types.FoodEntry, error)
	ListEntries(ctx context.Context, filter EntryFilter) ([]types.FoodEntry, error)
	DailySummary(ctx context.Context, userID string, day time.Time) (*types.DailySummary, error)
	GetStats(ctx context.Context) (*types.StoreStats, error)
	GenerateSnapshot(ctx context.Context) error
	GetSnapshotPath(ctx context.Context) (string, error)
	Close() error
}
