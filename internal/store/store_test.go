package store

import (
	"context"
	"time"

	"github.com/hardikSrivastav/cal.it/internal/types"
)

// mockStore is a compile-time check that the Store interface can be implemented.
type mockStore struct{}

var _ Store = (*mockStore)(nil)

func (m *mockStore) SaveEntry(ctx context.Context, entry *types.FoodEntry) error {
	return nil
}
func (m *mockStore) GetEntry(ctx context.Context, id string) (*types.FoodEntry, error) {
	return nil, nil
}
func (m *mockStore) ListEntries(ctx context.Context, filter EntryFilter) ([]types.FoodEntry, error) {
	return nil, nil
}
func (m *mockStore) DailySummary(ctx context.Context, userID string, day time.Time) (*types.DailySummary, error) {
	return nil, nil
}
func (m *mockStore) GetStats(ctx context.Context) (*types.StoreStats, error) {
	return nil, nil
}
func (m *mockStore) GenerateSnapshot(ctx context.Context) error {
	return nil
}
func (m *mockStore) GetSnapshotPath(ctx context.Context) (string, error) {
	return "", nil
}
func (m *mockStore) Close() error {
	return nil
}
