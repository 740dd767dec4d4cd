package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hardikSrivastav/cal.it/internal/types"
	_ "modernc.org/sqlite"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testEntry(userID string, loggedAt time.Time) *types.FoodEntry {
	return &types.FoodEntry{
		UserID:     userID,
		FoodName:   "dal makhani",
		MealType:   types.MealLunch,
		Calories:   280,
		Proteins:   12.5,
		Carbs:      30.2,
		Fats:       11.1,
		Source:     types.SourceEstimated,
		Confidence: types.ConfidenceLow,
		LoggedAt:   loggedAt,
	}
}

func TestStore_NewSQLiteStore(t *testing.T) {
	db, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
}

// --- SaveEntry / GetEntry Tests ---

func TestSaveEntry_Roundtrip(t *testing.T) {
	db := newTestStore(t)

	loggedAt := time.Date(2026, 8, 24, 12, 30, 0, 0, time.UTC)
	entry := testEntry("user-1", loggedAt)
	entry.ID = "01JD0000000000000000000000"

	if err := db.SaveEntry(context.Background(), entry); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetEntry(context.Background(), entry.ID)
	if err != nil {
		t.Fatal(err)
	}

	if got.UserID != "user-1" {
		t.Errorf("expected user-1, got %q", got.UserID)
	}
	if got.FoodName != "dal makhani" {
		t.Errorf("expected dal makhani, got %q", got.FoodName)
	}
	if got.MealType != types.MealLunch {
		t.Errorf("expected meal type %q, got %q", types.MealLunch, got.MealType)
	}
	if got.Calories != 280 {
		t.Errorf("expected 280 calories, got %d", got.Calories)
	}
	if got.Proteins != 12.5 || got.Carbs != 30.2 || got.Fats != 11.1 {
		t.Errorf("macros did not survive roundtrip: %+v", got)
	}
	if got.Source != types.SourceEstimated {
		t.Errorf("expected source %q, got %q", types.SourceEstimated, got.Source)
	}
	if got.Confidence != types.ConfidenceLow {
		t.Errorf("expected confidence %q, got %q", types.ConfidenceLow, got.Confidence)
	}
	if !got.LoggedAt.Equal(loggedAt) {
		t.Errorf("expected logged_at %v, got %v", loggedAt, got.LoggedAt)
	}
}

func TestSaveEntry_AssignsIDAndTimestamp(t *testing.T) {
	db := newTestStore(t)

	entry := testEntry("user-1", time.Time{})
	entry.ID = ""

	before := time.Now().UTC()
	if err := db.SaveEntry(context.Background(), entry); err != nil {
		t.Fatal(err)
	}

	if len(entry.ID) != 26 {
		t.Errorf("expected 26-char ULID, got %q", entry.ID)
	}
	if entry.LoggedAt.Before(before.Truncate(time.Second)) {
		t.Errorf("expected logged_at to be set, got %v", entry.LoggedAt)
	}
}

func TestSaveEntry_RejectsInvalidInput(t *testing.T) {
	db := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)

	noUser := testEntry("", at)
	if err := db.SaveEntry(ctx, noUser); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for missing user, got %v", err)
	}

	noFood := testEntry("alice", at)
	noFood.FoodName = ""
	if err := db.SaveEntry(ctx, noFood); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for missing food name, got %v", err)
	}

	badMeal := testEntry("alice", at)
	badMeal.MealType = "Brunch"
	if err := db.SaveEntry(ctx, badMeal); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for unknown meal type, got %v", err)
	}
}

func TestGetEntry_NotFound(t *testing.T) {
	db := newTestStore(t)

	_, err := db.GetEntry(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// --- ListEntries Tests ---

func TestListEntries_FiltersByUser(t *testing.T) {
	db := newTestStore(t)
	ctx := context.Background()

	at := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	if err := db.SaveEntry(ctx, testEntry("alice", at)); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveEntry(ctx, testEntry("bob", at)); err != nil {
		t.Fatal(err)
	}

	entries, err := db.ListEntries(ctx, EntryFilter{UserID: "alice"})
	if err != nil {
		t.Fatal(err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].UserID != "alice" {
		t.Errorf("expected alice's entry, got %q", entries[0].UserID)
	}
}

func TestListEntries_FiltersByMealTypeAndDay(t *testing.T) {
	db := newTestStore(t)
	ctx := context.Background()

	day := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	lunch := testEntry("alice", day.Add(12*time.Hour))
	lunch.MealType = types.MealLunch
	dinner := testEntry("alice", day.Add(19*time.Hour))
	dinner.MealType = types.MealDinner
	nextDay := testEntry("alice", day.Add(36*time.Hour))
	nextDay.MealType = types.MealLunch

	for _, e := range []*types.FoodEntry{lunch, dinner, nextDay} {
		if err := db.SaveEntry(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := db.ListEntries(ctx, EntryFilter{
		UserID:   "alice",
		MealType: types.MealLunch,
		From:     day,
		To:       day.Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if !entries[0].LoggedAt.Equal(lunch.LoggedAt) {
		t.Errorf("expected the same-day lunch entry, got %v", entries[0].LoggedAt)
	}
}

func TestListEntries_NewestFirstWithLimit(t *testing.T) {
	db := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 24, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if err := db.SaveEntry(ctx, testEntry("alice", base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := db.ListEntries(ctx, EntryFilter{UserID: "alice", Limit: 3})
	if err != nil {
		t.Fatal(err)
	}

	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	want := base.Add(4 * time.Hour)
	if !entries[0].LoggedAt.Equal(want) {
		t.Errorf("expected newest entry first (%v), got %v", want, entries[0].LoggedAt)
	}
	if entries[0].LoggedAt.Before(entries[1].LoggedAt) || entries[1].LoggedAt.Before(entries[2].LoggedAt) {
		t.Error("entries not in descending logged_at order")
	}
}

// --- DailySummary Tests ---

func TestDailySummary_AggregatesOneDay(t *testing.T) {
	db := newTestStore(t)
	ctx := context.Background()

	day := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	breakfast := testEntry("alice", day.Add(8*time.Hour))
	breakfast.Calories = 320
	breakfast.Proteins = 15.0
	lunch := testEntry("alice", day.Add(13*time.Hour))
	lunch.Calories = 560
	lunch.Proteins = 30.5
	tomorrow := testEntry("alice", day.Add(32*time.Hour))
	tomorrow.Calories = 900
	someoneElse := testEntry("bob", day.Add(13*time.Hour))
	someoneElse.Calories = 700

	for _, e := range []*types.FoodEntry{breakfast, lunch, tomorrow, someoneElse} {
		if err := db.SaveEntry(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	summary, err := db.DailySummary(ctx, "alice", day)
	if err != nil {
		t.Fatal(err)
	}

	if summary.EntryCount != 2 {
		t.Errorf("expected 2 entries, got %d", summary.EntryCount)
	}
	if summary.Calories != 880 {
		t.Errorf("expected 880 calories, got %d", summary.Calories)
	}
	if summary.Proteins != 45.5 {
		t.Errorf("expected 45.5g protein, got %f", summary.Proteins)
	}
	if summary.Date != "2026-08-24" {
		t.Errorf("expected date 2026-08-24, got %q", summary.Date)
	}
	if summary.UserID != "alice" {
		t.Errorf("expected user alice, got %q", summary.UserID)
	}
}

func TestDailySummary_EmptyDay(t *testing.T) {
	db := newTestStore(t)

	summary, err := db.DailySummary(context.Background(), "alice", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}

	if summary.EntryCount != 0 || summary.Calories != 0 || summary.Proteins != 0 {
		t.Errorf("expected zeroed summary, got %+v", summary)
	}
}

// --- Stats Tests ---

func TestGetStats_CountsEntries(t *testing.T) {
	db := newTestStore(t)
	ctx := context.Background()

	at := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	if err := db.SaveEntry(ctx, testEntry("alice", at)); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveEntry(ctx, testEntry("bob", at)); err != nil {
		t.Fatal(err)
	}

	stats, err := db.GetStats(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if stats.EntryCount != 2 {
		t.Errorf("expected 2 entries, got %d", stats.EntryCount)
	}
	if stats.SizeBytes <= 0 {
		t.Errorf("expected positive database size, got %d", stats.SizeBytes)
	}
}

// --- Snapshot Tests ---

func TestGenerateSnapshot_CreatesFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "calit.db")
	db, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if err := db.GenerateSnapshot(context.Background()); err != nil {
		t.Fatal(err)
	}

	path, err := db.GetSnapshotPath(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("snapshot file not created at %s: %v", path, err)
	}
}

func TestGenerateSnapshot_IncludesAllEntries(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "calit.db")
	db, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	ctx := context.Background()
	at := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	for _, user := range []string{"alice", "bob", "carol"} {
		if err := db.SaveEntry(ctx, testEntry(user, at)); err != nil {
			t.Fatal(err)
		}
	}

	if err := db.GenerateSnapshot(ctx); err != nil {
		t.Fatal(err)
	}

	path, err := db.GetSnapshotPath(ctx)
	if err != nil {
		t.Fatal(err)
	}

	snap, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer snap.Close()

	var count int
	if err := snap.QueryRow("SELECT COUNT(*) FROM food_entries").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("expected 3 entries in snapshot, got %d", count)
	}
}

func TestGenerateSnapshot_ReplacesPrevious(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "calit.db")
	db, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.GenerateSnapshot(ctx); err != nil {
		t.Fatal(err)
	}

	if err := db.SaveEntry(ctx, testEntry("alice", time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC))); err != nil {
		t.Fatal(err)
	}
	if err := db.GenerateSnapshot(ctx); err != nil {
		t.Fatal(err)
	}

	path, err := db.GetSnapshotPath(ctx)
	if err != nil {
		t.Fatal(err)
	}

	snap, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer snap.Close()

	var count int
	if err := snap.QueryRow("SELECT COUNT(*) FROM food_entries").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected replaced snapshot with 1 entry, got %d", count)
	}
}

func TestGenerateSnapshot_RejectsConcurrent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "calit.db")
	db, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	db.snapshotting.Store(true)
	err = db.GenerateSnapshot(context.Background())
	if !errors.Is(err, ErrSnapshotInProgress) {
		t.Errorf("expected ErrSnapshotInProgress, got %v", err)
	}

	db.snapshotting.Store(false)
	if err := db.GenerateSnapshot(context.Background()); err != nil {
		t.Errorf("expected snapshot to succeed after release, got %v", err)
	}
}

func TestGetSnapshotPath_BeforeGeneration(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "calit.db")
	db, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if _, err := db.GetSnapshotPath(context.Background()); err == nil {
		t.Error("expected error before any snapshot was generated")
	}
}
