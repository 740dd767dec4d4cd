package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/hardikSrivastav/cal.it/internal/types"
	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// SQLiteStore is the SQLite-backed food entry store.
type SQLiteStore struct {
	db           *sql.DB
	dbPath       string
	snapshotting atomic.Bool
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLiteStore instance.
// It initializes the database with WAL mode, applies pragmas, and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure parent directory exists
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := enablePragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable pragmas: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// enablePragmas sets SQLite pragmas for optimal performance and safety.
func enablePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveEntry persists a confirmed food entry. Missing IDs and logged-at
// timestamps are filled in so callers can insert hand-built entries.
func (s *SQLiteStore) SaveEntry(ctx context.Context, entry *types.FoodEntry) error {
	if entry.UserID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if entry.FoodName == "" {
		return fmt.Errorf("%w: food name is required", ErrInvalidInput)
	}
	if !types.ValidMealType(entry.MealType) {
		return fmt.Errorf("%w: unknown meal type %q", ErrInvalidInput, entry.MealType)
	}

	if entry.ID == "" {
		entry.ID = ulid.Make().String()
	}
	if entry.LoggedAt.IsZero() {
		entry.LoggedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO food_entries (id, user_id, food_name, meal_type, calories, proteins, carbs, fats, source, confidence, logged_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.UserID, entry.FoodName, string(entry.MealType),
		entry.Calories, entry.Proteins, entry.Carbs, entry.Fats,
		string(entry.Source), string(entry.Confidence),
		entry.LoggedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert food entry: %w", err)
	}

	return nil
}

// scanFoodEntry scans a row into a FoodEntry, parsing the RFC 3339 timestamp.
func scanFoodEntry(scanner interface{ Scan(...any) error }) (*types.FoodEntry, error) {
	var entry types.FoodEntry
	var loggedAt string

	err := scanner.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.FoodName,
		&entry.MealType,
		&entry.Calories,
		&entry.Proteins,
		&entry.Carbs,
		&entry.Fats,
		&entry.Source,
		&entry.Confidence,
		&loggedAt,
	)
	if err != nil {
		return nil, err
	}

	if t, err := time.Parse(time.RFC3339, loggedAt); err == nil {
		entry.LoggedAt = t
	}

	return &entry, nil
}

// GetEntry retrieves a food entry by ID.
func (s *SQLiteStore) GetEntry(ctx context.Context, id string) (*types.FoodEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, food_name, meal_type, calories, proteins, carbs, fats, source, confidence, logged_at
		FROM food_entries
		WHERE id = ?
	`, id)

	entry, err := scanFoodEntry(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan row: %w", err)
	}

	return entry, nil
}

// ListEntries returns entries matching the filter, newest first.
func (s *SQLiteStore) ListEntries(ctx context.Context, filter EntryFilter) ([]types.FoodEntry, error) {
	query := `
		SELECT id, user_id, food_name, meal_type, calories, proteins, carbs, fats, source, confidence, logged_at
		FROM food_entries
		WHERE 1=1`
	var args []any

	if filter.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, filter.UserID)
	}
	if filter.MealType != "" {
		query += " AND meal_type = ?"
		args = append(args, string(filter.MealType))
	}
	if !filter.From.IsZero() {
		query += " AND logged_at >= ?"
		args = append(args, filter.From.UTC().Format(time.RFC3339))
	}
	if !filter.To.IsZero() {
		query += " AND logged_at < ?"
		args = append(args, filter.To.UTC().Format(time.RFC3339))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	query += " ORDER BY logged_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []types.FoodEntry
	for rows.Next() {
		entry, err := scanFoodEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return entries, nil
}

// DailySummary aggregates a user's entries for one UTC calendar day.
// A day with no entries yields a zeroed summary, not an error.
func (s *SQLiteStore) DailySummary(ctx context.Context, userID string, day time.Time) (*types.DailySummary, error) {
	start, end := dayBounds(day)

	var summary types.DailySummary
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(calories), 0),
		       COALESCE(SUM(proteins), 0),
		       COALESCE(SUM(carbs), 0),
		       COALESCE(SUM(fats), 0)
		FROM food_entries
		WHERE user_id = ? AND logged_at >= ? AND logged_at < ?
	`, userID, start, end).Scan(&summary.EntryCount, &summary.Calories, &summary.Proteins, &summary.Carbs, &summary.Fats)
	if err != nil {
		return nil, fmt.Errorf("aggregate entries: %w", err)
	}

	summary.UserID = userID
	summary.Date = day.UTC().Format("2006-01-02")
	return &summary, nil
}

// GetStats returns aggregate store statistics.
func (s *SQLiteStore) GetStats(ctx context.Context) (*types.StoreStats, error) {
	var stats types.StoreStats
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM food_entries").Scan(&stats.EntryCount); err != nil {
		return nil, fmt.Errorf("count entries: %w", err)
	}

	var pageCount, pageSize int64
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err != nil {
		return nil, fmt.Errorf("read page count: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err != nil {
		return nil, fmt.Errorf("read page size: %w", err)
	}
	stats.SizeBytes = pageCount * pageSize

	return &stats, nil
}

// GenerateSnapshot writes a consistent copy of the database into the
// snapshots directory next to the database file. The copy is produced with
// VACUUM INTO and swapped in with a rename so readers never observe a
// partial file. Only one generation runs at a time; concurrent calls get
// ErrSnapshotInProgress.
func (s *SQLiteStore) GenerateSnapshot(ctx context.Context) error {
	if !s.snapshotting.CompareAndSwap(false, true) {
		return ErrSnapshotInProgress
	}
	defer s.snapshotting.Store(false)

	target := s.snapshotPath()
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	// VACUUM INTO refuses to overwrite, so write to a fresh temp name first.
	tmpPath := filepath.Join(filepath.Dir(target), fmt.Sprintf("current-%d.db.tmp", time.Now().UnixNano()))
	if _, err := s.db.ExecContext(ctx, "VACUUM INTO ?", tmpPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("vacuum into snapshot: %w", err)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace snapshot: %w", err)
	}

	return nil
}

// GetSnapshotPath returns the path of the most recently generated snapshot.
func (s *SQLiteStore) GetSnapshotPath(ctx context.Context) (string, error) {
	path := s.snapshotPath()
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("stat snapshot: %w", err)
	}
	return path, nil
}

func (s *SQLiteStore) snapshotPath() string {
	return filepath.Join(filepath.Dir(s.dbPath), "snapshots", "current.db")
}

// dayBounds returns the RFC 3339 bounds [start, end) of the UTC calendar
// day containing t. Stored timestamps are UTC RFC 3339 strings, so string
// comparison in SQL matches chronological order.
func dayBounds(t time.Time) (string, string) {
	day := t.UTC().Truncate(24 * time.Hour)
	return day.Format(time.RFC3339), day.Add(24 * time.Hour).Format(time.RFC3339)
}
