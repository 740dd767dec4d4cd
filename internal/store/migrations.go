package store

import (
	"database/sql"
	"fmt"

	"github.com/hardikSrivastav/cal.it/migrations"
	"github.com/pressly/goose/v3"
)

// RunMigrations applies all pending database migrations using goose,
// reading the embedded SQL files from the migrations package. Goose's
// own logging is silenced to keep stdout clean.
func RunMigrations(db *sql.DB) error {
	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("sqlite"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}
