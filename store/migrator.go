package store

import (
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

var (
	migrationSetupOnce sync.Once
	migrationSetupErr  error
)

func runMigrations(db *sql.DB) error {
	migrationSetupOnce.Do(func() {
		goose.SetBaseFS(migrationFS)
		goose.SetLogger(goose.NopLogger())
		migrationSetupErr = goose.SetDialect("sqlite3")
	})
	if migrationSetupErr != nil {
		return fmt.Errorf("setup goose: %w", migrationSetupErr)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
