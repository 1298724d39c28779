package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationsDir = "migrations"

// goose keeps its dialect, base FS and logger in package globals.
var gooseMu sync.Mutex

func MigrateUp(db *sql.DB) error {
	return runMigrations(db, "up", goose.Up)
}

// MigrateDown rolls every migration back to version zero.
func MigrateDown(db *sql.DB) error {
	return runMigrations(db, "down", goose.Reset)
}

func runMigrations(db *sql.DB, direction string, fn func(*sql.DB, string, ...goose.OptionsFunc) error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrationFiles)
	goose.SetLogger(slogGooseLogger{})
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := fn(db, migrationsDir); err != nil {
		return fmt.Errorf("migrate %s: %w", direction, err)
	}
	return nil
}

type slogGooseLogger struct{}

func (slogGooseLogger) Printf(format string, v ...any) {
	slog.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "migrations")
}

func (slogGooseLogger) Fatalf(format string, v ...any) {
	slog.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "migrations")
}
