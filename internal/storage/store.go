package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/pfrederiksen/mtgtop8-sync/internal/logger"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Store is the SQLite database holding all scraped data
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// one writer, one connection
	db.SetMaxOpenConns(1)

	if err := applyPragmas(ctx, db); err != nil {
		db.Close() //nolint:errcheck
		return nil, err
	}
	if err := migrate(ctx, db); err != nil {
		db.Close() //nolint:errcheck
		return nil, err
	}

	logger.Info("database opened", logger.Fields{"path": path})
	return &Store{db: db, path: path}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []struct {
		name  string
		value string
	}{
		{"journal_mode", "WAL"},
		{"synchronous", "NORMAL"},
		{"foreign_keys", "ON"},
		{"temp_store", "MEMORY"},
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)); err != nil {
			return fmt.Errorf("setting PRAGMA %s: %w", p.name, err)
		}
		logger.Debug("sqlite pragma set", logger.Fields{"pragma": p.name, "value": p.value})
	}
	return nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// gooseLogger routes migration output through the structured logger.
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...interface{}) {
	logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), logger.Fields{"component": "goose"})
}

func (gooseLogger) Fatalf(format string, v ...interface{}) {
	logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), logger.Fields{"component": "goose"}, nil)
	os.Exit(1)
}
