package recordstore

import (
	"embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// goose keeps its settings in package globals.
var migrateMu sync.Mutex

// SQLiteStore persists notification records in a local SQLite file.
type SQLiteStore struct {
	db *sqlx.DB
}

// Open opens (or creates) the database at path and applies pending
// migrations. Pass ":memory:" for a throwaway database.
func Open(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// a second connection to ":memory:" would see an empty database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func migrate(db *sqlx.DB) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(&slogGooseLogger{})
	goose.SetTableName("schema_migrations")

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}

	return goose.Up(db.DB, "migrations")
}

type slogGooseLogger struct{}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	slog.Debug(fmt.Sprintf(format, v...), slog.String("event", "db.migrate"))
}

// Fatalf does not exit; goose returns the error to the caller as well.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	slog.Error(fmt.Sprintf(format, v...), slog.String("event", "db.migrate.fail"))
}
