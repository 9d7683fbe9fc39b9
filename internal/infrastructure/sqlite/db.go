// Package sqlite implements the local store on an embedded SQLite database.
// It is the sole durable write path for workout records; the UI and the sync
// engine both go through the repositories here so the dirty bookkeeping
// cannot be bypassed.
package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/fitna/fitna/internal/log"
	"github.com/fitna/fitna/internal/workout/domain"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB owns the SQLite connection and hands out repositories bound to it.
type DB struct {
	conn *sql.DB
	path string
}

// NewDB opens (creating if necessary) the database at path, enables WAL and
// foreign keys, and runs any pending migrations. When an existing database
// file is present a pre-migration backup is written next to it as
// "<path>.bak".
func NewDB(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		if err := backupFile(path, path+".bak"); err != nil {
			return nil, fmt.Errorf("backing up database before migration: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("applying %s: %w", pragma, err)
		}
	}

	if err := runMigrations(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}

	log.Debug(log.CatDB, "database opened", "path", path)
	return &DB{conn: conn, path: path}, nil
}

// NewInMemoryDB opens a fresh in-memory database with the full schema.
// Used by tests and by callers that need a throwaway store.
func NewInMemoryDB() (*DB, error) {
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}
	if err := runMigrations(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &DB{conn: conn, path: ":memory:"}, nil
}

func runMigrations(conn *sql.DB) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	// The stock migrate sqlite drivers register their own database/sql
	// drivers under the same "sqlite3" name as the ncruces driver, so we
	// bring our own thin database.Driver over the already-open connection.
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", newMigrationDriver(conn))
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

func backupFile(src, dst string) error {
	in, err := os.Open(src) //nolint:gosec // G304: src is the configured db path
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	_, err = io.Copy(out, in)
	return err
}

// SessionRepository returns the sessions repository bound to this database.
func (db *DB) SessionRepository() domain.SessionRepository {
	return newSessionRepository(db.conn)
}

// DailyLogRepository returns the daily log repository bound to this database.
func (db *DB) DailyLogRepository() domain.DailyLogRepository {
	return newDailyLogRepository(db.conn)
}

// SplitRepository returns the split assignment repository bound to this
// database.
func (db *DB) SplitRepository() domain.SplitRepository {
	return newSplitRepository(db.conn)
}

// Path returns the filesystem path of the database file.
func (db *DB) Path() string {
	return db.path
}

// Close releases the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
