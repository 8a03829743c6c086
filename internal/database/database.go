// Package database centralises sqlx connection helpers for the dashboard's
// embedded SQLite file.  The driver is mattn/go-sqlite3.
//
// Public entry points:
//
//	Open(settings)                          – pool sized from database.* settings.
//	OpenWithOptions(path, timeout, maxOpen) – fine-grained control.
//	EnsureSchema(ctx, db)                   – creates the app_metadata table.
//	RecordStartup(ctx, db, version, mode)   – stamps version and last start.
//
// Both open helpers Ping the database before returning so callers can fail
// fast during bootstrap.  Callers should Close() the returned *sqlx.DB when no
// longer needed.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mim3/salesdash/internal/config"
)

// DriverName is the database/sql driver registered by go-sqlite3.
const DriverName = "sqlite3"

// Metadata keys written by RecordStartup.
const (
	MetaSchemaVersion = "schema_version"
	MetaAppVersion    = "app_version"
	MetaInstallMode   = "install_mode"
	MetaLastStart     = "last_start"
)

// SchemaVersion is bumped whenever EnsureSchema changes shape.
const SchemaVersion = "1"

// Open returns a *sqlx.DB for the resolved database file, using the busy
// timeout and pool size from s.
func Open(s *config.Settings) (*sqlx.DB, error) {
	return OpenWithOptions(s.Database.Path, s.Database.Timeout, s.Database.PoolSize)
}

// OpenWithOptions opens path with the given busy timeout and pool size.
func OpenWithOptions(path string, timeout time.Duration, maxOpen int) (*sqlx.DB, error) {
	db, err := sqlx.Open(DriverName, DSN(path, timeout))
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(max(1, maxOpen/2))
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database: ping %s: %w", path, err)
	}
	return db, nil
}

// DSN builds a go-sqlite3 connection string with busy timeout, foreign keys,
// and WAL journaling.  The path is percent-encoded so `?`, `#`, and `%` in
// directory names reach SQLite literally.
func DSN(path string, timeout time.Duration) string {
	q := url.Values{}
	q.Set("_busy_timeout", fmt.Sprint(timeout.Milliseconds()))
	q.Set("_foreign_keys", "on")
	q.Set("_journal_mode", "WAL")
	return "file:" + uriPath(path) + "?" + q.Encode()
}

// uriPath renders an absolute filesystem path as an escaped URI path.
// Windows drive paths gain a leading slash (C:/x -> /C:/x).
func uriPath(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Path: p}).EscapedPath()
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS app_metadata (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL
)`

// EnsureSchema creates the bookkeeping tables when missing.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("database: ensure schema: %w", err)
	}
	return SetMeta(ctx, db, MetaSchemaVersion, SchemaVersion)
}

// SetMeta upserts one metadata value.
func SetMeta(ctx context.Context, db *sqlx.DB, key, value string) error {
	_, err := db.ExecContext(ctx, db.Rebind(`
	    INSERT INTO app_metadata (key, value, updated_at) VALUES (?, ?, ?)
	    ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`),
		key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("database: set %s: %w", key, err)
	}
	return nil
}

// Meta returns the value stored under key.  ok is false when absent.
func Meta(ctx context.Context, db *sqlx.DB, key string) (value string, ok bool, err error) {
	err = db.GetContext(ctx, &value, db.Rebind(`SELECT value FROM app_metadata WHERE key = ?`), key)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("database: get %s: %w", key, err)
	}
	return value, true, nil
}

// RecordStartup stamps the running version, install mode, and start time.
func RecordStartup(ctx context.Context, db *sqlx.DB, version, mode string) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	stmt := tx.Rebind(`
	    INSERT INTO app_metadata (key, value, updated_at) VALUES (?, ?, ?)
	    ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
	for _, kv := range [][2]string{
		{MetaAppVersion, version},
		{MetaInstallMode, mode},
		{MetaLastStart, now.Format(time.RFC3339)},
	} {
		if _, err := tx.ExecContext(ctx, stmt, kv[0], kv[1], now); err != nil {
			return fmt.Errorf("database: record %s: %w", kv[0], err)
		}
	}
	return tx.Commit()
}
