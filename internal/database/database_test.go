// internal/database/database_test.go
//
// Unit-tests for the SQLite helpers.  Query-shape tests use sqlmock; the
// round-trip test opens a real file under t.TempDir.
//
// Run: go test ./internal/database -v

package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/mim3/salesdash/internal/config/configtest"
)

func mockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { raw.Close() })
	return sqlx.NewDb(raw, "sqlmock"), mock
}

func TestDSN(t *testing.T) {
	got := DSN("/srv/salesdash/data/sales_dashboard.db", 30*time.Second)
	if !strings.HasPrefix(got, "file:/srv/salesdash/data/sales_dashboard.db?") {
		t.Fatalf("DSN prefix: %s", got)
	}
	for _, want := range []string{"_busy_timeout=30000", "_foreign_keys=on", "_journal_mode=WAL"} {
		if !strings.Contains(got, want) {
			t.Errorf("DSN %s missing %s", got, want)
		}
	}
}

func TestDSN_EscapesPath(t *testing.T) {
	cases := map[string]string{
		"/srv/Sales #1/db.sqlite": "file:/srv/Sales%20%231/db.sqlite?",
		"/srv/what?now/db.sqlite": "file:/srv/what%3Fnow/db.sqlite?",
		"/srv/Q%41/db.sqlite":     "file:/srv/Q%2541/db.sqlite?",
	}
	for in, want := range cases {
		if got := DSN(in, time.Second); !strings.HasPrefix(got, want) {
			t.Errorf("DSN(%q) = %s, want prefix %s", in, got, want)
		}
	}
}

func TestOpen_SpecialCharactersInPath(t *testing.T) {
	for _, dir := range []string{"Sales #1", "what?now", "Q%41", "plain dir"} {
		root := t.TempDir()
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatalf("mkdir %q: %v", dir, err)
		}
		path := filepath.Join(root, dir, "sales_dashboard.db")

		db, err := OpenWithOptions(path, time.Second, 1)
		if err != nil {
			t.Fatalf("Open(%q): %v", path, err)
		}
		if err := EnsureSchema(context.Background(), db); err != nil {
			db.Close()
			t.Fatalf("EnsureSchema(%q): %v", path, err)
		}
		db.Close()

		if _, err := os.Stat(path); err != nil {
			t.Errorf("database not at %q: %v", path, err)
		}
		entries, err := os.ReadDir(root)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 || entries[0].Name() != dir {
			var names []string
			for _, e := range entries {
				names = append(names, e.Name())
			}
			t.Errorf("stray files beside %q: %v", dir, names)
		}
	}
}

func TestMeta_Missing(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectQuery(`SELECT value FROM app_metadata WHERE key = \?`).
		WithArgs(MetaAppVersion).
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	v, ok, err := Meta(context.Background(), db, MetaAppVersion)
	if err != nil || ok || v != "" {
		t.Fatalf("Meta = %q, %v, %v; want empty, false, nil", v, ok, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSetMeta_Error(t *testing.T) {
	db, mock := mockDB(t)
	boom := errors.New("disk I/O error")
	mock.ExpectExec(`INSERT INTO app_metadata`).
		WithArgs("k", "v", sqlmock.AnyArg()).
		WillReturnError(boom)

	err := SetMeta(context.Background(), db, "k", "v")
	if !errors.Is(err, boom) {
		t.Fatalf("SetMeta error = %v; want wrapped %v", err, boom)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestRecordStartup_RollsBackOnFailure(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO app_metadata`).
		WithArgs(MetaAppVersion, "1.2.0", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO app_metadata`).
		WithArgs(MetaInstallMode, "packaged", sqlmock.AnyArg()).
		WillReturnError(errors.New("readonly database"))
	mock.ExpectRollback()

	if err := RecordStartup(context.Background(), db, "1.2.0", "packaged"); err == nil {
		t.Fatal("RecordStartup succeeded; want error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestOpen_RoundTrip(t *testing.T) {
	s, rp := configtest.New(t, nil)
	if s.Database.Path != rp.DatabasePath {
		t.Fatalf("settings path %s != resolved %s", s.Database.Path, rp.DatabasePath)
	}

	db, err := Open(s)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := EnsureSchema(ctx, db); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	// Idempotent.
	if err := EnsureSchema(ctx, db); err != nil {
		t.Fatalf("EnsureSchema again: %v", err)
	}
	if err := RecordStartup(ctx, db, "1.2.0", "test"); err != nil {
		t.Fatalf("RecordStartup: %v", err)
	}
	if err := RecordStartup(ctx, db, "1.3.0", "test"); err != nil {
		t.Fatalf("RecordStartup again: %v", err)
	}

	for key, want := range map[string]string{
		MetaSchemaVersion: SchemaVersion,
		MetaAppVersion:    "1.3.0",
		MetaInstallMode:   "test",
	} {
		got, ok, err := Meta(ctx, db, key)
		if err != nil || !ok || got != want {
			t.Errorf("Meta(%s) = %q, %v, %v; want %q", key, got, ok, err, want)
		}
	}
	if _, err := time.Parse(time.RFC3339, mustMeta(t, db, MetaLastStart)); err != nil {
		t.Errorf("last_start not RFC3339: %v", err)
	}

	if filepath.Dir(s.Database.Path) != rp.DataDir {
		t.Errorf("database outside data dir: %s", s.Database.Path)
	}
}

func mustMeta(t *testing.T, db *sqlx.DB, key string) string {
	t.Helper()
	v, ok, err := Meta(context.Background(), db, key)
	if err != nil || !ok {
		t.Fatalf("Meta(%s): %v, %v", key, ok, err)
	}
	return v
}
