// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package session

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// Register the sqlite database driver for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/samber/oops"
	// Register the pure-Go "sqlite" database/sql driver.
	_ "modernc.org/sqlite"

	"github.com/quillpress/quill/internal/xdg"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteKV stores session keys in a single-file sqlite database.
type SQLiteKV struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (creating if needed) the database at path and applies
// pending schema migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLiteKV, error) {
	if path == "" {
		return nil, oops.Code("SQLITE_PATH_EMPTY").Errorf("sqlite path is required")
	}
	if err := xdg.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, oops.Code("SQLITE_OPEN_FAILED").With("path", path).Wrap(err)
	}
	if err := migrateSQLite(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, oops.Code("SQLITE_OPEN_FAILED").With("path", path).Wrap(err)
	}
	// One connection serializes writers; sqlite allows a single writer anyway.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close() //nolint:errcheck // ping error takes precedence
		return nil, oops.Code("SQLITE_OPEN_FAILED").With("path", path).Wrap(err)
	}

	return &SQLiteKV{db: db, path: path}, nil
}

func migrateSQLite(path string) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return oops.Code("MIGRATION_SOURCE_FAILED").With("operation", "create migration source").Wrap(err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, "sqlite://"+path)
	if err != nil {
		_ = source.Close() //nolint:errcheck // init error takes precedence
		return oops.Code("MIGRATION_INIT_FAILED").With("path", path).Wrap(err)
	}
	defer func() {
		_, _ = m.Close() //nolint:errcheck // migrations already applied or failed
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return oops.Code("MIGRATION_UP_FAILED").With("path", path).Wrap(err)
	}
	return nil
}

// Path returns the database file path.
func (s *SQLiteKV) Path() string {
	return s.path
}

// Load returns the values present for keys.
func (s *SQLiteKV) Load(ctx context.Context, keys []string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	//nolint:gosec // placeholders only, values are bound
	query := "SELECT key, value FROM session_kv WHERE key IN (" + placeholders(len(keys)) + ")"
	rows, err := s.db.QueryContext(ctx, query, anyArgs(keys)...)
	if err != nil {
		return nil, oops.Code("SQLITE_LOAD_FAILED").With("keys", keys).Wrap(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, oops.Code("SQLITE_LOAD_FAILED").With("keys", keys).Wrap(err)
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("SQLITE_LOAD_FAILED").With("keys", keys).Wrap(err)
	}
	return out, nil
}

// Store upserts every entry in one transaction.
func (s *SQLiteKV) Store(ctx context.Context, values map[string]string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return oops.Code("SQLITE_STORE_FAILED").With("operation", "begin").Wrap(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback() //nolint:errcheck // commit or write error takes precedence
		}
	}()

	for k, v := range values {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO session_kv (key, value) VALUES (?, ?)
			ON CONFLICT (key) DO UPDATE SET
				value = excluded.value,
				updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		`, k, v); err != nil {
			return oops.Code("SQLITE_STORE_FAILED").With("key", k).Wrap(err)
		}
	}

	if err = tx.Commit(); err != nil {
		return oops.Code("SQLITE_STORE_FAILED").With("operation", "commit").Wrap(err)
	}
	return nil
}

// Delete removes keys with a single statement.
func (s *SQLiteKV) Delete(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	//nolint:gosec // placeholders only, values are bound
	query := "DELETE FROM session_kv WHERE key IN (" + placeholders(len(keys)) + ")"
	if _, err := s.db.ExecContext(ctx, query, anyArgs(keys)...); err != nil {
		return oops.Code("SQLITE_DELETE_FAILED").With("keys", keys).Wrap(err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteKV) Close() error {
	if err := s.db.Close(); err != nil {
		return oops.Code("SQLITE_CLOSE_FAILED").Wrap(err)
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func anyArgs(keys []string) []any {
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	return args
}
