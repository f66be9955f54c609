// Package sqlite persists the terminal profile in a single-file database, the
// desktop analog of browser local storage.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	pkgerrors "github.com/kopisenja/pos-client/pkg/errors"
	"github.com/kopisenja/pos-client/pkg/storage"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store is a sqlite-backed storage adapter holding one kv table.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the profile database at path and runs migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open profile db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping profile db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "read key")
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC())
	if err != nil {
		return classifyWriteError(err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "delete key")
	}
	return nil
}

func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key FROM kv WHERE key LIKE ? ESCAPE '\' ORDER BY key`, likePattern(prefix))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list keys")
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "scan key")
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list keys")
	}
	return keys, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// classifyWriteError maps "database or disk is full" onto the quota code so
// callers can run the wipe-and-retry path.
func classifyWriteError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "disk is full") || strings.Contains(msg, "database or disk is full") {
		return pkgerrors.Wrap(pkgerrors.CodeStorageFull, err, "write key")
	}
	return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "write key")
}

func likePattern(prefix string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)
	return escaped + "%"
}
