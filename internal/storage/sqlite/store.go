// Package sqlite provides a SQLite-backed implementation of the
// storage.Store interface, used when probe state should survive the run for
// postmortem inspection.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vk/chainprobe/internal/contract"
	"github.com/vk/chainprobe/internal/storage"

	_ "modernc.org/sqlite"
)

// Store persists named keys in SQLite.
type Store struct {
	sqlDB *sql.DB
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS named_keys (
  owner  TEXT NOT NULL,
  name   TEXT NOT NULL,
  kind   INTEGER NOT NULL,
  handle INTEGER NOT NULL DEFAULT 0,
  uref   TEXT NOT NULL DEFAULT '',
  PRIMARY KEY (owner, name)
);`

// Open opens a SQLite named-key store at the given path and applies the
// schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schemaDDL); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Get returns the key stored under name in the owner's namespace.
func (s *Store) Get(ctx context.Context, owner storage.Owner, name string) (contract.Key, bool, error) {
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT kind, handle, uref FROM named_keys WHERE owner = ? AND name = ?`,
		string(owner), name,
	)

	var (
		kind   int
		handle int64
		uref   string
	)
	if err := row.Scan(&kind, &handle, &uref); err != nil {
		if err == sql.ErrNoRows {
			return contract.Key{}, false, nil
		}
		return contract.Key{}, false, fmt.Errorf("query named key: %w", err)
	}
	return contract.Key{
		Kind:     contract.KeyKind(kind),
		Contract: contract.Handle(handle),
		URef:     uref,
	}, true, nil
}

// Put stores a key under name in the owner's namespace, replacing any
// previous value.
func (s *Store) Put(ctx context.Context, owner storage.Owner, name string, key contract.Key) error {
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO named_keys (owner, name, kind, handle, uref)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (owner, name) DO UPDATE SET
		   kind = excluded.kind,
		   handle = excluded.handle,
		   uref = excluded.uref`,
		string(owner), name, int(key.Kind), int64(key.Contract), key.URef,
	)
	if err != nil {
		return fmt.Errorf("store named key: %w", err)
	}
	return nil
}

// Names returns the names present in the owner's namespace.
func (s *Store) Names(ctx context.Context, owner storage.Owner) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT name FROM named_keys WHERE owner = ?`,
		string(owner),
	)
	if err != nil {
		return nil, fmt.Errorf("query namespace names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan namespace name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate namespace names: %w", err)
	}
	return names, nil
}
