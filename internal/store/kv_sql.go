package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

type sqlDialect int

const (
	dialectSQLite sqlDialect = iota
	dialectPostgres
)

// SQLKV is a KV over a single `kv` table. The same schema is used for SQLite
// and Postgres; only placeholders and the upsert clause differ.
type SQLKV struct {
	db      *sql.DB
	dialect sqlDialect
}

// OpenSQLite opens (creating if needed) the SQLite database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLKV, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Pragmas below are per connection.
	db.SetMaxOpenConns(1)
	// WAL lets the web shell and a CLI invocation read while the TUI writes.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	kv := &SQLKV{db: db, dialect: dialectSQLite}
	if err := kv.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return kv, nil
}

// OpenPostgres connects with lib/pq and ensures the kv table exists.
func OpenPostgres(ctx context.Context, dsn string) (*SQLKV, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	kv := &SQLKV{db: db, dialect: dialectPostgres}
	if err := kv.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return kv, nil
}

// NewPostgresKV wraps an already-open Postgres handle. The caller owns migrations.
func NewPostgresKV(db *sql.DB) *SQLKV {
	return &SQLKV{db: db, dialect: dialectPostgres}
}

func (s *SQLKV) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS kv (
		k TEXT PRIMARY KEY,
		v TEXT NOT NULL,
		updated_at_unixms BIGINT NOT NULL
	)`)
	return err
}

func (s *SQLKV) getQuery() string {
	if s.dialect == dialectPostgres {
		return `SELECT v FROM kv WHERE k = $1`
	}
	return `SELECT v FROM kv WHERE k = ?`
}

func (s *SQLKV) putQuery() string {
	if s.dialect == dialectPostgres {
		return `INSERT INTO kv (k, v, updated_at_unixms) VALUES ($1, $2, $3)
			ON CONFLICT (k) DO UPDATE SET v = EXCLUDED.v, updated_at_unixms = EXCLUDED.updated_at_unixms`
	}
	return `INSERT OR REPLACE INTO kv (k, v, updated_at_unixms) VALUES (?, ?, ?)`
}

func (s *SQLKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, s.getQuery(), key).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return []byte(v), true, nil
}

func (s *SQLKV) Put(ctx context.Context, key string, value []byte) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.putQuery(), key, string(value), time.Now().UTC().UnixMilli()); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLKV) Close() error {
	return s.db.Close()
}
