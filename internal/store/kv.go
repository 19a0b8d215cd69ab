package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// KV is the persistent key-value store that backs the memo list.
//
// Get reports ok=false (and a nil error) when the key is absent.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendFile     = "file"
	BackendMemory   = "memory"
)

const sqliteFileName = "memo.sqlite"

type Options struct {
	// Backend is one of: sqlite|postgres|file|memory. Empty means sqlite.
	Backend string
	// Dir is the data directory for the sqlite and file backends.
	Dir string
	// DSN is the connection string for the postgres backend.
	DSN string
}

func Backends() []string {
	return []string{BackendSQLite, BackendPostgres, BackendFile, BackendMemory}
}

func OpenKV(ctx context.Context, opts Options) (KV, error) {
	backend := strings.ToLower(strings.TrimSpace(opts.Backend))
	if backend == "" {
		backend = BackendSQLite
	}
	switch backend {
	case BackendSQLite:
		if strings.TrimSpace(opts.Dir) == "" {
			return nil, errors.New("sqlite backend: missing data dir")
		}
		return OpenSQLite(ctx, filepath.Join(opts.Dir, sqliteFileName))
	case BackendPostgres:
		if strings.TrimSpace(opts.DSN) == "" {
			return nil, errors.New("postgres backend: missing dsn")
		}
		return OpenPostgres(ctx, opts.DSN)
	case BackendFile:
		if strings.TrimSpace(opts.Dir) == "" {
			return nil, errors.New("file backend: missing data dir")
		}
		return NewFileKV(opts.Dir), nil
	case BackendMemory:
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unknown backend: %s (want one of %s)", opts.Backend, strings.Join(Backends(), "|"))
	}
}
