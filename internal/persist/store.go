package persist

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// StorageKey is the key the single-device game has always been saved
// under. Other sessions are namespaced below it.
const StorageKey = "impostor-game-state-v1"

// DefaultSession is the session code of the single-device game.
const DefaultSession = "default"

var ErrNotFound = errors.New("persist: snapshot not found")

// Store is a key/value home for serialized game snapshots.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Close() error
}

const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var Drivers = []string{DriverMemory, DriverFile, DriverSQLite, DriverPostgres}

type Config struct {
	Driver string
	// Path is the directory for the file driver and the database file
	// for the sqlite driver.
	Path string
	// DSN is the postgres connection string.
	DSN string
}

// KeyFor returns the storage key of a session.
func KeyFor(code string) string {
	code = strings.TrimSpace(code)
	if code == "" || code == DefaultSession {
		return StorageKey
	}
	return StorageKey + ":" + code
}

// Open returns the Store selected by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverMemory:
		return NewMemoryStore(), nil
	case DriverFile:
		return OpenFileStore(cfg.Path)
	case DriverSQLite:
		return OpenSQLite(ctx, cfg.Path)
	case DriverPostgres:
		return OpenPostgres(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("persist: unknown driver %q", cfg.Driver)
	}
}
