package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Opener opens the history database on first use and hands out the same
// store afterwards. A failed open is remembered: every later Open returns
// the same ErrStorageUnavailable error without retrying.
type Opener struct {
	path        string
	journalMode string
	log         *zap.Logger

	mu    sync.Mutex
	db    *sql.DB
	store *SQLiteStore
	err   error
}

// OpenerOption configures an Opener.
type OpenerOption func(*Opener)

// WithJournalMode sets the SQLite journal mode used when migrating.
func WithJournalMode(mode string) OpenerOption {
	return func(o *Opener) { o.journalMode = mode }
}

// NewOpener returns an Opener for the database file at path.
func NewOpener(path string, log *zap.Logger, opts ...OpenerOption) *Opener {
	if log == nil {
		log = zap.NewNop()
	}
	o := &Opener{path: path, log: log.Named("storage")}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Path returns the database path the Opener was created with.
func (o *Opener) Path() string {
	return o.path
}

// Open returns the store, creating the database and applying migrations
// on the first call.
func (o *Opener) Open(ctx context.Context) (*SQLiteStore, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.store != nil {
		return o.store, nil
	}
	if o.err != nil {
		return nil, o.err
	}

	db, store, err := o.open(ctx)
	if err != nil {
		o.err = fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
		o.log.Error("open database failed", zap.String("path", o.path), zap.Error(err))
		return nil, o.err
	}

	o.db, o.store = db, store
	o.log.Debug("database opened", zap.String("path", o.path))
	return store, nil
}

func (o *Opener) open(ctx context.Context) (*sql.DB, *SQLiteStore, error) {
	dsn := o.path + "?_foreign_keys=on&_busy_timeout=5000"
	if o.path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(o.path), 0755); err != nil {
			return nil, nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if o.path == MemoryPath {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	runner := NewMigrationRunner(db)
	if err := runner.SetJournalMode(o.journalMode); err != nil {
		db.Close()
		return nil, nil, err
	}
	if err := runner.Run(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	store, err := NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("init store: %w", err)
	}

	return db, store, nil
}

// Close releases the store and database if they were opened. A sticky open
// error is kept.
func (o *Opener) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.store == nil {
		return nil
	}
	storeErr := o.store.Close()
	dbErr := o.db.Close()
	o.store, o.db = nil, nil
	if storeErr != nil {
		return storeErr
	}
	return dbErr
}
