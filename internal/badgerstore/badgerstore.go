// Package badgerstore provides a BadgerDB-backed doublet store.
//
// Key layout (all integers are 8-byte big-endian, so prefix iteration is
// in index order):
//
//	m/next              => next index to issue
//	m/count             => number of stored links
//	l/<index>           => <source><target>
//	p/<source><target>  => <index>
//	n/<name>            => <index>
//	r/<index>           => <name>
//
// The p/ entries give content addressing: a pair maps to at most one index.
// Writes are serialized by a mutex so that read-modify-write transactions
// never conflict; reads run concurrently on badger snapshots.
package badgerstore

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/roach88/doublets/internal/link"
	"github.com/roach88/doublets/internal/metrics"
)

// Backend is the label this store reports to metrics.
const Backend = "badger"

// Config holds configuration for a badger-backed store.
type Config struct {
	// Path is the directory for BadgerDB files. Empty selects in-memory
	// mode.
	Path string

	// InMemory forces in-memory mode even when Path is set.
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// MaxLinks caps the number of stored links. Zero means unlimited.
	MaxLinks int64

	// Logger receives badger's internal log output and store debug
	// messages. If nil, both are discarded.
	Logger *slog.Logger

	// Metrics receives link creation and reuse counts. May be nil.
	Metrics *metrics.Recorder
}

// InMemoryConfig returns a volatile configuration.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// Store is a link.Store backed by BadgerDB.
type Store struct {
	mu       sync.Mutex // serializes writers
	db       *badger.DB
	maxLinks int64
	metrics  *metrics.Recorder
	logger   *slog.Logger
}

var _ link.Store = (*Store)(nil)

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Open opens (or creates) a store with the given configuration.
func Open(cfg Config) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory || cfg.Path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites)
	opts = opts.WithNumVersionsToKeep(1)
	opts.DetectConflicts = false // writers are serialized by Store.mu
	opts.MetricsEnabled = false

	logger := cfg.Logger
	if logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: logger})
	} else {
		opts = opts.WithLogger(nil)
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	s := &Store{
		db:       db,
		maxLinks: cfg.MaxLinks,
		metrics:  cfg.Metrics,
		logger:   logger,
	}

	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// init seeds the index counter on a fresh database.
func (s *Store) init() error {
	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(keyNext)
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("read index counter: %w", err)
		}
		if err := txn.Set(keyNext, encodeRef(link.FirstIndex)); err != nil {
			return fmt.Errorf("seed index counter: %w", err)
		}
		return txn.Set(keyCount, encodeUint(0))
	})
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Constants returns the sentinel references.
func (s *Store) Constants() link.Constants {
	return link.DefaultConstants()
}
