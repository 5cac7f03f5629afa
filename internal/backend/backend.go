// Package backend opens the link store named by a storage configuration.
package backend

import (
	"fmt"
	"log/slog"

	"github.com/roach88/doublets/internal/badgerstore"
	"github.com/roach88/doublets/internal/config"
	"github.com/roach88/doublets/internal/link"
	"github.com/roach88/doublets/internal/metrics"
	"github.com/roach88/doublets/internal/store"
)

// Open returns the store selected by cfg. rec and logger may be nil.
func Open(cfg config.Storage, rec *metrics.Recorder, logger *slog.Logger) (link.Store, error) {
	switch cfg.Backend {
	case config.BackendSQLite, "":
		s, err := store.Open(cfg.Path,
			store.WithMaxLinks(cfg.MaxLinks),
			store.WithMetrics(rec),
			store.WithLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return s, nil

	case config.BackendBadger:
		s, err := badgerstore.Open(badgerstore.Config{
			Path:       cfg.Path,
			SyncWrites: cfg.SyncWrites,
			MaxLinks:   cfg.MaxLinks,
			Logger:     logger,
			Metrics:    rec,
		})
		if err != nil {
			return nil, fmt.Errorf("open badger store: %w", err)
		}
		return s, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
