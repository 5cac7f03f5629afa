package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/doublets/internal/link"
)

// NamePoint returns the point registered under name, creating it on first
// use. Names are NFC-normalized first, so canonically equivalent spellings
// share one point.
func (s *Store) NamePoint(ctx context.Context, name string) (link.Ref, error) {
	name, err := link.NormalizeName(name)
	if err != nil {
		return 0, fmt.Errorf("name point: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("name point: begin tx: %w", err)
	}
	defer tx.Rollback()

	var existing int64
	err = tx.QueryRowContext(ctx, `SELECT link_id FROM names WHERE name = ?`, name).Scan(&existing)
	if err == nil {
		if err := tx.Commit(); err != nil {
			return 0, fmt.Errorf("name point: commit (existing): %w", err)
		}
		return link.Ref(existing), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("name point %q: %w", name, err)
	}

	if err := s.checkCapacityTx(ctx, tx); err != nil {
		return 0, fmt.Errorf("name point %q: %w", name, err)
	}

	id, err := createPointTx(ctx, tx)
	if err != nil {
		return 0, fmt.Errorf("name point %q: %w", name, err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO names (name, link_id) VALUES (?, ?)`, name, int64(id)); err != nil {
		return 0, fmt.Errorf("name point %q: insert name: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("name point: commit: %w", err)
	}

	s.metrics.LinkCreated(Backend)
	s.logger.Debug("named point created", "index", id, "name", name)
	return id, nil
}

// NameOf returns the name registered for ref.
func (s *Store) NameOf(ctx context.Context, ref link.Ref) (string, bool, error) {
	var name string
	err := s.db.QueryRowContext(ctx, `SELECT name FROM names WHERE link_id = ?`, int64(ref)).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("name of %d: %w", ref, err)
	}
	return name, true, nil
}
