package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/doublets/internal/link"
)

// GetOrCreate returns the index of the link (source, target), creating it
// when absent.
//
// Uses INSERT ... ON CONFLICT(source, target) DO NOTHING and falls back to
// selecting the existing row, so repeated calls with the same pair always
// return the same index and store exactly one link.
//
// Both ends must be stored links; sentinels and dangling references are
// rejected with link.ErrCreationRejected, as is any creation beyond the
// configured capacity.
func (s *Store) GetOrCreate(ctx context.Context, source, target link.Ref) (link.Ref, error) {
	c := s.Constants()
	if c.IsSentinel(source) || c.IsSentinel(target) {
		return 0, fmt.Errorf("get or create (%d, %d): %w: sentinel reference", source, target, link.ErrCreationRejected)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("get or create: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	id, err := searchTx(ctx, tx, source, target)
	if err != nil {
		return 0, fmt.Errorf("get or create: %w", err)
	}
	if id != link.NullRef {
		if err := tx.Commit(); err != nil {
			return 0, fmt.Errorf("get or create: commit (existing): %w", err)
		}
		s.metrics.LinkReused(Backend)
		return id, nil
	}

	for _, end := range []link.Ref{source, target} {
		ok, err := existTx(ctx, tx, end)
		if err != nil {
			return 0, fmt.Errorf("get or create: %w", err)
		}
		if !ok {
			return 0, fmt.Errorf("get or create (%d, %d): %w: %d: %w",
				source, target, link.ErrCreationRejected, end, link.ErrNotExists)
		}
	}

	if err := s.checkCapacityTx(ctx, tx); err != nil {
		return 0, fmt.Errorf("get or create (%d, %d): %w: %w", source, target, link.ErrCreationRejected, err)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO links (source, target)
		VALUES (?, ?)
		ON CONFLICT(source, target) DO NOTHING
	`, int64(source), int64(target))
	if err != nil {
		return 0, fmt.Errorf("get or create: insert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get or create: rows affected: %w", err)
	}

	inserted := rowsAffected > 0
	if inserted {
		lastID, err := result.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("get or create: last insert id: %w", err)
		}
		id = link.Ref(lastID)
	} else {
		id, err = searchTx(ctx, tx, source, target)
		if err != nil {
			return 0, fmt.Errorf("get or create: select existing: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("get or create: commit: %w", err)
	}

	if inserted {
		s.metrics.LinkCreated(Backend)
		s.logger.Debug("link created", "index", id, "source", source, "target", target)
	} else {
		s.metrics.LinkReused(Backend)
	}
	return id, nil
}

// CreatePoint stores a new link whose source and target are its own index.
func (s *Store) CreatePoint(ctx context.Context) (link.Ref, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("create point: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.checkCapacityTx(ctx, tx); err != nil {
		return 0, fmt.Errorf("create point: %w", err)
	}

	id, err := createPointTx(ctx, tx)
	if err != nil {
		return 0, fmt.Errorf("create point: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("create point: commit: %w", err)
	}

	s.metrics.LinkCreated(Backend)
	s.logger.Debug("point created", "index", id)
	return id, nil
}

// DeleteWith removes the link at ref after consulting h.
//
// h sees the stored link as before and the same index with Null ends as
// after. It runs outside any transaction and may call the store.
// Returning link.Break leaves the link in place. Links referring to the
// deleted one are left in place and become dangling.
func (s *Store) DeleteWith(ctx context.Context, ref link.Ref, h link.DeleteHandler) error {
	before, ok, err := s.GetLink(ctx, ref)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if !ok {
		return fmt.Errorf("delete %d: %w", ref, link.ErrNotExists)
	}

	c := s.Constants()
	after := link.Link{Index: ref, Source: c.Null, Target: c.Null}
	if h != nil && h(before, after) == link.Break {
		return nil
	}

	// The link must still be the one h saw.
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM links WHERE id = ? AND source = ? AND target = ?
	`, int64(ref), int64(before.Source), int64(before.Target))
	if err != nil {
		return fmt.Errorf("delete %d: %w", ref, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %d: %w", ref, err)
	}
	if n == 0 {
		return fmt.Errorf("delete %d: %w", ref, link.ErrNotExists)
	}

	s.logger.Debug("link deleted", "index", ref)
	return nil
}

// createPointTx inserts a placeholder row and points it at itself.
// The placeholder pair (Null, Null) never survives the transaction.
func createPointTx(ctx context.Context, tx *sql.Tx) (link.Ref, error) {
	result, err := tx.ExecContext(ctx, `INSERT INTO links (source, target) VALUES (?, ?)`,
		int64(link.NullRef), int64(link.NullRef))
	if err != nil {
		return 0, fmt.Errorf("insert point: %w", err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE links SET source = ?, target = ? WHERE id = ?`,
		lastID, lastID, lastID); err != nil {
		return 0, fmt.Errorf("point to itself: %w", err)
	}

	return link.Ref(lastID), nil
}

// checkCapacityTx fails with link.ErrCapacityExhausted when one more link
// would exceed the configured maximum.
func (s *Store) checkCapacityTx(ctx context.Context, tx *sql.Tx) error {
	if s.maxLinks <= 0 {
		return nil
	}

	var count int64
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM links`).Scan(&count); err != nil {
		return fmt.Errorf("count links: %w", err)
	}
	if count >= s.maxLinks {
		return fmt.Errorf("%w: %d links stored, max %d", link.ErrCapacityExhausted, count, s.maxLinks)
	}
	return nil
}

// searchTx returns the index of (source, target) or Null.
func searchTx(ctx context.Context, tx *sql.Tx, source, target link.Ref) (link.Ref, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `
		SELECT id FROM links
		WHERE source = ? AND target = ?
	`, int64(source), int64(target)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return link.NullRef, nil
	}
	if err != nil {
		return 0, fmt.Errorf("search (%d, %d): %w", source, target, err)
	}
	return link.Ref(id), nil
}

func existTx(ctx context.Context, tx *sql.Tx, ref link.Ref) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM links WHERE id = ?)`, int64(ref)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check exist %d: %w", ref, err)
	}
	return exists, nil
}
