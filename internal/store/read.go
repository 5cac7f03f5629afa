package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/roach88/doublets/internal/link"
)

// Exist reports whether a link with this index is stored.
func (s *Store) Exist(ctx context.Context, ref link.Ref) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM links WHERE id = ?)`, int64(ref)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check exist %d: %w", ref, err)
	}
	return exists, nil
}

// GetLink retrieves a single link by index.
// Returns ok=false if not found.
func (s *Store) GetLink(ctx context.Context, ref link.Ref) (link.Link, bool, error) {
	l, err := scanLink(s.db.QueryRowContext(ctx, `
		SELECT id, source, target FROM links WHERE id = ?
	`, int64(ref)))
	if errors.Is(err, sql.ErrNoRows) {
		return link.Link{}, false, nil
	}
	if err != nil {
		return link.Link{}, false, fmt.Errorf("get link %d: %w", ref, err)
	}
	return l, true, nil
}

// Search returns the index of (source, target), or Null when no such link
// is stored.
func (s *Store) Search(ctx context.Context, source, target link.Ref) (link.Ref, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM links
		WHERE source = ? AND target = ?
	`, int64(source), int64(target)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return s.Constants().Null, nil
	}
	if err != nil {
		return 0, fmt.Errorf("search (%d, %d): %w", source, target, err)
	}
	return link.Ref(id), nil
}

// eachPageSize is the number of rows Each reads per query.
const eachPageSize = 256

// Each yields every link matching p, ordered by index.
//
// The query runs when the sequence is ranged over, not when Each is
// called. Rows are read in pages keyed by index and no connection is held
// while the body runs, so the body may call other Store methods. Links
// created during a range are yielded when their index lies ahead.
func (s *Store) Each(ctx context.Context, p link.Pattern) iter.Seq2[link.Link, error] {
	return func(yield func(link.Link, error) bool) {
		where, args := patternClause(p)
		var last int64
		for {
			page, err := s.eachPage(ctx, where, args, last)
			if err != nil {
				yield(link.Link{}, err)
				return
			}
			for _, l := range page {
				if !yield(l, nil) {
					return
				}
			}
			if len(page) < eachPageSize {
				return
			}
			last = int64(page[len(page)-1].Index)
		}
	}
}

// eachPage reads up to eachPageSize matching links with an index above
// last.
func (s *Store) eachPage(ctx context.Context, where string, args []any, last int64) ([]link.Link, error) {
	cond := " WHERE id > ?"
	if where != "" {
		cond = where + " AND id > ?"
	}
	args = append(append([]any{}, args...), last, eachPageSize)

	rows, err := s.db.QueryContext(ctx, `SELECT id, source, target FROM links`+cond+` ORDER BY id ASC LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("query links: %w", err)
	}
	defer rows.Close()

	page := make([]link.Link, 0, eachPageSize)
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		page = append(page, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate links: %w", err)
	}
	return page, nil
}

// Count returns the number of links matching p.
func (s *Store) Count(ctx context.Context, p link.Pattern) (int64, error) {
	where, args := patternClause(p)
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM links`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count links: %w", err)
	}
	return n, nil
}

// patternClause turns the exact fields of p into a WHERE clause.
func patternClause(p link.Pattern) (string, []any) {
	var conds []string
	var args []any
	for _, f := range []struct {
		column string
		field  link.Field
	}{
		{"id", p.Index},
		{"source", p.Source},
		{"target", p.Target},
	} {
		if r, ok := f.field.Ref(); ok {
			conds = append(conds, f.column+" = ?")
			args = append(args, int64(r))
		}
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// rowScanner is implemented by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanLink scans an (id, source, target) row.
func scanLink(row rowScanner) (link.Link, error) {
	var id, source, target int64
	if err := row.Scan(&id, &source, &target); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return link.Link{}, err
		}
		return link.Link{}, fmt.Errorf("scan link: %w", err)
	}
	return link.Link{Index: link.Ref(id), Source: link.Ref(source), Target: link.Ref(target)}, nil
}
