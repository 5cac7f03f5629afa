package link

import (
	"context"
	"iter"
)

// Flow tells DeleteWith whether to proceed.
type Flow int

const (
	// Continue lets the operation complete.
	Continue Flow = iota
	// Break abandons the operation.
	Break
)

// DeleteHandler observes a deletion. before is the stored link; after is
// the same index with both ends cleared to Null. It runs before the
// deletion is applied, outside any store transaction, and may call the
// store. The deletion fails with ErrNotExists when the handler changed
// the link.
type DeleteHandler func(before, after Link) Flow

// Store is the contract every storage backend provides.
//
// All methods that touch storage take a context which is handed to the
// underlying engine. Implementations serialise their own writes; callers
// need no extra locking.
type Store interface {
	// Constants returns the sentinel references of this store.
	Constants() Constants

	// GetOrCreate returns the index of the link (source, target), creating
	// it when absent. Rejections wrap ErrCreationRejected.
	GetOrCreate(ctx context.Context, source, target Ref) (Ref, error)

	// CreatePoint creates a new self-referential link.
	CreatePoint(ctx context.Context) (Ref, error)

	// Exist reports whether a link with this index is stored.
	Exist(ctx context.Context, ref Ref) (bool, error)

	// GetLink returns the stored link; ok is false when it does not exist.
	GetLink(ctx context.Context, ref Ref) (l Link, ok bool, err error)

	// Search returns the index of (source, target) or Null when absent.
	Search(ctx context.Context, source, target Ref) (Ref, error)

	// Each lazily yields every link matching p in index order. Every range
	// over the returned sequence re-runs the query. The loop body may call
	// any Store method; whether links written during a range are yielded
	// depends on the backend.
	Each(ctx context.Context, p Pattern) iter.Seq2[Link, error]

	// Count returns the number of links matching p.
	Count(ctx context.Context, p Pattern) (int64, error)

	// DeleteWith removes a link after consulting h. A Break from h leaves
	// the store untouched.
	DeleteWith(ctx context.Context, ref Ref, h DeleteHandler) error

	// NamePoint returns the point registered under name, creating and
	// registering a new point when the name is unknown.
	NamePoint(ctx context.Context, name string) (Ref, error)

	// NameOf returns the name registered for ref, if any.
	NameOf(ctx context.Context, ref Ref) (name string, ok bool, err error)

	// Close releases the underlying engine.
	Close() error
}
