package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/doublets/internal/badgerstore"
	"github.com/roach88/doublets/internal/link"
	"github.com/roach88/doublets/internal/store"
)

// Backend is a named, open store.
type Backend struct {
	Name  string
	Store link.Store
}

// Backends opens a volatile instance of every store backend. The stores are
// closed when the test finishes.
//
// Typical use:
//
//	for _, b := range testutil.Backends(t) {
//		t.Run(b.Name, func(t *testing.T) { ... b.Store ... })
//	}
func Backends(t *testing.T) []Backend {
	t.Helper()

	sq, err := store.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })

	bg, err := badgerstore.Open(badgerstore.InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { bg.Close() })

	return []Backend{
		{Name: store.Backend, Store: sq},
		{Name: badgerstore.Backend, Store: bg},
	}
}

// Points creates n points in s and returns their indexes in order.
func Points(t *testing.T, s link.Store, n int) []link.Ref {
	t.Helper()
	refs := make([]link.Ref, n)
	for i := range refs {
		r, err := s.CreatePoint(context.Background())
		require.NoError(t, err)
		refs[i] = r
	}
	return refs
}
