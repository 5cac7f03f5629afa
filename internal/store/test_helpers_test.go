package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/doublets/internal/link"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createPoints creates n points and returns their indexes in order.
func createPoints(t *testing.T, s *Store, n int) []link.Ref {
	t.Helper()
	refs := make([]link.Ref, n)
	for i := range refs {
		r, err := s.CreatePoint(context.Background())
		if err != nil {
			t.Fatalf("CreatePoint() failed: %v", err)
		}
		refs[i] = r
	}
	return refs
}
