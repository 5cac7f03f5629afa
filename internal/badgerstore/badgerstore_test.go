package badgerstore

import (
	"bytes"
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/doublets/internal/link"
	"github.com/roach88/doublets/internal/metrics"
)

func openTestStore(t *testing.T, cfg Config) *Store {
	t.Helper()
	s, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func points(t *testing.T, s *Store, n int) []link.Ref {
	t.Helper()
	refs := make([]link.Ref, n)
	for i := range refs {
		r, err := s.CreatePoint(context.Background())
		require.NoError(t, err)
		refs[i] = r
	}
	return refs
}

func TestOpen_InMemory(t *testing.T) {
	s := openTestStore(t, InMemoryConfig())

	n, err := s.Count(context.Background(), link.MatchAll)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFirstIndexAboveSentinels(t *testing.T) {
	s := openTestStore(t, InMemoryConfig())
	p := points(t, s, 1)[0]
	assert.Equal(t, link.FirstIndex, p)
	assert.False(t, s.Constants().IsSentinel(p))
}

func TestReopen_PersistsLinks(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(Config{Path: dir})
	require.NoError(t, err)
	refs := points(t, s, 2)
	ab, err := s.GetOrCreate(ctx, refs[0], refs[1])
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(Config{Path: dir})
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Search(ctx, refs[0], refs[1])
	require.NoError(t, err)
	assert.Equal(t, ab, got)

	// The counter survives, so new indexes do not collide.
	next, err := s.CreatePoint(ctx)
	require.NoError(t, err)
	assert.Greater(t, next, ab)
}

func TestClose_Twice(t *testing.T) {
	s, err := Open(InMemoryConfig())
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}

func TestGetOrCreate_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, InMemoryConfig())
	refs := points(t, s, 2)

	first, err := s.GetOrCreate(ctx, refs[0], refs[1])
	require.NoError(t, err)
	second, err := s.GetOrCreate(ctx, refs[0], refs[1])
	require.NoError(t, err)
	assert.Equal(t, first, second)

	n, err := s.Count(ctx, link.MatchAll)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestGetOrCreate_Rejections(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, InMemoryConfig())
	p := points(t, s, 1)[0]

	_, err := s.GetOrCreate(ctx, link.AnyRef, p)
	assert.ErrorIs(t, err, link.ErrCreationRejected)

	_, err = s.GetOrCreate(ctx, p, 77)
	assert.ErrorIs(t, err, link.ErrCreationRejected)
	assert.ErrorIs(t, err, link.ErrNotExists)
}

func TestGetOrCreate_Capacity(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, Config{InMemory: true, MaxLinks: 2})
	refs := points(t, s, 2)

	_, err := s.GetOrCreate(ctx, refs[0], refs[1])
	assert.ErrorIs(t, err, link.ErrCreationRejected)
	assert.ErrorIs(t, err, link.ErrCapacityExhausted)
}

func TestGetOrCreate_Metrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	rec, err := metrics.NewRecorderWith(reg, reg)
	require.NoError(t, err)

	s := openTestStore(t, Config{InMemory: true, Metrics: rec})
	refs := points(t, s, 2)
	_, err = s.GetOrCreate(ctx, refs[1], refs[0])
	require.NoError(t, err)
	_, err = s.GetOrCreate(ctx, refs[1], refs[0])
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, rec.WriteText(&buf))
	assert.Contains(t, buf.String(), `doublets_links_created_total{backend="badger"} 3`)
	assert.Contains(t, buf.String(), `doublets_links_reused_total{backend="badger"} 1`)
}

func TestEach(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, InMemoryConfig())
	refs := points(t, s, 2)
	ab, err := s.GetOrCreate(ctx, refs[0], refs[1])
	require.NoError(t, err)
	ba, err := s.GetOrCreate(ctx, refs[1], refs[0])
	require.NoError(t, err)

	collect := func(p link.Pattern) []link.Link {
		var out []link.Link
		for l, err := range s.Each(ctx, p) {
			require.NoError(t, err)
			out = append(out, l)
		}
		return out
	}

	all := collect(link.MatchAll)
	require.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Index, all[i].Index, "index order")
	}
	// Ranging twice re-runs the query.
	assert.Equal(t, all, collect(link.MatchAll))

	c := s.Constants()
	assert.Equal(t, []link.Link{{Index: ab, Source: refs[0], Target: refs[1]}},
		collect(c.Pattern(ab, c.Any, c.Any)))
	assert.Equal(t, []link.Link{{Index: ba, Source: refs[1], Target: refs[0]}},
		collect(c.Pattern(c.Any, refs[1], refs[0])))
	assert.Len(t, collect(c.Pattern(c.Any, refs[0], c.Any)), 2, "point and ab start at refs[0]")
	assert.Empty(t, collect(c.Pattern(999, c.Any, c.Any)))
	assert.Empty(t, collect(c.Pattern(ab, refs[1], c.Any)))
}

func TestEach_EarlyBreak(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, InMemoryConfig())
	points(t, s, 5)

	seen := 0
	for _, err := range s.Each(ctx, link.MatchAll) {
		require.NoError(t, err)
		seen++
		if seen == 2 {
			break
		}
	}
	assert.Equal(t, 2, seen)
}

func TestCount_Pattern(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, InMemoryConfig())
	refs := points(t, s, 2)
	_, err := s.GetOrCreate(ctx, refs[0], refs[1])
	require.NoError(t, err)

	c := s.Constants()
	n, err := s.Count(ctx, c.Pattern(c.Any, c.Any, refs[1]))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestSearch_Absent(t *testing.T) {
	s := openTestStore(t, InMemoryConfig())
	refs := points(t, s, 2)

	got, err := s.Search(context.Background(), refs[0], refs[1])
	require.NoError(t, err)
	assert.Equal(t, link.NullRef, got)
}

func TestDeleteWith(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, InMemoryConfig())
	refs := points(t, s, 2)
	ab, err := s.GetOrCreate(ctx, refs[0], refs[1])
	require.NoError(t, err)

	var after link.Link
	require.NoError(t, s.DeleteWith(ctx, ab, func(_, a link.Link) link.Flow {
		after = a
		return link.Continue
	}))
	assert.Equal(t, link.Link{Index: ab}, after)

	ok, err := s.Exist(ctx, ab)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := s.Search(ctx, refs[0], refs[1])
	require.NoError(t, err)
	assert.Equal(t, link.NullRef, got, "pair entry removed")

	n, err := s.Count(ctx, link.MatchAll)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	again, err := s.GetOrCreate(ctx, refs[0], refs[1])
	require.NoError(t, err)
	assert.Greater(t, again, ab, "indexes are not reissued")
}

func TestDeleteWith_Break(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, InMemoryConfig())
	p := points(t, s, 1)[0]

	require.NoError(t, s.DeleteWith(ctx, p, func(_, _ link.Link) link.Flow { return link.Break }))

	ok, err := s.Exist(ctx, p)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDeleteWith_Missing(t *testing.T) {
	s := openTestStore(t, InMemoryConfig())
	err := s.DeleteWith(context.Background(), 50, nil)
	assert.ErrorIs(t, err, link.ErrNotExists)
}

func TestNamePoint(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, InMemoryConfig())

	x, err := s.NamePoint(ctx, "x")
	require.NoError(t, err)
	y, err := s.NamePoint(ctx, " y ")
	require.NoError(t, err)
	again, err := s.NamePoint(ctx, "x")
	require.NoError(t, err)

	assert.Equal(t, x, again)
	assert.NotEqual(t, x, y)

	name, ok, err := s.NameOf(ctx, y)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "y", name)

	_, err = s.NamePoint(ctx, "   ")
	assert.ErrorIs(t, err, link.ErrInvalidName)
}

func TestNamePoint_DeleteReleasesName(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, InMemoryConfig())

	x, err := s.NamePoint(ctx, "x")
	require.NoError(t, err)
	require.NoError(t, s.DeleteWith(ctx, x, nil))

	_, ok, err := s.NameOf(ctx, x)
	require.NoError(t, err)
	assert.False(t, ok)

	fresh, err := s.NamePoint(ctx, "x")
	require.NoError(t, err)
	assert.NotEqual(t, x, fresh)
}
