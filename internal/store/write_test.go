package store

import (
	"bytes"
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/doublets/internal/link"
	"github.com/roach88/doublets/internal/metrics"
)

func TestCreatePoint_SelfReferential(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	p, err := s.CreatePoint(ctx)
	require.NoError(t, err)

	l, ok, err := s.GetLink(ctx, p)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, link.IsPoint(l))
	assert.Equal(t, link.Link{Index: p, Source: p, Target: p}, l)
}

func TestCreatePoint_DistinctIndexes(t *testing.T) {
	s := createTestStore(t)
	refs := createPoints(t, s, 5)
	seen := map[link.Ref]bool{}
	for _, r := range refs {
		assert.False(t, seen[r], "index %d issued twice", r)
		seen[r] = true
	}
}

func TestGetOrCreate_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	refs := createPoints(t, s, 2)

	first, err := s.GetOrCreate(ctx, refs[0], refs[1])
	require.NoError(t, err)
	second, err := s.GetOrCreate(ctx, refs[0], refs[1])
	require.NoError(t, err)

	assert.Equal(t, first, second)

	n, err := s.Count(ctx, s.Constants().Pattern(link.AnyRef, refs[0], refs[1]))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "exactly one link per pair")
}

func TestGetOrCreate_OrderMatters(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	refs := createPoints(t, s, 2)

	ab, err := s.GetOrCreate(ctx, refs[0], refs[1])
	require.NoError(t, err)
	ba, err := s.GetOrCreate(ctx, refs[1], refs[0])
	require.NoError(t, err)

	assert.NotEqual(t, ab, ba)
}

func TestGetOrCreate_RejectsSentinels(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	p := createPoints(t, s, 1)[0]
	c := s.Constants()

	for _, sentinel := range []link.Ref{c.Null, c.Any, c.Itself} {
		_, err := s.GetOrCreate(ctx, sentinel, p)
		assert.ErrorIs(t, err, link.ErrCreationRejected)
		_, err = s.GetOrCreate(ctx, p, sentinel)
		assert.ErrorIs(t, err, link.ErrCreationRejected)
	}
}

func TestGetOrCreate_RejectsMissingEnds(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	p := createPoints(t, s, 1)[0]

	_, err := s.GetOrCreate(ctx, p, 999)
	assert.ErrorIs(t, err, link.ErrCreationRejected)
	assert.ErrorIs(t, err, link.ErrNotExists)
	assert.Contains(t, err.Error(), "999")
}

func TestGetOrCreate_Capacity(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t, WithMaxLinks(3))
	refs := createPoints(t, s, 2)

	ab, err := s.GetOrCreate(ctx, refs[0], refs[1])
	require.NoError(t, err)

	_, err = s.GetOrCreate(ctx, refs[1], refs[0])
	assert.ErrorIs(t, err, link.ErrCreationRejected)
	assert.ErrorIs(t, err, link.ErrCapacityExhausted)

	// Existing pairs are still answered at capacity.
	got, err := s.GetOrCreate(ctx, refs[0], refs[1])
	require.NoError(t, err)
	assert.Equal(t, ab, got)

	_, err = s.CreatePoint(ctx)
	assert.ErrorIs(t, err, link.ErrCapacityExhausted)
}

func TestGetOrCreate_Metrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	rec, err := metrics.NewRecorderWith(reg, reg)
	require.NoError(t, err)

	s := createTestStore(t, WithMetrics(rec))
	refs := createPoints(t, s, 2)
	_, err = s.GetOrCreate(ctx, refs[0], refs[1])
	require.NoError(t, err)
	_, err = s.GetOrCreate(ctx, refs[0], refs[1])
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(reg, "doublets_links_created_total", "doublets_links_reused_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var buf bytes.Buffer
	require.NoError(t, rec.WriteText(&buf))
	assert.Contains(t, buf.String(), `doublets_links_created_total{backend="sqlite"} 3`)
	assert.Contains(t, buf.String(), `doublets_links_reused_total{backend="sqlite"} 1`)
}

func TestDeleteWith(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	refs := createPoints(t, s, 2)
	ab, err := s.GetOrCreate(ctx, refs[0], refs[1])
	require.NoError(t, err)

	var gotBefore, gotAfter link.Link
	err = s.DeleteWith(ctx, ab, func(before, after link.Link) link.Flow {
		gotBefore, gotAfter = before, after
		return link.Continue
	})
	require.NoError(t, err)

	assert.Equal(t, link.Link{Index: ab, Source: refs[0], Target: refs[1]}, gotBefore)
	assert.Equal(t, link.Link{Index: ab, Source: link.NullRef, Target: link.NullRef}, gotAfter)

	ok, err := s.Exist(ctx, ab)
	require.NoError(t, err)
	assert.False(t, ok)

	// AUTOINCREMENT never reissues the deleted index.
	again, err := s.GetOrCreate(ctx, refs[0], refs[1])
	require.NoError(t, err)
	assert.Greater(t, again, ab)
}

func TestDeleteWith_BreakKeepsLink(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	p := createPoints(t, s, 1)[0]

	err := s.DeleteWith(ctx, p, func(before, after link.Link) link.Flow {
		return link.Break
	})
	require.NoError(t, err)

	ok, err := s.Exist(ctx, p)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDeleteWith_Missing(t *testing.T) {
	s := createTestStore(t)
	err := s.DeleteWith(context.Background(), 42, nil)
	assert.ErrorIs(t, err, link.ErrNotExists)
}

func TestDeleteWith_LeavesDanglingReferences(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	refs := createPoints(t, s, 2)
	ab, err := s.GetOrCreate(ctx, refs[0], refs[1])
	require.NoError(t, err)

	require.NoError(t, s.DeleteWith(ctx, refs[0], nil))

	l, ok, err := s.GetLink(ctx, ab)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, refs[0], l.Source)
}
