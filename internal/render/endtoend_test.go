package render_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/doublets/internal/link"
	"github.com/roach88/doublets/internal/render"
	"github.com/roach88/doublets/internal/testutil"
	"github.com/roach88/doublets/internal/variants"
)

func TestEnumerateAndRender(t *testing.T) {
	for _, b := range testutil.Backends(t) {
		t.Run(b.Name, func(t *testing.T) {
			ctx := context.Background()
			s := b.Store

			x, err := s.NamePoint(ctx, "x")
			require.NoError(t, err)
			y, err := s.NamePoint(ctx, "y")
			require.NoError(t, err)

			roots, err := variants.Enumerate(ctx, s, []link.Ref{x, y, x})
			require.NoError(t, err)
			require.Len(t, roots, 2)

			opts := render.Options{IsElement: render.Points, Label: render.NameLabel(ctx, s)}
			var texts []string
			for _, r := range roots {
				text, err := render.Deep(ctx, s, r, opts)
				require.NoError(t, err)
				texts = append(texts, text)
			}
			assert.Equal(t, []string{"(x (y x))", "((x y) x)"}, texts)

			xy, err := s.Search(ctx, x, y)
			require.NoError(t, err)
			indexed, err := render.Deep(ctx, s, roots[1], render.Options{RenderIndex: true})
			require.NoError(t, err)
			assert.Equal(t, "("+roots[1].String()+":("+xy.String()+":"+x.String()+" "+y.String()+") "+x.String()+")", indexed)
		})
	}
}

func TestRender_DanglingAfterDelete(t *testing.T) {
	for _, b := range testutil.Backends(t) {
		t.Run(b.Name, func(t *testing.T) {
			ctx := context.Background()
			s := b.Store
			p := testutil.Points(t, s, 2)
			ab, err := s.GetOrCreate(ctx, p[0], p[1])
			require.NoError(t, err)

			require.NoError(t, s.DeleteWith(ctx, p[1], nil))

			got, err := render.Deep(ctx, s, ab, render.Options{RenderDebug: true})
			require.NoError(t, err)
			assert.Equal(t, "("+p[0].String()+" ~"+p[1].String()+")", got)
		})
	}
}
