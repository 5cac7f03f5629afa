package render

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/doublets/internal/link"
)

func TestElementPredicate(t *testing.T) {
	point := link.Link{Index: 3, Source: 3, Target: 3}
	partial := link.Link{Index: 7, Source: 7, Target: 3}
	pair := link.Link{Index: 8, Source: 3, Target: 7}

	tests := []struct {
		name string
		want [3]bool
	}{
		{"", [3]bool{true, false, false}},
		{"point", [3]bool{true, false, false}},
		{"partial", [3]bool{true, true, false}},
		{"none", [3]bool{false, false, false}},
	}
	for _, tt := range tests {
		pred, err := ElementPredicate(tt.name)
		require.NoError(t, err)
		assert.Equal(t, tt.want, [3]bool{pred(point), pred(partial), pred(pair)}, "predicate %q", tt.name)
	}

	_, err := ElementPredicate("leaf")
	assert.ErrorContains(t, err, "unknown element predicate")
}

type staticNamer map[link.Ref]string

func (n staticNamer) NameOf(_ context.Context, r link.Ref) (string, bool, error) {
	s, ok := n[r]
	return s, ok, nil
}

func TestNameLabel(t *testing.T) {
	label := NameLabel(context.Background(), staticNamer{
		3: "x",
		5: "7",
		6: "a b",
		7: "(x",
		8: "y:z",
		9: "héllo",
	})

	tests := []struct {
		ref  link.Ref
		want string
	}{
		{3, "x"},
		{4, "4"},
		{5, `"7"`},
		{6, `"a b"`},
		{7, `"(x"`},
		{8, `"y:z"`},
		{9, "héllo"},
	}
	for _, tt := range tests {
		got, err := label(tt.ref)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "ref %d", tt.ref)
	}
}

// failingNamer fails every lookup.
type failingNamer struct{}

func (failingNamer) NameOf(context.Context, link.Ref) (string, bool, error) {
	return "", false, errors.New("names table locked")
}

func TestNameLabel_Error(t *testing.T) {
	_, err := NameLabel(context.Background(), failingNamer{})(3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "names table locked")
}
