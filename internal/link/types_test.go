package link

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstants_SentinelsBelowFirstIndex(t *testing.T) {
	c := DefaultConstants()
	for _, r := range []Ref{c.Null, c.Any, c.Itself} {
		assert.True(t, c.IsSentinel(r))
		assert.Less(t, r, FirstIndex)
	}
	assert.False(t, c.IsSentinel(FirstIndex))
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name    string
		link    Link
		point   bool
		partial bool
		full    bool
	}{
		{"point", Link{Index: 3, Source: 3, Target: 3}, true, true, true},
		{"pair", Link{Index: 5, Source: 3, Target: 4}, false, false, true},
		{"source self", Link{Index: 5, Source: 5, Target: 4}, false, true, true},
		{"target self", Link{Index: 5, Source: 3, Target: 5}, false, true, true},
		{"null source", Link{Index: 5, Source: NullRef, Target: 4}, false, false, false},
	}

	c := DefaultConstants()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.point, IsPoint(tt.link))
			assert.Equal(t, tt.partial, IsPartialPoint(tt.link))
			assert.Equal(t, tt.full, IsFull(c, tt.link))
		})
	}
}

func TestLink_String(t *testing.T) {
	assert.Equal(t, "(5: 3 4)", Link{Index: 5, Source: 3, Target: 4}.String())
}

func TestParseRef(t *testing.T) {
	r, err := ParseRef("42")
	require.NoError(t, err)
	assert.Equal(t, Ref(42), r)
	assert.Equal(t, "42", r.String())

	_, err = ParseRef("-1")
	assert.Error(t, err)
	_, err = ParseRef("x")
	assert.Error(t, err)
}
