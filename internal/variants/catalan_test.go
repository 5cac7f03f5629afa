package variants

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalan_Table(t *testing.T) {
	// C(n) = C(n-1) * 2(2n-1) / (n+1)
	for n := 1; n < MaxSequenceLen; n++ {
		prev, err := Catalan(n - 1)
		require.NoError(t, err)
		got, err := Catalan(n)
		require.NoError(t, err)
		assert.Equal(t, prev*uint64(2*(2*n-1))/uint64(n+1), got, "C(%d)", n)
	}
}

func TestCatalan_Bounds(t *testing.T) {
	tests := []struct {
		n    int
		want uint64
	}{
		{0, 1},
		{3, 5},
		{24, 1289904147324},
	}
	for _, tt := range tests {
		got, err := Catalan(tt.n)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	for _, n := range []int{-1, 25, 100} {
		_, err := Catalan(n)
		assert.True(t, errors.Is(err, ErrCapacityExceeded), "n=%d", n)
	}
}

func TestCount(t *testing.T) {
	n, err := Count(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)

	n, err = Count(4)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), n)

	_, err = Count(0)
	assert.True(t, IsEmptySequence(err))

	_, err = Count(MaxSequenceLen + 1)
	assert.True(t, IsCapacityError(err))
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	_, err = Count(MaxSequenceLen)
	assert.NoError(t, err)
}
