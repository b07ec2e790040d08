package bigarray

import (
	"math"
	"testing"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentEquals(t *testing.T) {
	a := newSmall(t, 10)

	t.Run("Identity", func(t *testing.T) {
		assert.True(t, ContentEquals(a, a))
	})

	t.Run("DifferentSize", func(t *testing.T) {
		b := newSmall(t, 9)
		assert.False(t, ContentEquals(a, b))
	})

	t.Run("DifferentLayout", func(t *testing.T) {
		b, err := New(10, identity, WithSegmentBits(3))
		require.NoError(t, err)
		assert.True(t, ContentEquals(a, b))

		b.Set(9, 0)
		assert.False(t, ContentEquals(a, b))
	})

	t.Run("Nil", func(t *testing.T) {
		assert.False(t, ContentEquals(a, nil))
		assert.True(t, ContentEquals[int64](nil, nil))
	})
}

func TestContentEqualsFunc(t *testing.T) {
	nan := math.NaN()
	a, err := Wrap([]float64{1, nan, 3}, true)
	require.NoError(t, err)
	b := a.Copy()

	assert.False(t, ContentEquals(a, b), "NaN != NaN")
	assert.True(t, a.ContentEqualsFunc(b, func(x, y float64) bool {
		return x == y || (math.IsNaN(x) && math.IsNaN(y))
	}))
}

func TestDiff(t *testing.T) {
	a := newSmall(t, 100)
	b := a.Copy()
	b.Set(3, -1)
	b.Set(50, -1)
	b.Set(99, -1)

	diff, err := Diff(a, b)
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 50, 99}, diff.ToArray())

	same, err := Diff(a, a)
	require.NoError(t, err)
	assert.True(t, same.IsEmpty())

	_, err = Diff(a, newSmall(t, 99))
	assert.ErrorIs(t, err, ErrSizeMismatch)
}

func TestForEachIndex(t *testing.T) {
	a := newSmall(t, 100)

	set := roaring64.BitmapOf(97, 5, 42)
	var visited []int64
	require.NoError(t, a.ForEachIndex(set, func(i, v int64) {
		assert.Equal(t, i, v)
		visited = append(visited, i)
	}))
	assert.Equal(t, []int64{5, 42, 97}, visited)

	require.NoError(t, a.ForEachIndex(roaring64.New(), func(int64, int64) {
		t.Fatal("unexpected call")
	}))

	called := false
	err := a.ForEachIndex(roaring64.BitmapOf(1, 100), func(int64, int64) { called = true })
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.False(t, called)
}
