package bigarray

import (
	"fmt"
	"runtime"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// ContentEquals reports whether a and b have the same size and equal elements.
// Identical arrays are equal without comparing elements.
func ContentEquals[T comparable](a, b *Array[T]) bool {
	return a.ContentEqualsFunc(b, func(x, y T) bool { return x == y })
}

// ContentEqualsFunc is ContentEquals with a custom element comparison. It
// stops at the first mismatch.
func (a *Array[T]) ContentEqualsFunc(b *Array[T], eq func(x, y T) bool) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.size != b.size {
		return false
	}

	defer runtime.KeepAlive(a)
	defer runtime.KeepAlive(b)

	if a.layout == b.layout {
		for s, sa := range a.segments {
			sb := b.segments[s]
			for i := range sa {
				if !eq(sa[i], sb[i]) {
					return false
				}
			}
		}
		return true
	}

	// Different segment sizes: walk b with a cursor to avoid per-element division.
	c := b.cursorAt(0)
	for _, v := range a.All() {
		if !eq(v, c.Next()) {
			return false
		}
	}
	return true
}

// Diff returns the set of indices at which a and b differ.
// It fails with ErrSizeMismatch if the sizes differ.
func Diff[T comparable](a, b *Array[T]) (*roaring64.Bitmap, error) {
	if a.Size() != b.Size() {
		return nil, fmt.Errorf("%w: %d != %d", ErrSizeMismatch, a.Size(), b.Size())
	}

	diff := roaring64.New()
	if a == b {
		return diff, nil
	}

	c := b.cursorAt(0)
	for i, v := range a.All() {
		if v != c.Next() {
			diff.Add(uint64(i))
		}
	}
	return diff, nil
}

// ForEachIndex calls fn for each index in set, in ascending order. It fails
// with an *IndexError, before calling fn, if set holds an index >= Size().
func (a *Array[T]) ForEachIndex(set *roaring64.Bitmap, fn func(index int64, v T)) error {
	if set.IsEmpty() {
		return nil
	}
	if maxIdx := set.Maximum(); maxIdx >= uint64(a.size) {
		return &IndexError{Index: int64(maxIdx), Size: a.size} //nolint:gosec // reported as-is
	}

	it := set.Iterator()
	for it.HasNext() {
		i := int64(it.Next()) //nolint:gosec // bounded by Maximum() < size
		fn(i, a.segments[a.layout.SegmentOf(i)][a.layout.OffsetOf(i)])
	}
	return nil
}
