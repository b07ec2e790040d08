package bigarray

import (
	"iter"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// checkRange validates the inclusive range [from, to].
func (a *Array[T]) checkRange(from, to int64) error {
	if uint64(from) >= uint64(a.size) {
		return &IndexError{Index: from, Size: a.size}
	}
	if to < from || to >= a.size {
		return &IndexError{Index: to, Size: a.size}
	}
	return nil
}

// spans calls fn once per segment overlapping [from, to] with the clipped part
// of that segment and the logical index of its first element. Both endpoints
// are resolved to (segment, offset) once up front.
func (a *Array[T]) spans(from, to int64, fn func(part []T, base int64)) {
	defer runtime.KeepAlive(a)
	firstSeg, firstOff := a.layout.SegmentOf(from), a.layout.OffsetOf(from)
	lastSeg, lastOff := a.layout.SegmentOf(to), a.layout.OffsetOf(to)

	for s := firstSeg; s <= lastSeg; s++ {
		seg := a.segments[s]
		lo, hi := 0, len(seg)
		if s == firstSeg {
			lo = firstOff
		}
		if s == lastSeg {
			hi = lastOff + 1
		}
		fn(seg[lo:hi], a.layout.Index(s, lo))
	}
}

// ForEach calls fn for every element in ascending index order.
func (a *Array[T]) ForEach(fn func(index int64, v T)) {
	defer runtime.KeepAlive(a)
	for s, seg := range a.segments {
		base := a.layout.Index(s, 0)
		for i, v := range seg {
			fn(base+int64(i), v)
		}
	}
}

// ForEachInRange calls fn for every index in the inclusive range [from, to],
// in ascending order, exactly once each. It fails with an *IndexError if
// from is outside [0, Size()) or to is outside [from, Size()).
func (a *Array[T]) ForEachInRange(from, to int64, fn func(index int64, v T)) error {
	if err := a.checkRange(from, to); err != nil {
		return err
	}
	a.spans(from, to, func(part []T, base int64) {
		for i, v := range part {
			fn(base+int64(i), v)
		}
	})
	return nil
}

// FillRange sets every element in the inclusive range [from, to] to v.
func (a *Array[T]) FillRange(from, to int64, v T) error {
	if err := a.checkRange(from, to); err != nil {
		return err
	}
	a.spans(from, to, func(part []T, _ int64) {
		for i := range part {
			part[i] = v
		}
	})
	return nil
}

// All returns an iterator over (index, element) pairs in ascending order.
//
//	for i, v := range arr.All() {
//	    ...
//	}
func (a *Array[T]) All() iter.Seq2[int64, T] {
	return func(yield func(int64, T) bool) {
		defer runtime.KeepAlive(a)
		for s, seg := range a.segments {
			base := a.layout.Index(s, 0)
			for i, v := range seg {
				if !yield(base+int64(i), v) {
					return
				}
			}
		}
	}
}

// Backward returns an iterator over (index, element) pairs in descending order.
func (a *Array[T]) Backward() iter.Seq2[int64, T] {
	return func(yield func(int64, T) bool) {
		defer runtime.KeepAlive(a)
		for s := len(a.segments) - 1; s >= 0; s-- {
			seg := a.segments[s]
			base := a.layout.Index(s, 0)
			for i := len(seg) - 1; i >= 0; i-- {
				if !yield(base+int64(i), seg[i]) {
					return
				}
			}
		}
	}
}

// eachSegment runs fn for every segment index, fanning out over at most
// opts.parallelism goroutines.
func (a *Array[T]) eachSegment(fn func(s int)) {
	defer runtime.KeepAlive(a)
	if a.opts.parallelism <= 1 || len(a.segments) < 2 {
		for s := range a.segments {
			fn(s)
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(a.opts.parallelism)
	for s := range a.segments {
		g.Go(func() error {
			fn(s)
			return nil
		})
	}
	_ = g.Wait() // fn cannot fail
}
