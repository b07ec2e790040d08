package bigarray

import (
	"context"
	"runtime"
	"time"
	"unsafe"

	"github.com/hupe1980/bigarray/internal/layout"
)

// Array is a fixed-size sequence of elements addressed by int64 indices.
//
// Elements live in a list of segments. Every segment holds exactly
// SegmentSize() elements except the last, which holds the remainder. A
// logical index i lives at segment i>>bits, offset i&(SegmentSize()-1).
//
// Get and Set are plain memory accesses: concurrent use of the same element
// from several goroutines without external synchronization is a data race.
// Use an Atomic view for lock-free per-element updates.
type Array[T any] struct {
	layout   layout.Layout
	segments [][]T
	size     int64
	opts     options

	// owner keeps memory the segments point into reachable, e.g. an
	// off-heap buffer whose release is tied to its collection.
	owner any
}

// New creates an array of size elements. If init is non-nil, element i is set
// to init(i), visiting segments in order and offsets in order within each
// segment; otherwise elements are zero values.
//
// New fails with ErrInvalidSize if size is outside [1, MaxSize].
func New[T any](size int64, init func(int64) T, opts ...Option) (*Array[T], error) {
	start := time.Now()
	o := applyOptions(opts)

	a, err := allocate[T](size, o)
	if err != nil {
		recordAllocate[T](o, kindHeap, size, 0, start, err)
		return nil, err
	}
	if init != nil {
		a.fillFunc(init)
	}

	recordAllocate[T](o, kindHeap, size, len(a.segments), start, nil)
	return a, nil
}

// Wrap creates an array over a flat slice.
//
// With copy set, the elements are copied into freshly allocated segments.
// Otherwise the segments are windows into flat: the array borrows the memory
// and the caller must neither append to nor reslice flat while the array is
// in use.
func Wrap[T any](flat []T, copy bool, opts ...Option) (*Array[T], error) {
	start := time.Now()
	o := applyOptions(opts)

	a, err := wrapFlat(flat, copy, o)
	recordAllocate[T](o, kindHeap, int64(len(flat)), segmentCount(a), start, err)
	return a, err
}

func wrapFlat[T any](flat []T, copy bool, o options) (*Array[T], error) {
	size := int64(len(flat))
	if copy {
		a, err := allocate[T](size, o)
		if err != nil {
			return nil, err
		}
		pos := 0
		for _, seg := range a.segments {
			pos += builtinCopy(seg, flat[pos:])
		}
		return a, nil
	}

	l, err := newLayout(size, o)
	if err != nil {
		return nil, err
	}
	segs := make([][]T, l.SegmentCount(size))
	for s := range segs {
		lo := l.SegmentSize() * s
		hi := lo + l.SegmentLen(s, size)
		segs[s] = flat[lo:hi:hi]
	}
	return &Array[T]{layout: l, segments: segs, size: size, opts: o}, nil
}

// WrapSegments creates an array over already segmented data.
//
// With copy set, the source may have any shape; its elements are copied in
// order into uniformly sized segments. Without copy the segments are borrowed
// and must already match the layout: every segment but the last must hold
// exactly SegmentSize() elements and the last must hold between 1 and
// SegmentSize(). Violations fail with ErrInvalidShape.
func WrapSegments[T any](segments [][]T, copy bool, opts ...Option) (*Array[T], error) {
	start := time.Now()
	o := applyOptions(opts)

	var size int64
	for _, seg := range segments {
		size += int64(len(seg))
	}

	a, err := wrapSegments(segments, size, copy, o)
	recordAllocate[T](o, kindHeap, size, segmentCount(a), start, err)
	return a, err
}

func wrapSegments[T any](segments [][]T, size int64, copy bool, o options) (*Array[T], error) {
	if copy {
		a, err := allocate[T](size, o)
		if err != nil {
			return nil, err
		}
		dst, off := 0, 0
		for _, src := range segments {
			for len(src) > 0 {
				n := builtinCopy(a.segments[dst][off:], src)
				src = src[n:]
				if off += n; off == len(a.segments[dst]) {
					dst, off = dst+1, 0
				}
			}
		}
		return a, nil
	}

	l, err := newLayout(size, o)
	if err != nil {
		return nil, err
	}
	if err := validateShape(l, segments); err != nil {
		return nil, err
	}
	segs := make([][]T, len(segments))
	for s, seg := range segments {
		segs[s] = seg[:len(seg):len(seg)]
	}
	return &Array[T]{layout: l, segments: segs, size: size, opts: o}, nil
}

func validateShape[T any](l layout.Layout, segments [][]T) error {
	want := l.SegmentSize()
	for s, seg := range segments {
		if s == len(segments)-1 {
			if len(seg) == 0 || len(seg) > want {
				return &ShapeError{Segment: s, Len: len(seg), Want: want}
			}
			continue
		}
		if len(seg) != want {
			return &ShapeError{Segment: s, Len: len(seg), Want: want}
		}
	}
	return nil
}

func newLayout(size int64, o options) (layout.Layout, error) {
	l, err := layout.New(o.segmentBits)
	if err != nil {
		return layout.Layout{}, translateError(err)
	}
	if !l.Validate(size) {
		return layout.Layout{}, &SizeError{Size: size, Max: l.MaxSize()}
	}
	return l, nil
}

func allocate[T any](size int64, o options) (*Array[T], error) {
	l, err := newLayout(size, o)
	if err != nil {
		return nil, err
	}
	segs := make([][]T, l.SegmentCount(size))
	for s := range segs {
		segs[s] = make([]T, l.SegmentLen(s, size))
	}
	return &Array[T]{layout: l, segments: segs, size: size, opts: o}, nil
}

func recordAllocate[T any](o options, kind string, size int64, segments int, start time.Time, err error) {
	o.logger.LogAllocate(context.Background(), kind, size, segments, err)
	o.metricsCollector.RecordAllocate(kind, size*elemSize[T](), time.Since(start), err)
}

func segmentCount[T any](a *Array[T]) int {
	if a == nil {
		return 0
	}
	return len(a.segments)
}

func elemSize[T any]() int64 {
	var zero T
	return int64(unsafe.Sizeof(zero))
}

// builtinCopy is the copy builtin; several constructors shadow it with a parameter.
func builtinCopy[T any](dst, src []T) int {
	return copy(dst, src)
}

func (a *Array[T]) fillFunc(init func(int64) T) {
	for s, seg := range a.segments {
		base := a.layout.Index(s, 0)
		for i := range seg {
			seg[i] = init(base + int64(i))
		}
	}
}

// Size returns the number of elements.
func (a *Array[T]) Size() int64 {
	return a.size
}

// SegmentSize returns the capacity of a full segment.
func (a *Array[T]) SegmentSize() int {
	return a.layout.SegmentSize()
}

// SegmentCount returns the number of segments.
func (a *Array[T]) SegmentCount() int {
	return len(a.segments)
}

// MaxSize returns the largest size supported by this array's segment size.
func (a *Array[T]) MaxSize() int64 {
	return a.layout.MaxSize()
}

// Segments exposes the segment list for bulk collaborators such as stream
// readers and writers. The slices alias the array's storage; callers may
// modify elements in place but must not append to or reslice them.
func (a *Array[T]) Segments() [][]T {
	return a.segments
}

// Get returns the element at index.
// It panics with an *IndexError if index is outside [0, Size()).
func (a *Array[T]) Get(index int64) T {
	if uint64(index) >= uint64(a.size) {
		panic(&IndexError{Index: index, Size: a.size})
	}
	return a.segments[a.layout.SegmentOf(index)][a.layout.OffsetOf(index)]
}

// Set stores v at index.
// It panics with an *IndexError if index is outside [0, Size()).
func (a *Array[T]) Set(index int64, v T) {
	if uint64(index) >= uint64(a.size) {
		panic(&IndexError{Index: index, Size: a.size})
	}
	a.segments[a.layout.SegmentOf(index)][a.layout.OffsetOf(index)] = v
}

// TryGet is Get returning an error instead of panicking.
func (a *Array[T]) TryGet(index int64) (T, error) {
	if uint64(index) >= uint64(a.size) {
		var zero T
		return zero, &IndexError{Index: index, Size: a.size}
	}
	return a.segments[a.layout.SegmentOf(index)][a.layout.OffsetOf(index)], nil
}

// TrySet is Set returning an error instead of panicking.
func (a *Array[T]) TrySet(index int64, v T) error {
	if uint64(index) >= uint64(a.size) {
		return &IndexError{Index: index, Size: a.size}
	}
	a.segments[a.layout.SegmentOf(index)][a.layout.OffsetOf(index)] = v
	return nil
}

// Copy returns a deep copy on the heap with the same size, contents and
// options. The copy shares no memory with a.
func (a *Array[T]) Copy() *Array[T] {
	start := time.Now()
	dst := &Array[T]{
		layout:   a.layout,
		segments: make([][]T, len(a.segments)),
		size:     a.size,
		opts:     a.opts,
	}
	a.eachSegment(func(s int) {
		seg := make([]T, len(a.segments[s]))
		copy(seg, a.segments[s])
		dst.segments[s] = seg
	})
	a.opts.metricsCollector.RecordCopy(a.size*elemSize[T](), time.Since(start))
	return dst
}

// Fill sets every element to v.
func (a *Array[T]) Fill(v T) {
	defer runtime.KeepAlive(a)
	for _, seg := range a.segments {
		for i := range seg {
			seg[i] = v
		}
	}
}

// ParallelFill sets element i to init(i), processing segments concurrently
// when the array was built WithParallelism(n > 1). init must be safe for
// concurrent use; the visiting order across segments is unspecified.
func (a *Array[T]) ParallelFill(init func(int64) T) {
	a.eachSegment(func(s int) {
		seg := a.segments[s]
		base := a.layout.Index(s, 0)
		for i := range seg {
			seg[i] = init(base + int64(i))
		}
	})
}

// Resize changes the size of the array by replacing its segment list.
//
// Full segments that keep their length are shared with the old list; the
// boundary segment is reallocated. Elements beyond the old size are zero
// values. Cursors and Atomic views created before Resize are stale and must
// be recreated.
func (a *Array[T]) Resize(newSize int64) error {
	if !a.layout.Validate(newSize) {
		return &SizeError{Size: newSize, Max: a.layout.MaxSize()}
	}

	old := a.segments
	segs := make([][]T, a.layout.SegmentCount(newSize))
	for s := range segs {
		want := a.layout.SegmentLen(s, newSize)
		if s < len(old) && len(old[s]) == want {
			segs[s] = old[s]
			continue
		}
		seg := make([]T, want)
		if s < len(old) {
			copy(seg, old[s])
		}
		segs[s] = seg
	}

	a.opts.logger.LogResize(context.Background(), a.size, newSize)
	a.segments = segs
	a.size = newSize
	return nil
}
