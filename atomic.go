package bigarray

import (
	"math/bits"
	"reflect"
	"runtime"
	"unsafe"

	"github.com/hupe1980/bigarray/internal/layout"
)

// Atomic is a lock-free view over the elements of an Array.
//
// Every operation on one element is linearizable with respect to every other
// Atomic operation on that element, from any number of goroutines. There is
// no atomicity across elements, and plain Array accesses racing with Atomic
// ones are data races.
//
// Values are compared by bit pattern: for floats NaN equals itself and -0
// differs from +0. Retry loops are unbounded and may spin under heavy
// contention.
//
// The view captures the segment base addresses once and keeps off-heap
// memory behind them alive. It goes stale if the array is resized, and must
// not be used after an OffHeapBytes is closed.
type Atomic[T any] struct {
	layout layout.Layout
	bases  []unsafe.Pointer
	size   int64
	width  uintptr
	shift  uint
	owner  any
}

// NewAtomic creates an atomic view over a.
//
// T must be free of pointers and 1, 2, 4 or 8 bytes wide, with its natural
// word alignment; every segment must start on a width-aligned address.
// Anything else fails with a *StrideError.
func NewAtomic[T any](a *Array[T]) (*Atomic[T], error) {
	t := reflect.TypeFor[T]()
	width := t.Size()

	switch {
	case width != 1 && width != 2 && width != 4 && width != 8:
		return nil, &StrideError{Type: t, Stride: width, Reason: "stride is not 1, 2, 4 or 8 bytes"}
	case uintptr(t.Align()) < min(width, 4):
		return nil, &StrideError{Type: t, Stride: width, Reason: "element is under-aligned"}
	case hasPointers(t):
		return nil, &StrideError{Type: t, Stride: width, Reason: "element contains pointers"}
	}

	bases := make([]unsafe.Pointer, len(a.segments))
	for s, seg := range a.segments {
		p := unsafe.Pointer(unsafe.SliceData(seg))
		if width > 1 && uintptr(p)%width != 0 {
			return nil, &StrideError{Type: t, Stride: width, Reason: "segment base is not aligned"}
		}
		bases[s] = p
	}

	return &Atomic[T]{
		layout: a.layout,
		bases:  bases,
		size:   a.size,
		width:  width,
		shift:  uint(bits.TrailingZeros(uint(width))),
		owner:  a.owner,
	}, nil
}

func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Map, reflect.Chan,
		reflect.Func, reflect.Interface, reflect.Slice, reflect.String:
		return true
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
	}
	return false
}

// Len returns the number of elements covered by the view.
func (v *Atomic[T]) Len() int64 {
	return v.size
}

// addr returns the address of element index: base(segment) + offset<<shift.
func (v *Atomic[T]) addr(index int64) unsafe.Pointer {
	if uint64(index) >= uint64(v.size) {
		panic(&IndexError{Index: index, Size: v.size})
	}
	off := uintptr(v.layout.OffsetOf(index)) << v.shift
	return unsafe.Add(v.bases[v.layout.SegmentOf(index)], off)
}

// Get atomically loads the element at index.
// It panics with an *IndexError if index is outside [0, Len()).
func (v *Atomic[T]) Get(index int64) T {
	val := fromBits[T](loadBits(v.addr(index), v.width))
	runtime.KeepAlive(v)
	return val
}

// TryGet is Get returning an error instead of panicking.
func (v *Atomic[T]) TryGet(index int64) (T, error) {
	if uint64(index) >= uint64(v.size) {
		var zero T
		return zero, &IndexError{Index: index, Size: v.size}
	}
	return v.Get(index), nil
}

// Set atomically stores val at index.
func (v *Atomic[T]) Set(index int64, val T) {
	storeBits(v.addr(index), v.width, toBits(val))
	runtime.KeepAlive(v)
}

// TrySet is Set returning an error instead of panicking.
func (v *Atomic[T]) TrySet(index int64, val T) error {
	if uint64(index) >= uint64(v.size) {
		return &IndexError{Index: index, Size: v.size}
	}
	v.Set(index, val)
	return nil
}

// LazySet stores val at index with at least release ordering. Go only
// provides sequentially consistent atomics, so this is the same as Set.
func (v *Atomic[T]) LazySet(index int64, val T) {
	v.Set(index, val)
}

// GetAndSet atomically replaces the element at index and returns the old value.
func (v *Atomic[T]) GetAndSet(index int64, val T) T {
	old := fromBits[T](swapBits(v.addr(index), v.width, toBits(val)))
	runtime.KeepAlive(v)
	return old
}

// CompareAndSet replaces the element at index with val if it currently holds
// expected. It makes a single attempt and reports whether it succeeded.
func (v *Atomic[T]) CompareAndSet(index int64, expected, val T) bool {
	ok := casBits(v.addr(index), v.width, toBits(expected), toBits(val))
	runtime.KeepAlive(v)
	return ok
}

// CompareAndSetFunc reads the element at index and, if pred(old, val) holds,
// makes a single attempt to swap old for val.
//
// The predicate is not re-checked: a concurrent write between the read and
// the swap makes it return false even if pred would hold for the new value.
// Use UpdateIf for a conditional update that retries.
func (v *Atomic[T]) CompareAndSetFunc(index int64, val T, pred func(old, val T) bool) bool {
	defer runtime.KeepAlive(v)
	p := v.addr(index)
	old := loadBits(p, v.width)
	if !pred(fromBits[T](old), val) {
		return false
	}
	return casBits(p, v.width, old, toBits(val))
}

// UpdateIf stores val at index provided pred(old, val) holds for the value it
// replaces. The predicate is re-evaluated after every failed swap, so a true
// result means pred held for the value that was actually overwritten.
func (v *Atomic[T]) UpdateIf(index int64, val T, pred func(old, val T) bool) bool {
	defer runtime.KeepAlive(v)
	p := v.addr(index)
	nb := toBits(val)
	for {
		old := loadBits(p, v.width)
		if !pred(fromBits[T](old), val) {
			return false
		}
		if casBits(p, v.width, old, nb) {
			return true
		}
	}
}

// GetAndUpdate atomically replaces the element at index with fn(old) and
// returns old. fn may be called several times and must be free of side
// effects.
func (v *Atomic[T]) GetAndUpdate(index int64, fn func(T) T) T {
	old, _ := v.update(index, fn)
	return old
}

// UpdateAndGet is GetAndUpdate returning the new value.
func (v *Atomic[T]) UpdateAndGet(index int64, fn func(T) T) T {
	_, val := v.update(index, fn)
	return val
}

func (v *Atomic[T]) update(index int64, fn func(T) T) (T, T) {
	defer runtime.KeepAlive(v)
	p := v.addr(index)
	for {
		ob := loadBits(p, v.width)
		old := fromBits[T](ob)
		val := fn(old)
		if casBits(p, v.width, ob, toBits(val)) {
			return old, val
		}
	}
}
