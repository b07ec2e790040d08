package bigarray

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/bigarray/offheap"
)

// OffHeapBytes is a byte array whose segments live in one off-heap buffer.
//
// It supports every Array operation as well as Cursor and Atomic views.
// Copy returns a regular heap array. The memory is released by Close, or by
// the garbage collector once the OffHeapBytes and every view over it become
// unreachable; Close is idempotent. After Close the array is empty: Get and
// Set panic with an *IndexError and TryGet and TrySet fail with ErrClosed.
// Cursors, Atomic views and slices obtained from Segments must no longer be
// used.
//
// The embedded Array, Cursors and Atomic views keep the memory alive. Slices
// returned by Segments do not: keep one of the former reachable while using
// them.
type OffHeapBytes struct {
	*Array[byte]

	buf       *offheap.Buffer
	closeOnce sync.Once
	closeErr  error
}

// NewOffHeapBytes allocates size zeroed bytes outside the Go heap.
//
// With WithResourceController the allocation blocks until the controller's
// memory budget admits it or ctx is done.
func NewOffHeapBytes(ctx context.Context, size int64, opts ...Option) (*OffHeapBytes, error) {
	start := time.Now()
	o := applyOptions(opts)

	b, err := newOffHeapBytes(ctx, size, o)
	recordAllocate[byte](o, kindOffHeap, size, segmentCount(b.array()), start, err)
	return b, err
}

func newOffHeapBytes(ctx context.Context, size int64, o options) (*OffHeapBytes, error) {
	l, err := newLayout(size, o)
	if err != nil {
		return nil, err
	}

	bufOpts := append([]offheap.Option(nil), o.offheapOpts...)
	if o.resources != nil {
		bufOpts = append(bufOpts, offheap.WithMemoryAcquirer(o.resources))
	}
	buf, err := offheap.Allocate(ctx, size, bufOpts...)
	if err != nil {
		return nil, translateError(err)
	}

	mem := buf.Bytes()
	segs := make([][]byte, l.SegmentCount(size))
	for s := range segs {
		lo := l.SegmentSize() * s
		hi := lo + l.SegmentLen(s, size)
		segs[s] = mem[lo:hi:hi]
	}

	return &OffHeapBytes{
		Array: &Array[byte]{layout: l, segments: segs, size: size, opts: o, owner: buf},
		buf:   buf,
	}, nil
}

func (b *OffHeapBytes) array() *Array[byte] {
	if b == nil {
		return nil
	}
	return b.Array
}

// Buffer returns the underlying off-heap buffer.
func (b *OffHeapBytes) Buffer() *offheap.Buffer {
	return b.buf
}

// Closed reports whether Close has been called.
func (b *OffHeapBytes) Closed() bool {
	return b.buf.Closed()
}

// TryGet is Array.TryGet, failing with ErrClosed after Close.
func (b *OffHeapBytes) TryGet(index int64) (byte, error) {
	if b.Closed() {
		return 0, fmt.Errorf("%w: get index %d", ErrClosed, index)
	}
	return b.Array.TryGet(index)
}

// TrySet is Array.TrySet, failing with ErrClosed after Close.
func (b *OffHeapBytes) TrySet(index int64, v byte) error {
	if b.Closed() {
		return fmt.Errorf("%w: set index %d", ErrClosed, index)
	}
	return b.Array.TrySet(index, v)
}

// Resize always fails with ErrInvalidSize: the backing buffer has a fixed size.
func (b *OffHeapBytes) Resize(newSize int64) error {
	return fmt.Errorf("%w: cannot resize off-heap array from %d to %d", ErrInvalidSize, b.size, newSize)
}

// Close releases the off-heap memory.
func (b *OffHeapBytes) Close() error {
	b.closeOnce.Do(func() {
		bytes := b.buf.Size()
		b.segments = nil
		b.size = 0

		b.closeErr = translateError(b.buf.Close())
		b.opts.logger.LogFree(context.Background(), bytes, b.closeErr)
		if b.closeErr == nil {
			b.opts.metricsCollector.RecordFree(bytes)
		}
	})
	return b.closeErr
}
