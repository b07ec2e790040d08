package offheap

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"unsafe"

	"github.com/hupe1980/bigarray/internal/conv"
	"github.com/hupe1980/bigarray/internal/mmap"
)

// MemoryAcquirer reserves and releases a memory budget.
// *resource.Controller implements it.
type MemoryAcquirer interface {
	AcquireMemory(ctx context.Context, amount int64) error
	ReleaseMemory(amount int64)
}

// Option configures Allocate.
type Option func(*config)

type config struct {
	acquirer MemoryAcquirer
	pattern  mmap.AccessPattern
}

// WithMemoryAcquirer charges the allocation against a memory budget.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(c *config) {
		c.acquirer = acquirer
	}
}

// WithSequentialAccess hints the kernel that the buffer is scanned front to back.
func WithSequentialAccess() Option {
	return func(c *config) {
		c.pattern = mmap.AccessSequential
	}
}

// WithRandomAccess hints the kernel that the buffer is accessed randomly.
func WithRandomAccess() Option {
	return func(c *config) {
		c.pattern = mmap.AccessRandom
	}
}

// region is the releasable part of a Buffer. It is kept separate so that the
// runtime cleanup can reference it without keeping the Buffer reachable.
type region struct {
	mapping  *mmap.Mapping
	acquirer MemoryAcquirer
	size     int64
	released atomic.Bool
}

func (r *region) release() error {
	if r.released.Swap(true) {
		return nil
	}
	err := r.mapping.Close()
	if r.acquirer != nil {
		r.acquirer.ReleaseMemory(r.size)
	}
	return err
}

// Buffer is a fixed-size byte buffer backed by memory outside the Go heap.
type Buffer struct {
	base    unsafe.Pointer
	size    int64
	region  *region
	cleanup runtime.Cleanup
}

// Allocate reserves size bytes of zeroed off-heap memory.
func Allocate(ctx context.Context, size int64, opts ...Option) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	n, err := conv.Int64ToInt(size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSize, err)
	}

	cfg := config{pattern: mmap.AccessDefault}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.acquirer != nil {
		if err := cfg.acquirer.AcquireMemory(ctx, size); err != nil {
			return nil, err
		}
	}

	mapping, err := mmap.MapAnon(n)
	if err != nil {
		if cfg.acquirer != nil {
			cfg.acquirer.ReleaseMemory(size)
		}
		return nil, fmt.Errorf("offheap: failed to map %d bytes: %w", size, err)
	}

	if cfg.pattern != mmap.AccessDefault {
		// Advice is a hint; a failure leaves the mapping fully usable.
		_ = mapping.Advise(cfg.pattern)
	}

	b := &Buffer{
		base: unsafe.Pointer(unsafe.SliceData(mapping.Bytes())), //nolint:gosec // off-heap base address
		size: size,
		region: &region{
			mapping:  mapping,
			acquirer: cfg.acquirer,
			size:     size,
		},
	}
	b.cleanup = runtime.AddCleanup(b, func(r *region) { _ = r.release() }, b.region)
	return b, nil
}

// Size returns the buffer size in bytes.
func (b *Buffer) Size() int64 {
	return b.size
}

// Closed reports whether the buffer has been released.
func (b *Buffer) Closed() bool {
	return b.region.released.Load()
}

// Bytes returns the whole buffer as a slice, or nil once closed.
// The slice aliases off-heap memory and must not be used after Close.
func (b *Buffer) Bytes() []byte {
	if b.Closed() {
		return nil
	}
	return unsafe.Slice((*byte)(b.base), int(b.size)) //nolint:gosec // size fits int, checked in Allocate
}

func (b *Buffer) check(index int64) error {
	if b.Closed() {
		return ErrClosed
	}
	if uint64(index) >= uint64(b.size) {
		return &RangeError{Index: index, Size: b.size}
	}
	return nil
}

// TryGet returns the byte at index.
func (b *Buffer) TryGet(index int64) (byte, error) {
	if err := b.check(index); err != nil {
		return 0, err
	}
	v := b.Unsafe().Get(index)
	runtime.KeepAlive(b)
	return v, nil
}

// TrySet stores v at index.
func (b *Buffer) TrySet(index int64, v byte) error {
	if err := b.check(index); err != nil {
		return err
	}
	b.Unsafe().Set(index, v)
	runtime.KeepAlive(b)
	return nil
}

// Get returns the byte at index. It panics like a slice index expression
// when index is out of range or the buffer is closed.
func (b *Buffer) Get(index int64) byte {
	if err := b.check(index); err != nil {
		panic(err)
	}
	v := b.Unsafe().Get(index)
	runtime.KeepAlive(b)
	return v
}

// Set stores v at index. It panics like Get on invalid access.
func (b *Buffer) Set(index int64, v byte) {
	if err := b.check(index); err != nil {
		panic(err)
	}
	b.Unsafe().Set(index, v)
	runtime.KeepAlive(b)
}

// Close releases the memory. It is idempotent.
func (b *Buffer) Close() error {
	b.cleanup.Stop()
	return b.region.release()
}

// Unsafe returns the unchecked access boundary for this buffer.
func (b *Buffer) Unsafe() Unsafe {
	return Unsafe{base: b.base}
}

// Unsafe reads and writes raw bytes at base+index without any validation.
// The caller guarantees 0 <= index < Size() and that the buffer is open.
// An Unsafe value does not keep its Buffer reachable.
type Unsafe struct {
	base unsafe.Pointer
}

// Get reads the byte at index.
func (u Unsafe) Get(index int64) byte {
	return *(*byte)(unsafe.Add(u.base, index)) //nolint:gosec // caller guarantees bounds
}

// Set writes the byte at index.
func (u Unsafe) Set(index int64, v byte) {
	*(*byte)(unsafe.Add(u.base, index)) = v //nolint:gosec // caller guarantees bounds
}
