// Package bigarray provides arrays addressed by 64-bit indices that can grow
// far beyond the size of a single Go slice.
//
// An [Array] stores its elements in a list of power-of-two sized segments.
// Index i lives at segment i>>bits, offset i&(segmentSize-1), so every access
// is a shift, a mask and two bounds-checked slice loads.
//
// # Quick Start
//
//	arr, _ := bigarray.New(5_000_000_000, func(i int64) int32 { return int32(i % 7) })
//	arr.Set(4_999_999_999, 42)
//	v := arr.Get(4_999_999_999)
//
// Existing data can be wrapped with or without copying:
//
//	arr, _ := bigarray.Wrap(flat, false)             // borrow, no copy
//	arr, _ := bigarray.WrapSegments(segments, true)  // re-chunk into a fresh array
//
// # Iteration
//
// A [Cursor] walks the array in either direction and only recomputes its
// segment when crossing a boundary. [Array.ForEachInRange] visits an
// inclusive range with a tight per-segment loop, and [Array.All] and
// [Array.Backward] plug into range-over-func:
//
//	for i, v := range arr.All() {
//	    ...
//	}
//
// # Concurrency
//
// Get and Set are plain memory accesses and are not safe for concurrent use on
// the same element. [Atomic] is a lock-free view for element types of 1, 2,
// 4 or 8 bytes; 1- and 2-byte elements are updated with a compare-and-swap on
// the enclosing 32-bit word:
//
//	counters, _ := bigarray.New[int64](1<<30, nil)
//	view, _ := bigarray.NewAtomic(counters)
//	view.UpdateAndGet(17, func(x int64) int64 { return x + 1 })
//
// # Off-Heap Memory
//
// [OffHeapBytes] keeps its bytes in an anonymous memory mapping outside the
// Go heap, optionally charged against a resource.Controller memory budget.
// Close releases the mapping exactly once; a runtime cleanup releases it once
// the array and every cursor or atomic view over it are dropped without
// Close. The offheap package exposes the raw buffer.
//
// # Streaming
//
// The stream package fills and drains byte arrays one segment at a time, with
// optional LZ4 or ZSTD framing and rate limiting.
package bigarray
