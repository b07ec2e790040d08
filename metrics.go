package bigarray

import (
	"sync/atomic"
	"time"
)

// Transfer directions reported to MetricsCollector.RecordTransfer.
const (
	DirectionRead  = "read"
	DirectionWrite = "write"
)

const (
	kindHeap    = "heap"
	kindOffHeap = "offheap"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// None of the per-element operations (Get, Set, atomic updates, cursors)
// report metrics; only allocation-sized events do.
type MetricsCollector interface {
	// RecordAllocate is called after an array is constructed.
	// kind is "heap" or "offheap", bytes is the element storage size.
	RecordAllocate(kind string, bytes int64, duration time.Duration, err error)

	// RecordFree is called after off-heap memory is released.
	RecordFree(bytes int64)

	// RecordCopy is called after a deep copy.
	RecordCopy(bytes int64, duration time.Duration)

	// RecordTransfer is called after a bulk stream transfer.
	// direction is "read" or "write".
	RecordTransfer(direction string, bytes int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAllocate(string, int64, time.Duration, error) {}
func (NoopMetricsCollector) RecordFree(int64)                                   {}
func (NoopMetricsCollector) RecordCopy(int64, time.Duration)                    {}
func (NoopMetricsCollector) RecordTransfer(string, int64, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	HeapAllocations    atomic.Int64
	OffHeapAllocations atomic.Int64
	AllocationErrors   atomic.Int64
	BytesAllocated     atomic.Int64
	BytesFreed         atomic.Int64
	AllocTotalNanos    atomic.Int64
	CopyCount          atomic.Int64
	BytesCopied        atomic.Int64
	BytesRead          atomic.Int64
	BytesWritten       atomic.Int64
	TransferErrors     atomic.Int64
}

// RecordAllocate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAllocate(kind string, bytes int64, duration time.Duration, err error) {
	if err != nil {
		b.AllocationErrors.Add(1)
		return
	}
	if kind == kindOffHeap {
		b.OffHeapAllocations.Add(1)
	} else {
		b.HeapAllocations.Add(1)
	}
	b.BytesAllocated.Add(bytes)
	b.AllocTotalNanos.Add(duration.Nanoseconds())
}

// RecordFree implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFree(bytes int64) {
	b.BytesFreed.Add(bytes)
}

// RecordCopy implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCopy(bytes int64, _ time.Duration) {
	b.CopyCount.Add(1)
	b.BytesCopied.Add(bytes)
}

// RecordTransfer implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTransfer(direction string, bytes int64, _ time.Duration, err error) {
	if err != nil {
		b.TransferErrors.Add(1)
	}
	if direction == DirectionRead {
		b.BytesRead.Add(bytes)
	} else {
		b.BytesWritten.Add(bytes)
	}
}

// MetricsStats is a point-in-time snapshot of BasicMetricsCollector.
type MetricsStats struct {
	HeapAllocations    int64
	OffHeapAllocations int64
	AllocationErrors   int64
	BytesAllocated     int64
	BytesFreed         int64
	AllocAvgNanos      int64
	CopyCount          int64
	BytesCopied        int64
	BytesRead          int64
	BytesWritten       int64
	TransferErrors     int64
}

// GetStats returns a snapshot of the collected metrics.
func (b *BasicMetricsCollector) GetStats() MetricsStats {
	heap := b.HeapAllocations.Load()
	off := b.OffHeapAllocations.Load()
	var avg int64
	if n := heap + off; n > 0 {
		avg = b.AllocTotalNanos.Load() / n
	}
	return MetricsStats{
		HeapAllocations:    heap,
		OffHeapAllocations: off,
		AllocationErrors:   b.AllocationErrors.Load(),
		BytesAllocated:     b.BytesAllocated.Load(),
		BytesFreed:         b.BytesFreed.Load(),
		AllocAvgNanos:      avg,
		CopyCount:          b.CopyCount.Load(),
		BytesCopied:        b.BytesCopied.Load(),
		BytesRead:          b.BytesRead.Load(),
		BytesWritten:       b.BytesWritten.Load(),
		TransferErrors:     b.TransferErrors.Load(),
	}
}
