// Package mmap provides memory mappings outside the Go heap.
//
// # Anonymous Mappings
//
// MapAnon() creates read-write anonymous mappings. The off-heap byte storage
// is built on them: the memory is invisible to the garbage collector and is
// returned to the operating system by Close().
//
// # File Mappings
//
// Open() maps a file read-only for zero-copy bulk loading:
//
//	m, err := mmap.Open("dump.bin")
//	if err != nil { ... }
//	defer m.Close()
//
//	region, _ := m.Region(offset, size)
//	region.Advise(mmap.AccessSequential)
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2)/munmap(2) with madvise(2) hints
//   - Windows: VirtualAlloc / CreateFileMapping (advice is a no-op)
//
// # Thread Safety
//
// Close() is idempotent and protected by atomic operations. Callers must
// ensure no goroutine touches Bytes() after Close() returns.
package mmap
