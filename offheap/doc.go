// Package offheap provides byte storage outside the Go heap.
//
// # Ownership
//
// A Buffer exclusively owns one anonymous memory mapping. Close() releases it
// exactly once; later calls are no-ops. A Buffer that becomes unreachable
// without being closed is released by a runtime cleanup, so leaks are bounded
// by the garbage collector rather than the process lifetime. Callers should
// still Close explicitly: the collector does not see off-heap memory pressure.
//
// # Checked and Unchecked Access
//
// Get/Set and TryGet/TrySet validate the index and the open state. The
// unchecked accessors live on a separate type obtained via Buffer.Unsafe():
//
//	u := buf.Unsafe()
//	for i := int64(0); i < buf.Size(); i++ {
//	    u.Set(i, byte(i))
//	}
//
// Unsafe performs no bounds or lifetime checks. Using it with an index outside
// [0, Size()) or after Close() is undefined behavior.
//
// # Concurrency
//
// Accessors perform plain, unsynchronized loads and stores. Concurrent access
// to the same byte without external synchronization is a data race. Close must
// not run concurrently with any accessor.
package offheap
