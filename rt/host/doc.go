// Package host provides the raw memory sources the reference-counted
// allocator builds on.
//
// # Host Interface
//
// A Host hands out blocks of bytes and takes them back:
//
//   - Allocate(size): return exactly size bytes, 16-byte aligned, or an error
//   - Free(b): return a block previously obtained from Allocate
//
// # Implementations
//
// Heap: blocks come from the Go heap. Free is bookkeeping only; the collector
// reclaims memory once nothing references it.
//
// Pages: every block is its own anonymous mapping obtained from the operating
// system. Memory lives outside the Go heap, so addresses may be handed to C
// code, and Free returns it to the kernel immediately.
//
// # Wrappers
//
// Tracker records every live block and rejects frees of blocks it never
// handed out (or already took back). Tests use it to prove that every
// allocation is freed exactly once.
//
// Limit enforces a byte budget and fails requests that would exceed it with
// ErrOutOfMemory.
//
// # Usage Example
//
//	tr := host.NewTracker(host.NewHeap())
//	b, err := tr.Allocate(64)
//	if err != nil {
//	    return err
//	}
//	// use b...
//	err = tr.Free(b)
//
// # Thread Safety
//
// All hosts and wrappers in this package are safe for concurrent use.
package host
