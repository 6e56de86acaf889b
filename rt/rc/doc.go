// Package rc provides reference-counted heap blocks for compiler-generated code.
//
// # Overview
//
// Every block is a 16-byte header followed by the caller's payload, obtained
// from a host allocator in a single request. Callers only ever see the
// payload address (a Handle); the header sits at a fixed negative offset, so
// Retain and Release locate the count with pointer arithmetic alone and run
// in constant time.
//
//	block start                    Handle
//	|                              |
//	v                              v
//	+-------+-------+--------------+---------------------+
//	| count | magic | payload size | payload (size bytes) |
//	+-------+-------+--------------+---------------------+
//	  0x00    0x04    0x08           0x10
//
// # Lifecycle
//
//	Alloc:    count = 1
//	Retain:   count + 1
//	Release:  count - 1; the block goes back to the host when count <= 0
//
// A released block is poisoned (its magic switches to format.FreedMagic) and
// returned to the host in the same call. Its handle is dangling from then on.
//
// # Modes
//
// Checked (the default) keeps a set of live handles. Retain and Release of a
// handle that is not live (never allocated, or already freed) fail with
// ErrInvalidHandle and touch no memory, so use-after-free and double release
// become reportable errors.
//
// Unchecked (WithUnchecked) keeps no side table. Operations cost one atomic
// instruction, and misuse is undefined behaviour: releasing a dangling handle
// reads freed memory, and an extra release is treated as "free now" by the
// count <= 0 test.
//
// # Ownership Wrapper
//
// Ref ties one unit of ownership to a Go value: Clone retains and returns a
// new Ref, Drop releases exactly once, and a Ref the collector finds
// unreachable before Drop is released for the caller and counted as leaked.
//
// # Usage Example
//
//	a := rc.New(host.NewHeap())
//	h, err := a.Alloc(16)
//	if err != nil {
//	    return err
//	}
//	copy(a.Bytes(h), "hello")
//
//	_ = a.Retain(h)           // second owner
//	freed, _ := a.Release(h)  // false: one owner left
//	freed, _ = a.Release(h)   // true: block returned to the host
//
// # Thread Safety
//
// The count is updated with sync/atomic, so owners on different goroutines
// may Retain and Release the same block concurrently; the block is freed
// exactly once, by whichever Release observes the count reaching zero.
package rc
