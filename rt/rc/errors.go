package rc

import "errors"

var (
	// ErrOutOfMemory indicates the host could not provide a block of the
	// requested size, or the size cannot be represented with its header.
	ErrOutOfMemory = errors.New("rc: out of memory")

	// ErrInvalidSize indicates a negative payload size.
	ErrInvalidSize = errors.New("rc: invalid payload size")

	// ErrInvalidHandle indicates an operation on a handle that is not live:
	// never returned by Alloc, or already freed (use-after-free, double release).
	ErrInvalidHandle = errors.New("rc: invalid handle")

	// ErrOverRelease indicates a checked release found the count already at
	// or below zero. The allocator API cannot produce this: the live set
	// drops a handle when its count reaches zero, so a further release fails
	// with ErrInvalidHandle instead. It only reports a header count written
	// from outside the allocator.
	ErrOverRelease = errors.New("rc: count released below zero")

	// ErrCountOverflow indicates a retain would overflow the 32-bit count.
	ErrCountOverflow = errors.New("rc: reference count overflow")

	// ErrHostContract indicates the host returned a block of the wrong
	// length or alignment.
	ErrHostContract = errors.New("rc: host returned an unusable block")

	// ErrDropped indicates use of a Ref after Drop.
	ErrDropped = errors.New("rc: ref already dropped")
)
