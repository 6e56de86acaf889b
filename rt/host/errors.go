package host

import "errors"

var (
	// ErrOutOfMemory indicates the host could not satisfy an allocation.
	ErrOutOfMemory = errors.New("host: out of memory")

	// ErrInvalidSize indicates a negative allocation size.
	ErrInvalidSize = errors.New("host: invalid allocation size")

	// ErrUnknownBlock indicates Free was given a block the host does not own,
	// including a block that was already freed.
	ErrUnknownBlock = errors.New("host: unknown block")
)
