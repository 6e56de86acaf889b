package format

import "errors"

var (
	// ErrTruncated indicates the buffer lacked the bytes required for a header.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrBadMagic indicates the header carries neither the live nor the freed marker.
	ErrBadMagic = errors.New("format: bad block magic")
	// ErrFreedBlock indicates the header was poisoned by a release.
	ErrFreedBlock = errors.New("format: block already freed")
	// ErrSizeMismatch indicates the recorded payload size does not fit the block.
	ErrSizeMismatch = errors.New("format: payload size exceeds block")
)
