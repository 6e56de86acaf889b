package format

import "fmt"

// Header is a decoded snapshot of a block header.
type Header struct {
	Count int32  // Reference count at the time of decoding
	Magic uint32 // LiveMagic or FreedMagic
	Size  uint64 // Payload size in bytes
}

// Live reports whether the header carries the live marker.
func (h Header) Live() bool { return h.Magic == LiveMagic }

// InitHeader writes a fresh live header for a payload of size bytes at the
// start of b.
func InitHeader(b []byte, size int) error {
	if len(b) < HeaderSize {
		return fmt.Errorf("header: %w", ErrTruncated)
	}
	PutI32(b, CountOffset, InitialCount)
	PutU32(b, MagicOffset, LiveMagic)
	PutU64(b, SizeOffset, uint64(size))
	return nil
}

// Poison marks the header at the start of b as freed and sets its count to
// PoisonCount.
func Poison(b []byte) {
	if len(b) < HeaderSize {
		return
	}
	PutI32(b, CountOffset, PoisonCount)
	PutU32(b, MagicOffset, FreedMagic)
}

// DecodeHeader decodes the header at the start of block b and checks that the
// recorded payload fits inside b. A poisoned header is returned together with
// ErrFreedBlock so callers can still report its fields.
func DecodeHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("header: %w", ErrTruncated)
	}
	h := Header{
		Count: ReadI32(b, CountOffset),
		Magic: ReadU32(b, MagicOffset),
		Size:  ReadU64(b, SizeOffset),
	}
	switch h.Magic {
	case LiveMagic:
	case FreedMagic:
		return h, ErrFreedBlock
	default:
		return h, fmt.Errorf("header: magic 0x%08X: %w", h.Magic, ErrBadMagic)
	}
	if h.Size > uint64(len(b)-HeaderSize) {
		return h, fmt.Errorf("header: size %d in %d-byte block: %w", h.Size, len(b), ErrSizeMismatch)
	}
	return h, nil
}
