// Package format describes the in-memory layout of reference-counted blocks.
// A block is a fixed header immediately followed by the caller's payload, so
// every field can be located from the payload address with a constant offset.
//
// Header layout (little-endian):
//
//	Offset  Size  Description
//	0x00    4     Reference count (int32). Live blocks hold a value >= 1, freed blocks PoisonCount.
//	0x04    4     Magic. LiveMagic while the block is owned, FreedMagic after release.
//	0x08    8     Payload size in bytes, as requested by the caller.
//	0x10    ...   Payload.
package format

const (
	// HeaderSize is the number of bytes that precede every payload.
	HeaderSize = 0x10

	// CountOffset is the offset of the int32 reference count.
	CountOffset = 0x00

	// MagicOffset is the offset of the uint32 liveness marker.
	MagicOffset = 0x04

	// SizeOffset is the offset of the uint64 payload size.
	SizeOffset = 0x08

	// LiveMagic marks a block that has not been released ("RCLV").
	LiveMagic uint32 = 0x52434C56

	// FreedMagic poisons a block just before it goes back to the host ("RCFD").
	FreedMagic uint32 = 0x52434644

	// BlockAlignment is the minimum alignment hosts guarantee for a block start.
	// With a 16-byte header the payload inherits the same alignment.
	BlockAlignment = 16

	// BlockAlignmentMask is BlockAlignment - 1.
	BlockAlignmentMask = BlockAlignment - 1

	// PageSize is the granularity used by page-backed hosts when the platform
	// does not report one.
	PageSize = 0x1000

	// InitialCount is the count written by a fresh allocation.
	InitialCount = 1

	// PoisonCount is the count left in a freed header (math.MinInt32). Stray
	// retains or releases of a freed block stay far from zero.
	PoisonCount int32 = -1 << 31
)
