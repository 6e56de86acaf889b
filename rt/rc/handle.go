package rc

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/joshuapare/rtcore/internal/format"
)

// Handle is the caller-visible reference to a block: the address of its
// payload. Handles are plain values; copying one does not change the count.
// The zero Handle is nil.
type Handle struct {
	p unsafe.Pointer
}

// Nil is the nil handle. Retain and Release ignore it.
var Nil Handle

// HandleOf wraps a payload address obtained from Handle.Pointer, typically
// one that travelled through foreign code.
func HandleOf(p unsafe.Pointer) Handle {
	return Handle{p: p}
}

// IsNil reports whether h is the nil handle.
func (h Handle) IsNil() bool { return h.p == nil }

// Pointer returns the payload address.
func (h Handle) Pointer() unsafe.Pointer { return h.p }

// Addr returns the payload address as an integer, for display and ordering.
func (h Handle) Addr() uintptr { return uintptr(h.p) }

// String formats the handle as its payload address.
func (h Handle) String() string {
	if h.p == nil {
		return "rc@nil"
	}
	return fmt.Sprintf("rc@0x%x", uintptr(h.p))
}

// header returns the block start.
func (h Handle) header() unsafe.Pointer {
	return unsafe.Add(h.p, -format.HeaderSize)
}

// count returns the reference count in place.
func (h Handle) count() *atomic.Int32 {
	return (*atomic.Int32)(unsafe.Add(h.header(), format.CountOffset))
}

// size returns the payload size recorded in the header.
func (h Handle) size() int {
	return int(*(*uint64)(unsafe.Add(h.header(), format.SizeOffset)))
}

// block returns the whole block, header included, as the host handed it out.
func (h Handle) block() []byte {
	return unsafe.Slice((*byte)(h.header()), format.HeaderSize+h.size())
}

// payload returns the payload bytes.
func (h Handle) payload() []byte {
	return unsafe.Slice((*byte)(h.p), h.size())
}
