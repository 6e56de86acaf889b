package host

import (
	"fmt"
	"math"
	"runtime/debug"

	"github.com/joshuapare/rtcore/internal/buf"
	"github.com/joshuapare/rtcore/internal/format"
	"github.com/joshuapare/rtcore/internal/pages"
)

// FallbackCeiling bounds heap requests when the installed RAM is unknown.
const FallbackCeiling = 1 << 40

// MemoryCeiling returns the most memory this process can expect to get: the
// installed RAM, lowered to the Go memory limit when one is set.
func MemoryCeiling() int64 {
	ceiling := int64(FallbackCeiling)
	if ram := pages.PhysicalMemory(); ram > 0 && ram < math.MaxInt64 {
		ceiling = int64(ram)
	}
	if limit := debug.SetMemoryLimit(-1); limit > 0 && limit < ceiling {
		ceiling = limit
	}
	return ceiling
}

// Heap allocates blocks from the Go heap.
//
// Each request over-allocates by format.BlockAlignment bytes and returns the
// aligned window, so blocks are 16-byte aligned regardless of the size class
// the Go allocator picks.
//
// The Go runtime aborts the process when it cannot map memory, so Heap
// refuses single requests larger than its ceiling with ErrOutOfMemory before
// they reach the runtime. The ceiling bounds one request, not the total; wrap
// the host in a Limit to bound cumulative usage. The zero Heap uses
// FallbackCeiling.
type Heap struct {
	ceiling int64
}

// NewHeap returns a Go heap host bounded by MemoryCeiling.
func NewHeap() *Heap { return NewHeapWithCeiling(MemoryCeiling()) }

// NewHeapWithCeiling returns a Go heap host that refuses requests above
// ceiling bytes. A ceiling <= 0 selects FallbackCeiling.
func NewHeapWithCeiling(ceiling int64) *Heap {
	return &Heap{ceiling: ceiling}
}

// Ceiling returns the largest request the heap accepts.
func (h *Heap) Ceiling() int64 {
	if h.ceiling <= 0 {
		return FallbackCeiling
	}
	return h.ceiling
}

// Allocate returns size zeroed bytes from the Go heap.
func (h *Heap) Allocate(size int) (b []byte, err error) {
	if size < 0 {
		return nil, ErrInvalidSize
	}
	n, ok := buf.AddOverflowSafe(size, format.BlockAlignment)
	if ceiling := h.Ceiling(); !ok || int64(n) > ceiling {
		return nil, fmt.Errorf("%w: %d bytes exceeds heap ceiling of %d", ErrOutOfMemory, size, ceiling)
	}
	defer func() {
		// makeslice panics for lengths the runtime cannot satisfy.
		if r := recover(); r != nil {
			b, err = nil, fmt.Errorf("%w: %d bytes: %v", ErrOutOfMemory, size, r)
		}
	}()
	raw := make([]byte, n)
	addr := Addr(raw)
	shift := int(uintptr(format.AlignBlock(int(addr))) - addr)
	return raw[shift : shift+size : shift+size], nil
}

// Free drops the block. The Go collector reclaims it once no handle refers to it.
func (*Heap) Free(b []byte) error {
	if b == nil {
		return ErrUnknownBlock
	}
	return nil
}

// Compile-time interface check
var _ Host = (*Heap)(nil)
