package host

import "unsafe"

// Host is the raw allocator boundary.
//
// Allocate returns a block of exactly size bytes whose first byte is aligned
// to at least format.BlockAlignment. Free takes back a block returned by
// Allocate; the slice passed to Free must have the same start and length.
type Host interface {
	Allocate(size int) ([]byte, error)
	Free(b []byte) error
}

// Addr returns the address of the first byte of b.
func Addr(b []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}

// Footprinter is implemented by hosts whose blocks commit more memory than
// the caller asked for.
type Footprinter interface {
	Footprint(size int) int
}

// Footprint returns the bytes h commits for a request of size bytes. Hosts
// that do not implement Footprinter are charged the requested size.
func Footprint(h Host, size int) int {
	if f, ok := h.(Footprinter); ok {
		return f.Footprint(size)
	}
	return size
}
