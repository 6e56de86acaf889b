//go:build windows

package pages

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Map returns a zeroed, committed, read-write region of exactly n bytes.
func Map(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("pages: invalid mapping length %d", n)
	}
	addr, err := windows.VirtualAlloc(0, uintptr(n), windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, fmt.Errorf("pages: VirtualAlloc %d bytes: %w", n, err)
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), n), nil
}

// Unmap releases a region obtained from Map. b must be the exact slice Map
// returned.
func Unmap(b []byte) error {
	if len(b) == 0 {
		return ErrBadMapping
	}
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	if err := windows.VirtualFree(addr, 0, windows.MEM_RELEASE); err != nil {
		return fmt.Errorf("pages: VirtualFree: %w", err)
	}
	return nil
}
