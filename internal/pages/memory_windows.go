//go:build windows

package pages

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// PhysicalMemory returns the installed RAM in bytes, or 0 when unknown.
func PhysicalMemory() uint64 {
	var st windows.MemoryStatusEx
	st.Length = uint32(unsafe.Sizeof(st))
	if err := windows.GlobalMemoryStatusEx(&st); err != nil {
		return 0
	}
	return st.TotalPhys
}
