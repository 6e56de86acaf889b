//go:build linux

package pages

import "golang.org/x/sys/unix"

// PhysicalMemory returns the installed RAM in bytes, or 0 when unknown.
func PhysicalMemory() uint64 {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0
	}
	return uint64(info.Totalram) * uint64(info.Unit)
}
