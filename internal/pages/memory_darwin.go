//go:build darwin

package pages

import "golang.org/x/sys/unix"

// PhysicalMemory returns the installed RAM in bytes, or 0 when unknown.
func PhysicalMemory() uint64 {
	n, err := unix.SysctlUint64("hw.memsize")
	if err != nil {
		return 0
	}
	return n
}
