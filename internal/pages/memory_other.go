//go:build !linux && !darwin && !windows

package pages

// PhysicalMemory reports 0: the installed RAM is unknown on this platform.
func PhysicalMemory() uint64 { return 0 }
