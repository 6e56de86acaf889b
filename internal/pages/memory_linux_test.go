//go:build linux

package pages

import "testing"

func TestPhysicalMemory(t *testing.T) {
	if n := PhysicalMemory(); n < 1<<20 {
		t.Fatalf("PhysicalMemory() = %d, want at least 1 MiB", n)
	}
}
