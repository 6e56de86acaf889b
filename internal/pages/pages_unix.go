//go:build unix

package pages

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Map returns a zeroed, private, read-write mapping of exactly n bytes.
// n is rounded up to whole pages by the kernel; the returned slice has
// len == cap == n.
func Map(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("pages: invalid mapping length %d", n)
	}
	data, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("pages: mmap %d bytes: %w", n, err)
	}
	return data, nil
}

// Unmap releases a mapping obtained from Map. b must be the exact slice Map
// returned.
func Unmap(b []byte) error {
	if len(b) == 0 {
		return ErrBadMapping
	}
	if err := unix.Munmap(b); err != nil {
		if errors.Is(err, unix.EINVAL) {
			return ErrBadMapping
		}
		return fmt.Errorf("pages: munmap: %w", err)
	}
	return nil
}
