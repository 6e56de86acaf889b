//go:build !unix && !windows

package pages

import "fmt"

// Map allocates from the Go heap when the platform offers no anonymous mappings.
func Map(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("pages: invalid mapping length %d", n)
	}
	return make([]byte, n), nil
}

// Unmap drops the reference; the Go collector reclaims the memory.
func Unmap(b []byte) error {
	if len(b) == 0 {
		return ErrBadMapping
	}
	return nil
}
