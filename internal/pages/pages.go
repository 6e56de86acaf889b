// Package pages provides platform-specific helpers for obtaining anonymous,
// read-write memory directly from the operating system. Mappings live outside
// the Go heap, so addresses inside them can be handed to foreign code.
package pages

import (
	"errors"
	"os"
)

// ErrBadMapping indicates Unmap was given a slice that did not come from Map.
var ErrBadMapping = errors.New("pages: not a mapping returned by Map")

// Size returns the operating system page size.
func Size() int {
	return os.Getpagesize()
}
