// Package cstr implements NUL-terminated byte strings, the string
// representation compiled programs pass across the runtime boundary.
//
// A string is the bytes before the first NUL, or the whole slice when it
// contains none. A nil slice is the null string: it has length zero and
// orders before every non-null string.
package cstr

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/rtcore/rt/rc"
)

// Strlen returns the number of bytes before the first NUL in s.
func Strlen(s []byte) int {
	if i := bytes.IndexByte(s, 0); i >= 0 {
		return i
	}
	return len(s)
}

// Strcmp compares a and b byte-wise as unsigned values and returns -1, 0 or
// +1. Null strings compare equal to each other and less than anything else.
func Strcmp(a, b []byte) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return bytes.Compare(a[:Strlen(a)], b[:Strlen(b)])
}

// FromString returns s as a NUL-terminated byte string. s is cut at its
// first NUL, if any.
func FromString(s string) []byte {
	out := make([]byte, 0, len(s)+1)
	out = append(out, s...)
	out = out[:Strlen(out)]
	return append(out, 0)
}

// New copies s into a fresh reference-counted block, NUL-terminated. The
// caller owns the returned handle's single count.
func New(a *rc.Allocator, s string) (rc.Handle, error) {
	src := FromString(s)
	h, err := a.Alloc(len(src))
	if err != nil {
		return rc.Nil, fmt.Errorf("cstr: %w", err)
	}
	copy(a.Bytes(h), src)
	return h, nil
}

// String returns the Go string held by the block behind h. The nil handle
// yields "".
func String(a *rc.Allocator, h rc.Handle) (string, error) {
	if h.IsNil() {
		return "", nil
	}
	if _, err := a.Size(h); err != nil {
		return "", fmt.Errorf("cstr: %w", err)
	}
	b := a.Bytes(h)
	return string(b[:Strlen(b)]), nil
}
