package host

import (
	"fmt"
	"sync"
)

// Limit wraps a Host with a byte budget. Each block is charged the inner
// host's Footprint, so page-granular hosts are charged whole pages. Requests
// that would push the bytes in use past the budget fail with ErrOutOfMemory
// and never reach the inner host.
type Limit struct {
	inner  Host
	budget int64

	mu   sync.Mutex
	used int64
}

// NewLimit wraps inner with a budget of budget bytes.
func NewLimit(inner Host, budget int64) *Limit {
	return &Limit{inner: inner, budget: budget}
}

// Allocate reserves the block's footprint and forwards to the inner host.
func (l *Limit) Allocate(size int) ([]byte, error) {
	if size < 0 {
		return nil, ErrInvalidSize
	}
	cost := int64(Footprint(l.inner, size))
	if cost < int64(size) {
		return nil, fmt.Errorf("%w: %d bytes", ErrOutOfMemory, size)
	}

	l.mu.Lock()
	if cost > l.budget-l.used {
		used := l.used
		l.mu.Unlock()
		return nil, fmt.Errorf("%w: %d bytes requested (%d committed), %d of %d in use",
			ErrOutOfMemory, size, cost, used, l.budget)
	}
	l.used += cost
	l.mu.Unlock()

	b, err := l.inner.Allocate(size)
	if err != nil {
		l.mu.Lock()
		l.used -= cost
		l.mu.Unlock()
		return nil, err
	}
	return b, nil
}

// Free forwards to the inner host and returns the bytes to the budget.
func (l *Limit) Free(b []byte) error {
	if err := l.inner.Free(b); err != nil {
		return err
	}
	l.mu.Lock()
	l.used -= int64(Footprint(l.inner, len(b)))
	l.mu.Unlock()
	return nil
}

// Footprint forwards to the inner host.
func (l *Limit) Footprint(size int) int { return Footprint(l.inner, size) }

// Used returns the bytes currently reserved.
func (l *Limit) Used() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.used
}

// Budget returns the configured budget.
func (l *Limit) Budget() int64 { return l.budget }

// Compile-time interface check
var (
	_ Host        = (*Limit)(nil)
	_ Footprinter = (*Limit)(nil)
)
