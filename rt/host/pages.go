package host

import (
	"fmt"
	"sync"

	"github.com/joshuapare/rtcore/internal/format"
	"github.com/joshuapare/rtcore/internal/pages"
)

// Pages allocates each block as its own anonymous operating-system mapping.
//
// Mappings are page granular, so a 16-byte block still costs a page. This is
// the host for memory shared with foreign code, not a general-purpose heap.
type Pages struct {
	pageSize int

	mu   sync.Mutex
	maps map[uintptr][]byte // block start -> full mapping
}

// NewPages returns a page-backed host using the platform page size.
func NewPages() *Pages {
	return &Pages{
		pageSize: pages.Size(),
		maps:     make(map[uintptr][]byte),
	}
}

// Allocate maps enough whole pages for size bytes and returns the first size
// of them.
func (p *Pages) Allocate(size int) ([]byte, error) {
	if size < 0 {
		return nil, ErrInvalidSize
	}
	n := p.Footprint(size)
	if n < size {
		return nil, fmt.Errorf("%w: %d bytes", ErrOutOfMemory, size)
	}
	m, err := pages.Map(n)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutOfMemory, err)
	}

	p.mu.Lock()
	p.maps[Addr(m)] = m
	p.mu.Unlock()
	return m[:size:size], nil
}

// Free unmaps the mapping that starts at b.
func (p *Pages) Free(b []byte) error {
	addr := Addr(b)

	p.mu.Lock()
	m, ok := p.maps[addr]
	if ok {
		delete(p.maps, addr)
	}
	p.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: 0x%x", ErrUnknownBlock, addr)
	}
	return pages.Unmap(m)
}

// Footprint returns the whole pages mapped for a block of size bytes.
func (p *Pages) Footprint(size int) int {
	return format.AlignPage(max(size, 1), p.pageSize)
}

// PageSize reports the mapping granularity.
func (p *Pages) PageSize() int { return p.pageSize }

// Mappings returns the number of live mappings.
func (p *Pages) Mappings() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.maps)
}

// Compile-time interface check
var (
	_ Host        = (*Pages)(nil)
	_ Footprinter = (*Pages)(nil)
)
