package host

import (
	"fmt"
	"sort"
	"sync"
)

// TrackerStats is a snapshot of a Tracker's counters.
type TrackerStats struct {
	Allocs     int64 `json:"allocs"`      // Successful Allocate calls
	Frees      int64 `json:"frees"`       // Successful Free calls
	Failed     int64 `json:"failed"`      // Allocate calls the inner host refused
	BadFrees   int64 `json:"bad_frees"`   // Free calls for unknown or already-freed blocks
	LiveBlocks int   `json:"live_blocks"` // Blocks allocated and not yet freed
	LiveBytes  int64 `json:"live_bytes"`  // Bytes in live blocks
	PeakBytes  int64 `json:"peak_bytes"`  // High-water mark of LiveBytes
}

// Block describes one live allocation.
type Block struct {
	Addr uintptr
	Size int
}

// Tracker wraps a Host and records every block it hands out.
//
// Freeing a block the tracker does not know about (never allocated, or
// already freed) is rejected with ErrUnknownBlock before it reaches the inner
// host, which turns double frees into test failures instead of corruption.
type Tracker struct {
	inner Host

	mu    sync.Mutex
	live  map[uintptr]int
	stats TrackerStats
}

// NewTracker wraps inner.
func NewTracker(inner Host) *Tracker {
	return &Tracker{
		inner: inner,
		live:  make(map[uintptr]int),
	}
}

// Allocate forwards to the inner host and records the block.
func (t *Tracker) Allocate(size int) ([]byte, error) {
	b, err := t.inner.Allocate(size)

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.stats.Failed++
		return nil, err
	}
	t.live[Addr(b)] = len(b)
	t.stats.Allocs++
	t.stats.LiveBlocks = len(t.live)
	t.stats.LiveBytes += int64(len(b))
	t.stats.PeakBytes = max(t.stats.PeakBytes, t.stats.LiveBytes)
	return b, nil
}

// Free forgets the block and forwards it to the inner host.
func (t *Tracker) Free(b []byte) error {
	addr := Addr(b)

	t.mu.Lock()
	size, ok := t.live[addr]
	if !ok || size != len(b) {
		t.stats.BadFrees++
		t.mu.Unlock()
		return fmt.Errorf("%w: 0x%x (%d bytes)", ErrUnknownBlock, addr, len(b))
	}
	delete(t.live, addr)
	t.stats.Frees++
	t.stats.LiveBlocks = len(t.live)
	t.stats.LiveBytes -= int64(size)
	t.mu.Unlock()

	return t.inner.Free(b)
}

// Footprint forwards to the inner host.
func (t *Tracker) Footprint(size int) int { return Footprint(t.inner, size) }

// Stats returns a snapshot of the counters.
func (t *Tracker) Stats() TrackerStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// Owns reports whether the block starting at addr is live.
func (t *Tracker) Owns(addr uintptr) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.live[addr]
	return ok
}

// Live returns the live blocks ordered by address.
func (t *Tracker) Live() []Block {
	t.mu.Lock()
	blocks := make([]Block, 0, len(t.live))
	for addr, size := range t.live {
		blocks = append(blocks, Block{Addr: addr, Size: size})
	}
	t.mu.Unlock()

	sort.Slice(blocks, func(i, j int) bool { return blocks[i].Addr < blocks[j].Addr })
	return blocks
}

// Compile-time interface check
var (
	_ Host        = (*Tracker)(nil)
	_ Footprinter = (*Tracker)(nil)
)
