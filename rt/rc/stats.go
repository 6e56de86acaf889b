package rc

import "sync/atomic"

// Stats is a snapshot of allocator counters.
type Stats struct {
	Allocs         int64 `json:"allocs"`          // Successful Alloc calls
	FailedAllocs   int64 `json:"failed_allocs"`   // Alloc calls that returned an error
	Frees          int64 `json:"frees"`           // Blocks returned to the host
	Retains        int64 `json:"retains"`         // Successful Retain calls
	Releases       int64 `json:"releases"`        // Successful Release calls
	InvalidHandles int64 `json:"invalid_handles"` // Operations rejected in checked mode
	LeakedRefs     int64 `json:"leaked_refs"`     // Refs released by the collector instead of Drop
	LiveBlocks     int64 `json:"live_blocks"`     // Blocks allocated and not yet freed
	LiveBytes      int64 `json:"live_bytes"`      // Payload bytes in live blocks
}

// counters is the atomic backing store for Stats.
type counters struct {
	allocs         atomic.Int64
	failedAllocs   atomic.Int64
	frees          atomic.Int64
	retains        atomic.Int64
	releases       atomic.Int64
	invalidHandles atomic.Int64
	leakedRefs     atomic.Int64
	liveBlocks     atomic.Int64
	liveBytes      atomic.Int64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Allocs:         c.allocs.Load(),
		FailedAllocs:   c.failedAllocs.Load(),
		Frees:          c.frees.Load(),
		Retains:        c.retains.Load(),
		Releases:       c.releases.Load(),
		InvalidHandles: c.invalidHandles.Load(),
		LeakedRefs:     c.leakedRefs.Load(),
		LiveBlocks:     c.liveBlocks.Load(),
		LiveBytes:      c.liveBytes.Load(),
	}
}
