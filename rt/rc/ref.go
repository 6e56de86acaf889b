package rc

import (
	"runtime"
	"sync/atomic"
)

// Ref owns exactly one count of a block.
//
// Clone adds an owner and returns it as a new Ref; Drop gives this Ref's
// ownership back. Drop is idempotent, so a Ref can never release more than it
// retained. A Ref that becomes unreachable without Drop is released by the
// collector and counted in Stats.LeakedRefs.
type Ref struct {
	a       *Allocator
	h       Handle
	dropped atomic.Bool
	cleanup runtime.Cleanup
}

// orphan is what the cleanup of an undropped Ref needs. It must not point
// back at the Ref, or the Ref would never become unreachable.
type orphan struct {
	a *Allocator
	h Handle
}

// New allocates a block of size bytes and returns its sole owner.
func (a *Allocator) New(size int) (*Ref, error) {
	h, err := a.Alloc(size)
	if err != nil {
		return nil, err
	}
	return a.own(h), nil
}

// Adopt wraps one existing ownership of h in a Ref. The caller must not
// release that ownership itself afterwards.
func (a *Allocator) Adopt(h Handle) (*Ref, error) {
	if err := a.check(h, "adopt"); err != nil {
		return nil, err
	}
	return a.own(h), nil
}

func (a *Allocator) own(h Handle) *Ref {
	r := &Ref{a: a, h: h}
	r.cleanup = runtime.AddCleanup(r, releaseOrphan, orphan{a: a, h: h})
	return r
}

func releaseOrphan(o orphan) {
	o.a.stats.leakedRefs.Add(1)
	o.a.log.Warn("rc: ref collected without Drop", "handle", o.h.String())
	if _, err := o.a.Release(o.h); err != nil {
		o.a.log.Error("rc: releasing collected ref", "handle", o.h.String(), "error", err)
	}
}

// Clone retains the block and returns the new owner.
func (r *Ref) Clone() (*Ref, error) {
	if r.dropped.Load() {
		return nil, ErrDropped
	}
	err := r.a.Retain(r.h)
	// r must stay reachable until the count covers the clone.
	runtime.KeepAlive(r)
	if err != nil {
		return nil, err
	}
	return r.a.own(r.h), nil
}

// Drop releases this owner. Calls after the first are no-ops. freed reports
// whether this Drop destroyed the block.
func (r *Ref) Drop() (freed bool, err error) {
	if !r.dropped.CompareAndSwap(false, true) {
		return false, nil
	}
	r.cleanup.Stop()
	return r.a.Release(r.h)
}

// Dropped reports whether Drop has been called.
func (r *Ref) Dropped() bool { return r.dropped.Load() }

// Handle returns the underlying handle without transferring ownership.
func (r *Ref) Handle() Handle { return r.h }

// Bytes returns the payload, or nil after Drop. The slice is valid only
// while r is reachable and not dropped.
func (r *Ref) Bytes() []byte {
	if r.dropped.Load() {
		return nil
	}
	return r.a.Bytes(r.h)
}

// Count returns the block's current count.
func (r *Ref) Count() (int32, error) {
	if r.dropped.Load() {
		return 0, ErrDropped
	}
	n, err := r.a.Count(r.h)
	runtime.KeepAlive(r)
	return n, err
}
