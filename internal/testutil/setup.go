// Package testutil holds helpers shared by the runtime's tests.
package testutil

import (
	"testing"

	"github.com/joshuapare/rtcore/rt/host"
	"github.com/joshuapare/rtcore/rt/rc"
)

// NewAllocator returns an allocator over a tracked heap host. At test cleanup
// it fails the test if any block is still live or any free was rejected.
//
// Example:
//
//	a, tr := testutil.NewAllocator(t)
//	h, _ := a.Alloc(8)
//	_, _ = a.Release(h)
func NewAllocator(t testing.TB, opts ...rc.Option) (*rc.Allocator, *host.Tracker) {
	t.Helper()
	return NewAllocatorOn(t, host.NewHeap(), opts...)
}

// NewAllocatorOn is NewAllocator over an arbitrary inner host.
func NewAllocatorOn(t testing.TB, inner host.Host, opts ...rc.Option) (*rc.Allocator, *host.Tracker) {
	t.Helper()
	tr := host.NewTracker(inner)
	a := rc.New(tr, opts...)
	t.Cleanup(func() { RequireNoLeaks(t, tr) })
	return a, tr
}

// RequireNoLeaks fails the test if tr holds live blocks or saw a bad free.
func RequireNoLeaks(t testing.TB, tr *host.Tracker) {
	t.Helper()
	st := tr.Stats()
	if st.LiveBlocks != 0 {
		t.Errorf("%d blocks still live (%d bytes): %v", st.LiveBlocks, st.LiveBytes, tr.Live())
	}
	if st.BadFrees != 0 {
		t.Errorf("%d frees rejected by the host", st.BadFrees)
	}
}
