package rc

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"unsafe"

	"github.com/joshuapare/rtcore/internal/buf"
	"github.com/joshuapare/rtcore/internal/format"
	"github.com/joshuapare/rtcore/rt/host"
)

// Allocator hands out reference-counted blocks carved from a host allocator.
type Allocator struct {
	host    host.Host
	checked bool
	log     *slog.Logger
	debug   bool // log level admits per-operation Debug records

	// Checked mode only: payload address -> live. Retain and Release hold mu
	// for the whole operation so validation and the count update are one step.
	mu   sync.Mutex
	live map[unsafe.Pointer]struct{}

	stats counters
}

// New creates an allocator drawing blocks from h.
func New(h host.Host, opts ...Option) *Allocator {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	a := &Allocator{
		host:    h,
		checked: cfg.checked,
		log:     cfg.log,
		debug:   cfg.log.Enabled(context.Background(), slog.LevelDebug),
	}
	if a.checked {
		a.live = make(map[unsafe.Pointer]struct{})
	}
	return a
}

// Checked reports whether handle validation is enabled.
func (a *Allocator) Checked() bool { return a.checked }

// Alloc returns a handle to a new block with a payload of size bytes and a
// count of one. size may be zero. On failure nothing has been written and no
// handle is returned.
func (a *Allocator) Alloc(size int) (Handle, error) {
	if size < 0 {
		a.stats.failedAllocs.Add(1)
		return Nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	total, ok := buf.AddOverflowSafe(format.HeaderSize, size)
	if !ok {
		a.stats.failedAllocs.Add(1)
		return Nil, fmt.Errorf("%w: %d-byte payload does not fit a block", ErrOutOfMemory, size)
	}

	b, err := a.host.Allocate(total)
	if err != nil {
		a.stats.failedAllocs.Add(1)
		a.log.Warn("rc: allocation failed", "size", size, "error", err)
		return Nil, fmt.Errorf("%w: %d bytes: %w", ErrOutOfMemory, total, err)
	}
	if len(b) != total || !format.IsAligned(host.Addr(b), format.BlockAlignment) {
		a.stats.failedAllocs.Add(1)
		_ = a.host.Free(b)
		return Nil, fmt.Errorf("%w: want %d aligned bytes, got %d at 0x%x",
			ErrHostContract, total, len(b), host.Addr(b))
	}

	if err := format.InitHeader(b, size); err != nil {
		a.stats.failedAllocs.Add(1)
		_ = a.host.Free(b)
		return Nil, err
	}
	h := Handle{p: unsafe.Add(unsafe.Pointer(unsafe.SliceData(b)), format.HeaderSize)}

	if a.checked {
		a.mu.Lock()
		a.live[h.p] = struct{}{}
		a.mu.Unlock()
	}

	a.stats.allocs.Add(1)
	a.stats.liveBlocks.Add(1)
	a.stats.liveBytes.Add(int64(size))
	if a.debug {
		a.log.Debug("rc: alloc", "handle", h.String(), "size", size)
	}
	return h, nil
}

// Retain records one more owner of the block behind h. A nil handle is
// ignored.
//
// In unchecked mode h must be live; retaining a dangling handle is a
// use-after-free. In checked mode such a call fails with ErrInvalidHandle.
func (a *Allocator) Retain(h Handle) error {
	if h.IsNil() {
		return nil
	}
	if a.checked {
		a.mu.Lock()
		defer a.mu.Unlock()
		if err := a.validateLocked(h, "retain"); err != nil {
			return err
		}
	}

	if n := h.count().Add(1); n <= 0 {
		h.count().Add(-1)
		return fmt.Errorf("%w: %s", ErrCountOverflow, h)
	}
	a.stats.retains.Add(1)
	return nil
}

// Release drops one owner of the block behind h. When the count falls to
// zero or below, the block is poisoned and returned to the host before
// Release returns, and freed is true. A nil handle is ignored.
//
// In unchecked mode h must be live; an unbalanced release frees the block
// while other handles still refer to it. In checked mode releasing a handle
// that is no longer live fails with ErrInvalidHandle and frees nothing.
func (a *Allocator) Release(h Handle) (freed bool, err error) {
	if h.IsNil() {
		return false, nil
	}
	if a.checked {
		a.mu.Lock()
		defer a.mu.Unlock()
		if err := a.validateLocked(h, "release"); err != nil {
			return false, err
		}
	}

	a.stats.releases.Add(1)
	n := h.count().Add(-1)
	if n > 0 {
		return false, nil
	}

	var over error
	if n < 0 && a.checked {
		over = fmt.Errorf("%w: %s reached %d", ErrOverRelease, h, n)
		a.log.Warn("rc: count below zero", "handle", h.String(), "count", n)
	}
	if a.checked {
		delete(a.live, h.p)
	}
	if err := a.free(h); err != nil {
		return true, err
	}
	return true, over
}

// free poisons the block and hands it back to the host.
func (a *Allocator) free(h Handle) error {
	size := h.size()
	block := h.block()
	format.Poison(block)

	a.stats.frees.Add(1)
	a.stats.liveBlocks.Add(-1)
	a.stats.liveBytes.Add(-int64(size))
	if a.debug {
		a.log.Debug("rc: free", "handle", h.String(), "size", size)
	}

	if err := a.host.Free(block); err != nil {
		a.log.Error("rc: host rejected free", "handle", h.String(), "error", err)
		return fmt.Errorf("rc: returning %s to host: %w", h, err)
	}
	return nil
}

// validateLocked checks h against the live set. mu must be held.
func (a *Allocator) validateLocked(h Handle, op string) error {
	if _, ok := a.live[h.p]; ok {
		return nil
	}
	a.stats.invalidHandles.Add(1)
	a.log.Warn("rc: invalid handle", "op", op, "handle", h.String())
	return fmt.Errorf("%w: %s of %s", ErrInvalidHandle, op, h)
}

// check validates h for read-only accessors.
func (a *Allocator) check(h Handle, op string) error {
	if h.IsNil() {
		return fmt.Errorf("%w: %s of nil handle", ErrInvalidHandle, op)
	}
	if !a.checked {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.validateLocked(h, op)
}

// Count returns the current reference count of the block behind h.
func (a *Allocator) Count(h Handle) (int32, error) {
	if err := a.check(h, "count"); err != nil {
		return 0, err
	}
	return h.count().Load(), nil
}

// Size returns the payload size of the block behind h.
func (a *Allocator) Size(h Handle) (int, error) {
	if err := a.check(h, "size"); err != nil {
		return 0, err
	}
	return h.size(), nil
}

// Bytes returns the payload of the block behind h, or nil when h is not
// live. The slice aliases the block and is valid only while the caller holds
// an owner.
func (a *Allocator) Bytes(h Handle) []byte {
	if err := a.check(h, "bytes"); err != nil {
		return nil
	}
	return h.payload()
}

// Header decodes a snapshot of the header behind h.
func (a *Allocator) Header(h Handle) (format.Header, error) {
	if err := a.check(h, "header"); err != nil {
		return format.Header{}, err
	}
	hdr := format.Header{
		Count: h.count().Load(),
		Magic: *(*uint32)(unsafe.Add(h.header(), format.MagicOffset)),
		Size:  uint64(h.size()),
	}
	if !hdr.Live() {
		return hdr, fmt.Errorf("%s: %w", h, format.ErrBadMagic)
	}
	return hdr, nil
}

// Live reports whether h refers to a block that has not been freed. It
// always reports true for non-nil handles in unchecked mode.
func (a *Allocator) Live(h Handle) bool {
	if h.IsNil() {
		return false
	}
	if !a.checked {
		return true
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.live[h.p]
	return ok
}

// Outstanding returns the live handles ordered by address. Unchecked
// allocators keep no record and return nil.
func (a *Allocator) Outstanding() []Handle {
	if !a.checked {
		return nil
	}
	a.mu.Lock()
	out := make([]Handle, 0, len(a.live))
	for p := range a.live {
		out = append(out, Handle{p: p})
	}
	a.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Addr() < out[j].Addr() })
	return out
}

// Stats returns a snapshot of the allocator counters.
func (a *Allocator) Stats() Stats {
	return a.stats.snapshot()
}

// MaxCount is the largest count a block can reach.
const MaxCount = math.MaxInt32
