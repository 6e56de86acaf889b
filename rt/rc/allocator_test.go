package rc

import (
	"bytes"
	"log/slog"
	"math"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/rtcore/internal/format"
	"github.com/joshuapare/rtcore/internal/logger"
	"github.com/joshuapare/rtcore/rt/host"
)

// newTracked returns an allocator over a tracking heap host.
func newTracked(t testing.TB, opts ...Option) (*Allocator, *host.Tracker) {
	t.Helper()
	tr := host.NewTracker(host.NewHeap())
	return New(tr, opts...), tr
}

// requireCount asserts the count of a live block.
func requireCount(t testing.TB, a *Allocator, h Handle, want int32) {
	t.Helper()
	n, err := a.Count(h)
	require.NoError(t, err)
	require.Equal(t, want, n)
}

// TestScenarioA_AllocRelease tests that a single release frees a fresh block.
func TestScenarioA_AllocRelease(t *testing.T) {
	a, tr := newTracked(t)

	h, err := a.Alloc(16)
	require.NoError(t, err)
	require.False(t, h.IsNil())
	requireCount(t, a, h, 1)
	assert.Len(t, a.Bytes(h), 16)

	freed, err := a.Release(h)
	require.NoError(t, err)
	assert.True(t, freed, "the only release must free the block")
	assert.False(t, a.Live(h), "handle must be dangling after the free")

	st := tr.Stats()
	assert.Equal(t, int64(1), st.Allocs)
	assert.Equal(t, int64(1), st.Frees)
	assert.Zero(t, st.LiveBlocks)
}

// TestScenarioB_RetainTwice tests count transitions 1 -> 3 -> 2 -> 1 -> freed.
func TestScenarioB_RetainTwice(t *testing.T) {
	a, tr := newTracked(t)

	h, err := a.Alloc(8)
	require.NoError(t, err)
	require.NoError(t, a.Retain(h))
	require.NoError(t, a.Retain(h))
	requireCount(t, a, h, 3)

	for _, want := range []int32{2, 1} {
		freed, err := a.Release(h)
		require.NoError(t, err)
		require.False(t, freed)
		requireCount(t, a, h, want)
		assert.Equal(t, 1, tr.Stats().LiveBlocks, "block must stay allocated at count %d", want)
	}

	freed, err := a.Release(h)
	require.NoError(t, err)
	assert.True(t, freed)
	assert.Equal(t, int64(1), tr.Stats().Frees)
	assert.Zero(t, tr.Stats().LiveBlocks)
}

// TestScenarioC_ZeroSize tests that an empty payload still gets a header.
func TestScenarioC_ZeroSize(t *testing.T) {
	a, tr := newTracked(t)

	h, err := a.Alloc(0)
	require.NoError(t, err)
	require.False(t, h.IsNil())
	assert.Empty(t, a.Bytes(h))

	size, err := a.Size(h)
	require.NoError(t, err)
	assert.Zero(t, size)

	live := tr.Live()
	require.Len(t, live, 1)
	assert.Equal(t, format.HeaderSize, live[0].Size, "a zero-size block is exactly one header")

	freed, err := a.Release(h)
	require.NoError(t, err)
	assert.True(t, freed)
	assert.Zero(t, tr.Stats().LiveBytes)
}

// TestScenarioD_UnbalancedRelease pins the behaviour of an extra release: the
// first unbalanced release frees the block, the second is rejected and does
// not reach the host.
func TestScenarioD_UnbalancedRelease(t *testing.T) {
	a, tr := newTracked(t)

	h, err := a.Alloc(8)
	require.NoError(t, err)

	freed, err := a.Release(h)
	require.NoError(t, err)
	require.True(t, freed, "block is freed on the first release")

	freed, err = a.Release(h)
	require.ErrorIs(t, err, ErrInvalidHandle)
	assert.False(t, freed)

	st := tr.Stats()
	assert.Equal(t, int64(1), st.Frees, "block must be freed exactly once")
	assert.Zero(t, st.BadFrees)
	assert.Equal(t, int64(1), a.Stats().InvalidHandles)
}

// TestRetainAfterFree tests that a use-after-free retain is reported.
func TestRetainAfterFree(t *testing.T) {
	a, _ := newTracked(t)

	h, err := a.Alloc(4)
	require.NoError(t, err)
	_, err = a.Release(h)
	require.NoError(t, err)

	require.ErrorIs(t, a.Retain(h), ErrInvalidHandle)
	_, err = a.Count(h)
	require.ErrorIs(t, err, ErrInvalidHandle)
	assert.Nil(t, a.Bytes(h))
}

// TestFabricatedHandle tests that a handle Alloc never returned is rejected.
func TestFabricatedHandle(t *testing.T) {
	a, _ := newTracked(t)

	var x [32]byte
	fake := HandleOf(unsafe.Pointer(&x[16]))
	require.ErrorIs(t, a.Retain(fake), ErrInvalidHandle)
	_, err := a.Release(fake)
	require.ErrorIs(t, err, ErrInvalidHandle)
	assert.Equal(t, [32]byte{}, x, "a rejected handle must not be written through")
}

// TestNilHandle tests that nil handles are ignored by Retain and Release.
func TestNilHandle(t *testing.T) {
	a, tr := newTracked(t)

	require.NoError(t, a.Retain(Nil))
	freed, err := a.Release(Nil)
	require.NoError(t, err)
	assert.False(t, freed)
	assert.False(t, a.Live(Nil))
	assert.Equal(t, "rc@nil", Nil.String())

	_, err = a.Count(Nil)
	require.ErrorIs(t, err, ErrInvalidHandle)
	assert.Zero(t, tr.Stats().Allocs)
}

// TestAllocErrors tests size validation and host exhaustion.
func TestAllocErrors(t *testing.T) {
	tr := host.NewTracker(host.NewHeap())
	a := New(host.NewLimit(tr, 64))

	_, err := a.Alloc(-1)
	require.ErrorIs(t, err, ErrInvalidSize)

	_, err = a.Alloc(math.MaxInt)
	require.ErrorIs(t, err, ErrOutOfMemory)

	h, err := a.Alloc(64 - format.HeaderSize)
	require.NoError(t, err, "a block that exactly fits the budget must succeed")

	_, err = a.Alloc(0)
	require.ErrorIs(t, err, ErrOutOfMemory)
	require.ErrorIs(t, err, host.ErrOutOfMemory, "the host error must stay visible")

	st := a.Stats()
	assert.Equal(t, int64(1), st.Allocs)
	assert.Equal(t, int64(3), st.FailedAllocs)
	assert.Equal(t, int64(1), st.LiveBlocks, "failed allocations leave no state behind")
	assert.Len(t, a.Outstanding(), 1)

	_, err = a.Release(h)
	require.NoError(t, err)
	_, err = a.Alloc(8)
	require.NoError(t, err, "budget is returned once the block is freed")
}

// TestAllocBeyondMemoryReturnsError tests that a request larger than the
// machine can hold fails with ErrOutOfMemory rather than aborting.
func TestAllocBeyondMemoryReturnsError(t *testing.T) {
	for _, checked := range []bool{true, false} {
		var opts []Option
		if !checked {
			opts = append(opts, WithUnchecked())
		}
		a := New(host.NewHeap(), opts...)

		_, err := a.Alloc(1 << 46)
		require.ErrorIs(t, err, ErrOutOfMemory)
		require.ErrorIs(t, err, host.ErrOutOfMemory)
		assert.Equal(t, int64(1), a.Stats().FailedAllocs)
		assert.Zero(t, a.Stats().LiveBlocks)
	}
}

// misalignedHost returns blocks shifted off the 16-byte boundary.
type misalignedHost struct{ host.Heap }

func (m *misalignedHost) Allocate(size int) ([]byte, error) {
	b, err := m.Heap.Allocate(size + 1)
	if err != nil {
		return nil, err
	}
	return b[1:], nil
}

// TestHostContract tests that unusable host blocks are refused.
func TestHostContract(t *testing.T) {
	a := New(&misalignedHost{})
	_, err := a.Alloc(8)
	require.ErrorIs(t, err, ErrHostContract)
	assert.Zero(t, a.Stats().LiveBlocks)
}

// TestPayloadSurvivesRetainRelease tests that the payload stays readable and
// writable between releases.
func TestPayloadSurvivesRetainRelease(t *testing.T) {
	a, _ := newTracked(t)

	h, err := a.Alloc(5)
	require.NoError(t, err)
	copy(a.Bytes(h), "hello")

	const owners = 4
	for range owners {
		require.NoError(t, a.Retain(h))
	}
	want := "hello"
	for i := range owners {
		freed, err := a.Release(h)
		require.NoError(t, err)
		require.False(t, freed)
		require.Equal(t, want, string(a.Bytes(h)), "payload after release %d", i)

		a.Bytes(h)[0] = byte('A' + i)
		want = string(rune('A'+i)) + "ello"
	}
	freed, err := a.Release(h)
	require.NoError(t, err)
	assert.True(t, freed)
}

// TestRetainOverflow tests that the count cannot wrap.
func TestRetainOverflow(t *testing.T) {
	a, _ := newTracked(t)

	h, err := a.Alloc(1)
	require.NoError(t, err)
	h.count().Store(MaxCount)

	require.ErrorIs(t, a.Retain(h), ErrCountOverflow)
	requireCount(t, a, h, MaxCount)
}

// TestOverReleaseReported tests that a corrupted count below zero is
// reported in checked mode and the block is still freed once. The API alone
// cannot reach this state: the live set drops a handle as its count hits
// zero, so only a count written from outside the allocator gets here.
func TestOverReleaseReported(t *testing.T) {
	a, tr := newTracked(t)

	h, err := a.Alloc(1)
	require.NoError(t, err)
	h.count().Store(0)

	freed, err := a.Release(h)
	require.ErrorIs(t, err, ErrOverRelease)
	assert.True(t, freed)
	assert.Equal(t, int64(1), tr.Stats().Frees)
}

// TestHeaderPoisonedOnFree tests the header contents over a block's life.
func TestHeaderPoisonedOnFree(t *testing.T) {
	a, _ := newTracked(t)

	h, err := a.Alloc(24)
	require.NoError(t, err)

	hdr, err := a.Header(h)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hdr.Count)
	assert.Equal(t, uint64(24), hdr.Size)
	assert.True(t, hdr.Live())

	block := h.block()
	_, err = a.Release(h)
	require.NoError(t, err)

	// The heap host only drops its reference, so the poisoned bytes are
	// still observable through the old slice.
	decoded, err := format.DecodeHeader(block)
	require.ErrorIs(t, err, format.ErrFreedBlock)
	assert.Equal(t, int32(format.PoisonCount), decoded.Count)
}

// TestUncheckedMode tests the balanced path without a live set.
func TestUncheckedMode(t *testing.T) {
	a, tr := newTracked(t, WithUnchecked())
	require.False(t, a.Checked())

	h, err := a.Alloc(32)
	require.NoError(t, err)
	require.NoError(t, a.Retain(h))
	requireCount(t, a, h, 2)
	assert.True(t, a.Live(h))
	assert.Nil(t, a.Outstanding())

	freed, err := a.Release(h)
	require.NoError(t, err)
	require.False(t, freed)
	freed, err = a.Release(h)
	require.NoError(t, err)
	require.True(t, freed)

	assert.Equal(t, int64(1), tr.Stats().Frees)
	assert.Zero(t, a.Stats().LiveBlocks)
}

// TestUncheckedCorruptCountFreesImmediately tests the count <= 0 trigger:
// a count already at zero is treated as "free now" without an error.
func TestUncheckedCorruptCountFreesImmediately(t *testing.T) {
	a, tr := newTracked(t, WithUnchecked())

	h, err := a.Alloc(8)
	require.NoError(t, err)
	h.count().Store(0)

	freed, err := a.Release(h)
	require.NoError(t, err)
	assert.True(t, freed)
	assert.Equal(t, int64(1), tr.Stats().Frees)
}

// TestUncheckedStrayReleaseAfterFree tests that releasing a freed block in
// unchecked mode does not free it a second time.
func TestUncheckedStrayReleaseAfterFree(t *testing.T) {
	a, tr := newTracked(t, WithUnchecked())

	h, err := a.Alloc(16)
	require.NoError(t, err)
	freed, err := a.Release(h)
	require.NoError(t, err)
	require.True(t, freed)

	// The heap host keeps the poisoned header readable through h.
	freed, err = a.Release(h)
	require.NoError(t, err)
	assert.False(t, freed, "a poisoned count must stay clear of the free path")

	st := tr.Stats()
	assert.Equal(t, int64(1), st.Frees)
	assert.Zero(t, st.BadFrees)
	assert.Equal(t, int64(1), a.Stats().Frees)
}

// TestPagesHost tests the allocator over operating-system mappings.
func TestPagesHost(t *testing.T) {
	pg := host.NewPages()
	a := New(pg)

	h, err := a.Alloc(100)
	require.NoError(t, err)
	copy(a.Bytes(h), bytes.Repeat([]byte{0x5A}, 100))
	require.NoError(t, a.Retain(h))
	assert.Equal(t, 1, pg.Mappings())

	_, err = a.Release(h)
	require.NoError(t, err)
	freed, err := a.Release(h)
	require.NoError(t, err)
	assert.True(t, freed)
	assert.Zero(t, pg.Mappings())
}

// TestLogging tests that contract violations reach the logger.
func TestLogging(t *testing.T) {
	var out bytes.Buffer
	l := logger.New(logger.Options{Enabled: true, Writer: &out, Level: slog.LevelDebug})
	a, _ := newTracked(t, WithLogger(l))

	h, err := a.Alloc(8)
	require.NoError(t, err)
	_, err = a.Release(h)
	require.NoError(t, err)
	_, _ = a.Release(h)

	logs := out.String()
	assert.Contains(t, logs, "rc: alloc")
	assert.Contains(t, logs, "rc: free")
	assert.Contains(t, logs, "rc: invalid handle")
}

// TestStatsBalance tests the counters after a mixed sequence.
func TestStatsBalance(t *testing.T) {
	a, _ := newTracked(t)

	h1, err := a.Alloc(10)
	require.NoError(t, err)
	h2, err := a.Alloc(20)
	require.NoError(t, err)
	require.NoError(t, a.Retain(h1))

	st := a.Stats()
	assert.Equal(t, int64(2), st.Allocs)
	assert.Equal(t, int64(1), st.Retains)
	assert.Equal(t, int64(2), st.LiveBlocks)
	assert.Equal(t, int64(30), st.LiveBytes)

	for _, h := range []Handle{h1, h1, h2} {
		_, err := a.Release(h)
		require.NoError(t, err)
	}
	st = a.Stats()
	assert.Equal(t, int64(3), st.Releases)
	assert.Equal(t, int64(2), st.Frees)
	assert.Zero(t, st.LiveBlocks)
	assert.Zero(t, st.LiveBytes)
}
