package testutil

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/rtcore/rt/host"
)

// recordingTB captures failures instead of failing the real test.
type recordingTB struct {
	testing.TB
	errors []string
}

func (r *recordingTB) Helper() {}

func (r *recordingTB) Errorf(format string, args ...any) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func TestRequireNoLeaks(t *testing.T) {
	tr := host.NewTracker(host.NewHeap())
	rec := &recordingTB{TB: t}

	RequireNoLeaks(rec, tr)
	assert.Empty(t, rec.errors)

	b, err := tr.Allocate(32)
	require.NoError(t, err)
	RequireNoLeaks(rec, tr)
	require.Len(t, rec.errors, 1)
	assert.Contains(t, rec.errors[0], "1 blocks still live")

	require.NoError(t, tr.Free(b))
	require.Error(t, tr.Free(b))
	rec.errors = nil
	RequireNoLeaks(rec, tr)
	require.Len(t, rec.errors, 1)
	assert.Contains(t, rec.errors[0], "rejected")
}

func TestNewAllocator(t *testing.T) {
	a, tr := NewAllocator(t)

	h, err := a.Alloc(16)
	require.NoError(t, err)
	assert.Equal(t, 1, tr.Stats().LiveBlocks)

	freed, err := a.Release(h)
	require.NoError(t, err)
	assert.True(t, freed)
}
