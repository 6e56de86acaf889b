package cstr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/rtcore/internal/testutil"
	"github.com/joshuapare/rtcore/rt/rc"
)

func TestStrlen(t *testing.T) {
	assert.Equal(t, 0, Strlen(nil))
	assert.Equal(t, 0, Strlen([]byte{}))
	assert.Equal(t, 0, Strlen([]byte{0}))
	assert.Equal(t, 5, Strlen([]byte("hello\x00world")))
	assert.Equal(t, 3, Strlen([]byte("abc")), "unterminated slice counts to the end")
}

func TestStrcmp(t *testing.T) {
	tests := []struct {
		name string
		a, b []byte
		want int
	}{
		{"both nil", nil, nil, 0},
		{"nil first", nil, []byte("\x00"), -1},
		{"nil second", []byte("a\x00"), nil, 1},
		{"equal", []byte("abc\x00"), []byte("abc\x00"), 0},
		{"equal ignoring tail", []byte("abc\x00xyz"), []byte("abc\x00"), 0},
		{"less", []byte("abc\x00"), []byte("abd\x00"), -1},
		{"greater", []byte("b\x00"), []byte("abc\x00"), 1},
		{"prefix is less", []byte("ab\x00"), []byte("abc\x00"), -1},
		{"unsigned bytes", []byte{0x7f, 0}, []byte{0x80, 0}, -1},
		{"empty vs empty", []byte{0}, []byte{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Strcmp(tt.a, tt.b))
		})
	}
}

func TestFromString(t *testing.T) {
	assert.Equal(t, []byte("hi\x00"), FromString("hi"))
	assert.Equal(t, []byte{0}, FromString(""))
	assert.Equal(t, []byte("a\x00"), FromString("a\x00b"))
}

func TestNewAndString(t *testing.T) {
	a, _ := testutil.NewAllocator(t)

	h, err := New(a, "hello")
	require.NoError(t, err)
	size, err := a.Size(h)
	require.NoError(t, err)
	assert.Equal(t, 6, size)
	assert.Equal(t, 5, Strlen(a.Bytes(h)))

	s, err := String(a, h)
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	freed, err := a.Release(h)
	require.NoError(t, err)
	assert.True(t, freed)

	_, err = String(a, h)
	require.ErrorIs(t, err, rc.ErrInvalidHandle)

	s, err = String(a, rc.Nil)
	require.NoError(t, err)
	assert.Empty(t, s)
}
