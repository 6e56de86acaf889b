package pages

import (
	"errors"
	"testing"
)

func TestMapReadWrite(t *testing.T) {
	n := Size() + 1
	data, err := Map(n)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if len(data) != n || cap(data) != n {
		t.Fatalf("len/cap = %d/%d, want %d", len(data), cap(data), n)
	}
	for i, b := range data {
		if b != 0 {
			t.Fatalf("byte %d not zeroed: 0x%x", i, b)
		}
	}
	data[0], data[n-1] = 0xAB, 0xCD
	if data[0] != 0xAB || data[n-1] != 0xCD {
		t.Fatalf("mapping is not writable")
	}
	if err := Unmap(data); err != nil {
		t.Fatalf("Unmap: %v", err)
	}
}

func TestMapRejectsEmpty(t *testing.T) {
	if _, err := Map(0); err == nil {
		t.Fatalf("Map(0) should fail")
	}
}

func TestUnmapRejectsNil(t *testing.T) {
	if err := Unmap(nil); !errors.Is(err, ErrBadMapping) {
		t.Fatalf("Unmap(nil) = %v, want ErrBadMapping", err)
	}
}
