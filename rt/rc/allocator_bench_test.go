package rc

import (
	"testing"

	"github.com/joshuapare/rtcore/rt/host"
)

func BenchmarkAllocRelease(b *testing.B) {
	for _, bc := range []struct {
		name string
		opts []Option
	}{
		{name: "checked"},
		{name: "unchecked", opts: []Option{WithUnchecked()}},
	} {
		b.Run(bc.name, func(b *testing.B) {
			a := New(host.NewHeap(), bc.opts...)
			b.ReportAllocs()
			for b.Loop() {
				h, err := a.Alloc(32)
				if err != nil {
					b.Fatal(err)
				}
				if _, err := a.Release(h); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkRetainRelease(b *testing.B) {
	for _, bc := range []struct {
		name string
		opts []Option
	}{
		{name: "checked"},
		{name: "unchecked", opts: []Option{WithUnchecked()}},
	} {
		b.Run(bc.name, func(b *testing.B) {
			a := New(host.NewHeap(), bc.opts...)
			h, err := a.Alloc(32)
			if err != nil {
				b.Fatal(err)
			}
			for b.Loop() {
				_ = a.Retain(h)
				_, _ = a.Release(h)
			}
		})
	}
}

func BenchmarkRetainReleaseParallel(b *testing.B) {
	a := New(host.NewHeap(), WithUnchecked())
	h, err := a.Alloc(32)
	if err != nil {
		b.Fatal(err)
	}
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = a.Retain(h)
			_, _ = a.Release(h)
		}
	})
}
