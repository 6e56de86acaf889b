package main

import (
	"fmt"
	"io"
	"os"
	"sync"
	"unsafe"

	"github.com/joshuapare/rtcore/pkg/rtcore"
	"github.com/joshuapare/rtcore/rt/host"
	"github.com/joshuapare/rtcore/rt/rc"
)

// lib is the state behind the exported C functions. The exports are thin
// conversions around its methods so the behaviour can be tested without cgo.
type lib struct {
	rt *rtcore.Runtime

	// Raw blocks from runtime_alloc, keyed by address. They carry no header,
	// so their length has to be remembered here for Free.
	mu  sync.Mutex
	raw map[uintptr][]byte
	mem host.Host
}

var (
	libOnce sync.Once
	theLib  *lib
)

// instance builds the process-wide library state on first use. Blocks must
// live outside the Go heap because C code holds their addresses, so the page
// host is always used.
func instance() *lib {
	libOnce.Do(func() {
		opts, err := rtcore.OptionsFromEnv(os.Getenv)
		if err != nil {
			fmt.Fprintf(os.Stderr, "librtcore: %v; using defaults\n", err)
			opts = rtcore.DefaultOptions()
		}
		opts.Host = rtcore.HostPages

		l, err := newLib(opts, os.Stdout, os.Stdin, os.Stderr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "librtcore: %v\n", err)
			os.Exit(1)
		}
		theLib = l
	})
	return theLib
}

func newLib(opts rtcore.Options, stdout io.Writer, stdin io.Reader, stderr io.Writer) (*lib, error) {
	rt, err := rtcore.New(opts, stdout, stdin, stderr)
	if err != nil {
		return nil, err
	}
	return &lib{rt: rt, raw: make(map[uintptr][]byte), mem: host.NewPages()}, nil
}

// arcAlloc returns the payload address of a new block, or nil.
func (l *lib) arcAlloc(size int) unsafe.Pointer {
	h, err := l.rt.Alloc().Alloc(size)
	if err != nil {
		l.rt.Logger().Warn("librtcore: arc_alloc failed", "size", size, "error", err)
		return nil
	}
	return h.Pointer()
}

func (l *lib) refInc(p unsafe.Pointer) {
	if err := l.rt.Alloc().Retain(rc.HandleOf(p)); err != nil {
		l.rt.Logger().Error("librtcore: ref_inc", "error", err)
	}
}

func (l *lib) refDec(p unsafe.Pointer) {
	if _, err := l.rt.Alloc().Release(rc.HandleOf(p)); err != nil {
		l.rt.Logger().Error("librtcore: ref_dec", "error", err)
	}
}

// rawAlloc returns size bytes with no count header, or nil.
func (l *lib) rawAlloc(size int) unsafe.Pointer {
	if size <= 0 {
		size = 1
	}
	b, err := l.mem.Allocate(size)
	if err != nil {
		l.rt.Logger().Warn("librtcore: runtime_alloc failed", "size", size, "error", err)
		return nil
	}
	p := unsafe.Pointer(unsafe.SliceData(b))

	l.mu.Lock()
	l.raw[uintptr(p)] = b
	l.mu.Unlock()
	return p
}

// rawFree releases memory from rawAlloc. NULL is ignored.
func (l *lib) rawFree(p unsafe.Pointer) {
	if p == nil {
		return
	}
	l.mu.Lock()
	b, ok := l.raw[uintptr(p)]
	delete(l.raw, uintptr(p))
	l.mu.Unlock()

	if !ok {
		l.rt.Logger().Error("librtcore: runtime_free of unknown pointer", "addr", fmt.Sprintf("0x%x", uintptr(p)))
		return
	}
	if err := l.mem.Free(b); err != nil {
		l.rt.Logger().Error("librtcore: runtime_free", "error", err)
	}
}

func (l *lib) print(s []byte, newline bool) {
	c := l.rt.Console()
	var err error
	if err = c.PrintC(s); err == nil && newline {
		err = c.PutChar('\n')
	}
	if err != nil {
		l.rt.Logger().Error("librtcore: print", "error", err)
	}
}

func (l *lib) exit(code int) {
	if err := l.rt.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
	}
	rtcore.Exit(code)
}

// cBytes views a NUL-terminated C string, terminator included. NULL yields
// nil.
func cBytes(p unsafe.Pointer, strlen func(unsafe.Pointer) int) []byte {
	if p == nil {
		return nil
	}
	return unsafe.Slice((*byte)(p), strlen(p)+1)
}
