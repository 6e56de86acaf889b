package rtcore

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/joshuapare/rtcore/internal/logger"
	"github.com/joshuapare/rtcore/rt/console"
	"github.com/joshuapare/rtcore/rt/host"
	"github.com/joshuapare/rtcore/rt/rc"
)

// Runtime is one program's view of the runtime.
type Runtime struct {
	opts    Options
	alloc   *rc.Allocator
	console *console.Console
	log     *slog.Logger

	tracker *host.Tracker // nil unless Options.Track
	limit   *host.Limit   // nil unless Options.MemoryLimit > 0

	closeOnce sync.Once
	closeErr  error
}

// Stats combines allocator and host counters.
type Stats struct {
	rc.Stats
	Host        *host.TrackerStats `json:"host,omitempty"`
	LimitUsed   int64              `json:"limit_used,omitempty"`
	LimitBudget int64              `json:"limit_budget,omitempty"`
}

// New builds a runtime. stdin may be nil for programs that never read input.
// Logs go to stderr when enabled.
func New(opts Options, stdout io.Writer, stdin io.Reader, stderr io.Writer) (*Runtime, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	log := logger.New(logger.Options{
		Enabled: opts.Log,
		Writer:  stderr,
		Level:   opts.LogLevel,
		JSON:    opts.LogJSON,
	})

	con, err := console.New(stdout, stdin, console.WithCodepage(opts.Codepage))
	if err != nil {
		return nil, fmt.Errorf("rtcore: %w", err)
	}

	rt := &Runtime{opts: opts, console: con, log: log}

	var h host.Host = host.NewHeap()
	if opts.Host == HostPages {
		h = host.NewPages()
	}
	if opts.MemoryLimit > 0 {
		rt.limit = host.NewLimit(h, opts.MemoryLimit)
		h = rt.limit
	}
	if opts.Track {
		rt.tracker = host.NewTracker(h)
		h = rt.tracker
	}

	mode := rc.WithChecked()
	if !opts.Checked {
		mode = rc.WithUnchecked()
	}
	rt.alloc = rc.New(h, mode, rc.WithLogger(log))

	log.Debug("rtcore: runtime started", "options", opts.String())
	return rt, nil
}

// Alloc returns the runtime's allocator.
func (rt *Runtime) Alloc() *rc.Allocator { return rt.alloc }

// Console returns the runtime's console.
func (rt *Runtime) Console() *console.Console { return rt.console }

// Logger returns the runtime's logger.
func (rt *Runtime) Logger() *slog.Logger { return rt.log }

// Options returns the options the runtime was built with.
func (rt *Runtime) Options() Options { return rt.opts }

// Stats returns a snapshot of the allocator and host counters.
func (rt *Runtime) Stats() Stats {
	s := Stats{Stats: rt.alloc.Stats()}
	if rt.tracker != nil {
		hs := rt.tracker.Stats()
		s.Host = &hs
	}
	if rt.limit != nil {
		s.LimitUsed = rt.limit.Used()
		s.LimitBudget = rt.limit.Budget()
	}
	return s
}

// Close reports blocks that are still live. It returns an error wrapping
// ErrLeaked when any remain. Leaked blocks stay allocated. Only the first
// call does any work.
func (rt *Runtime) Close() error {
	rt.closeOnce.Do(func() {
		rt.closeErr = rt.leakReport()
	})
	return rt.closeErr
}

func (rt *Runtime) leakReport() error {
	var blocks, bytes int64
	if out := rt.alloc.Outstanding(); out != nil {
		for _, h := range out {
			size, _ := rt.alloc.Size(h)
			count, _ := rt.alloc.Count(h)
			rt.log.Warn("rtcore: leaked block", "handle", h.String(), "size", size, "count", count)
			bytes += int64(size)
		}
		blocks = int64(len(out))
	} else if rt.tracker != nil {
		hs := rt.tracker.Stats()
		blocks, bytes = int64(hs.LiveBlocks), hs.LiveBytes
	}
	if blocks == 0 {
		return nil
	}
	rt.log.Warn("rtcore: blocks leaked at exit", "blocks", blocks, "bytes", humanize.IBytes(uint64(bytes)))
	return fmt.Errorf("%w: %d blocks, %s", ErrLeaked, blocks, humanize.IBytes(uint64(bytes)))
}
