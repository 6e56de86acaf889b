package scenario

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/joshuapare/rtcore/internal/buf"
	"github.com/joshuapare/rtcore/internal/format"
	"github.com/joshuapare/rtcore/internal/logger"
	"github.com/joshuapare/rtcore/rt/host"
	"github.com/joshuapare/rtcore/rt/rc"
)

// errorKinds maps the names accepted in Step.Err to allocator errors.
var errorKinds = map[string]error{
	"out_of_memory":  rc.ErrOutOfMemory,
	"invalid_size":   rc.ErrInvalidSize,
	"invalid_handle": rc.ErrInvalidHandle,
	"over_release":   rc.ErrOverRelease,
	"count_overflow": rc.ErrCountOverflow,
}

// StepResult records the outcome of one step.
type StepResult struct {
	Index  int    `json:"index"`
	Op     Op     `json:"op"`
	Ref    string `json:"ref"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// Result is the outcome of a run.
type Result struct {
	Name    string            `json:"name"`
	Checked bool              `json:"checked"`
	Passed  bool              `json:"passed"`
	Failure string            `json:"failure,omitempty"`
	Steps   []StepResult      `json:"steps"`
	Stats   rc.Stats          `json:"stats"`
	Host    host.TrackerStats `json:"host"`
	Leaked  int               `json:"leaked"`
}

// RunOption configures Run.
type RunOption func(*runner)

// WithLogger routes allocator diagnostics to l.
func WithLogger(l *slog.Logger) RunOption {
	return func(r *runner) { r.log = l }
}

// WithFailFast stops at the first failed step.
func WithFailFast() RunOption {
	return func(r *runner) { r.failFast = true }
}

type ref struct {
	h     rc.Handle
	addr  uintptr // block start, for host-side checks after free
	freed bool
}

type runner struct {
	log      *slog.Logger
	failFast bool

	alloc   *rc.Allocator
	tracker *host.Tracker
	refs    map[string]*ref
}

// Run replays s and reports what happened. The error result is reserved for
// scenarios that cannot be run at all; step failures are reported in the
// Result.
func Run(s *Scenario, opts ...RunOption) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	r := &runner{log: logger.Discard(), refs: make(map[string]*ref)}
	for _, opt := range opts {
		opt(r)
	}

	var h host.Host = host.NewHeap()
	if s.Host == "pages" {
		h = host.NewPages()
	}
	limit, _ := s.LimitBytes()
	if limit > 0 {
		h = host.NewLimit(h, limit)
	}
	r.tracker = host.NewTracker(h)

	mode := rc.WithChecked()
	if !s.IsChecked() {
		mode = rc.WithUnchecked()
	}
	r.alloc = rc.New(r.tracker, mode, rc.WithLogger(r.log))

	res := &Result{Name: s.Name, Checked: s.IsChecked(), Passed: true}
	for i, st := range s.Steps {
		sr := StepResult{Index: i + 1, Op: st.Op, Ref: st.Ref, OK: true}
		if err := r.step(st, &sr); err != nil {
			sr.OK = false
			sr.Detail = err.Error()
			if res.Passed {
				res.Passed = false
				res.Failure = fmt.Sprintf("step %d (%s %s): %v", sr.Index, st.Op, st.Ref, err)
			}
		}
		res.Steps = append(res.Steps, sr)
		if !sr.OK && r.failFast {
			break
		}
	}

	res.Stats = r.alloc.Stats()
	res.Host = r.tracker.Stats()
	res.Leaked = res.Host.LiveBlocks
	if res.Leaked > 0 && !s.AllowLeaks && res.Passed {
		res.Passed = false
		res.Failure = fmt.Sprintf("%d blocks leaked", res.Leaked)
	}
	return res, nil
}

// step executes st. A returned error fails the step.
func (r *runner) step(st Step, sr *StepResult) error {
	if st.Op == OpAlloc {
		return r.doAlloc(st, sr)
	}

	rf, ok := r.refs[st.Ref]
	if !ok {
		return fmt.Errorf("unknown ref %q", st.Ref)
	}
	if st.Op == OpFreeCheck {
		return r.freeCheck(rf)
	}
	if rf.freed && !r.alloc.Checked() {
		// Without validation the allocator would touch freed memory.
		return fmt.Errorf("ref %q already freed; refusing %s in unchecked mode", st.Ref, st.Op)
	}

	switch st.Op {
	case OpRetain:
		return expectErr(st.Err, r.alloc.Retain(rf.h))

	case OpRelease:
		freed, err := r.alloc.Release(rf.h)
		if freed {
			rf.freed = true
			sr.Detail = "freed"
		}
		if err := expectErr(st.Err, err); err != nil {
			return err
		}
		if st.Freed != nil && *st.Freed != freed {
			return fmt.Errorf("freed = %t, want %t", freed, *st.Freed)
		}
		return nil

	case OpWrite:
		b := r.alloc.Bytes(rf.h)
		if b == nil {
			return expectErr(st.Err, fmt.Errorf("%w: write to %s", rc.ErrInvalidHandle, rf.h))
		}
		dst, ok := buf.Slice(b, 0, len(*st.Data))
		if !ok {
			return fmt.Errorf("data of %d bytes overflows %d-byte payload", len(*st.Data), len(b))
		}
		copy(dst, *st.Data)
		return expectErr(st.Err, nil)

	case OpExpect:
		return r.expect(st, rf)
	}
	return fmt.Errorf("unknown op %q", st.Op)
}

func (r *runner) doAlloc(st Step, sr *StepResult) error {
	if prev, ok := r.refs[st.Ref]; ok && !prev.freed {
		return fmt.Errorf("ref %q is still live", st.Ref)
	}
	h, err := r.alloc.Alloc(st.Size)
	if err != nil {
		return expectErr(st.Err, err)
	}
	r.refs[st.Ref] = &ref{h: h, addr: h.Addr() - format.HeaderSize}
	sr.Detail = h.String()
	return expectErr(st.Err, nil)
}

func (r *runner) expect(st Step, rf *ref) error {
	if st.Count != nil {
		n, err := r.alloc.Count(rf.h)
		if err != nil {
			return expectErr(st.Err, err)
		}
		if n != *st.Count {
			return fmt.Errorf("count = %d, want %d", n, *st.Count)
		}
	}
	if st.Data != nil {
		b := r.alloc.Bytes(rf.h)
		if b == nil {
			return expectErr(st.Err, fmt.Errorf("%w: read of %s", rc.ErrInvalidHandle, rf.h))
		}
		want := *st.Data
		if !buf.Has(b, 0, len(want)) || string(b[:len(want)]) != want {
			return fmt.Errorf("payload = %q, want prefix %q", b, want)
		}
	}
	return expectErr(st.Err, nil)
}

// freeCheck passes when the block behind rf has been returned to the host.
// A later allocation may reuse the address, so a live block there only
// counts against rf when no other ref holds it.
func (r *runner) freeCheck(rf *ref) error {
	if !rf.freed {
		return fmt.Errorf("%s was never freed", rf.h)
	}
	if r.tracker.Owns(rf.addr) && !r.reused(rf) {
		return fmt.Errorf("block at 0x%x still allocated", rf.addr)
	}
	return nil
}

func (r *runner) reused(rf *ref) bool {
	for _, other := range r.refs {
		if other != rf && !other.freed && other.addr == rf.addr {
			return true
		}
	}
	return false
}

// expectErr compares an operation's error against the expected kind. An
// empty kind expects success.
func expectErr(kind string, err error) error {
	if kind == "" {
		return err
	}
	want := errorKinds[kind]
	if err == nil {
		return fmt.Errorf("succeeded, want %s error", kind)
	}
	if !errors.Is(err, want) {
		return fmt.Errorf("got %v, want %s error", err, kind)
	}
	return nil
}
