// Package scenario replays allocation traces against a tracked allocator.
//
// A scenario is a YAML document naming a sequence of alloc, retain, release,
// write, expect and free_check steps over symbolic refs:
//
//	name: shared buffer
//	steps:
//	  - {op: alloc, ref: s, size: 8}
//	  - {op: retain, ref: s}
//	  - {op: expect, ref: s, count: 2}
//	  - {op: release, ref: s, freed: false}
//	  - {op: release, ref: s, freed: true}
//	  - {op: free_check, ref: s}
//
// Every block is allocated through a host.Tracker, so a run can prove that
// each block was returned to the host exactly once.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// ErrInvalid indicates a malformed scenario.
var ErrInvalid = errors.New("scenario: invalid")

// Op names a step operation.
type Op string

const (
	OpAlloc     Op = "alloc"
	OpRetain    Op = "retain"
	OpRelease   Op = "release"
	OpWrite     Op = "write"
	OpExpect    Op = "expect"
	OpFreeCheck Op = "free_check"
)

// Scenario is one replayable trace.
type Scenario struct {
	Name       string `yaml:"name"`
	Checked    *bool  `yaml:"checked,omitempty"` // Default: true
	Host       string `yaml:"host,omitempty"`    // heap or pages. Default: heap
	Limit      string `yaml:"limit,omitempty"`   // Byte budget such as "1KiB"; "" is unlimited
	AllowLeaks bool   `yaml:"allow_leaks,omitempty"`
	Steps      []Step `yaml:"steps"`
}

// Step is one operation on a named ref.
type Step struct {
	Op    Op      `yaml:"op"`
	Ref   string  `yaml:"ref"`
	Size  int     `yaml:"size,omitempty"`  // alloc
	Data  *string `yaml:"data,omitempty"`  // write; expect compares the payload prefix
	Count *int32  `yaml:"count,omitempty"` // expect
	Freed *bool   `yaml:"freed,omitempty"` // release
	Err   string  `yaml:"err,omitempty"`   // expected error kind
}

// IsChecked reports whether the scenario runs with handle validation.
func (s *Scenario) IsChecked() bool {
	return s.Checked == nil || *s.Checked
}

// LimitBytes parses Limit. Zero means unlimited.
func (s *Scenario) LimitBytes() (int64, error) {
	if strings.TrimSpace(s.Limit) == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s.Limit)
	if err != nil {
		return 0, fmt.Errorf("%w: limit %q: %w", ErrInvalid, s.Limit, err)
	}
	return int64(n), nil
}

// Validate checks the scenario's structure. It does not run it.
func (s *Scenario) Validate() error {
	switch s.Host {
	case "", "heap", "pages":
	default:
		return fmt.Errorf("%w: host %q", ErrInvalid, s.Host)
	}
	if _, err := s.LimitBytes(); err != nil {
		return err
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrInvalid)
	}
	for i, st := range s.Steps {
		if err := st.validate(); err != nil {
			return fmt.Errorf("%w: step %d: %w", ErrInvalid, i+1, err)
		}
	}
	return nil
}

func (st Step) validate() error {
	if st.Ref == "" {
		return errors.New("missing ref")
	}
	if st.Err != "" {
		if _, ok := errorKinds[st.Err]; !ok {
			return fmt.Errorf("unknown error kind %q", st.Err)
		}
	}
	switch st.Op {
	case OpAlloc, OpRetain, OpRelease, OpFreeCheck:
	case OpWrite:
		if st.Data == nil {
			return errors.New("write needs data")
		}
	case OpExpect:
		if st.Data == nil && st.Count == nil {
			return errors.New("expect needs data or count")
		}
	default:
		return fmt.Errorf("unknown op %q", st.Op)
	}
	return nil
}

// Parse decodes and validates a YAML scenario. Unknown fields are rejected.
func Parse(data []byte) (*Scenario, error) {
	return Load(bytes.NewReader(data))
}

// Load reads a YAML scenario from r.
func Load(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadFile reads a YAML scenario from path.
func LoadFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scenario: %w", err)
	}
	defer f.Close()

	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = path
	}
	return s, nil
}

// Marshal encodes s as YAML.
func Marshal(s *Scenario) ([]byte, error) {
	return yaml.Marshal(s)
}
