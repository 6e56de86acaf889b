package rtcore

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/joshuapare/rtcore/internal/logger"
	"github.com/joshuapare/rtcore/rt/host"
)

// Host names accepted in Options.Host.
const (
	HostHeap  = "heap"
	HostPages = "pages"
)

// Environment variables read by OptionsFromEnv.
const (
	EnvHost        = "RTCORE_HOST"
	EnvChecked     = "RTCORE_CHECKED"
	EnvMemoryLimit = "RTCORE_MEMORY_LIMIT"
	EnvCodepage    = "RTCORE_CODEPAGE"
	EnvLog         = "RTCORE_LOG"
	EnvLogJSON     = "RTCORE_LOG_JSON"
)

// Options configures a Runtime.
type Options struct {
	Host        string     // HostHeap or HostPages. Default: HostHeap
	Checked     bool       // Validate handles on every operation. Default: true
	MemoryLimit int64      // Byte budget for host memory; 0 means unlimited
	Codepage    string     // Console code page; "" means UTF-8 passthrough
	LogLevel    slog.Level // Minimum level when logging is enabled
	Log         bool       // Enable diagnostic logging to stderr
	LogJSON     bool       // Emit JSON log records
	Track       bool       // Record every host block; required for leak reports
}

// DefaultOptions returns checked, tracked, heap-backed options with logging
// off. The memory limit defaults to host.MemoryCeiling so that cumulative
// allocation fails with an error before the Go runtime runs out of memory.
func DefaultOptions() Options {
	return Options{
		Host:        HostHeap,
		Checked:     true,
		MemoryLimit: host.MemoryCeiling(),
		LogLevel:    slog.LevelInfo,
		Track:       true,
	}
}

// OptionsFromEnv starts from DefaultOptions and applies any RTCORE_*
// variables that getenv reports as set. Pass os.Getenv in production.
func OptionsFromEnv(getenv func(string) string) (Options, error) {
	opts := DefaultOptions()

	if v := getenv(EnvHost); v != "" {
		opts.Host = strings.ToLower(strings.TrimSpace(v))
	}
	if v := getenv(EnvChecked); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("rtcore: %s=%q: %w", EnvChecked, v, err)
		}
		opts.Checked = b
	}
	if v := getenv(EnvMemoryLimit); v != "" {
		n, err := humanize.ParseBytes(v)
		if err != nil {
			return opts, fmt.Errorf("rtcore: %s=%q: %w", EnvMemoryLimit, v, err)
		}
		if n > 1<<62 {
			return opts, fmt.Errorf("rtcore: %s=%q: limit too large", EnvMemoryLimit, v)
		}
		opts.MemoryLimit = int64(n)
	}
	if v := getenv(EnvCodepage); v != "" {
		opts.Codepage = v
	}
	if v := getenv(EnvLog); v != "" {
		level, enabled, err := logger.ParseLevel(v)
		if err != nil {
			return opts, fmt.Errorf("rtcore: %s: %w", EnvLog, err)
		}
		opts.Log = enabled
		opts.LogLevel = level
	}
	if v := getenv(EnvLogJSON); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("rtcore: %s=%q: %w", EnvLogJSON, v, err)
		}
		opts.LogJSON = b
	}

	return opts, opts.Validate()
}

// Validate reports the first invalid field.
func (o Options) Validate() error {
	switch o.Host {
	case "", HostHeap, HostPages:
	default:
		return fmt.Errorf("%w: host %q", ErrBadOptions, o.Host)
	}
	if o.MemoryLimit < 0 {
		return fmt.Errorf("%w: negative memory limit %d", ErrBadOptions, o.MemoryLimit)
	}
	return nil
}

// String summarises the options for logs and CLI output.
func (o Options) String() string {
	limit := "unlimited"
	if o.MemoryLimit > 0 {
		limit = humanize.IBytes(uint64(o.MemoryLimit))
	}
	name := o.Host
	if name == "" {
		name = HostHeap
	}
	return fmt.Sprintf("host=%s checked=%t limit=%s track=%t", name, o.Checked, limit, o.Track)
}
