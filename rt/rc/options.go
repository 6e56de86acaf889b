package rc

import (
	"log/slog"

	"github.com/joshuapare/rtcore/internal/logger"
)

// config holds allocator settings assembled from Options.
type config struct {
	checked bool
	log     *slog.Logger
}

// Option configures an Allocator.
type Option func(*config)

// WithUnchecked disables handle validation. Retain and Release become pure
// header arithmetic and misuse is undefined behaviour.
func WithUnchecked() Option {
	return func(c *config) { c.checked = false }
}

// WithChecked enables handle validation (the default).
func WithChecked() Option {
	return func(c *config) { c.checked = true }
}

// WithLogger sets the logger for allocation events and contract violations.
// A nil logger discards.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l == nil {
			l = logger.Discard()
		}
		c.log = l
	}
}

func defaultConfig() config {
	return config{
		checked: true,
		log:     logger.Discard(),
	}
}
