package di

import (
	"github.com/rs/zerolog"
)

// Verbosity gates the container's informational output. It affects logging
// only and never alters resolution semantics.
type Verbosity int

const (
	// Silent emits nothing. This is the default.
	Silent Verbosity = iota

	// Events emits the minimal lifecycle events: registrations, bulk
	// resolution passes, teardown summaries, and failures that best-effort
	// operations swallow.
	Events

	// Verbose additionally emits per-dependency resolution steps.
	Verbose
)

// Option is a functional option for configuring a Container.
type Option func(*Container)

// WithLogger sets the logger used for informational output. Without it the
// container logs nowhere regardless of verbosity.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Container) {
		c.log = log
	}
}

// WithVerbosity sets how much the container logs. See Verbosity.
func WithVerbosity(v Verbosity) Option {
	return func(c *Container) {
		c.verbosity = v
	}
}

func (c *Container) events() bool {
	return c.verbosity >= Events
}

func (c *Container) verbose() bool {
	return c.verbosity >= Verbose
}
