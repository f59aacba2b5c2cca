package event

import "github.com/rs/zerolog"

// Option configures a Bus.
type Option func(*busConfig)

// busConfig contains configuration for a bus.
type busConfig struct {
	// name labels the bus in logs.
	name string

	// logger receives subscription lifecycle messages at debug level.
	logger zerolog.Logger

	// trace logs every raise with its walk summary.
	trace bool
}

// defaultBusConfig returns the configuration of a silent, unnamed bus.
func defaultBusConfig() busConfig {
	return busConfig{
		name:   "local",
		logger: zerolog.Nop(),
	}
}

// WithName sets the bus name used in log fields.
func WithName(name string) Option {
	return func(c *busConfig) {
		if name != "" {
			c.name = name
		}
	}
}

// WithLogger sets the logger for the bus.
func WithLogger(l zerolog.Logger) Option {
	return func(c *busConfig) {
		c.logger = l
	}
}

// WithTrace enables a debug log line per raise.
func WithTrace(enabled bool) Option {
	return func(c *busConfig) {
		c.trace = enabled
	}
}

// TypeOption configures an event type.
type TypeOption func(*typeID)

// Persistent exempts the type from Bus.ClearAll.
func Persistent() TypeOption {
	return func(t *typeID) {
		t.persistent = true
	}
}
