package config

import (
	"fmt"
	"strconv"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "FILTERBUS_"

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// envBinding maps one environment variable onto a setting.
type envBinding struct {
	name  string
	apply func(c *Config, value string) error
}

// envBindings returns the supported environment overrides.
func envBindings() []envBinding {
	return []envBinding{
		{EnvPrefix + "LOG_LEVEL", func(c *Config, v string) error {
			c.Log.Level = v
			return nil
		}},
		{EnvPrefix + "LOG_PRETTY", func(c *Config, v string) error {
			return parseBool(v, &c.Log.Pretty)
		}},
		{EnvPrefix + "BUS_NAME", func(c *Config, v string) error {
			c.Bus.Name = v
			return nil
		}},
		{EnvPrefix + "BUS_TRACE", func(c *Config, v string) error {
			return parseBool(v, &c.Bus.Trace)
		}},
		{EnvPrefix + "WATCH", func(c *Config, v string) error {
			return parseBool(v, &c.Watch.Enabled)
		}},
		{EnvPrefix + "WATCH_DEBOUNCE", func(c *Config, v string) error {
			c.Watch.Debounce = v
			return nil
		}},
	}
}

// ApplyEnv applies environment overrides read through lookup.
// Empty values are treated as set.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	for _, b := range envBindings() {
		v, ok := lookup(b.name)
		if !ok {
			continue
		}
		if err := b.apply(c, v); err != nil {
			return fmt.Errorf("%s: %w", b.name, err)
		}
	}
	return nil
}

func parseBool(v string, dst *bool) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%w: %q is not a boolean", ErrTypeMismatch, v)
	}
	*dst = b
	return nil
}
