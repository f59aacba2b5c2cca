package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"

	"github.com/dshills/filterbus/internal/event"
	"github.com/dshills/filterbus/internal/logging"
)

// Config is the filterbus tool configuration.
type Config struct {
	Log   LogConfig   `toml:"log"`
	Bus   BusConfig   `toml:"bus"`
	Watch WatchConfig `toml:"watch"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error, off.
	Level string `toml:"level"`
	// Pretty enables console output instead of JSON.
	Pretty bool `toml:"pretty"`
}

// BusConfig configures the buses the tool creates.
type BusConfig struct {
	// Name labels the bus in logs.
	Name string `toml:"name"`
	// Trace logs every raise at debug level.
	Trace bool `toml:"trace"`
}

// WatchConfig configures re-running on file changes.
type WatchConfig struct {
	// Enabled turns on watch mode for run.
	Enabled bool `toml:"enabled"`
	// Debounce is a time.ParseDuration string.
	Debounce string `toml:"debounce"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
		},
		Bus: BusConfig{
			Name: "filterbus",
		},
		Watch: WatchConfig{
			Debounce: "200ms",
		},
	}
}

// Load reads the TOML file at path over the defaults and applies FILTERBUS_*
// environment overrides. An empty path or a missing file leaves the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("reading config file %s: %w", path, err)
			}
		} else if err := cfg.decode(path, data); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML data over the defaults. Environment overrides are not
// applied.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.decode("<data>", data); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(source string, data []byte) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		pe := &ParseError{Path: source, Message: err.Error(), Err: err}

		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			pe.Line, pe.Column = derr.Position()
		}
		var serr *toml.StrictMissingError
		if errors.As(err, &serr) {
			pe.Message = "unknown setting: " + serr.String()
		}
		return pe
	}
	return nil
}

// Validate checks setting values.
func (c *Config) Validate() error {
	if !logging.ValidLevel(c.Log.Level) {
		return fmt.Errorf("%w: log.level %q", ErrValidationFailed, c.Log.Level)
	}
	if _, err := c.DebounceDuration(); err != nil {
		return err
	}
	return nil
}

// DebounceDuration returns the parsed watch debounce.
func (c *Config) DebounceDuration() (time.Duration, error) {
	if c.Watch.Debounce == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 0, fmt.Errorf("%w: watch.debounce %q: %v", ErrValidationFailed, c.Watch.Debounce, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: watch.debounce must not be negative", ErrValidationFailed)
	}
	return d, nil
}

// Logging returns the logger configuration.
func (c *Config) Logging() logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = logging.ParseLevel(c.Log.Level)
	lc.Pretty = c.Log.Pretty
	return lc
}

// BusOptions returns the options for buses created by the tool.
func (c *Config) BusOptions(logger zerolog.Logger) []event.Option {
	return []event.Option{
		event.WithName(c.Bus.Name),
		event.WithLogger(logger),
		event.WithTrace(c.Bus.Trace),
	}
}
