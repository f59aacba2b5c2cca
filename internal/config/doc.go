// Package config loads the filterbus tool configuration.
//
// Settings come from three layers, later ones winning:
//
//  1. Built-in defaults (Default)
//  2. A TOML file passed with --config
//  3. FILTERBUS_* environment variables
//
// # File Format
//
//	[log]
//	level = "debug"
//	pretty = true
//
//	[bus]
//	name = "scenarios"
//	trace = true
//
//	[watch]
//	enabled = false
//	debounce = "250ms"
//
// # Environment
//
//	FILTERBUS_LOG_LEVEL       log.level
//	FILTERBUS_LOG_PRETTY      log.pretty
//	FILTERBUS_BUS_NAME        bus.name
//	FILTERBUS_BUS_TRACE       bus.trace
//	FILTERBUS_WATCH           watch.enabled
//	FILTERBUS_WATCH_DEBOUNCE  watch.debounce
package config
