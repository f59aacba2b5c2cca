package script

import "errors"

// Errors for script execution.
var (
	// ErrEngineClosed is returned when running a script on a closed engine.
	ErrEngineClosed = errors.New("script engine is closed")

	// ErrUnsupportedValue is returned when a Lua value cannot be a parameter.
	ErrUnsupportedValue = errors.New("unsupported lua value")
)
