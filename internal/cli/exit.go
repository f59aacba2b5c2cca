package cli

import "fmt"

// Process exit codes.
const (
	exitSuccess      = 0
	exitExpectation  = 1
	exitInvalid      = 2
	exitFileNotFound = 3
	exitRuntime      = 4
	exitConfig       = 5
)

// ExitError is an error that carries a specific process exit code.
// Commands return it from RunE and main exits with Code.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

func exitError(code int, format string, args ...any) *ExitError {
	return &ExitError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}
