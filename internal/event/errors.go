package event

import "errors"

// Sentinel errors for misuse of the bus. They are raised as panics because
// they indicate programming errors, not runtime conditions.
var (
	// ErrNilListener is raised when Listen is called with a nil listener.
	ErrNilListener = errors.New("listener cannot be nil")

	// ErrNilBus is raised when a nil *Bus is passed to a Type or Query.
	ErrNilBus = errors.New("bus cannot be nil")

	// ErrZeroType is raised when the zero Type is used instead of one made
	// by NewType.
	ErrZeroType = errors.New("event type is not declared")

	// ErrZeroKind is raised when the zero Param is used in Where or Set.
	ErrZeroKind = errors.New("parameter kind is not declared")

	// ErrUncomparableValue is raised when a parameter value, such as a
	// slice held in a Param[any], cannot be used as a map key.
	ErrUncomparableValue = errors.New("parameter value is not comparable")
)
