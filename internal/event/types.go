package event

import "reflect"

// Listener receives events of type E.
type Listener[E Event] interface {
	// Handle is invoked synchronously from Raise.
	Handle(e E)
}

// ListenerFunc is a function adapter for Listener.
type ListenerFunc[E Event] func(e E)

// Handle implements the Listener interface.
func (f ListenerFunc[E]) Handle(e E) {
	f(e)
}

// Stats contains bus statistics.
type Stats struct {
	// Types is the number of event types the bus has seen.
	Types int

	// Listeners is the number of live subscriptions across all types.
	Listeners int

	// Raises is the total number of Raise calls, nested ones included.
	Raises uint64

	// Deliveries is the total number of listener invocations.
	Deliveries uint64

	// Stopped is the number of raises that ended with propagation stopped.
	Stopped uint64

	// Queued is the number of subscription changes deferred because a
	// dispatch was in progress.
	Queued uint64

	// MaxDepth is the deepest raise nesting observed.
	MaxDepth int
}

// identity returns the value used to collapse duplicate listeners, or nil when
// the listener value is not comparable (funcs, closures, structs holding them).
func identity(l any) any {
	if l == nil || !reflect.ValueOf(l).Comparable() {
		return nil
	}
	return l
}
