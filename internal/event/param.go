package event

import (
	"fmt"
	"reflect"
)

// kindID is the interned identity behind a Kind. Two kinds are the same
// dimension only if they share the same *kindID.
type kindID struct {
	name string
}

// Kind identifies one filterable dimension of an event, such as "source" or
// "weapon". The zero Kind is invalid.
type Kind struct {
	id *kindID
}

// Name returns the name the kind was declared with.
func (k Kind) Name() string {
	if k.id == nil {
		return ""
	}
	return k.id.name
}

// IsZero reports whether k was not created by NewParam.
func (k Kind) IsZero() bool {
	return k.id == nil
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if k.id == nil {
		return "<zero kind>"
	}
	return k.id.name
}

// Param is a typed parameter kind. Values must be comparable because they are
// used as keys of the filter index. For interface types such as Param[any],
// Is panics with ErrUncomparableValue when the dynamic value is not.
type Param[V comparable] struct {
	kind Kind
}

// NewParam declares a new parameter kind. Each call yields a distinct kind,
// even when names collide.
func NewParam[V comparable](name string) Param[V] {
	return Param[V]{kind: Kind{id: &kindID{name: name}}}
}

// Kind returns the untyped kind identifier.
func (p Param[V]) Kind() Kind {
	return p.kind
}

// Name returns the parameter name.
func (p Param[V]) Name() string {
	return p.kind.Name()
}

// Is binds a value to the parameter. The result is accepted both by
// Query.Where and Base.Set.
func (p Param[V]) Is(v V) Cond {
	mustComparable(p.kind, v)
	return Cond{kind: p.kind, value: v}
}

// Get returns the value the event carries for p. The boolean is false when the
// parameter was never set, which keeps zero values such as 0 or false
// distinguishable from "unset".
func (p Param[V]) Get(e Event) (V, bool) {
	var zero V
	if e == nil {
		return zero, false
	}
	raw, ok := e.base().Lookup(p.kind)
	if !ok {
		return zero, false
	}
	v, ok := raw.(V)
	if !ok {
		return zero, false
	}
	return v, true
}

// Cond is a (kind, value) pair.
type Cond struct {
	kind  Kind
	value any
}

// Kind returns the condition's parameter kind.
func (c Cond) Kind() Kind {
	return c.kind
}

// Value returns the bound value.
func (c Cond) Value() any {
	return c.value
}

// String implements fmt.Stringer.
func (c Cond) String() string {
	return fmt.Sprintf("%s=%v", c.kind, c.value)
}

func mustKind(k Kind) {
	if k.IsZero() {
		panic(fmt.Errorf("%w: use NewParam to declare parameter kinds", ErrZeroKind))
	}
}

func mustComparable(k Kind, v any) {
	if v != nil && !reflect.ValueOf(v).Comparable() {
		panic(fmt.Errorf("%w: %s=%T", ErrUncomparableValue, k, v))
	}
}
