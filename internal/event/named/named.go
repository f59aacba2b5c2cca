// Package named exposes the event bus to callers that only know event types
// and parameter kinds by name, such as scenario files and scripts.
//
// A Registry interns one event.Type per event name and one event.Param per
// parameter name, so every lookup of "hit" or "weapon" resolves to the same
// tree and the same index. Parameter values are normalized by Value so that
// the same number read from YAML and from Lua is one filter value.
package named

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/dshills/filterbus/internal/event"
)

// ErrUnsupportedValue is returned for parameter values that cannot be used as
// filter keys.
var ErrUnsupportedValue = errors.New("unsupported parameter value")

// Event is a dynamically named event.
type Event struct {
	event.Base

	// Type is the event type name.
	Type string
}

// Registry interns event types and parameter kinds by name.
type Registry struct {
	types  map[string]event.Type[*Event]
	params map[string]event.Param[any]

	// persistent names types exempt from ClearAll.
	persistent map[string]bool
}

// NewRegistry creates an empty registry. Types listed in persistent are
// declared with event.Persistent when first used.
func NewRegistry(persistent ...string) *Registry {
	r := &Registry{
		types:      make(map[string]event.Type[*Event]),
		params:     make(map[string]event.Param[any]),
		persistent: make(map[string]bool, len(persistent)),
	}
	for _, name := range persistent {
		r.persistent[name] = true
	}
	return r
}

// Type returns the event type called name, declaring it on first use.
func (r *Registry) Type(name string) event.Type[*Event] {
	t, ok := r.types[name]
	if !ok {
		var opts []event.TypeOption
		if r.persistent[name] {
			opts = append(opts, event.Persistent())
		}
		t = event.NewType[*Event](name, opts...)
		r.types[name] = t
	}
	return t
}

// Param returns the parameter kind called name, declaring it on first use.
func (r *Registry) Param(name string) event.Param[any] {
	p, ok := r.params[name]
	if !ok {
		p = event.NewParam[any](name)
		r.params[name] = p
	}
	return p
}

// Cond builds a condition on the named parameter. The value is normalized.
func (r *Registry) Cond(name string, value any) (event.Cond, error) {
	v, err := Value(value)
	if err != nil {
		return event.Cond{}, fmt.Errorf("parameter %s: %w", name, err)
	}
	return r.Param(name).Is(v), nil
}

// New creates an event of the named type with the given parameters.
func (r *Registry) New(typeName string, params map[string]any) (*Event, error) {
	ev := &Event{Type: typeName}

	// Sorted so that the first bad parameter reported is deterministic.
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		c, err := r.Cond(name, params[name])
		if err != nil {
			return nil, err
		}
		ev.Set(c)
	}
	return ev, nil
}

// Get returns the named parameter of ev.
func (r *Registry) Get(ev *Event, name string) (any, bool) {
	p, ok := r.params[name]
	if !ok {
		return nil, false
	}
	return p.Get(ev)
}

// Types returns the declared type names, sorted.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.types))
	for name := range r.types {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Value normalizes a scalar into a comparable filter value. Integers of any
// width and integral floats become int64, other floats stay float64, strings
// and bools are kept. Anything else is rejected.
func Value(v any) (any, error) {
	switch x := v.(type) {
	case string, bool, int64:
		return x, nil
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint:
		return uintValue(uint64(x))
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		return uintValue(x)
	case float32:
		return floatValue(float64(x))
	case float64:
		return floatValue(x)
	case nil:
		return nil, fmt.Errorf("%w: nil", ErrUnsupportedValue)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

func uintValue(u uint64) (any, error) {
	if u > math.MaxInt64 {
		return nil, fmt.Errorf("%w: %d overflows int64", ErrUnsupportedValue, u)
	}
	return int64(u), nil
}

func floatValue(f float64) (any, error) {
	if math.IsNaN(f) {
		return nil, fmt.Errorf("%w: NaN never equals itself", ErrUnsupportedValue)
	}
	// float64(math.MaxInt64) is 2^63, one past the int64 range.
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return int64(f), nil
	}
	return f, nil
}
