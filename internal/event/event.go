package event

import "sort"

// Event is implemented by every raisable event. Embed Base in a struct and
// use a pointer to it:
//
//	type Hit struct {
//	    event.Base
//	    Damage int
//	}
type Event interface {
	base() *Base
}

// Base carries the filterable parameters of an event instance and its
// propagation flag. The zero value is ready to use.
type Base struct {
	params  map[Kind]any
	stopped bool
}

func (b *Base) base() *Base {
	return b
}

// Set records the condition's value under its kind, overwriting any previous
// value, and returns b so calls can be chained.
func (b *Base) Set(c Cond) *Base {
	mustKind(c.kind)
	if b.params == nil {
		b.params = make(map[Kind]any, 4)
	}
	b.params[c.kind] = c.value
	return b
}

// Unset removes the value stored for k.
func (b *Base) Unset(k Kind) *Base {
	delete(b.params, k)
	return b
}

// Lookup returns the raw value stored for k and whether it was set.
func (b *Base) Lookup(k Kind) (any, bool) {
	v, ok := b.params[k]
	return v, ok
}

// Has reports whether a value is set for k.
func (b *Base) Has(k Kind) bool {
	_, ok := b.params[k]
	return ok
}

// Params returns the event's parameters ordered by kind name.
func (b *Base) Params() []Cond {
	if len(b.params) == 0 {
		return nil
	}
	out := make([]Cond, 0, len(b.params))
	for k, v := range b.params {
		out = append(out, Cond{kind: k, value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].kind.Name() < out[j].kind.Name()
	})
	return out
}

// StopPropagation aborts the remainder of the walk the event is currently
// raised in. The flag stays set until ResetPropagation is called, so a
// retained event raised again without a reset reaches no listener.
func (b *Base) StopPropagation() {
	b.stopped = true
}

// ResetPropagation clears the stop flag.
func (b *Base) ResetPropagation() {
	b.stopped = false
}

// Stopped reports whether propagation was stopped.
func (b *Base) Stopped() bool {
	return b.stopped
}
