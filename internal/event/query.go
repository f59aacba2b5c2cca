package event

import "fmt"

// Type is an interned event type. Declare one per event struct, typically as
// a package-level variable:
//
//	var HitType = event.NewType[*Hit]("hit")
type Type[E Event] struct {
	id *typeID
}

// NewType declares a new event type. Each call yields a distinct type.
func NewType[E Event](name string, opts ...TypeOption) Type[E] {
	id := &typeID{name: name}
	for _, opt := range opts {
		opt(id)
	}
	return Type[E]{id: id}
}

// Name returns the type name.
func (t Type[E]) Name() string {
	t.mustDeclared()
	return t.id.name
}

// Persistent reports whether the type is exempt from Bus.ClearAll.
func (t Type[E]) Persistent() bool {
	t.mustDeclared()
	return t.id.persistent
}

// On starts a subscription query for t on b.
func (t Type[E]) On(b *Bus) *Query[E] {
	t.mustDeclared()
	if b == nil {
		panic(ErrNilBus)
	}
	return &Query[E]{bus: b, typ: t.id, node: b.root(t.id)}
}

// Raise synchronously delivers e to every listener of t on b whose filters
// e satisfies. Listeners run in registration order, unconditional ones
// first, and the walk stops as soon as e's propagation is stopped.
//
// A panic in a listener propagates to the caller.
func (t Type[E]) Raise(b *Bus, e E) {
	t.mustDeclared()
	b.raise(t.id, e)
}

// Listeners returns the number of listeners registered for t on b.
func (t Type[E]) Listeners(b *Bus) int {
	t.mustDeclared()
	if b == nil {
		panic(ErrNilBus)
	}
	root, ok := b.lookup(t.id)
	if !ok {
		return 0
	}
	return root.count()
}

// Clear removes every listener of t on b, persistent or not.
func (t Type[E]) Clear(b *Bus) {
	t.mustDeclared()
	if b == nil {
		panic(ErrNilBus)
	}
	b.enqueue(func() {
		root, ok := b.lookup(t.id)
		if !ok {
			return
		}
		cleared := root.clear()
		b.log.Debug().Str("type", t.id.name).Int("listeners", cleared).Msg("cleared event type")
	})
}

func (t Type[E]) mustDeclared() {
	if t.id == nil {
		panic(ErrZeroType)
	}
}

// Query addresses one node of a type's filter tree. Queries are immutable:
// Where returns a new query, so a partially filtered query can be reused as
// the base of several subscriptions.
type Query[E Event] struct {
	bus  *Bus
	typ  *typeID
	node *node
}

// Where narrows the query to events whose parameter c.Kind equals c.Value.
//
// The index node is created on first use. Chaining the same conditions in a
// different order reaches a different node: both subscriptions match the
// same events but are independent of each other.
func (q *Query[E]) Where(c Cond) *Query[E] {
	return &Query[E]{bus: q.bus, typ: q.typ, node: q.node.where(c)}
}

// Conds returns the conditions that lead to the query's node.
func (q *Query[E]) Conds() []Cond {
	out := make([]Cond, len(q.node.path))
	copy(out, q.node.path)
	return out
}

// Listen subscribes l to the query's node. If l is a comparable value that is
// already subscribed there, the existing subscription is reused.
//
// During a dispatch on the bus the subscription is deferred until the
// outermost raise returns: l misses the current raise and receives the next.
func (q *Query[E]) Listen(l Listener[E]) *Handle {
	if l == nil {
		panic(fmt.Errorf("listen %s: %w", q.typ.name, ErrNilListener))
	}

	e := &entry{
		fn:  func(ev Event) { l.Handle(ev.(E)) },
		key: identity(l),
	}
	h := newHandle(q.bus, q.typ, q.node, e)

	queued := q.bus.enqueue(func() {
		h.entry = q.node.add(e)
		q.bus.log.Debug().
			Str("type", q.typ.name).
			Str("handle", h.id).
			Stringer("path", condPath(q.node.path)).
			Bool("reused", h.entry != e).
			Msg("listen")
	})
	if queued {
		q.bus.log.Debug().Str("type", q.typ.name).Str("handle", h.id).Msg("listen queued")
	}
	return h
}

// ListenFunc subscribes fn. Functions are not comparable, so subscribing the
// same function twice yields two subscriptions.
func (q *Query[E]) ListenFunc(fn func(E)) *Handle {
	if fn == nil {
		panic(fmt.Errorf("listen %s: %w", q.typ.name, ErrNilListener))
	}
	return q.Listen(ListenerFunc[E](fn))
}

// Listeners returns the number of listeners on the query's node, excluding
// narrower filters.
func (q *Query[E]) Listeners() int {
	return len(q.node.listeners)
}

// condPath renders a filter path for logs.
type condPath []Cond

func (p condPath) String() string {
	if len(p) == 0 {
		return "*"
	}
	s := ""
	for i, c := range p {
		if i > 0 {
			s += ","
		}
		s += c.String()
	}
	return s
}
