package event

// typeID is the interned identity of an event type.
type typeID struct {
	name       string
	persistent bool
}

// registry associates event types with the root of their filter tree.
// Roots are created on first use and live as long as the registry.
type registry struct {
	roots map[*typeID]*node
	order []*typeID
}

func newRegistry() registry {
	return registry{roots: make(map[*typeID]*node)}
}

// root returns the root node for t, creating it on first use.
func (r *registry) root(t *typeID) *node {
	n := r.roots[t]
	if n == nil {
		n = newNode(nil)
		r.roots[t] = n
		r.order = append(r.order, t)
	}
	return n
}

// lookup returns the root node for t without creating it.
func (r *registry) lookup(t *typeID) (*node, bool) {
	n, ok := r.roots[t]
	return n, ok
}

// clearAll drops the listeners of every non-persistent type and returns the
// number of listeners removed.
func (r *registry) clearAll() int {
	cleared := 0
	for _, t := range r.order {
		if t.persistent {
			continue
		}
		cleared += r.roots[t].clear()
	}
	return cleared
}

// count returns the number of listeners across all types.
func (r *registry) count() int {
	total := 0
	for _, n := range r.roots {
		total += n.count()
	}
	return total
}

// names returns the names of the known types in first-use order.
func (r *registry) names() []string {
	if len(r.order) == 0 {
		return nil
	}
	out := make([]string, len(r.order))
	for i, t := range r.order {
		out[i] = t.name
	}
	return out
}
