package event

// node is one position in an event type's filter tree. The root holds
// unconditional listeners; each child is reached through one (kind, value)
// condition more than its parent.
//
// Nodes are created on first use and never pruned. Unsubscribing shrinks the
// listener list but leaves the index structure in place.
type node struct {
	// path is the chain of conditions leading to this node.
	path []Cond

	// listeners is replaced, never mutated in place, so a walk that captured
	// the slice keeps a stable view.
	listeners []*entry

	// indexes are kept in the order their kinds were first used.
	indexes []*index
	byKind  map[Kind]*index
}

// index maps the values of one kind to child nodes.
type index struct {
	kind     Kind
	children map[any]*node
}

// entry is one registered listener.
type entry struct {
	fn  func(Event)
	key any // comparable listener identity, nil if not comparable

	// removed is set once the entry leaves its node through Unsubscribe or a
	// clear.
	removed bool
}

func newNode(path []Cond) *node {
	return &node{path: path}
}

// where returns the child for c, creating the index and child on first use.
func (n *node) where(c Cond) *node {
	mustKind(c.kind)

	idx := n.byKind[c.kind]
	if idx == nil {
		if n.byKind == nil {
			n.byKind = make(map[Kind]*index)
		}
		idx = &index{kind: c.kind, children: make(map[any]*node)}
		n.byKind[c.kind] = idx
		n.indexes = append(n.indexes, idx)
	}

	child := idx.children[c.value]
	if child == nil {
		path := make([]Cond, len(n.path), len(n.path)+1)
		copy(path, n.path)
		child = newNode(append(path, c))
		idx.children[c.value] = child
	}
	return child
}

// add appends e unless a live entry with the same identity is already
// registered, in which case that entry is returned instead.
func (n *node) add(e *entry) *entry {
	if e.key != nil {
		for _, existing := range n.listeners {
			if existing.key == e.key {
				return existing
			}
		}
	}
	listeners := make([]*entry, len(n.listeners), len(n.listeners)+1)
	copy(listeners, n.listeners)
	n.listeners = append(listeners, e)
	return e
}

// remove drops e from the node. It returns false if e was not registered.
func (n *node) remove(e *entry) bool {
	for i, existing := range n.listeners {
		if existing != e {
			continue
		}
		listeners := make([]*entry, 0, len(n.listeners)-1)
		listeners = append(listeners, n.listeners[:i]...)
		n.listeners = append(listeners, n.listeners[i+1:]...)
		e.removed = true
		return true
	}
	return false
}

// clear drops every listener in the subtree. Index structure is kept.
func (n *node) clear() int {
	cleared := len(n.listeners)
	for _, e := range n.listeners {
		e.removed = true
	}
	n.listeners = nil
	for _, idx := range n.indexes {
		for _, child := range idx.children {
			cleared += child.clear()
		}
	}
	return cleared
}

// count returns the number of listeners in the subtree.
func (n *node) count() int {
	total := len(n.listeners)
	for _, idx := range n.indexes {
		for _, child := range idx.children {
			total += child.count()
		}
	}
	return total
}

// walk carries the state of one raise through the tree.
type walk struct {
	event   Event
	base    *Base
	visited int
	invoked int
}

// raise delivers w.event to this node and every descendant whose path the
// event's parameters satisfy. It returns true if propagation was stopped.
func (n *node) raise(w *walk) bool {
	if w.base.stopped {
		return true
	}
	w.visited++

	listeners := n.listeners
	for _, e := range listeners {
		e.fn(w.event)
		w.invoked++
		if w.base.stopped {
			return true
		}
	}

	indexes := n.indexes
	for _, idx := range indexes {
		v, ok := w.base.params[idx.kind]
		if !ok {
			continue
		}
		child, ok := idx.children[v]
		if !ok {
			continue
		}
		if child.raise(w) {
			return true
		}
	}
	return false
}
