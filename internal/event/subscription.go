package event

import "github.com/google/uuid"

// Handle is returned by Listen. Its only capability is to end the
// subscription it was issued for.
type Handle struct {
	id    string
	bus   *Bus
	typ   *typeID
	node  *node
	entry *entry
	done  bool
}

func newHandle(b *Bus, t *typeID, n *node, e *entry) *Handle {
	return &Handle{
		id:    uuid.NewString(),
		bus:   b,
		typ:   t,
		node:  n,
		entry: e,
	}
}

// ID returns a unique identifier for the handle, used in logs.
func (h *Handle) ID() string {
	return h.id
}

// Active reports whether the subscription has been neither unsubscribed nor
// cleared. A subscription queued during a dispatch is active.
func (h *Handle) Active() bool {
	return h != nil && !h.done && !h.entry.removed
}

// Unsubscribe removes the listener. During a dispatch the removal is deferred
// until the outermost raise returns, so the in-flight walk is unaffected.
// Calling Unsubscribe more than once is a no-op.
func (h *Handle) Unsubscribe() {
	if h == nil || h.done {
		return
	}
	h.done = true

	queued := h.bus.enqueue(func() {
		removed := h.node.remove(h.entry)
		h.bus.log.Debug().
			Str("type", h.typ.name).
			Str("handle", h.id).
			Bool("removed", removed).
			Msg("unsubscribe")
	})
	if queued {
		h.bus.log.Debug().Str("type", h.typ.name).Str("handle", h.id).Msg("unsubscribe queued")
	}
}
