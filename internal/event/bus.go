package event

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Bus is an isolated registry of per-type filter trees. Raising on one bus
// never reaches listeners of another.
//
// A Bus is not safe for concurrent use. Listeners re-enter the bus (raise,
// listen, unsubscribe) on the raising goroutine, so all operations on a bus
// must be confined to a single goroutine.
type Bus struct {
	registry

	name  string
	log   zerolog.Logger
	trace bool
	depth int
	queue []func()
	stats Stats
}

// NewBus creates a new local bus.
func NewBus(opts ...Option) *Bus {
	config := defaultBusConfig()
	for _, opt := range opts {
		opt(&config)
	}

	return &Bus{
		registry: newRegistry(),
		name:     config.name,
		log:      config.logger.With().Str("bus", config.name).Logger(),
		trace:    config.trace,
	}
}

var (
	globalMu  sync.Mutex
	globalBus *Bus
)

// Global returns the process-wide bus, creating it on first use.
func Global() *Bus {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalBus == nil {
		globalBus = NewBus(WithName("global"))
	}
	return globalBus
}

// SetGlobal replaces the process-wide bus, e.g. to install one built with a
// logger. Passing nil makes the next Global call create a fresh bus.
func SetGlobal(b *Bus) {
	globalMu.Lock()
	defer globalMu.Unlock()

	globalBus = b
}

// ResetGlobal discards the process-wide bus (for testing).
func ResetGlobal() {
	SetGlobal(nil)
}

// Name returns the bus name.
func (b *Bus) Name() string {
	return b.name
}

// Dispatching reports whether a raise is in progress on this bus.
func (b *Bus) Dispatching() bool {
	return b.depth > 0
}

// Types returns the names of the event types seen by the bus.
func (b *Bus) Types() []string {
	return b.names()
}

// ClearAll removes every listener of every event type except those declared
// Persistent. Called during a dispatch, the clear is deferred like any other
// subscription change.
func (b *Bus) ClearAll() {
	b.enqueue(func() {
		cleared := b.clearAll()
		b.log.Debug().Int("listeners", cleared).Msg("cleared all event types")
	})
}

// Stats returns current bus statistics.
func (b *Bus) Stats() Stats {
	s := b.stats
	s.Types = len(b.order)
	s.Listeners = b.count()
	return s
}

// enqueue runs op now, or after the outermost raise returns if a dispatch is
// in progress. It reports whether op was deferred.
func (b *Bus) enqueue(op func()) bool {
	if b.depth == 0 {
		op()
		return false
	}
	b.queue = append(b.queue, op)
	b.stats.Queued++
	return true
}

// flush applies deferred operations in FIFO order.
func (b *Bus) flush() {
	if len(b.queue) == 0 {
		return
	}
	applied := 0
	for len(b.queue) > 0 {
		ops := b.queue
		b.queue = nil
		for _, op := range ops {
			op()
			applied++
		}
	}
	b.log.Debug().Int("ops", applied).Msg("applied deferred subscription changes")
}

// raise runs one dispatch of e through the tree of t.
func (b *Bus) raise(t *typeID, e Event) {
	if b == nil {
		panic(ErrNilBus)
	}
	if t == nil {
		panic(ErrZeroType)
	}
	if e == nil {
		panic(fmt.Errorf("raise %s: nil event", t.name))
	}

	b.stats.Raises++
	root, ok := b.lookup(t)
	if !ok {
		if b.trace {
			b.log.Debug().Str("type", t.name).Msg("raise: no listeners")
		}
		return
	}

	b.depth++
	if b.depth > b.stats.MaxDepth {
		b.stats.MaxDepth = b.depth
	}
	defer b.leave()

	w := &walk{event: e, base: e.base()}
	stopped := root.raise(w)
	b.stats.Deliveries += uint64(w.invoked)
	if stopped {
		b.stats.Stopped++
	}

	if b.trace {
		b.log.Debug().
			Str("type", t.name).
			Int("depth", b.depth).
			Int("nodes", w.visited).
			Int("listeners", w.invoked).
			Bool("stopped", stopped).
			Msg("raise")
	}
}

// leave ends one raise. It also runs while a listener panic unwinds, so the
// bus stays usable after the panic reaches the raiser.
func (b *Bus) leave() {
	b.depth--
	if b.depth == 0 {
		b.flush()
	}
}
