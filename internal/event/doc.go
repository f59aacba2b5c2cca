// Package event provides the filter-indexed event bus for filterbus.
//
// Producers raise typed events carrying named parameters; consumers subscribe
// to an event type, optionally narrowed by one or more parameter values, and
// are only called for events whose parameters match. The filtering happens in
// the bus, not in the listener.
//
// # Architecture
//
//	                 ┌────────────────────────────────────┐
//	                 │                Bus                  │
//	                 │  - type registry (root per type)    │
//	                 │  - dispatch depth + deferred ops    │
//	                 └────────────────────────────────────┘
//	                                  │
//	                                  ▼
//	                        root node (no filters)
//	                   listeners: [C]
//	                   indexes:  source ─┬─ w1 ─► node
//	                                     └─ w2 ─► node
//	                                             listeners: [B]
//	                                             indexes: destination ─ w2 ─► ...
//
// Each event type owns a tree of nodes. A node holds the listeners whose
// filters end there plus one index per parameter kind that narrower
// subscriptions used, mapping each value to a child node. Nodes are created
// lazily by Where and are never pruned.
//
// # Declaring Events
//
//	type Hit struct {
//	    event.Base
//	    Damage int
//	}
//
//	var (
//	    HitType = event.NewType[*Hit]("hit")
//	    Source  = event.NewParam[*Entity]("source")
//	    Weapon  = event.NewParam[string]("weapon")
//	)
//
// Parameter values must be comparable; this is checked at compile time.
//
// # Subscribing
//
//	bus := event.NewBus()
//
//	h := HitType.On(bus).
//	    Where(Source.Is(player)).
//	    Where(Weapon.Is("sword")).
//	    ListenFunc(func(hit *Hit) {
//	        fmt.Println("player hit with a sword")
//	    })
//	defer h.Unsubscribe()
//
// The order of Where calls does not change which events match, but it does
// select a different node: the same two filters chained in opposite orders are
// two independent subscriptions, and both fire.
//
// # Raising
//
//	hit := &Hit{Damage: 4}
//	hit.Set(Source.Is(player)).Set(Weapon.Is("axe"))
//	HitType.Raise(bus, hit)
//
// Raise walks the root's listeners in registration order, then every index in
// the order its kind was first used, descending into the child whose value
// equals the event's parameter. An event without a value for a kind never
// reaches listeners filtered on that kind.
//
// # Propagation
//
// A listener may call StopPropagation on the event; no further listener, at
// the same node or below, runs for that raise. The flag sticks to the event,
// so a retained event must be ResetPropagation'd before it is raised again.
//
// # Reentrancy
//
// Listeners may raise other events, subscribe and unsubscribe. Nested raises
// run to completion before the outer one continues. Subscription changes made
// while any raise is in progress on the bus are queued and applied, in order,
// when the outermost raise returns: a listener added during a raise does not
// see it, and a listener removed during a raise still runs if the walk has not
// reached it yet.
//
// # Buses
//
// Global returns the process-wide bus. NewBus creates isolated local buses;
// events raised on one bus never reach another. ClearAll removes every
// listener on a bus except those of types declared with Persistent.
//
// # Thread Safety
//
// Dispatch is synchronous and a Bus is not safe for concurrent use. Confine
// each bus to one goroutine.
package event
