// Package events defines strongly-typed events and parameter kinds for the
// filterbus event bus.
//
// Each event has a Type variable and a struct embedding event.Base. Parameter
// kinds are declared once and shared between events that carry the same
// dimension:
//
//   - Hit: an attack landing (Source, Destination, Weapon)
//   - Spawned: an entity entering a zone (Subject, Zone)
//   - Died: an entity being removed (Subject, Source)
//
// # Usage
//
//	import (
//	    "github.com/dshills/filterbus/internal/event"
//	    "github.com/dshills/filterbus/internal/event/events"
//	)
//
//	events.HitType.On(bus).
//	    Where(events.Weapon.Is("sword")).
//	    ListenFunc(func(h *events.Hit) { ... })
//
//	events.HitType.Raise(bus, events.NewHit(attacker, target, "axe", 3))
package events
