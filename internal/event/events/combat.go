package events

import (
	"fmt"

	"github.com/dshills/filterbus/internal/event"
)

// Entity is something that takes part in events. Entities are compared by
// pointer, so two entities with the same name are still distinct filter
// values.
type Entity struct {
	Name string
}

// NewEntity creates a named entity.
func NewEntity(name string) *Entity {
	return &Entity{Name: name}
}

// String implements fmt.Stringer.
func (e *Entity) String() string {
	if e == nil {
		return "<nil>"
	}
	return e.Name
}

// Parameter kinds.
var (
	// Source is the entity that caused the event.
	Source = event.NewParam[*Entity]("source")

	// Destination is the entity the event is aimed at.
	Destination = event.NewParam[*Entity]("destination")

	// Weapon names the weapon used in a Hit.
	Weapon = event.NewParam[string]("weapon")

	// Subject is the entity an event is about.
	Subject = event.NewParam[*Entity]("subject")

	// Zone names the area an entity spawned in.
	Zone = event.NewParam[string]("zone")
)

// Event types.
var (
	// HitType is raised when an attack lands.
	HitType = event.NewType[*Hit]("hit")

	// SpawnedType is raised when an entity enters a zone.
	SpawnedType = event.NewType[*Spawned]("spawned")

	// DiedType is raised when an entity is removed. It survives Bus.ClearAll
	// so bookkeeping listeners stay attached across level resets.
	DiedType = event.NewType[*Died]("died", event.Persistent())
)

// Hit is an attack landing on an entity.
type Hit struct {
	event.Base

	// Damage is the amount of damage dealt.
	Damage int
}

// NewHit creates a Hit with its filterable parameters set.
func NewHit(source, destination *Entity, weapon string, damage int) *Hit {
	h := &Hit{Damage: damage}
	h.Set(Source.Is(source)).
		Set(Destination.Is(destination)).
		Set(Weapon.Is(weapon))
	return h
}

// String implements fmt.Stringer.
func (h *Hit) String() string {
	src, _ := Source.Get(h)
	dst, _ := Destination.Get(h)
	weapon, _ := Weapon.Get(h)
	return fmt.Sprintf("%s hit %s with %s for %d", src, dst, weapon, h.Damage)
}

// Spawned is an entity entering a zone.
type Spawned struct {
	event.Base
}

// NewSpawned creates a Spawned event.
func NewSpawned(subject *Entity, zone string) *Spawned {
	s := &Spawned{}
	s.Set(Subject.Is(subject)).Set(Zone.Is(zone))
	return s
}

// Died is an entity being removed, optionally by a killer.
type Died struct {
	event.Base
}

// NewDied creates a Died event. A nil killer leaves Source unset.
func NewDied(subject, killer *Entity) *Died {
	d := &Died{}
	d.Set(Subject.Is(subject))
	if killer != nil {
		d.Set(Source.Is(killer))
	}
	return d
}
