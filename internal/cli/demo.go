package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dshills/filterbus/internal/event"
	"github.com/dshills/filterbus/internal/event/events"
)

func newDemoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run a small combat simulation on the global bus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runDemo(cmd.OutOrStdout())
		},
	}
}

// runDemo wires typed listeners on the global bus and plays a fixed fight.
func (a *app) runDemo(out io.Writer) error {
	event.SetGlobal(a.newBus("bus"))
	defer event.ResetGlobal()
	bus := event.Global()

	hero := events.NewEntity("hero")
	goblin := events.NewEntity("goblin")
	troll := events.NewEntity("troll")
	health := map[*events.Entity]int{hero: 20, goblin: 10, troll: 30}

	events.SpawnedType.On(bus).ListenFunc(func(s *events.Spawned) {
		who, _ := events.Subject.Get(s)
		zone, _ := events.Zone.Get(s)
		fmt.Fprintf(out, "%s spawned in %s\n", who, zone)
	})

	events.HitType.On(bus).ListenFunc(func(h *events.Hit) {
		fmt.Fprintln(out, h)
		src, _ := events.Source.Get(h)
		dst, _ := events.Destination.Get(h)
		health[dst] -= h.Damage
		if health[dst] <= 0 {
			events.DiedType.Raise(bus, events.NewDied(dst, src))
		}
	})

	// Registered before the sword listener so its index is walked first.
	events.HitType.On(bus).
		Where(events.Destination.Is(troll)).
		ListenFunc(func(h *events.Hit) {
			fmt.Fprintln(out, "  the troll's hide turns the blow")
			h.StopPropagation()
		})

	events.HitType.On(bus).
		Where(events.Source.Is(hero)).
		Where(events.Weapon.Is("sword")).
		ListenFunc(func(*events.Hit) {
			fmt.Fprintln(out, "  the sword glows")
		})

	events.DiedType.On(bus).ListenFunc(func(d *events.Died) {
		who, _ := events.Subject.Get(d)
		if killer, ok := events.Source.Get(d); ok {
			fmt.Fprintf(out, "%s died, killed by %s\n", who, killer)
			return
		}
		fmt.Fprintf(out, "%s died\n", who)
	})

	events.SpawnedType.Raise(bus, events.NewSpawned(hero, "town"))
	events.SpawnedType.Raise(bus, events.NewSpawned(goblin, "cave"))
	events.SpawnedType.Raise(bus, events.NewSpawned(troll, "bridge"))

	events.HitType.Raise(bus, events.NewHit(hero, goblin, "sword", 7))
	events.HitType.Raise(bus, events.NewHit(hero, troll, "sword", 4))
	events.HitType.Raise(bus, events.NewHit(hero, goblin, "sword", 5))

	fmt.Fprintln(out, "-- level reset --")
	bus.ClearAll()
	events.HitType.Raise(bus, events.NewHit(hero, troll, "sword", 1))
	events.DiedType.Raise(bus, events.NewDied(troll, nil))

	s := bus.Stats()
	a.log.Debug().Int("listeners", s.Listeners).Int("max_depth", s.MaxDepth).Msg("demo finished")
	fmt.Fprintf(out, "\n%d raises, %d deliveries, %d stopped\n", s.Raises, s.Deliveries, s.Stopped)
	return nil
}
