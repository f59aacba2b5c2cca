package scenario

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dshills/filterbus/internal/event/named"
)

// ErrInvalidScenario wraps every validation failure.
var ErrInvalidScenario = errors.New("invalid scenario")

// Validate reports every structural problem in s at once.
func (s *Scenario) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	names := make(map[string]bool, len(s.Subscriptions))
	for i, sub := range s.Subscriptions {
		switch {
		case sub.Name == "":
			add("subscription %d: missing name", i)
		case names[sub.Name]:
			add("subscription %d: duplicate name %q", i, sub.Name)
		}
		names[sub.Name] = true
		if sub.Event == "" {
			add("subscription %q: missing event", sub.Name)
		}
		for _, f := range sub.Where {
			if f.Param == "" {
				add("subscription %q: filter with empty parameter name", sub.Name)
			}
			if _, err := named.Value(f.Value); err != nil {
				add("subscription %q: filter %s: %w", sub.Name, f.Param, err)
			}
		}
	}

	for _, sub := range s.Subscriptions {
		for _, a := range sub.Actions {
			switch a.Op {
			case ActionSubscribe:
				if !names[a.Target] {
					add("subscription %q: subscribe to unknown subscription %q", sub.Name, a.Target)
				}
			case ActionRaise:
				if a.Index >= len(s.Raises) {
					add("subscription %q: raise index %d out of range", sub.Name, a.Index)
				}
			}
		}
	}

	for i, r := range s.Raises {
		if r.Event == "" {
			add("raise %d: missing event", i)
		}
		for _, k := range sortedKeys(r.Params) {
			if _, err := named.Value(r.Params[k]); err != nil {
				add("raise %d: parameter %s: %w", i, k, err)
			}
		}
		if r.Expect != nil {
			for _, name := range *r.Expect {
				if !names[name] {
					add("raise %d: expects unknown subscription %q", i, name)
				}
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidScenario, errors.Join(errs...))
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
