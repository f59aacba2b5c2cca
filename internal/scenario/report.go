package scenario

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dshills/filterbus/internal/event"
)

// Report is the result of one scenario run.
type Report struct {
	Scenario string
	Outcomes []Outcome
	Stats    event.Stats
}

// Outcome is the result of one raise.
type Outcome struct {
	Index int
	Event string

	// Fired lists the listener names this raise invoked in firing order.
	// Listeners reached by a nested raise are recorded in its own outcome.
	Fired []string

	// Stopped reports whether the raised event's propagation was stopped.
	Stopped bool

	// Triggered holds the outcomes of raise actions run by this raise's
	// listeners, in the order they ran.
	Triggered []Outcome

	// Err is set when Fired does not match the expectation.
	Err *ExpectationError
}

// Raises returns the number of raises run, nested ones included.
func (r *Report) Raises() int {
	n := 0
	walk(r.Outcomes, func(*Outcome, int) { n++ })
	return n
}

// Failed returns the number of outcomes, nested ones included, that missed
// their expectation.
func (r *Report) Failed() int {
	n := 0
	walk(r.Outcomes, func(o *Outcome, _ int) {
		if o.Err != nil {
			n++
		}
	})
	return n
}

// Err joins every expectation mismatch, or returns nil.
func (r *Report) Err() error {
	var errs []error
	walk(r.Outcomes, func(o *Outcome, _ int) {
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
	})
	return errors.Join(errs...)
}

// walk visits outcomes depth first with their nesting depth.
func walk(outcomes []Outcome, fn func(o *Outcome, depth int)) {
	var visit func(list []Outcome, depth int)
	visit = func(list []Outcome, depth int) {
		for i := range list {
			fn(&list[i], depth)
			visit(list[i].Triggered, depth+1)
		}
	}
	visit(outcomes, 0)
}

// Write prints a human readable summary.
func (r *Report) Write(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario %s: %d raises, %d failed\n", r.Scenario, r.Raises(), r.Failed())
	walk(r.Outcomes, func(o *Outcome, depth int) {
		status := "ok"
		if o.Err != nil {
			status = "FAIL"
		}
		indent := strings.Repeat("  ", depth)
		fmt.Fprintf(&b, "  %s%-4s [%d] %s fired: %s", indent, status, o.Index, o.Event, names(o.Fired))
		if o.Stopped {
			b.WriteString(" (stopped)")
		}
		b.WriteByte('\n')
		if o.Err != nil {
			fmt.Fprintf(&b, "       %s%s\n", indent, o.Err)
		}
	})
	fmt.Fprintf(&b, "  deliveries: %d, listeners left: %d\n", r.Stats.Deliveries, r.Stats.Listeners)

	_, err := io.WriteString(w, b.String())
	return err
}

// ExpectationError describes a raise whose fired listeners differ from the
// expected ones.
type ExpectationError struct {
	Raise   int
	Event   string
	Want    []string
	Got     []string
	Ordered bool
}

func (e *ExpectationError) Error() string {
	order := ""
	if e.Ordered {
		order = " in order"
	}
	return fmt.Sprintf("raise %d (%s): expected %s%s, fired %s", e.Raise, e.Event, names(e.Want), order, names(e.Got))
}

func names(s []string) string {
	if len(s) == 0 {
		return "none"
	}
	return strings.Join(s, ", ")
}
