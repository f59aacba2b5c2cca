package scenario

import (
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"github.com/dshills/filterbus/internal/event"
	"github.com/dshills/filterbus/internal/event/named"
)

// DefaultMaxNesting bounds how deep raise actions may nest.
const DefaultMaxNesting = 16

// ErrNestingLimit is returned when raise actions recurse past the limit.
var ErrNestingLimit = errors.New("raise nesting limit exceeded")

// Runner executes scenarios. Each run gets its own local bus, so runs never
// observe each other's subscriptions.
type Runner struct {
	log        zerolog.Logger
	busOpts    []event.Option
	maxNesting int
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the runner logger. The bus logger is set separately
// through WithBusOptions.
func WithLogger(l zerolog.Logger) RunnerOption {
	return func(r *Runner) {
		r.log = l
	}
}

// WithBusOptions appends options applied to every bus the runner creates.
func WithBusOptions(opts ...event.Option) RunnerOption {
	return func(r *Runner) {
		r.busOpts = append(r.busOpts, opts...)
	}
}

// WithMaxNesting overrides DefaultMaxNesting.
func WithMaxNesting(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.maxNesting = n
		}
	}
}

// NewRunner creates a runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		log:        zerolog.Nop(),
		maxNesting: DefaultMaxNesting,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes every non-trigger raise of s in order and checks its
// expectations. Mismatches are reported in the Report, not as an error; the
// error is reserved for scenarios that cannot run to completion.
func (r *Runner) Run(s *Scenario) (*Report, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	opts := append([]event.Option{event.WithName("scenario:" + s.Name)}, r.busOpts...)
	x := &execution{
		runner: r,
		s:      s,
		bus:    event.NewBus(opts...),
		reg:    named.NewRegistry(s.Persistent...),
	}
	return x.run()
}

// execution is the state of one Run.
type execution struct {
	runner  *Runner
	s       *Scenario
	bus     *event.Bus
	reg     *named.Registry
	handles map[string]*event.Handle

	current *Outcome
	nesting int
	err     error
}

func (x *execution) run() (*Report, error) {
	x.handles = make(map[string]*event.Handle, len(x.s.Subscriptions))
	for i := range x.s.Subscriptions {
		if x.s.Subscriptions[i].Deferred {
			continue
		}
		if err := x.subscribe(&x.s.Subscriptions[i]); err != nil {
			return nil, err
		}
	}

	report := &Report{Scenario: x.s.Name}
	for i, raise := range x.s.Raises {
		if raise.Trigger {
			continue
		}

		out := Outcome{Index: i, Event: raise.Event, Fired: []string{}}
		x.current = &out
		stopped, err := x.raise(i)
		x.current = nil
		if err != nil {
			return nil, err
		}
		out.Stopped = stopped
		out.Err = check(i, raise, out.Fired)
		report.Outcomes = append(report.Outcomes, out)

		x.runner.log.Debug().
			Str("scenario", x.s.Name).
			Int("raise", i).
			Str("event", raise.Event).
			Strs("fired", out.Fired).
			Bool("stopped", out.Stopped).
			Int("nested", len(out.Triggered)).
			Msg("raised")

		if x.err != nil {
			return nil, x.err
		}
	}
	report.Stats = x.bus.Stats()

	x.runner.log.Info().
		Str("scenario", x.s.Name).
		Int("raises", report.Raises()).
		Int("failed", report.Failed()).
		Msg("scenario complete")
	return report, nil
}

// subscribe adds sub unless it is already active.
func (x *execution) subscribe(sub *Subscription) error {
	if h, ok := x.handles[sub.Name]; ok && h.Active() {
		return nil
	}

	q := x.reg.Type(sub.Event).On(x.bus)
	for _, f := range sub.Where {
		c, err := x.reg.Cond(f.Param, f.Value)
		if err != nil {
			return fmt.Errorf("subscription %q: %w", sub.Name, err)
		}
		q = q.Where(c)
	}

	var h *event.Handle
	h = q.ListenFunc(func(e *named.Event) {
		x.fire(sub, h, e)
	})
	x.handles[sub.Name] = h
	return nil
}

func (x *execution) fire(sub *Subscription, h *event.Handle, e *named.Event) {
	if x.current != nil {
		x.current.Fired = append(x.current.Fired, sub.Name)
	}

	for _, a := range sub.Actions {
		switch a.Op {
		case ActionStop:
			e.StopPropagation()
		case ActionUnsubscribe:
			h.Unsubscribe()
		case ActionClear:
			x.bus.ClearAll()
		case ActionSubscribe:
			target, _ := x.s.Subscription(a.Target)
			if err := x.subscribe(target); err != nil && x.err == nil {
				x.err = err
			}
		case ActionRaise:
			x.nested(a.Index)
		}
	}
}

// nested runs a raise from inside a listener and records its outcome under
// the outcome of the raise that triggered it.
func (x *execution) nested(idx int) {
	if x.err != nil {
		return
	}
	if x.nesting >= x.runner.maxNesting {
		x.err = fmt.Errorf("%w: raise %d at depth %d", ErrNestingLimit, idx, x.nesting)
		return
	}

	x.nesting++
	parent := x.current
	out := Outcome{Index: idx, Event: x.s.Raises[idx].Event, Fired: []string{}}
	x.current = &out
	defer func() {
		x.nesting--
		x.current = parent
	}()

	stopped, err := x.raise(idx)
	if err != nil {
		if x.err == nil {
			x.err = err
		}
		return
	}
	out.Stopped = stopped
	out.Err = check(idx, x.s.Raises[idx], out.Fired)
	if parent != nil {
		parent.Triggered = append(parent.Triggered, out)
	}
}

// raise builds and raises the event of raise idx and reports whether its
// propagation was stopped.
func (x *execution) raise(idx int) (bool, error) {
	r := x.s.Raises[idx]
	ev, err := x.reg.New(r.Event, r.Params)
	if err != nil {
		return false, fmt.Errorf("raise %d: %w", idx, err)
	}
	x.reg.Type(r.Event).Raise(x.bus, ev)
	return ev.Stopped(), nil
}

// check compares fired against the expectation of raise idx.
func check(idx int, r Raise, fired []string) *ExpectationError {
	if r.Expect == nil {
		return nil
	}
	want := *r.Expect
	if want == nil {
		want = []string{}
	}

	var ok bool
	if r.Ordered {
		ok = slices.Equal(want, fired)
	} else {
		a, b := slices.Clone(want), slices.Clone(fired)
		slices.Sort(a)
		slices.Sort(b)
		ok = slices.Equal(a, b)
	}
	if ok {
		return nil
	}
	return &ExpectationError{
		Raise:   idx,
		Event:   r.Event,
		Want:    slices.Clone(want),
		Got:     slices.Clone(fired),
		Ordered: r.Ordered,
	}
}
