// Package scenario loads YAML scenario files and runs them against a fresh
// local bus.
//
// A scenario declares named subscriptions (an event type, an ordered list of
// filters and the actions to take when fired) and a list of raises with the
// listener names each one is expected to reach:
//
//	name: hit
//	subscriptions:
//	  - name: A
//	    event: hit
//	    where: [{source: w1}, {destination: w2}, {weapon: sword}]
//	    actions: [stop]
//	raises:
//	  - event: hit
//	    params: {source: w1, destination: w2, weapon: sword}
//	    expect: [A]
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario is a parsed scenario file.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	// Persistent lists event types that survive a clear action.
	Persistent []string `yaml:"persistent,omitempty"`

	Subscriptions []Subscription `yaml:"subscriptions"`
	Raises        []Raise        `yaml:"raises"`
}

// Subscription is one named listener.
type Subscription struct {
	Name    string   `yaml:"name"`
	Event   string   `yaml:"event"`
	Where   []Filter `yaml:"where,omitempty"`
	Actions []Action `yaml:"actions,omitempty"`

	// Deferred subscriptions are only added by a subscribe action.
	Deferred bool `yaml:"deferred,omitempty"`
}

// Raise is one raised event and its expected listeners.
type Raise struct {
	Event  string         `yaml:"event"`
	Params map[string]any `yaml:"params,omitempty"`

	// Expect lists the listener names that must fire. Nil skips the check;
	// an empty list asserts that nothing fires.
	Expect *[]string `yaml:"expect,omitempty"`

	// Ordered compares Expect in firing order instead of as a set.
	Ordered bool `yaml:"ordered,omitempty"`

	// Trigger raises only run from a raise action.
	Trigger bool `yaml:"trigger,omitempty"`
}

// Filter is a single parameter condition, written as a one-key map.
type Filter struct {
	Param string
	Value any
}

// UnmarshalYAML decodes {param: value}.
func (f *Filter) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return fmt.Errorf("line %d: filter must be a single-key map", n.Line)
	}
	key, val := n.Content[0], n.Content[1]
	if val.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: filter %s: value must be a scalar", val.Line, key.Value)
	}
	var v any
	if err := val.Decode(&v); err != nil {
		return fmt.Errorf("line %d: filter %s: %w", val.Line, key.Value, err)
	}
	f.Param = key.Value
	f.Value = v
	return nil
}

// MarshalYAML encodes the filter back into its one-key form.
func (f Filter) MarshalYAML() (any, error) {
	return map[string]any{f.Param: f.Value}, nil
}

func (f Filter) String() string {
	return fmt.Sprintf("%s=%v", f.Param, f.Value)
}

// ActionOp is the kind of an action.
type ActionOp string

// Actions a fired subscription can take.
const (
	ActionStop        ActionOp = "stop"
	ActionUnsubscribe ActionOp = "unsubscribe"
	ActionSubscribe   ActionOp = "subscribe"
	ActionRaise       ActionOp = "raise"
	ActionClear       ActionOp = "clear"
)

// Action is run when its subscription fires.
type Action struct {
	Op ActionOp

	// Target is the subscription name for subscribe.
	Target string

	// Index is the zero-based raise index for raise.
	Index int
}

// ParseAction parses "stop", "unsubscribe", "clear", "subscribe:<name>" or
// "raise:<index>".
func ParseAction(s string) (Action, error) {
	op, arg, hasArg := strings.Cut(strings.TrimSpace(s), ":")
	switch ActionOp(op) {
	case ActionStop, ActionUnsubscribe, ActionClear:
		if hasArg {
			return Action{}, fmt.Errorf("action %q takes no argument", op)
		}
		return Action{Op: ActionOp(op)}, nil
	case ActionSubscribe:
		if arg == "" {
			return Action{}, fmt.Errorf("action %q needs a subscription name", s)
		}
		return Action{Op: ActionSubscribe, Target: arg}, nil
	case ActionRaise:
		idx, err := strconv.Atoi(arg)
		if err != nil || idx < 0 {
			return Action{}, fmt.Errorf("action %q needs a raise index", s)
		}
		return Action{Op: ActionRaise, Index: idx}, nil
	default:
		return Action{}, fmt.Errorf("unknown action %q", s)
	}
}

// UnmarshalYAML decodes an action string.
func (a *Action) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: action must be a string", n.Line)
	}
	parsed, err := ParseAction(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*a = parsed
	return nil
}

// MarshalYAML encodes the action as a string.
func (a Action) MarshalYAML() (any, error) {
	return a.String(), nil
}

func (a Action) String() string {
	switch a.Op {
	case ActionSubscribe:
		return string(a.Op) + ":" + a.Target
	case ActionRaise:
		return string(a.Op) + ":" + strconv.Itoa(a.Index)
	default:
		return string(a.Op)
	}
}

// Parse decodes and validates a scenario. Unknown keys are rejected.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidScenario)
		}
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadFile reads and parses a scenario file. A scenario without a name is
// named after the file.
func LoadFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// Subscription returns the subscription called name.
func (s *Scenario) Subscription(name string) (*Subscription, bool) {
	for i := range s.Subscriptions {
		if s.Subscriptions[i].Name == name {
			return &s.Subscriptions[i], true
		}
	}
	return nil, false
}
