package scenario

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_Hit(t *testing.T) {
	s, err := LoadFile("testdata/hit.yaml")
	require.NoError(t, err)

	assert.Equal(t, "hit", s.Name)
	require.Len(t, s.Subscriptions, 3)
	require.Len(t, s.Raises, 2)

	a := s.Subscriptions[0]
	assert.Equal(t, []Filter{
		{Param: "source", Value: "w1"},
		{Param: "destination", Value: "w2"},
		{Param: "weapon", Value: "sword"},
	}, a.Where)

	require.NotNil(t, s.Raises[0].Expect)
	assert.Equal(t, []string{"B", "C"}, *s.Raises[0].Expect)
	assert.False(t, s.Raises[0].Ordered)
	assert.True(t, s.Raises[1].Ordered)
}

func TestLoadFile_NameFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unnamed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("subscriptions: []\nraises: []\n"), 0o644))

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "unnamed", s.Name)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParse_Actions(t *testing.T) {
	s, err := Parse([]byte(`
subscriptions:
  - name: a
    event: hit
    actions: [stop, unsubscribe, clear, "subscribe:b", "raise:0"]
  - name: b
    event: hit
    deferred: true
raises:
  - event: hit
    trigger: true
`))
	require.NoError(t, err)

	assert.Equal(t, []Action{
		{Op: ActionStop},
		{Op: ActionUnsubscribe},
		{Op: ActionClear},
		{Op: ActionSubscribe, Target: "b"},
		{Op: ActionRaise, Index: 0},
	}, s.Subscriptions[0].Actions)
	assert.True(t, s.Subscriptions[1].Deferred)
	assert.True(t, s.Raises[0].Trigger)
	assert.Nil(t, s.Raises[0].Expect)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"empty", "", "empty document"},
		{"unknown field", "nmae: x\n", "nmae"},
		{"two-key filter", "subscriptions:\n  - {name: a, event: e, where: [{x: 1, y: 2}]}\n", "single-key map"},
		{"nested filter value", "subscriptions:\n  - {name: a, event: e, where: [{x: [1]}]}\n", "must be a scalar"},
		{"bad action", "subscriptions:\n  - {name: a, event: e, actions: [explode]}\n", "unknown action"},
		{"bad raise index", "subscriptions:\n  - {name: a, event: e, actions: [\"raise:x\"]}\n", "needs a raise index"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		in      string
		want    Action
		wantErr bool
	}{
		{"stop", Action{Op: ActionStop}, false},
		{" unsubscribe ", Action{Op: ActionUnsubscribe}, false},
		{"clear", Action{Op: ActionClear}, false},
		{"subscribe:late", Action{Op: ActionSubscribe, Target: "late"}, false},
		{"raise:3", Action{Op: ActionRaise, Index: 3}, false},
		{"stop:now", Action{}, true},
		{"subscribe", Action{}, true},
		{"raise:-1", Action{}, true},
		{"jump", Action{}, true},
	}

	for _, tt := range tests {
		got, err := ParseAction(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, strings.TrimSpace(tt.in), got.String())
	}
}

func TestFilter_String(t *testing.T) {
	assert.Equal(t, "weapon=sword", Filter{Param: "weapon", Value: "sword"}.String())
}
