package script

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nullreff/redpile/internal/testutil"
	"github.com/nullreff/redpile/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wireScript = `
Redpile.behavior("power", {0}, function(node, messages)
  if #messages == 0 then return false end
  local max = 0
  for _, m in ipairs(messages) do
    if m.value > max then max = m.value end
  end
  if max ~= node.power then
    Redpile.set("power", max)
  end
  return false
end)

Redpile.behavior("forward", nil, function(node, messages)
  if node.power > 1 then
    Redpile.send(node.facing, 0, node.power - 1)
  end
  return true
end)

Redpile.type("AIR", {}, {})
Redpile.type("WIRE", {{"power", INTEGER}, {"facing", DIRECTION}}, {"power", "forward"})
`

func load(t *testing.T, body string) (*State, *sim.TypeData) {
	t.Helper()
	s := New()
	td, err := s.Load(testutil.WriteScript(t, body))
	require.NoError(t, err)
	return s, td
}

func TestLoad_DefinesTypesAndBehaviors(t *testing.T) {
	// GIVEN a script defining two behaviors and two types
	_, td := load(t, wireScript)

	// THEN the first type is the default and fields keep their kinds
	assert.Equal(t, "AIR", td.Default.Name)
	wire := td.FindType("WIRE")
	require.NotNil(t, wire)
	assert.Equal(t, []sim.Field{
		{Name: "power", Kind: sim.FieldInteger},
		{Name: "facing", Kind: sim.FieldDirection},
	}, wire.Fields)
	require.Len(t, wire.Behaviors, 2)
	assert.Equal(t, uint32(1), wire.Behaviors[0].Mask)
	assert.Equal(t, uint32(0), wire.Behaviors[1].Mask)
}

func TestLoad_DefaultFlag(t *testing.T) {
	_, td := load(t, `
Redpile.type("STONE", {}, {})
Redpile.type("AIR", {}, {}, true)
`)
	assert.Equal(t, "AIR", td.Default.Name)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name   string
		script string
		substr string
	}{
		{"no types", `local x = 1`, "script defines no types"},
		{"syntax error", `Redpile.type(`, "load "},
		{"unknown behavior", `Redpile.type("A", {}, {"missing"})`, "unknown behavior 'missing'"},
		{"unknown kind", `Redpile.type("A", {{"f", "FLOAT"}}, {})`, "'FLOAT' is not a field kind"},
		{"duplicate type", `Redpile.type("A") Redpile.type("A")`, "type 'A' already defined"},
		{"bad message kind", `Redpile.behavior("b", {40}, function() end)`, "message kind must be between 0 and 31"},
		{"send outside behavior", `Redpile.send("NORTH", 0, 1)`, "Redpile.send can only be called from a behavior"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New().Load(testutil.WriteScript(t, tc.script))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.substr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := New().Load(filepath.Join(t.TempDir(), "nope.lua"))
	assert.Error(t, err)
}

func TestLoad_Twice(t *testing.T) {
	s, _ := load(t, wireScript)
	_, err := s.Load(testutil.WriteScript(t, wireScript))
	assert.ErrorIs(t, err, ErrAlreadyLoaded)
}

func TestRunBehavior_SignalPropagates(t *testing.T) {
	// GIVEN a line of three wires facing east, the first one powered
	s, td := load(t, wireScript)
	w, err := sim.New(16, td)
	require.NoError(t, err)
	wire := td.FindType("WIRE")
	for x := int32(0); x < 3; x++ {
		n, err := w.Set(sim.NewLocation(x, 0, 0), wire)
		require.NoError(t, err)
		require.NoError(t, n.SetField("facing", int32(sim.East)))
	}
	require.NoError(t, w.Get(sim.NewLocation(0, 0, 0)).SetField("power", 15))

	// WHEN the world ticks with the script as runner
	require.NoError(t, w.Tick(context.Background(), 4, s, nil))

	// THEN power decays by one per wire, one wire every two ticks
	second, _ := w.Get(sim.NewLocation(1, 0, 0)).Field("power")
	third, _ := w.Get(sim.NewLocation(2, 0, 0)).Field("power")
	assert.Equal(t, int32(14), second)
	assert.Equal(t, int32(13), third)
}

func TestRunBehavior_MessageFields(t *testing.T) {
	s, td := load(t, `
Redpile.behavior("check", nil, function(node, messages)
  local m = messages[1]
  if m and m.direction == "WEST" and m.source == "0,0,0" and m.kind == 3 then
    Redpile.set("seen", 1)
  end
  return true
end)
Redpile.type("WATCHER", {{"seen", INTEGER}}, {"check"})
`)
	w, err := sim.New(8, td)
	require.NoError(t, err)
	watcher, err := w.Set(sim.NewLocation(1, 0, 0), td.Default)
	require.NoError(t, err)

	call := &sim.Call{Node: watcher, Messages: []sim.Message{{
		Source: sim.NewLocation(0, 0, 0),
		Target: watcher.Location,
		Kind:   3,
		Value:  1,
	}}}
	handled, err := s.RunBehavior(td.FindBehavior("check"), call)
	require.NoError(t, err)
	assert.True(t, handled)

	// the assignment is deferred until the world applies it
	v, _ := watcher.Field("seen")
	assert.Equal(t, int32(0), v)
}

func TestRunBehavior_RuntimeError(t *testing.T) {
	s, td := load(t, `
Redpile.behavior("bad", nil, function(node) Redpile.set("missing", 1) end)
Redpile.type("A", {}, {"bad"})
`)
	w, err := sim.New(8, td)
	require.NoError(t, err)
	_, err = w.Set(sim.NewLocation(0, 0, 0), td.Default)
	require.NoError(t, err)

	err = w.Tick(context.Background(), 1, s, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "The type 'A' doesn't have the field 'missing'")
}

func TestRunBehavior_SetRejectsOutOfRangeDirection(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"256", "'256' is not a direction"},
		{"-250", "'-250' is not a direction"},
		{"4294967296", "value out of range"},
	}
	for _, tc := range tests {
		t.Run(tc.value, func(t *testing.T) {
			// GIVEN a behavior assigning a raw number to a direction field
			s, td := load(t, `
Redpile.behavior("turn", nil, function(node) Redpile.set("facing", `+tc.value+`) return true end)
Redpile.type("T", {{"facing", DIRECTION}}, {"turn"})
`)
			w, err := sim.New(8, td)
			require.NoError(t, err)
			n, err := w.Set(sim.NewLocation(0, 0, 0), td.Default)
			require.NoError(t, err)

			// WHEN the world ticks
			err = w.Tick(context.Background(), 1, s, nil)

			// THEN the tick fails and the node still faces north
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
			assert.Equal(t, "(0,0,0) T facing:NORTH", n.String())
		})
	}
}

func TestClose(t *testing.T) {
	s, td := load(t, wireScript)
	require.NoError(t, s.Close())
	assert.True(t, s.Closed())
	assert.ErrorIs(t, s.Close(), ErrClosed)

	_, err := s.RunBehavior(td.Behaviors[0], &sim.Call{})
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.Load("x.lua")
	assert.ErrorIs(t, err, ErrClosed)
}
