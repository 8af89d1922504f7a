package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nullreff/redpile/sim"
	"github.com/nullreff/redpile/sim/trace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// relay copies the strongest incoming power minus one into its own field.
type relay struct{}

func (relay) RunBehavior(b *sim.Behavior, call *sim.Call) (bool, error) {
	var max int32
	for _, m := range call.Messages {
		if m.Value > max {
			max = m.Value
		}
	}
	if max > 0 {
		if err := call.Set("power", max-1); err != nil {
			return false, err
		}
	}
	if v, _ := call.Node.Field("power"); v > 1 {
		return true, call.Send(call.Node.Location.Move(sim.East), 0, v-1, 1)
	}
	return true, nil
}

type harness struct {
	it  *Interpreter
	out bytes.Buffer
	err bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	td := sim.NewTypeData()
	_, err := td.AddBehavior("relay", 0, 1)
	require.NoError(t, err)
	_, err = td.AddType("AIR", nil, nil)
	require.NoError(t, err)
	_, err = td.AddType("WIRE", []sim.Field{{Name: "power", Kind: sim.FieldInteger}}, []string{"relay"})
	require.NoError(t, err)
	_, err = td.AddType("TORCH", []sim.Field{{Name: "direction", Kind: sim.FieldDirection}}, nil)
	require.NoError(t, err)
	w, err := sim.New(64, td)
	require.NoError(t, err)

	h := &harness{}
	h.it = &Interpreter{World: w, Runner: relay{}, Out: &h.out, Err: &h.err}
	return h
}

// run executes lines and returns trimmed stdout and stderr.
func (h *harness) run(lines ...string) (string, string) {
	h.out.Reset()
	h.err.Reset()
	for _, l := range lines {
		h.it.Exec(context.Background(), l)
	}
	return strings.TrimSpace(h.out.String()), strings.TrimSpace(h.err.String())
}

func TestExec_Ping(t *testing.T) {
	out, errOut := newHarness(t).run("PING")
	assert.Equal(t, "PONG", out)
	assert.Empty(t, errOut)
}

func TestExec_CaseInsensitiveCommand(t *testing.T) {
	out, _ := newHarness(t).run("ping")
	assert.Equal(t, "PONG", out)
}

func TestExec_UnknownCommand(t *testing.T) {
	_, errOut := newHarness(t).run("INVALID")
	assert.Equal(t, "Unknown command 'INVALID'", errOut)
}

func TestExec_CommentAndBlank(t *testing.T) {
	out, errOut := newHarness(t).run("# Comment goes here", "   ")
	assert.Empty(t, out)
	assert.Empty(t, errOut)
}

func TestNode_GetDefault(t *testing.T) {
	out, _ := newHarness(t).run("NODE 0,0,0")
	assert.Equal(t, "(0,0,0) AIR", out)
}

func TestNode_SetAndGet(t *testing.T) {
	h := newHarness(t)
	out, errOut := h.run("NODE 0,0,0 TORCH direction:up")
	assert.Empty(t, out)
	assert.Empty(t, errOut)

	out, _ = h.run("NODE 0,0,0")
	assert.Equal(t, "(0,0,0) TORCH direction:UP", out)
}

func TestNode_RangeWithStep(t *testing.T) {
	h := newHarness(t)
	h.run("NODE -2..2%2,0,0 WIRE power:3")

	out, _ := h.run("NODE -2..2%2,0,0")
	assert.Equal(t, "(-2,0,0) WIRE power:3\n(0,0,0) WIRE power:3\n(2,0,0) WIRE power:3", out)

	out, _ = h.run("NODE -1,0,0")
	assert.Equal(t, "(-1,0,0) AIR", out)
}

func TestNode_Errors(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"NODE 0,0,0 INVALID", "Unknown type 'INVALID'"},
		{"NODE 0,0,0 TORCH direction:INVALID", "'INVALID' is not a direction"},
		{"NODE 0,0,0 WIRE power:abc", "'abc' is not an integer"},
		{"NODE 0,0,0 WIRE color:1", "The type 'WIRE' doesn't have the field 'color'"},
		{"NODE 0,0 WIRE", "'0,0' is not a location"},
		{"NODE 0..4%0,0,0 WIRE", "x_step must be greater than zero"},
		{"NODE 0,0,0..2%-1", "z_step must be greater than zero"},
		{"NODE 0,0,0 WIRE power", "'power' is not a field assignment"},
	}
	for _, tc := range tests {
		t.Run(tc.line, func(t *testing.T) {
			_, errOut := newHarness(t).run(tc.line)
			assert.Equal(t, tc.want, errOut)
		})
	}
}

func TestNode_UnknownTypeIsSentinel(t *testing.T) {
	err := newHarness(t).it.node(context.Background(), []string{"0,0,0", "LAMP"})
	assert.ErrorIs(t, err, sim.ErrUnknownType)
	assert.EqualError(t, err, "Unknown type 'LAMP'")
}

func TestNode_RegionTooLarge(t *testing.T) {
	// GIVEN a region spanning the whole x axis
	h := newHarness(t)

	// WHEN it is filled
	out, errOut := h.run("NODE -2147483648..2147483647,0,0 WIRE")

	// THEN the command is refused before any node is placed
	assert.Empty(t, out)
	assert.Equal(t, "'-2147483648..2147483647,0,0' covers 4294967296 locations, more than 1048576", errOut)
	assert.Equal(t, 0, h.it.World.Len())
}

func TestTick_StopsWhenCancelled(t *testing.T) {
	// GIVEN an already cancelled context
	h := newHarness(t)
	h.run("NODE 0,0,0 WIRE power:5")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// WHEN a very long tick is requested
	err := tickCommand(trace.LevelQuiet)(h.it, ctx, []string{"2000000000"})

	// THEN it returns without running any tick
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, uint64(0), h.it.World.Ticks)
}

func TestField_GetAndSet(t *testing.T) {
	h := newHarness(t)
	h.run("NODE -1..1,0,0 WIRE", "FIELD -1..1,0,0 power:10")

	out, errOut := h.run("FIELD -1..1,0,0 power")
	assert.Empty(t, errOut)
	assert.Equal(t, "(-1,0,0) 10\n(0,0,0) 10\n(1,0,0) 10", out)
}

func TestDelete_And_Status(t *testing.T) {
	h := newHarness(t)
	h.run("NODE 0,0,0 WIRE", "NODE 0,0,1 WIRE", "NODE 0,0,1 AIR")

	out, _ := h.run("STATUS")
	assert.Contains(t, out, "nodes: 2\n")

	h.run("DELETE 0,0,0")
	out, _ = h.run("STATUS")
	assert.Contains(t, out, "nodes: 1\n")
	assert.Contains(t, out, "ticks: 0\n")
}

func TestTick_CountValidation(t *testing.T) {
	h := newHarness(t)

	_, errOut := h.run("TICK -2")
	assert.Equal(t, "Tick count must be greater than zero", errOut)

	_, errOut = h.run("TICK abc")
	assert.Equal(t, "Tick count must be numeric", errOut)

	out, errOut := h.run("TICK 4", "STATUS")
	assert.Empty(t, errOut)
	assert.Contains(t, out, "ticks: 4")
}

func TestTick_Levels(t *testing.T) {
	h := newHarness(t)
	h.run("NODE 0,0,0 WIRE power:5", "NODE 1,0,0 WIRE")

	// GIVEN a quiet tick prints nothing even though a message is sent
	out, _ := h.run("TICKQ")
	assert.Empty(t, out)

	// WHEN a normal tick delivers the message
	out, _ = h.run("TICK")

	// THEN the assignment is printed
	assert.Equal(t, "(1,0,0) WIRE power:3", out)

	// WHEN a verbose tick runs
	out, _ = h.run("TICKV")

	// THEN the tick header, nodes and sends are printed
	assert.True(t, strings.HasPrefix(out, "--- Tick 2 ---"), out)
	assert.Contains(t, out, "(0,0,0) WIRE power:5 in:0 out:1")
	assert.Contains(t, out, "(0,0,0) => (1,0,0) kind:0 value:4 tick:3")
	assert.True(t, strings.HasSuffix(out, "--- Summary ticks:1 nodes:2 sends:2 sets:1 max_in:1 max_out:1 busiest:2 ---"), out)
}

func TestMessages(t *testing.T) {
	h := newHarness(t)
	out, _ := h.run("MESSAGES")
	assert.Empty(t, out)

	h.run("NODE 0,0,0 WIRE power:5", "TICKQ")
	out, _ = h.run("MESSAGES")
	assert.Equal(t, "(0,0,0) => (1,0,0) kind:0 value:4 tick:1", out)
}

func TestType_And_Types(t *testing.T) {
	h := newHarness(t)

	out, _ := h.run("TYPE")
	assert.Equal(t, "AIR\nWIRE\nTORCH", out)

	out, _ = h.run("TYPE WIRE")
	assert.Equal(t, "Name: WIRE\nFields:\n  0: power INTEGER\nBehaviors:\n  0: relay", out)

	_, errOut := h.run("TYPE LAMP")
	assert.Equal(t, "Unknown type 'LAMP'", errOut)

	out, _ = h.run("TYPES")
	assert.Equal(t, "AIR\nWIRE\n  0: power INTEGER\nTORCH\n  0: direction DIRECTION", out)
}
