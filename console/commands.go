// Package console implements redpile's line-oriented command language and
// the loop that feeds it from stdin or a network connection.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nullreff/redpile/sim"
	"github.com/nullreff/redpile/sim/trace"
	"github.com/sirupsen/logrus"
)

// Interpreter executes commands against a world. Command output goes to Out
// and error messages to Err, one per line.
type Interpreter struct {
	World  *sim.World
	Runner sim.BehaviorRunner
	Out    io.Writer
	Err    io.Writer
}

type command func(it *Interpreter, ctx context.Context, args []string) error

var commands = map[string]command{
	"PING":     (*Interpreter).ping,
	"STATUS":   (*Interpreter).status,
	"NODE":     (*Interpreter).node,
	"FIELD":    (*Interpreter).field,
	"DELETE":   (*Interpreter).delete,
	"TICK":     tickCommand(trace.LevelNormal),
	"TICKV":    tickCommand(trace.LevelVerbose),
	"TICKQ":    tickCommand(trace.LevelQuiet),
	"TYPE":     (*Interpreter).typeInfo,
	"TYPES":    (*Interpreter).types,
	"MESSAGES": (*Interpreter).messages,
}

// Exec runs one line. Blank lines and lines starting with '#' are ignored.
// A failing command writes its message to Err and leaves the world as far as
// it got. Cancelling ctx stops a running TICK between ticks.
func (it *Interpreter) Exec(ctx context.Context, line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return
	}
	name := strings.ToUpper(fields[0])
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(it.Err, "Unknown command '%s'\n", fields[0])
		return
	}
	logrus.Debugf("console: %s", line)
	if err := cmd(it, ctx, fields[1:]); err != nil {
		fmt.Fprintln(it.Err, err)
	}
}

func usage(text string) error {
	return fmt.Errorf("Usage: %s", text)
}

func (it *Interpreter) ping(ctx context.Context, args []string) error {
	fmt.Fprintln(it.Out, "PONG")
	return nil
}

func (it *Interpreter) status(ctx context.Context, args []string) error {
	it.World.Stats().Print(it.Out)
	return nil
}

// NODE region            print every node in the region
// NODE region TYPE f:v   place nodes and assign fields
func (it *Interpreter) node(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("NODE x,y,z [TYPE [field:value ...]]")
	}
	region, err := ParseRegion(args[0])
	if err != nil {
		return err
	}

	if len(args) == 1 {
		return region.Each(func(loc sim.Location) error {
			if n := it.World.Get(loc); n != nil {
				fmt.Fprintln(it.Out, n)
			} else {
				fmt.Fprintf(it.Out, "(%d,%d,%d) %s\n", loc.X, loc.Y, loc.Z, it.World.Types.Default.Name)
			}
			return nil
		})
	}

	t, err := it.World.Types.LookupType(args[1])
	if err != nil {
		return err
	}
	assignments, err := parseAssignments(args[2:])
	if err != nil {
		return err
	}
	return region.Each(func(loc sim.Location) error {
		n, err := it.World.Set(loc, t)
		if err != nil {
			return err
		}
		return assign(n, assignments)
	})
}

// FIELD region name        print one field of every node in the region
// FIELD region name:value  assign fields of existing nodes
func (it *Interpreter) field(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usage("FIELD x,y,z name[:value] ...")
	}
	region, err := ParseRegion(args[0])
	if err != nil {
		return err
	}

	if !strings.Contains(args[1], ":") {
		name := args[1]
		return region.Each(func(loc sim.Location) error {
			n := it.World.Get(loc)
			if n == nil {
				return nil
			}
			i, kind, ok := n.Type.FieldIndex(name)
			if !ok {
				return &sim.FieldError{Type: n.Type.Name, Field: name}
			}
			fmt.Fprintf(it.Out, "(%s) %s\n", loc, formatValue(kind, n.Values[i]))
			return nil
		})
	}

	assignments, err := parseAssignments(args[1:])
	if err != nil {
		return err
	}
	return region.Each(func(loc sim.Location) error {
		if n := it.World.Get(loc); n != nil {
			return assign(n, assignments)
		}
		return nil
	})
}

func (it *Interpreter) delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("DELETE x,y,z")
	}
	region, err := ParseRegion(args[0])
	if err != nil {
		return err
	}
	return region.Each(func(loc sim.Location) error {
		it.World.Remove(loc)
		return nil
	})
}

func tickCommand(level trace.Level) command {
	return func(it *Interpreter, ctx context.Context, args []string) error {
		count := 1
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return errors.New("Tick count must be numeric")
			}
			count = n
		}
		if count <= 0 {
			return errors.New("Tick count must be greater than zero")
		}

		tt := trace.NewTickTrace(trace.Config{Level: level})
		err := it.World.Tick(ctx, count, it.Runner, tt)
		printTrace(it.Out, tt)
		return err
	}
}

func printTrace(w io.Writer, tt *trace.TickTrace) {
	for _, tick := range tt.Ticks {
		if tt.Verbose() {
			fmt.Fprintf(w, "--- Tick %d ---\n", tick)
			for _, n := range tt.Nodes {
				if n.Tick == tick {
					fmt.Fprintf(w, "%s in:%d out:%d\n", n.Node, n.Inputs, n.Outputs)
				}
			}
			for _, s := range tt.Sends {
				if s.Tick == tick {
					fmt.Fprintln(w, s.Message)
				}
			}
		}
		for _, s := range tt.Sets {
			if s.Tick == tick {
				fmt.Fprintln(w, s.Node)
			}
		}
	}
	if tt.Verbose() {
		sum := trace.Summarize(tt)
		fmt.Fprintf(w, "--- Summary ticks:%d nodes:%d sends:%d sets:%d max_in:%d max_out:%d busiest:%d ---\n",
			sum.Ticks, sum.TotalNodes, sum.TotalSends, sum.TotalSets, sum.MaxInputs, sum.MaxOutputs, sum.BusiestTick)
	}
}

// TYPE        list type names
// TYPE name   describe one type
func (it *Interpreter) typeInfo(ctx context.Context, args []string) error {
	td := it.World.Types
	if len(args) == 0 {
		for _, t := range td.Types {
			fmt.Fprintln(it.Out, t.Name)
		}
		return nil
	}
	t, err := td.LookupType(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(it.Out, "Name: %s\n", t.Name)
	fmt.Fprintln(it.Out, "Fields:")
	for i, f := range t.Fields {
		fmt.Fprintf(it.Out, "  %d: %s %s\n", i, f.Name, f.Kind)
	}
	fmt.Fprintln(it.Out, "Behaviors:")
	for i, b := range t.Behaviors {
		fmt.Fprintf(it.Out, "  %d: %s\n", i, b.Name)
	}
	return nil
}

func (it *Interpreter) types(ctx context.Context, args []string) error {
	for _, t := range it.World.Types.Types {
		fmt.Fprintln(it.Out, t.Name)
		for i, f := range t.Fields {
			fmt.Fprintf(it.Out, "  %d: %s %s\n", i, f.Name, f.Kind)
		}
	}
	return nil
}

func (it *Interpreter) messages(ctx context.Context, args []string) error {
	for _, m := range it.World.Messages() {
		fmt.Fprintln(it.Out, m)
	}
	return nil
}

type assignment struct {
	field string
	value string
}

func parseAssignments(args []string) ([]assignment, error) {
	out := make([]assignment, 0, len(args))
	for _, a := range args {
		field, value, ok := strings.Cut(a, ":")
		if !ok || field == "" {
			return nil, fmt.Errorf("'%s' is not a field assignment", a)
		}
		out = append(out, assignment{field: field, value: value})
	}
	return out, nil
}

func assign(n *sim.Node, assignments []assignment) error {
	for _, a := range assignments {
		_, kind, ok := n.Type.FieldIndex(a.field)
		if !ok {
			return &sim.FieldError{Type: n.Type.Name, Field: a.field}
		}
		var value int32
		if kind == sim.FieldDirection {
			d, err := sim.ParseDirection(a.value)
			if err != nil {
				return err
			}
			value = int32(d)
		} else {
			v, err := parseInt(a.value)
			if err != nil {
				return err
			}
			value = v
		}
		if err := n.SetField(a.field, value); err != nil {
			return err
		}
	}
	return nil
}

func formatValue(kind sim.FieldKind, v int32) string {
	if kind == sim.FieldDirection {
		return sim.Direction(v).String()
	}
	return strconv.Itoa(int(v))
}
