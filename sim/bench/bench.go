// Package bench exercises a world with a fixed workload for a given duration
// and reports how long each kind of operation took.
package bench

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/nullreff/redpile/sim"
	"github.com/sirupsen/logrus"
)

// Options configures a benchmark run.
type Options struct {
	World    *sim.World
	Runner   sim.BehaviorRunner
	Duration time.Duration
	Radius   int   // half the edge length of the cube of nodes placed each round
	Seed     int64 // master seed for node types and field values
	Out      io.Writer
}

// Run repeats benchmark rounds until the duration has elapsed or ctx is
// cancelled. At least one round always runs. Each round fills a cube with
// nodes of random types, reads every node back, ticks the world Radius times
// and removes the nodes again.
func Run(ctx context.Context, opts Options) (*Metrics, error) {
	if opts.Radius < 1 {
		return nil, fmt.Errorf("benchmark radius must be at least 1, got %d", opts.Radius)
	}
	edge := 2*opts.Radius + 1
	m := newMetrics(opts.Seed, edge*edge*edge)
	rng := NewPartitionedRNG(opts.Seed)

	fmt.Fprintln(opts.Out, "--- Benchmark Start ---")
	start := time.Now()
	for {
		if err := runRound(ctx, opts, m, rng); err != nil {
			return m, err
		}
		m.Rounds++
		if time.Since(start) >= opts.Duration {
			break
		}
		if ctx.Err() != nil {
			logrus.Infof("benchmark interrupted after %d rounds", m.Rounds)
			break
		}
	}
	m.Total = time.Since(start)

	for _, p := range m.Phases {
		fmt.Fprintf(opts.Out, "%s - %s\n", p.Name, FormatTime(p.Total))
	}
	fmt.Fprintf(opts.Out, "total - %s\n", FormatTime(m.Total))
	fmt.Fprintln(opts.Out, "--- Benchmark End ---")
	m.Stats.Print(opts.Out)
	return m, m.Print(opts.Out)
}

// runRound runs one full round. A round always completes once started;
// cancellation is checked between rounds.
func runRound(ctx context.Context, opts Options, m *Metrics, rng *PartitionedRNG) error {
	w := opts.World
	r := int32(opts.Radius)
	types := w.Types.Types
	typeRNG := rng.ForSubsystem(SubsystemTypes)
	valueRNG := rng.ForSubsystem(SubsystemValues)

	phase := time.Now()
	err := cube(r, func(loc sim.Location) error {
		n, err := w.Set(loc, types[typeRNG.Intn(len(types))])
		if err != nil {
			return err
		}
		for i, f := range n.Type.Fields {
			if f.Kind == sim.FieldDirection {
				n.Values[i] = int32(valueRNG.Intn(len(sim.Directions)))
			} else {
				n.Values[i] = int32(valueRNG.Intn(16))
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("benchmark add: %w", err)
	}
	m.record(PhaseAdd, time.Since(phase), m.NodesPerRound)

	phase = time.Now()
	_ = cube(r, func(loc sim.Location) error {
		w.Get(loc)
		return nil
	})
	m.record(PhaseGet, time.Since(phase), m.NodesPerRound)

	phase = time.Now()
	if err := w.Tick(context.WithoutCancel(ctx), opts.Radius, opts.Runner, nil); err != nil {
		return fmt.Errorf("benchmark tick: %w", err)
	}
	m.record(PhaseTick, time.Since(phase), opts.Radius)
	m.Stats = w.Stats()

	phase = time.Now()
	_ = cube(r, func(loc sim.Location) error {
		w.Remove(loc)
		return nil
	})
	m.record(PhaseRemove, time.Since(phase), m.NodesPerRound)
	return nil
}

func cube(r int32, fn func(sim.Location) error) error {
	for x := -r; x <= r; x++ {
		for y := -r; y <= r; y++ {
			for z := -r; z <= r; z++ {
				if err := fn(sim.NewLocation(x, y, z)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
