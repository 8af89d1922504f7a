// Package engine implements startup.Core on top of the sim, script, bench
// and console packages.
package engine

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nullreff/redpile/config"
	"github.com/nullreff/redpile/console"
	"github.com/nullreff/redpile/sim"
	"github.com/nullreff/redpile/sim/bench"
	"github.com/nullreff/redpile/sim/script"
	"github.com/nullreff/redpile/startup"
	"github.com/sirupsen/logrus"
)

// Engine is the process-wide core. Env tunes the runtime; the streams are
// where run modes read commands and write results.
type Engine struct {
	Env config.Environment

	In  io.Reader
	Out io.Writer
	Err io.Writer
}

var _ startup.Core = (*Engine)(nil)

// New returns an Engine attached to the process's standard streams.
func New(env config.Environment) *Engine {
	return &Engine{Env: env, In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// InstallSignalHandlers cancels the returned context on SIGINT or SIGTERM.
func (e *Engine) InstallSignalHandlers(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

func (e *Engine) AllocateScriptState() (*script.State, error) {
	return script.New(), nil
}

func (e *Engine) FreeScriptState(state *script.State) {
	if err := state.Close(); err != nil {
		logrus.Warnf("engine: free script state: %v", err)
	}
}

func (e *Engine) Load(state *script.State, path string) (*sim.TypeData, error) {
	types, err := state.Load(path)
	if err != nil {
		return nil, err
	}
	logrus.Infof("engine: loaded %d types and %d behaviors from %s", len(types.Types), len(types.Behaviors), path)
	return types, nil
}

func (e *Engine) AllocateWorld(size uint32, types *sim.TypeData) (*sim.World, error) {
	return sim.New(size, types)
}

func (e *Engine) FreeWorld(world *sim.World) {
	if err := world.Close(); err != nil {
		logrus.Warnf("engine: free world: %v", err)
	}
}

// RunBenchmark runs the benchmark for d and returns 1 if it failed.
func (e *Engine) RunBenchmark(ctx context.Context, rc *startup.RunContext, d time.Duration) int {
	_, err := bench.Run(ctx, bench.Options{
		World:    rc.World,
		Runner:   rc.Script,
		Duration: d,
		Radius:   e.Env.BenchRadius,
		Seed:     e.Env.BenchSeed,
		Out:      e.Out,
	})
	if err != nil {
		logrus.Errorf("benchmark failed: %v", err)
		return 1
	}
	return 0
}

// RunInteractive runs the command loop until its input ends or the process
// is signalled, and returns 1 if the loop could not run.
func (e *Engine) RunInteractive(ctx context.Context, rc *startup.RunContext) int {
	err := console.Run(ctx, console.Options{
		World:       rc.World,
		Runner:      rc.Script,
		Interactive: rc.Config.Interactive,
		Port:        rc.Config.Port,
		Host:        e.Env.ListenHost,
		Prompt:      e.Env.Prompt,
		In:          e.In,
		Out:         e.Out,
		Err:         e.Err,
	})
	if err != nil {
		logrus.Errorf("console: %v", err)
		return 1
	}
	return 0
}
