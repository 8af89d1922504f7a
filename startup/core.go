// Package startup turns a command line into a running simulation: it
// validates the configuration, acquires the scripting state and the world in
// order, dispatches to the benchmark or the interactive loop and releases
// everything exactly once on the way out.
package startup

import (
	"context"
	"time"

	"github.com/nullreff/redpile/sim"
	"github.com/nullreff/redpile/sim/script"
)

// Core is the engine startup drives. Implementations own the simulation,
// scripting and I/O; startup only decides what is called and when.
type Core interface {
	// InstallSignalHandlers returns a context cancelled on termination signals
	// and a function that restores default signal handling.
	InstallSignalHandlers(ctx context.Context) (context.Context, context.CancelFunc)

	AllocateScriptState() (*script.State, error)
	FreeScriptState(state *script.State)

	// Load runs the config script and returns the types it defined.
	Load(state *script.State, path string) (*sim.TypeData, error)

	AllocateWorld(size uint32, types *sim.TypeData) (*sim.World, error)
	FreeWorld(world *sim.World)

	// RunBenchmark and RunInteractive return the process exit status.
	RunBenchmark(ctx context.Context, rc *RunContext, d time.Duration) int
	RunInteractive(ctx context.Context, rc *RunContext) int
}
