package startup

import (
	"context"

	"github.com/nullreff/redpile/config"
	"github.com/nullreff/redpile/sim"
	"github.com/nullreff/redpile/sim/script"
	"github.com/sirupsen/logrus"
)

// RunContext is everything a run mode needs, built once after the world is
// allocated and passed to the mode explicitly.
type RunContext struct {
	Config config.Config
	Script *script.State
	Types  *sim.TypeData
	World  *sim.World
}

// Mode is the kind of run selected from the configuration.
type Mode int

const (
	ModeInteractive Mode = iota
	ModeBenchmark
)

func (m Mode) String() string {
	if m == ModeBenchmark {
		return "benchmark"
	}
	return "interactive"
}

// SelectMode picks the benchmark whenever one was requested, regardless of
// the interactive flag.
func SelectMode(cfg config.Config) Mode {
	if cfg.Benchmark > 0 {
		return ModeBenchmark
	}
	return ModeInteractive
}

// Dispatch runs the selected mode and returns its exit status.
func Dispatch(ctx context.Context, core Core, rc *RunContext) int {
	mode := SelectMode(rc.Config)
	logrus.Debugf("startup: dispatching %s mode", mode)
	if mode == ModeBenchmark {
		return core.RunBenchmark(ctx, rc, rc.Config.BenchmarkDuration())
	}
	return core.RunInteractive(ctx, rc)
}
