package startup

import (
	"context"
	"fmt"
	"io"

	"github.com/nullreff/redpile/config"
	"github.com/sirupsen/logrus"
)

// Run executes the whole startup sequence for argv (without the program
// name) and returns the process exit status.
//
// Signal handlers are installed before anything else. Configuration errors
// exit with 1 before any resource exists; help and version exit with 0. A
// script that fails to load releases the scripting state and exits with 1
// without a world ever being allocated. Otherwise the selected mode's status
// is returned after all resources are released.
func Run(ctx context.Context, core Core, argv []string, stdout, stderr io.Writer) int {
	ctx, stop := core.InstallSignalHandlers(ctx)
	defer stop()
	logrus.Debug("startup: signal handlers installed")

	outcome := config.Load(argv, stdout)
	switch outcome.Status {
	case config.Failed:
		logrus.Debugf("startup: configuration rejected: %v", outcome.Err)
		fmt.Fprintln(stderr, outcome.Err)
		return 1
	case config.Done:
		logrus.Debug("startup: nothing to run")
		return 0
	}
	cfg := outcome.Config
	logrus.Debugf("startup: config %+v", cfg)

	res := NewResources(core)
	defer res.Release()

	state, err := core.AllocateScriptState()
	if err != nil {
		fmt.Fprintf(stderr, "Failed to create script state: %v\n", err)
		return 1
	}
	res.AdoptScript(state)

	logrus.Debugf("startup: loading %s", cfg.File)
	types, err := core.Load(state, cfg.File)
	if err != nil {
		logrus.Debugf("startup: load failed: %v", err)
		fmt.Fprintf(stderr, "Failed to load '%s': %v\n", cfg.File, err)
		res.Release()
		return 1
	}

	world, err := core.AllocateWorld(cfg.WorldSize, types)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to allocate world: %v\n", err)
		res.Release()
		return 1
	}
	res.AdoptWorld(world)
	logrus.Debugf("startup: world allocated with %d buckets", cfg.WorldSize)

	rc := &RunContext{Config: cfg, Script: state, Types: types, World: world}
	status := Dispatch(ctx, core, rc)

	logrus.Debugf("startup: cleaning up, status %d", status)
	res.Release()
	return status
}
