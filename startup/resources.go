package startup

import (
	"github.com/nullreff/redpile/sim"
	"github.com/nullreff/redpile/sim/script"
	"github.com/sirupsen/logrus"
)

// Resources tracks what startup has acquired from the core so that every
// exit path releases it exactly once. Release is idempotent, which makes
// an early explicit Release safe alongside a deferred one.
type Resources struct {
	core     Core
	script   *script.State
	world    *sim.World
	released bool
}

// NewResources returns an empty set bound to core.
func NewResources(core Core) *Resources {
	return &Resources{core: core}
}

// AdoptScript takes ownership of a scripting state.
func (r *Resources) AdoptScript(state *script.State) {
	r.script = state
}

// AdoptWorld takes ownership of a world.
func (r *Resources) AdoptWorld(world *sim.World) {
	r.world = world
}

// Released reports whether Release has run.
func (r *Resources) Released() bool {
	return r.released
}

// Release frees the world and then the scripting state. Later calls do
// nothing.
func (r *Resources) Release() {
	if r.released {
		return
	}
	r.released = true

	if r.world != nil {
		logrus.Debug("startup: freeing world")
		r.core.FreeWorld(r.world)
		r.world = nil
	}
	if r.script != nil {
		logrus.Debug("startup: freeing script state")
		r.core.FreeScriptState(r.script)
		r.script = nil
	}
}
