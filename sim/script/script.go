// Package script hosts the Lua runtime that defines a world's types and runs
// their behaviors.
//
// A config script calls the global Redpile table:
//
//	Redpile.behavior(name, kinds, function(node, messages) ... end)
//	Redpile.type(name, {{field, INTEGER|DIRECTION}, ...}, {behavior, ...}, default)
//
// and, from inside a behavior, Redpile.send and Redpile.set.
package script

import (
	"errors"
	"fmt"

	"github.com/Shopify/go-lua"
	"github.com/nullreff/redpile/sim"
)

var (
	// ErrClosed is returned by every operation on a closed State.
	ErrClosed = errors.New("script state is closed")
	// ErrAlreadyLoaded is returned when Load is called a second time.
	ErrAlreadyLoaded = errors.New("script already loaded")
	// ErrNoTypes is returned when a script finishes without defining a type.
	ErrNoTypes = errors.New("script defines no types")
)

// behaviorsKey names the registry table holding behavior functions by index.
const behaviorsKey = "redpile.behaviors"

type typeDef struct {
	name      string
	fields    []sim.Field
	behaviors []string
	isDefault bool
}

type behaviorDef struct {
	name  string
	mask  uint32
	index int
}

// State is a Lua runtime. It is not safe for concurrent use.
type State struct {
	l         *lua.State
	types     []typeDef
	behaviors []behaviorDef
	loaded    bool

	// call is the behavior invocation in progress, nil outside RunBehavior.
	call *sim.Call
}

// New creates a runtime with the standard libraries and the Redpile API.
func New() *State {
	l := lua.NewState()
	lua.OpenLibraries(l)
	l.SetTop(0)

	s := &State{l: l}

	l.NewTable()
	l.SetField(lua.RegistryIndex, behaviorsKey)

	l.NewTable()
	lua.SetFunctions(l, []lua.RegistryFunction{
		{Name: "type", Function: s.defineType},
		{Name: "behavior", Function: s.defineBehavior},
		{Name: "send", Function: s.send},
		{Name: "set", Function: s.set},
	}, 0)
	l.SetGlobal("Redpile")

	for _, kind := range []sim.FieldKind{sim.FieldInteger, sim.FieldDirection} {
		l.PushString(kind.String())
		l.SetGlobal(kind.String())
	}
	for _, d := range sim.Directions {
		l.PushString(d.String())
		l.SetGlobal(d.String())
	}
	return s
}

// Load runs the script at path and returns the types it defined.
// A State can load exactly one script.
func (s *State) Load(path string) (*sim.TypeData, error) {
	if s.l == nil {
		return nil, ErrClosed
	}
	if s.loaded {
		return nil, ErrAlreadyLoaded
	}
	s.loaded = true

	if err := lua.LoadFile(s.l, path, ""); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if err := s.l.ProtectedCall(0, 0, 0); err != nil {
		return nil, fmt.Errorf("run %s: %w", path, err)
	}
	return s.typeData()
}

func (s *State) typeData() (*sim.TypeData, error) {
	if len(s.types) == 0 {
		return nil, ErrNoTypes
	}
	td := sim.NewTypeData()
	for _, b := range s.behaviors {
		if _, err := td.AddBehavior(b.name, b.mask, b.index); err != nil {
			return nil, err
		}
	}
	var def *sim.Type
	for _, t := range s.types {
		added, err := td.AddType(t.name, t.fields, t.behaviors)
		if err != nil {
			return nil, err
		}
		if t.isDefault {
			if def != nil {
				return nil, fmt.Errorf("types '%s' and '%s' are both marked default", def.Name, t.name)
			}
			def = added
		}
	}
	if def != nil {
		td.Default = def
	}
	return td, nil
}

// RunBehavior calls the behavior's Lua function with the node and its
// messages. The function's first return value reports whether the tick was
// handled.
func (s *State) RunBehavior(b *sim.Behavior, call *sim.Call) (bool, error) {
	if s.l == nil {
		return false, ErrClosed
	}
	l := s.l
	top := l.Top()
	defer l.SetTop(top)

	l.Field(lua.RegistryIndex, behaviorsKey)
	l.RawGetInt(-1, b.Index)
	if !l.IsFunction(-1) {
		return false, fmt.Errorf("behavior '%s' has no function", b.Name)
	}
	pushNode(l, call.Node)
	pushMessages(l, call)

	s.call = call
	err := l.ProtectedCall(2, 1, 0)
	s.call = nil
	if err != nil {
		return false, err
	}
	return l.ToBoolean(-1), nil
}

// Close releases the runtime. Closing twice returns ErrClosed.
func (s *State) Close() error {
	if s.l == nil {
		return ErrClosed
	}
	s.l = nil
	s.call = nil
	return nil
}

// Closed reports whether Close has been called.
func (s *State) Closed() bool {
	return s.l == nil
}

func pushNode(l *lua.State, n *sim.Node) {
	l.NewTable()
	l.PushInteger(int(n.Location.X))
	l.SetField(-2, "x")
	l.PushInteger(int(n.Location.Y))
	l.SetField(-2, "y")
	l.PushInteger(int(n.Location.Z))
	l.SetField(-2, "z")
	l.PushString(n.Type.Name)
	l.SetField(-2, "type")
	for i, f := range n.Type.Fields {
		if f.Kind == sim.FieldDirection {
			l.PushString(sim.Direction(n.Values[i]).String())
		} else {
			l.PushInteger(int(n.Values[i]))
		}
		l.SetField(-2, f.Name)
	}
}

func pushMessages(l *lua.State, call *sim.Call) {
	l.CreateTable(len(call.Messages), 0)
	for i, m := range call.Messages {
		l.CreateTable(0, 5)
		l.PushInteger(int(m.Kind))
		l.SetField(-2, "kind")
		l.PushInteger(int(m.Value))
		l.SetField(-2, "value")
		l.PushString(m.Source.String())
		l.SetField(-2, "source")
		l.PushInteger(int(m.Tick))
		l.SetField(-2, "tick")
		if d, ok := call.Node.Location.DirectionTo(m.Source); ok {
			l.PushString(d.String())
			l.SetField(-2, "direction")
		}
		l.RawSetInt(-2, i+1)
	}
}
