package script

import (
	"math"

	"github.com/Shopify/go-lua"
	"github.com/nullreff/redpile/sim"
)

// Redpile.type(name, fields, behaviors[, default])
func (s *State) defineType(l *lua.State) int {
	name := lua.CheckString(l, 1)
	for _, t := range s.types {
		if t.name == name {
			lua.Errorf(l, "type '%s' already defined", name)
		}
	}
	def := typeDef{name: name, isDefault: l.ToBoolean(4)}

	if !l.IsNoneOrNil(2) {
		lua.CheckType(l, 2, lua.TypeTable)
		for i := 1; i <= l.RawLength(2); i++ {
			l.RawGetInt(2, i)
			if !l.IsTable(-1) {
				lua.Errorf(l, "field %d of type '%s' must be a {name, kind} pair", i, name)
			}
			l.RawGetInt(-1, 1)
			fname, ok := l.ToString(-1)
			if !ok || fname == "" {
				lua.Errorf(l, "field %d of type '%s' has no name", i, name)
			}
			l.RawGetInt(-2, 2)
			kname, _ := l.ToString(-1)
			kind, err := sim.ParseFieldKind(kname)
			if err != nil {
				lua.Errorf(l, "%s", err.Error())
			}
			l.Pop(3)
			def.fields = append(def.fields, sim.Field{Name: fname, Kind: kind})
		}
	}

	if !l.IsNoneOrNil(3) {
		lua.CheckType(l, 3, lua.TypeTable)
		for i := 1; i <= l.RawLength(3); i++ {
			l.RawGetInt(3, i)
			bname, ok := l.ToString(-1)
			if !ok {
				lua.Errorf(l, "behavior %d of type '%s' must be a name", i, name)
			}
			l.Pop(1)
			if s.findBehavior(bname) == nil {
				lua.Errorf(l, "type '%s': unknown behavior '%s'", name, bname)
			}
			def.behaviors = append(def.behaviors, bname)
		}
	}

	s.types = append(s.types, def)
	return 0
}

// Redpile.behavior(name, kinds, fn). kinds is nil for every message kind, a
// list of kinds, or a raw bit mask.
func (s *State) defineBehavior(l *lua.State) int {
	name := lua.CheckString(l, 1)
	if s.findBehavior(name) != nil {
		lua.Errorf(l, "behavior '%s' already defined", name)
	}
	lua.CheckType(l, 3, lua.TypeFunction)

	var mask uint32
	switch l.TypeOf(2) {
	case lua.TypeNil, lua.TypeNone:
	case lua.TypeNumber:
		m, _ := l.ToInteger(2)
		mask = uint32(m)
	case lua.TypeTable:
		for i := 1; i <= l.RawLength(2); i++ {
			l.RawGetInt(2, i)
			kind, ok := l.ToInteger(-1)
			l.Pop(1)
			if !ok || kind < 0 || kind > sim.MaxMessageKind {
				lua.Errorf(l, "behavior '%s': message kind must be between 0 and %d", name, sim.MaxMessageKind)
			}
			mask |= 1 << uint(kind)
		}
	default:
		lua.ArgumentError(l, 2, "kinds must be nil, a number or a table")
	}

	index := len(s.behaviors) + 1
	l.Field(lua.RegistryIndex, behaviorsKey)
	l.PushValue(3)
	l.RawSetInt(-2, index)
	l.Pop(1)

	s.behaviors = append(s.behaviors, behaviorDef{name: name, mask: mask, index: index})
	return 0
}

// Redpile.send(target, kind, value[, delay]). target is a direction name or a
// relative {dx, dy, dz} offset.
func (s *State) send(l *lua.State) int {
	call := s.activeCall(l, "send")
	target := relativeTarget(l, 1, call.Node.Location)
	kind := lua.CheckInteger(l, 2)
	value := checkInt32(l, 3)
	delay := lua.OptInteger(l, 4, 1)
	if err := call.Send(target, kind, value, delay); err != nil {
		lua.Errorf(l, "%s", err.Error())
	}
	return 0
}

// Redpile.set(field, value). Direction fields accept a direction name.
func (s *State) set(l *lua.State) int {
	call := s.activeCall(l, "set")
	field := lua.CheckString(l, 1)

	var value int32
	if l.TypeOf(2) == lua.TypeString {
		name, _ := l.ToString(2)
		d, err := sim.ParseDirection(name)
		if err != nil {
			lua.Errorf(l, "%s", err.Error())
		}
		value = int32(d)
	} else {
		value = checkInt32(l, 2)
	}
	if err := call.Set(field, value); err != nil {
		lua.Errorf(l, "%s", err.Error())
	}
	return 0
}

// checkInt32 reads an integer argument that must fit a node field.
func checkInt32(l *lua.State, index int) int32 {
	v := lua.CheckInteger(l, index)
	if v < math.MinInt32 || v > math.MaxInt32 {
		lua.ArgumentError(l, index, "value out of range")
	}
	return int32(v)
}

func (s *State) activeCall(l *lua.State, fn string) *sim.Call {
	if s.call == nil {
		lua.Errorf(l, "Redpile.%s can only be called from a behavior", fn)
	}
	return s.call
}

func (s *State) findBehavior(name string) *behaviorDef {
	for i := range s.behaviors {
		if s.behaviors[i].name == name {
			return &s.behaviors[i]
		}
	}
	return nil
}

func relativeTarget(l *lua.State, index int, from sim.Location) sim.Location {
	switch l.TypeOf(index) {
	case lua.TypeString:
		name, _ := l.ToString(index)
		d, err := sim.ParseDirection(name)
		if err != nil {
			lua.Errorf(l, "%s", err.Error())
		}
		return from.Move(d)
	case lua.TypeTable:
		var offset [3]int32
		for i := range offset {
			l.RawGetInt(index, i+1)
			v, ok := l.ToInteger(-1)
			l.Pop(1)
			if !ok {
				lua.Errorf(l, "target offset must be {dx, dy, dz}")
			}
			offset[i] = int32(v)
		}
		return sim.NewLocation(from.X+offset[0], from.Y+offset[1], from.Z+offset[2])
	}
	lua.ArgumentError(l, index, "target must be a direction or an offset table")
	return from
}
