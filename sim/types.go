package sim

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownType     = errors.New("unknown type")
	ErrUnknownField    = errors.New("unknown field")
	ErrUnknownBehavior = errors.New("unknown behavior")
	ErrDuplicate       = errors.New("already defined")
)

// FieldKind is the value domain of a node field.
type FieldKind int

const (
	FieldInteger FieldKind = iota
	FieldDirection
)

func (k FieldKind) String() string {
	switch k {
	case FieldInteger:
		return "INTEGER"
	case FieldDirection:
		return "DIRECTION"
	}
	return "UNKNOWN"
}

// ParseFieldKind parses "INTEGER" or "DIRECTION".
func ParseFieldKind(s string) (FieldKind, error) {
	switch s {
	case "INTEGER":
		return FieldInteger, nil
	case "DIRECTION":
		return FieldDirection, nil
	}
	return 0, fmt.Errorf("'%s' is not a field kind", s)
}

// Field is a named, typed slot carried by every node of a Type.
type Field struct {
	Name string
	Kind FieldKind
}

// Behavior is a scripted reaction to incoming messages. Mask selects the
// message kinds it receives (bit k for kind k, zero for all kinds). Index is
// owned by the BehaviorRunner that defined it.
type Behavior struct {
	Name  string
	Mask  uint32
	Index int
}

// Accepts reports whether a message of the given kind reaches the behavior.
func (b *Behavior) Accepts(kind uint8) bool {
	return b.Mask == 0 || b.Mask&(1<<kind) != 0
}

// Type describes a kind of node: its fields and the behaviors run each tick,
// in order, until one reports it handled the tick.
type Type struct {
	Name      string
	Fields    []Field
	Behaviors []*Behavior
}

// FieldIndex returns the position of the named field.
func (t *Type) FieldIndex(name string) (int, FieldKind, bool) {
	for i, f := range t.Fields {
		if f.Name == name {
			return i, f.Kind, true
		}
	}
	return 0, 0, false
}

// TypeData is the set of types and behaviors produced by loading a script.
// Default is the type reported for locations holding no node.
type TypeData struct {
	Types     []*Type
	Behaviors []*Behavior
	Default   *Type
}

// NewTypeData returns an empty TypeData.
func NewTypeData() *TypeData {
	return &TypeData{}
}

// AddBehavior registers a behavior.
func (td *TypeData) AddBehavior(name string, mask uint32, index int) (*Behavior, error) {
	if td.FindBehavior(name) != nil {
		return nil, fmt.Errorf("behavior '%s' %w", name, ErrDuplicate)
	}
	b := &Behavior{Name: name, Mask: mask, Index: index}
	td.Behaviors = append(td.Behaviors, b)
	return b, nil
}

// AddType registers a type whose behaviors must already be registered.
// The first type added becomes the default.
func (td *TypeData) AddType(name string, fields []Field, behaviors []string) (*Type, error) {
	if td.FindType(name) != nil {
		return nil, fmt.Errorf("type '%s' %w", name, ErrDuplicate)
	}
	t := &Type{Name: name}
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f.Name] {
			return nil, fmt.Errorf("field '%s' of type '%s' %w", f.Name, name, ErrDuplicate)
		}
		seen[f.Name] = true
		t.Fields = append(t.Fields, f)
	}
	for _, bname := range behaviors {
		b := td.FindBehavior(bname)
		if b == nil {
			return nil, fmt.Errorf("type '%s': %w '%s'", name, ErrUnknownBehavior, bname)
		}
		t.Behaviors = append(t.Behaviors, b)
	}
	td.Types = append(td.Types, t)
	if td.Default == nil {
		td.Default = t
	}
	return t, nil
}

// FindType returns the named type or nil.
func (td *TypeData) FindType(name string) *Type {
	for _, t := range td.Types {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// LookupType returns the named type, trying the name as given and then in
// upper case. An unknown name yields a *TypeError.
func (td *TypeData) LookupType(name string) (*Type, error) {
	if t := td.FindType(name); t != nil {
		return t, nil
	}
	if t := td.FindType(strings.ToUpper(name)); t != nil {
		return t, nil
	}
	return nil, &TypeError{Name: name}
}

// TypeError reports a type name the loaded script does not define.
type TypeError struct {
	Name string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("Unknown type '%s'", e.Name)
}

func (e *TypeError) Unwrap() error {
	return ErrUnknownType
}

// FindBehavior returns the named behavior or nil.
func (td *TypeData) FindBehavior(name string) *Behavior {
	for _, b := range td.Behaviors {
		if b.Name == name {
			return b
		}
	}
	return nil
}
