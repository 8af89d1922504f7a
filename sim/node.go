package sim

import (
	"fmt"
	"strings"
)

// Node is a located instance of a Type. Values holds one entry per field of
// the type, in field order.
type Node struct {
	Location Location
	Type     *Type
	Values   []int32

	removed bool
}

func newNode(loc Location, t *Type) *Node {
	return &Node{Location: loc, Type: t, Values: make([]int32, len(t.Fields))}
}

// Field returns the value of the named field.
func (n *Node) Field(name string) (int32, bool) {
	i, _, ok := n.Type.FieldIndex(name)
	if !ok {
		return 0, false
	}
	return n.Values[i], true
}

// SetField assigns the named field after checking the value fits its kind.
func (n *Node) SetField(name string, value int32) error {
	i, kind, ok := n.Type.FieldIndex(name)
	if !ok {
		return &FieldError{Type: n.Type.Name, Field: name}
	}
	if kind == FieldDirection && !IsDirection(value) {
		return fmt.Errorf("'%d' is not a direction", value)
	}
	n.Values[i] = value
	return nil
}

// FieldError reports a field name that the node's type does not define.
type FieldError struct {
	Type  string
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("The type '%s' doesn't have the field '%s'", e.Type, e.Field)
}

func (e *FieldError) Unwrap() error {
	return ErrUnknownField
}

// String formats the node as "(x,y,z) TYPE field:value ...".
func (n *Node) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "(%d,%d,%d) %s", n.Location.X, n.Location.Y, n.Location.Z, n.Type.Name)
	for i, f := range n.Type.Fields {
		sb.WriteByte(' ')
		sb.WriteString(f.Name)
		sb.WriteByte(':')
		if f.Kind == FieldDirection {
			sb.WriteString(Direction(n.Values[i]).String())
		} else {
			fmt.Fprintf(&sb, "%d", n.Values[i])
		}
	}
	return sb.String()
}
