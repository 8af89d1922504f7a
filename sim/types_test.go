package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTypes returns AIR (no fields) and WIRE (power, facing) with one behavior.
func testTypes(t *testing.T) *TypeData {
	t.Helper()
	td := NewTypeData()
	_, err := td.AddBehavior("propagate", 0, 1)
	require.NoError(t, err)
	_, err = td.AddType("AIR", nil, nil)
	require.NoError(t, err)
	_, err = td.AddType("WIRE", []Field{
		{Name: "power", Kind: FieldInteger},
		{Name: "facing", Kind: FieldDirection},
	}, []string{"propagate"})
	require.NoError(t, err)
	return td
}

func TestTypeData_FirstTypeIsDefault(t *testing.T) {
	td := testTypes(t)
	assert.Equal(t, "AIR", td.Default.Name)
	assert.Len(t, td.Types, 2)
	assert.Equal(t, "propagate", td.FindType("WIRE").Behaviors[0].Name)
	assert.Nil(t, td.FindType("TORCH"))
}

func TestTypeData_AddType_Errors(t *testing.T) {
	td := testTypes(t)

	_, err := td.AddType("AIR", nil, nil)
	assert.True(t, errors.Is(err, ErrDuplicate))

	_, err = td.AddType("TORCH", nil, []string{"glow"})
	assert.True(t, errors.Is(err, ErrUnknownBehavior))
	assert.EqualError(t, err, "type 'TORCH': unknown behavior 'glow'")

	_, err = td.AddType("LAMP", []Field{{Name: "on"}, {Name: "on"}}, nil)
	assert.True(t, errors.Is(err, ErrDuplicate))
	assert.Nil(t, td.FindType("LAMP"))
}

func TestTypeData_LookupType(t *testing.T) {
	td := testTypes(t)

	wire, err := td.LookupType("wire")
	require.NoError(t, err)
	assert.Equal(t, "WIRE", wire.Name)

	_, err = td.LookupType("torch")
	assert.ErrorIs(t, err, ErrUnknownType)
	assert.EqualError(t, err, "Unknown type 'torch'")
	var terr *TypeError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "torch", terr.Name)
}

func TestTypeData_AddBehavior_Duplicate(t *testing.T) {
	td := testTypes(t)
	_, err := td.AddBehavior("propagate", 0, 2)
	assert.EqualError(t, err, "behavior 'propagate' already defined")
}

func TestBehavior_Accepts(t *testing.T) {
	all := &Behavior{Name: "all"}
	some := &Behavior{Name: "some", Mask: 1<<0 | 1<<3}

	for k := uint8(0); k <= MaxMessageKind; k++ {
		assert.True(t, all.Accepts(k))
	}
	assert.True(t, some.Accepts(0))
	assert.True(t, some.Accepts(3))
	assert.False(t, some.Accepts(1))
	assert.False(t, some.Accepts(MaxMessageKind))
}

func TestParseFieldKind(t *testing.T) {
	k, err := ParseFieldKind("DIRECTION")
	require.NoError(t, err)
	assert.Equal(t, FieldDirection, k)
	assert.Equal(t, "INTEGER", FieldInteger.String())

	_, err = ParseFieldKind("FLOAT")
	assert.EqualError(t, err, "'FLOAT' is not a field kind")
}
