package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/espsec/espc/internal/types"
)

func TestStateField_Allows(t *testing.T) {
	f := StateField{DataType: types.TypeInt, AllowedOps: []types.Operation{types.OpEquals, types.OpGreaterThan}}
	assert.True(t, f.Allows(types.OpEquals))
	assert.True(t, f.Allows(types.OpGreaterThan))
	assert.False(t, f.Allows(types.OpContains))
}

func TestRegistry_RegisterRejectsEmptyKind(t *testing.T) {
	r := NewRegistry()
	err := r.Register(Contract{})
	assert.Error(t, err)
}

func TestRegistry_RegisterRejectsDuplicateKind(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Contract{Kind: "file_metadata"}))
	err := r.Register(Contract{Kind: "file_metadata"})
	assert.Error(t, err)
}

func TestRegistry_GetAndKinds(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Contract{Kind: "rpm_package"}))
	require.NoError(t, r.Register(Contract{Kind: "file_metadata"}))

	_, ok := r.Get("does_not_exist")
	assert.False(t, ok)

	c, ok := r.Get("rpm_package")
	require.True(t, ok)
	assert.Equal(t, "rpm_package", c.Kind)

	assert.Equal(t, []string{"file_metadata", "rpm_package"}, r.Kinds())
}

func TestContract_RequiredObjectFieldAndStateFieldByName(t *testing.T) {
	c := Contract{
		Kind:         "file_metadata",
		ObjectFields: map[string]types.DataType{"path": types.TypeString},
		StateFields: map[string]StateField{
			"mode": {DataType: types.TypeString, AllowedOps: []types.Operation{types.OpEquals}},
		},
	}

	dt, ok := c.RequiredObjectField("path")
	require.True(t, ok)
	assert.Equal(t, types.TypeString, dt)

	_, ok = c.RequiredObjectField("missing")
	assert.False(t, ok)

	field, ok := c.StateFieldByName("mode")
	require.True(t, ok)
	assert.True(t, field.Allows(types.OpEquals))
}
