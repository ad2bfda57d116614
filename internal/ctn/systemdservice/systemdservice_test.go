package systemdservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseProperties(t *testing.T) {
	props := parseProperties("ActiveState=active\nUnitFileState=enabled\n")
	assert.Equal(t, "active", props["ActiveState"])
	assert.Equal(t, "enabled", props["UnitFileState"])
}

func TestContract_Fields(t *testing.T) {
	c := Contract()
	field, ok := c.StateFieldByName("active_state")
	assert.True(t, ok)
	assert.True(t, field.Allows("equals"))
}
