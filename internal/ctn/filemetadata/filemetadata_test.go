package filemetadata

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/espsec/espc/internal/types"
)

func TestCollector_Collect(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sshd_config")
	require.NoError(t, os.WriteFile(path, []byte("Port 22\n"), 0o644))

	var c Collector
	data, err := c.Collect(context.Background(), map[string]types.Value{
		"path": types.String(path),
	})
	require.NoError(t, err)
	require.Len(t, data.Items, 1)
	assert.Equal(t, types.Int64(8), data.Items[0]["size"])
	assert.True(t, data.Complete)
}

func TestCollector_MissingPath(t *testing.T) {
	var c Collector
	_, err := c.Collect(context.Background(), map[string]types.Value{})
	assert.Error(t, err)
}

func TestContract_RequiredFields(t *testing.T) {
	c := Contract()
	_, ok := c.RequiredObjectField("path")
	assert.True(t, ok)
	field, ok := c.StateFieldByName("mode")
	require.True(t, ok)
	assert.True(t, field.Allows(types.OpEquals))
	assert.False(t, field.Allows(types.OpGreaterThan))
}
