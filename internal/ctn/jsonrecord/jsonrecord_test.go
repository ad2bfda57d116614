package jsonrecord

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/espsec/espc/internal/types"
)

func TestCollector_ArrayDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "records.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name":"a"},{"name":"b"}]`), 0o644))

	var c Collector
	data, err := c.Collect(context.Background(), map[string]types.Value{"path": types.String(path)})
	require.NoError(t, err)
	require.Len(t, data.Items, 2)
	assert.Equal(t, "a", data.Items[0]["record"].Record["name"])
}

func TestCollector_ObjectDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "record.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"enabled":true}`), 0o644))

	var c Collector
	data, err := c.Collect(context.Background(), map[string]types.Value{"path": types.String(path)})
	require.NoError(t, err)
	require.Len(t, data.Items, 1)
	assert.Equal(t, true, data.Items[0]["record"].Record["enabled"])
}
