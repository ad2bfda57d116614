package filecontent

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
	require.NoError(t, os.WriteFile(path, []byte("Port 22\nPermitRootLogin no\n"), 0o644))

	var c Collector
	data, err := c.Collect(context.Background(), map[string]types.Value{"path": types.String(path)})
	require.NoError(t, err)
	require.Len(t, data.Items, 1)
	assert.Contains(t, data.Items[0]["content"].Str, "PermitRootLogin no")
	assert.Equal(t, int64(3), data.Items[0]["line_count"].Int)
	assert.True(t, data.Complete)
}

func TestCollector_MissingFile(t *testing.T) {
	var c Collector
	_, err := c.Collect(context.Background(), map[string]types.Value{"path": types.String("/no/such/file")})
	assert.Error(t, err)
}
