package sysctlparameter

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/espsec/espc/internal/types"
)

func TestContract_Fields(t *testing.T) {
	c := Contract()
	value, ok := c.StateFieldByName("value")
	require.True(t, ok)
	assert.True(t, value.Allows(types.OpPatternMatch))

	intValue, ok := c.StateFieldByName("int_value")
	require.True(t, ok)
	assert.True(t, intValue.Allows(types.OpGte))
	assert.False(t, intValue.Allows(types.OpPatternMatch))
}

func TestCollect_MissingKeyParamIsError(t *testing.T) {
	_, err := Collector{}.Collect(context.Background(), map[string]types.Value{})
	assert.Error(t, err)
}

func TestCollect_UnknownKeyPropagatesCommandError(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix-only fixture command")
	}
	c := Collector{Timeout: time.Second}
	_, err := c.Collect(context.Background(), map[string]types.Value{
		"key": types.String("definitely.not.a.real.sysctl.key"),
	})
	assert.Error(t, err)
}
