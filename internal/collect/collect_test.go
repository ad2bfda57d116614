package collect

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCommand_Success(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix-only fixture command")
	}
	res, err := RunCommand(context.Background(), time.Second, "echo", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", res.Stdout)
	assert.False(t, res.TimedOut)
}

func TestRunCommand_Timeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix-only fixture command")
	}
	res, err := RunCommand(context.Background(), 50*time.Millisecond, "sleep", "2")
	assert.Error(t, err)
	assert.True(t, res.TimedOut)
}

func TestRunCommand_DefaultTimeoutApplied(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix-only fixture command")
	}
	start := time.Now()
	_, err := RunCommand(context.Background(), 0, "echo", "ok")
	require.NoError(t, err)
	assert.Less(t, time.Since(start), DefaultCommandTimeout)
}
