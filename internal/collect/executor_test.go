package collect

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemCommandExecutor_IsAllowed(t *testing.T) {
	e := NewSystemCommandExecutor(time.Second)
	e.AllowCommands("echo")

	assert.True(t, e.IsAllowed("echo"))
	assert.False(t, e.IsAllowed("rm"))
}

func TestSystemCommandExecutor_RunRejectsNonWhitelisted(t *testing.T) {
	e := NewSystemCommandExecutor(time.Second)
	e.AllowCommands("echo")

	_, err := e.Run(context.Background(), 0, "rm", "-rf", "/")
	assert.Error(t, err)
}

func TestSystemCommandExecutor_RunAllowsWhitelisted(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix-only fixture command")
	}
	e := NewSystemCommandExecutor(time.Second)
	e.AllowCommands("echo")

	res, err := e.Run(context.Background(), 0, "echo", "hi")
	require.NoError(t, err)
	assert.Equal(t, "hi\n", res.Stdout)
}

func TestSystemCommandExecutor_RunFallsBackToDefaultTimeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix-only fixture command")
	}
	e := NewSystemCommandExecutor(50 * time.Millisecond)
	e.AllowCommands("sleep")

	res, err := e.Run(context.Background(), 0, "sleep", "2")
	assert.Error(t, err)
	assert.True(t, res.TimedOut)
}

func TestRHEL9Executor_WhitelistsExpectedCommandsOnly(t *testing.T) {
	e := RHEL9Executor(time.Second)

	for _, name := range []string{"rpm", "systemctl", "getenforce", "sysctl", "auditctl", "id", "stat", "getent"} {
		assert.True(t, e.IsAllowed(name), "expected %q to be whitelisted", name)
	}
	for _, name := range []string{"rm", "dd", "curl"} {
		assert.False(t, e.IsAllowed(name), "expected %q to be rejected", name)
	}
}
