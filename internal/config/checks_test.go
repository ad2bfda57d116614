package config

import (
	"os"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("espc", pflag.ContinueOnError)
	BindFlags(fs)
	return fs
}

func TestCheckRoot_PrefersExplicitFlagOverPositional(t *testing.T) {
	fs := newFlagSet()
	require.NoError(t, fs.Parse([]string{"--root=/policies", "/ignored"}))

	root, err := checkRoot(fs)
	require.NoError(t, err)
	assert.Equal(t, "/policies", root)
}

func TestCheckRoot_FallsBackToPositionalArg(t *testing.T) {
	fs := newFlagSet()
	require.NoError(t, fs.Parse([]string{"/policies"}))

	root, err := checkRoot(fs)
	require.NoError(t, err)
	assert.Equal(t, "/policies", root)
}

func TestCheckRoot_DefaultsToCurrentDirectory(t *testing.T) {
	fs := newFlagSet()
	require.NoError(t, fs.Parse(nil))

	root, err := checkRoot(fs)
	require.NoError(t, err)
	assert.Equal(t, ".", root)
}

func TestCheckWorkers_RejectsNegative(t *testing.T) {
	fs := newFlagSet()
	require.NoError(t, fs.Parse([]string{"--workers=-3"}))

	_, err := checkWorkers(fs, LoadConfig())
	assert.Error(t, err)
}

func TestCheckWorkers_FallsBackToEnvWhenUnset(t *testing.T) {
	clearConfigEnvVars()
	defer clearConfigEnvVars()
	os.Setenv("ESP_BATCH_WORKERS", "6")

	fs := newFlagSet()
	require.NoError(t, fs.Parse(nil))

	workers, err := checkWorkers(fs, LoadConfig())
	require.NoError(t, err)
	assert.Equal(t, 6, workers)
}

func TestCheckWorkers_ExplicitFlagWinsOverEnv(t *testing.T) {
	clearConfigEnvVars()
	defer clearConfigEnvVars()
	os.Setenv("ESP_BATCH_WORKERS", "6")

	fs := newFlagSet()
	require.NoError(t, fs.Parse([]string{"--workers=2"}))

	workers, err := checkWorkers(fs, LoadConfig())
	require.NoError(t, err)
	assert.Equal(t, 2, workers)
}

func TestCheckTimeoutSeconds_RejectsNegative(t *testing.T) {
	fs := newFlagSet()
	require.NoError(t, fs.Parse([]string{"--timeout=-1"}))

	_, err := checkTimeoutSeconds(fs, LoadConfig())
	assert.Error(t, err)
}

func TestCheckTimeoutSeconds_AcceptsZero(t *testing.T) {
	fs := newFlagSet()
	require.NoError(t, fs.Parse([]string{"--timeout=0"}))

	seconds, err := checkTimeoutSeconds(fs, LoadConfig())
	require.NoError(t, err)
	assert.Equal(t, 0, seconds)
}

func TestCheckTimeoutSeconds_FallsBackToEnvWhenUnset(t *testing.T) {
	clearConfigEnvVars()
	defer clearConfigEnvVars()
	os.Setenv("ESP_COLLECTOR_TIMEOUT_SECONDS", "20")

	fs := newFlagSet()
	require.NoError(t, fs.Parse(nil))

	seconds, err := checkTimeoutSeconds(fs, LoadConfig())
	require.NoError(t, err)
	assert.Equal(t, 20, seconds)
}
