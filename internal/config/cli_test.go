package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromFlags_DefaultsMatchBindFlagsDefaults(t *testing.T) {
	fs := pflag.NewFlagSet("espc", pflag.ContinueOnError)
	BindFlags(fs)
	require.NoError(t, fs.Parse(nil))

	flags, err := FromFlags(fs)
	require.NoError(t, err)
	assert.Equal(t, ".", flags.Root)
	assert.Equal(t, 0, flags.Workers)
	assert.Equal(t, 5, flags.TimeoutSeconds)
	assert.False(t, flags.JSONOutput)
	assert.Empty(t, flags.DBPath)
}

func TestFromFlags_ReadsEveryBoundFlag(t *testing.T) {
	fs := pflag.NewFlagSet("espc", pflag.ContinueOnError)
	BindFlags(fs)
	require.NoError(t, fs.Parse([]string{
		"--root=/policies",
		"--include=**/*.esp",
		"--exclude=vendor/**",
		"--workers=4",
		"--timeout=10",
		"--json",
		"--db=/tmp/history.db",
		"--env-file=/tmp/.env",
	}))

	flags, err := FromFlags(fs)
	require.NoError(t, err)
	assert.Equal(t, "/policies", flags.Root)
	assert.Equal(t, []string{"**/*.esp"}, flags.IncludeGlobs)
	assert.Equal(t, []string{"vendor/**"}, flags.ExcludeGlobs)
	assert.Equal(t, 4, flags.Workers)
	assert.Equal(t, 10, flags.TimeoutSeconds)
	assert.True(t, flags.JSONOutput)
	assert.Equal(t, "/tmp/history.db", flags.DBPath)
	assert.Equal(t, "/tmp/.env", flags.EnvFile)
}

func TestFromFlags_PropagatesValidationError(t *testing.T) {
	fs := pflag.NewFlagSet("espc", pflag.ContinueOnError)
	BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--workers=-1"}))

	_, err := FromFlags(fs)
	assert.Error(t, err)
}
