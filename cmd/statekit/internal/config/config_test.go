package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvVerbose, "")
	t.Setenv(EnvInspectAddr, "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, cfg.InspectAddr)
}

func TestLoadFromEnvFile(t *testing.T) {
	t.Setenv(EnvVerbose, "")
	t.Setenv(EnvInspectAddr, "")
	// godotenv does not override variables that are already set.
	os.Unsetenv(EnvVerbose)
	os.Unsetenv(EnvInspectAddr)

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("STATEKIT_VERBOSE=true\nSTATEKIT_INSPECT_ADDR=127.0.0.1:7777\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "127.0.0.1:7777", cfg.InspectAddr)
}

func TestEnvironmentWinsOverFile(t *testing.T) {
	t.Setenv(EnvVerbose, "false")
	t.Setenv(EnvInspectAddr, "")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("STATEKIT_VERBOSE=true\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Verbose)
}

func TestInvalidBoolean(t *testing.T) {
	t.Setenv(EnvVerbose, "sometimes")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorContains(t, err, EnvVerbose)
}
