package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindLocalConfig(t *testing.T) {
	// Create a temporary directory structure
	tempDir := t.TempDir()
	subDir := filepath.Join(tempDir, "subdir")
	err := os.Mkdir(subDir, 0o755)
	assert.NoError(t, err)

	configYML := filepath.Join(subDir, ".hipify-batch.yml")
	err = os.WriteFile(configYML, []byte("jobs: 4"), 0o644)
	assert.NoError(t, err)

	// Test finding in subdir
	result := FindLocalConfig(subDir)
	assert.Equal(t, configYML, result)

	// Test finding in parent
	result = FindLocalConfig(filepath.Join(subDir, "deep"))
	assert.Equal(t, configYML, result)

	// Test not found
	result = FindLocalConfig(tempDir)
	assert.Equal(t, "", result)
}

func TestFindGlobalConfig(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tempDir)

	assert.Equal(t, "", FindGlobalConfig())

	dir := filepath.Join(tempDir, "hipify-batch")
	require.NoError(t, os.Mkdir(dir, 0o755))

	configTOML := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(configTOML, []byte("jobs = 2"), 0o644))
	assert.Equal(t, configTOML, FindGlobalConfig())

	// yml is preferred over toml
	configYML := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(configYML, []byte("jobs: 2"), 0o644))
	assert.Equal(t, configYML, FindGlobalConfig())
}
