package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/phrasego/internal/config"
)

func TestConfigCommand_MasksPassword(t *testing.T) {
	t.Setenv(config.EnvPrefix+"REDIS_PASSWORD", "")
	t.Cleanup(func() { configPath = "" })

	path := filepath.Join(t.TempDir(), "phrasego.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search:\n  algorithm: batch\ncache:\n  redis_password: hunter2\n"), 0o600))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"config", "-f", path})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, out.String(), "algorithm: batch")
	assert.Contains(t, out.String(), "*******")
	assert.NotContains(t, out.String(), "hunter2")
}
