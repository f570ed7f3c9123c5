package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte(content), 0644))
}

func TestLoadConfig_DefaultsWhenMissing(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DefaultConcurrency, cfg.Dispatch.Concurrency)
	assert.Equal(t, DefaultTimeoutSeconds, cfg.Tool.TimeoutSeconds)
	assert.Equal(t, DefaultHistorySize, cfg.Dispatch.HistorySize)
	assert.NotEmpty(t, cfg.Plugins.Directories)
}

func TestLoadConfig_Override(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
tool:
  executable: /opt/tools/vectool
  timeoutSeconds: 120
  noisePatterns:
    - "extra-chatter"
dispatch:
  concurrency: 8
plugins:
  directories:
    - /opt/tools/extensions
  watch: true
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "/opt/tools/vectool", cfg.Tool.Executable)
	assert.Equal(t, 2*time.Minute, cfg.Tool.Timeout())
	assert.Equal(t, []string{"extra-chatter"}, cfg.Tool.NoisePatterns)
	assert.Equal(t, 8, cfg.Dispatch.Concurrency)
	// Unset fields keep their defaults.
	assert.Equal(t, DefaultAcquireWaitSeconds, cfg.Dispatch.AcquireWaitSeconds)
	assert.Equal(t, []string{"/opt/tools/extensions"}, cfg.Plugins.Directories)
	assert.True(t, cfg.Plugins.Watch)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "tool: [not a mapping")

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
dispatch:
  concurrency: -1
`)

	_, err := LoadConfig(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dispatch.concurrency")
}

func TestValidate_CollectsMultipleErrors(t *testing.T) {
	cfg := EaselConfig{} // all zero values

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tool.timeoutSeconds")
	assert.Contains(t, err.Error(), "dispatch.concurrency")
}

func TestResolveExecutable_ExplicitWins(t *testing.T) {
	cfg := ToolConfig{Executable: "/explicit/vectool"}

	path, err := cfg.ResolveExecutable()
	require.NoError(t, err)
	assert.Equal(t, "/explicit/vectool", path)
}
