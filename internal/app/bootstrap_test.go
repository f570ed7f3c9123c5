package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApplication_DefaultsWithEmptyConfigDir(t *testing.T) {
	dir := t.TempDir()

	application, err := NewApplication(NewConfig(false, true, dir), "test")
	require.NoError(t, err)
	require.NotNil(t, application)
	assert.NotNil(t, application.Dispatcher())
	assert.NotNil(t, application.Registry())
	assert.Equal(t, 4, application.config.EaselConfig.Dispatch.Concurrency)
}

func TestNewApplication_ConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	content := `
tool:
  executable: vectool
  timeoutSeconds: 10
dispatch:
  concurrency: 2
plugins:
  directories:
    - ` + filepath.Join(dir, "extensions") + `
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644))

	application, err := NewApplication(NewConfig(false, true, dir), "test")
	require.NoError(t, err)
	assert.Equal(t, "vectool", application.config.EaselConfig.Tool.Executable)
	assert.Equal(t, 2, application.config.EaselConfig.Dispatch.Concurrency)
}

func TestNewApplication_InvalidConfigFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"),
		[]byte("dispatch:\n  concurrency: -1\n"), 0644))

	_, err := NewApplication(NewConfig(false, true, dir), "test")
	assert.Error(t, err)
}
