package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"offset=2.5", "count=3", "smooth=true", "label=hello"})
	require.NoError(t, err)
	assert.Equal(t, 2.5, params["offset"])
	assert.Equal(t, 3.0, params["count"])
	assert.Equal(t, true, params["smooth"])
	assert.Equal(t, "hello", params["label"])
}

func TestParseParams_Invalid(t *testing.T) {
	_, err := parseParams([]string{"no-equals-sign"})
	assert.Error(t, err)

	_, err = parseParams([]string{"=value"})
	assert.Error(t, err)
}

func TestParseParams_Empty(t *testing.T) {
	params, err := parseParams(nil)
	require.NoError(t, err)
	assert.Nil(t, params)
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, expected := range []string{"serve", "discover", "apply", "ops", "plugins", "version"} {
		assert.True(t, names[expected], "command %s must be registered", expected)
	}
}

func TestVersionRoundTrip(t *testing.T) {
	SetVersion("1.2.3")
	assert.Equal(t, "1.2.3", GetVersion())
}
