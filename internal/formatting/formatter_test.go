package formatting

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"easel/internal/normalize"
	"easel/internal/plugin"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatTable, f)

	f, err = ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestPluginList_Table(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf, FormatTable)

	err := f.PluginList([]*plugin.Descriptor{
		{ID: "org.example.blur", Name: "Gaussian Blur", Category: "filters",
			Parameters: []plugin.Parameter{{Name: "radius", Type: plugin.TypeFloat}}},
	})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "org.example.blur")
	assert.Contains(t, out, "radius")
}

func TestPluginList_Empty(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf, FormatTable)

	require.NoError(t, f.PluginList(nil))
	assert.Contains(t, buf.String(), "No plugins found")
}

func TestPluginList_JSON(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf, FormatJSON)

	err := f.PluginList([]*plugin.Descriptor{{ID: "org.example.blur", Name: "Gaussian Blur"}})
	require.NoError(t, err)

	var parsed []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	require.Len(t, parsed, 1)
	assert.Equal(t, "org.example.blur", parsed[0]["id"])
}

func TestPluginDetail_YAML(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf, FormatYAML)

	min := 0.0
	err := f.PluginDetail(&plugin.Descriptor{
		ID:         "org.example.blur",
		Parameters: []plugin.Parameter{{Name: "radius", Type: plugin.TypeFloat, Min: &min}},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "org.example.blur")
	assert.Contains(t, buf.String(), "radius")
}

func TestObjectList_Table(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf, FormatTable)

	err := f.ObjectList([]normalize.Object{
		{ID: "rect1", X: 0, Y: 0, Width: 10, Height: 20},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "rect1")
}

func TestConstraintString(t *testing.T) {
	min, max := 1.0, 10.0
	s := constraintString(plugin.Parameter{Min: &min, Max: &max})
	assert.Equal(t, "min 1, max 10", s)

	s = constraintString(plugin.Parameter{Allowed: []string{"fast", "precise"}})
	assert.True(t, strings.HasPrefix(s, "one of "))
}
