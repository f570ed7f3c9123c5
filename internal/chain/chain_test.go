package chain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_SelectModifyPersist(t *testing.T) {
	c, err := NewBuilder().
		Select("rect1", "circle2").
		Modify("path-union").
		Persist("out.svg", "EASEL-OK:1")
	require.NoError(t, err)

	steps := c.Steps()
	require.Len(t, steps, 4)
	assert.Equal(t, StepSelecting, steps[0].Kind)
	assert.Equal(t, StepSelecting, steps[1].Kind)
	assert.Equal(t, StepModifying, steps[2].Kind)
	assert.Equal(t, StepPersisting, steps[3].Kind)

	action := c.ActionString()
	assert.Equal(t, "select-by-id:rect1;select-by-id:circle2;path-union;export-filename:out.svg;export-do;message:EASEL-OK:1", action)
}

func TestBuilder_PersistIsAlwaysLast(t *testing.T) {
	c, err := NewBuilder().Select("a").Modify("object-to-path").Persist("out.svg", "S")
	require.NoError(t, err)

	steps := c.Steps()
	assert.Equal(t, StepPersisting, steps[len(steps)-1].Kind)
	persists := 0
	for _, s := range steps {
		if s.Kind == StepPersisting {
			persists++
		}
	}
	assert.Equal(t, 1, persists)
}

func TestBuilder_ModifyBeforeSelectRejected(t *testing.T) {
	_, err := NewBuilder().Modify("path-union").Persist("out.svg", "S")
	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Contains(t, buildErr.Reason, "selection")
}

func TestBuilder_TargetIndependentSkipsSelection(t *testing.T) {
	c, err := NewTargetIndependentBuilder().
		Modify("file-vacuum-defs").
		Modify("file-cleanup").
		Persist("doc.svg", "S")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(c.ActionString(), "file-vacuum-defs"))
}

func TestBuilder_EmptyChainRejected(t *testing.T) {
	_, err := NewTargetIndependentBuilder().Persist("out.svg", "S")
	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)
}

func TestBuilder_InvalidIdentifierRejected(t *testing.T) {
	// A shell-metacharacter identifier must never reach the process.
	_, err := NewBuilder().Select("rect1; rm -rf /").Modify("path-union").Persist("out.svg", "S")
	var invalid *InvalidTargetError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "rect1; rm -rf /", invalid.ID)
}

func TestBuilder_MissingOutputPath(t *testing.T) {
	_, err := NewBuilder().Select("a").Modify("path-union").Persist("", "S")
	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Contains(t, buildErr.Reason, "output path")
}

func TestValidIdentifier(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{"rect1", true},
		{"my-path_2", true},
		{"svg:use.clone", true},
		{"_hidden", true},
		{"9starts-with-digit", false},
		{"", false},
		{"has space", false},
		{"semi;colon", false},
	}
	for _, test := range tests {
		assert.Equal(t, test.valid, ValidIdentifier(test.id), "id %q", test.id)
	}
}

func TestChain_Args(t *testing.T) {
	c, err := NewBuilder().Select("a").Modify("path-union").Persist("out.svg", "S")
	require.NoError(t, err)

	args := c.Args("in.svg")
	require.Len(t, args, 3)
	assert.Equal(t, "--batch-process", args[0])
	assert.True(t, strings.HasPrefix(args[1], "--actions="))
	assert.Equal(t, "in.svg", args[2])
}
