package server

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"easel/internal/dispatch"
	"easel/internal/normalize"
	"easel/internal/plugin"
	"easel/internal/runner"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `<?xml version="1.0" encoding="UTF-8"?>
<inkscape-extension xmlns="http://www.inkscape.org/namespace/inkscape/extension">
  <name>Gaussian Blur</name>
  <id>org.example.blur</id>
  <param name="radius" type="float" min="0" max="100" gui-text="Blur radius">2.0</param>
  <effect>
    <effects-menu>
      <submenu name="Filters"/>
    </effects-menu>
  </effect>
  <script>
    <command interpreter="python">blur.py</command>
  </script>
</inkscape-extension>`

func writeManifest(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

// fakeRunner echoes the sentinel named in the action list, imitating a tool
// that honors the message action.
type fakeRunner struct {
	mu     sync.Mutex
	specs  []runner.Spec
	stdout string
}

func (f *fakeRunner) Run(ctx context.Context, spec runner.Spec) (runner.ProcessResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.specs = append(f.specs, spec)

	stdout := f.stdout
	for _, arg := range spec.Args {
		if idx := strings.Index(arg, "message:"); idx >= 0 {
			stdout += "\n" + arg[idx+len("message:"):]
		}
	}
	return runner.ProcessResult{ExitCode: 0, Stdout: stdout}, nil
}

func newTestServer(fake *fakeRunner, registry *plugin.Registry) *MCPServer {
	d := dispatch.New(fake, normalize.NewNormalizer(), registry, dispatch.Options{
		Executable:  "vectool",
		Timeout:     5 * time.Second,
		Concurrency: 2,
		AcquireWait: time.Second,
		HistorySize: 16,
	})
	return NewMCPServer(d, registry, "test")
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	return text.Text
}

func TestToolName(t *testing.T) {
	assert.Equal(t, "vector_union", toolName("union"))
	assert.Equal(t, "vector_document_cleanup", toolName("document-cleanup"))
}

func TestHandleDiscover(t *testing.T) {
	fake := &fakeRunner{stdout: "rect1,0,0,10,10\ncircle2,5,5,20,20"}
	s := newTestServer(fake, nil)

	result, err := s.handleDiscover(context.Background(), callRequest(map[string]interface{}{
		"input_path": "doc.svg",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var parsed normalize.Result
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &parsed))
	assert.True(t, parsed.Success)
	assert.EqualValues(t, 2, parsed.Payload["object_count"])
}

func TestHandleDiscover_MissingArgument(t *testing.T) {
	s := newTestServer(&fakeRunner{}, nil)

	result, err := s.handleDiscover(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestOperationHandler_FullRoundTrip(t *testing.T) {
	fake := &fakeRunner{stdout: "rect1,0,0,10,10\ncircle2,5,5,20,20"}
	s := newTestServer(fake, nil)

	_, err := s.handleDiscover(context.Background(), callRequest(map[string]interface{}{
		"input_path": "doc.svg",
	}))
	require.NoError(t, err)
	fake.mu.Lock()
	fake.stdout = ""
	fake.mu.Unlock()

	handler := s.operationHandler("union")
	result, err := handler(context.Background(), callRequest(map[string]interface{}{
		"input_path":  "doc.svg",
		"output_path": "out.svg",
		"targets":     []interface{}{"rect1", "circle2"},
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var parsed normalize.Result
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &parsed))
	assert.True(t, parsed.Success)
	assert.NotEmpty(t, parsed.Payload["execution_id"])
}

func TestOperationHandler_ParametersForwarded(t *testing.T) {
	fake := &fakeRunner{stdout: "rect1,0,0,10,10"}
	s := newTestServer(fake, nil)

	_, err := s.handleDiscover(context.Background(), callRequest(map[string]interface{}{
		"input_path": "doc.svg",
	}))
	require.NoError(t, err)
	fake.mu.Lock()
	fake.stdout = ""
	fake.mu.Unlock()

	handler := s.operationHandler("rotate")
	result, err := handler(context.Background(), callRequest(map[string]interface{}{
		"input_path": "doc.svg",
		"targets":    []interface{}{"rect1"},
		"angle":      45.0,
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	fake.mu.Lock()
	last := fake.specs[len(fake.specs)-1]
	fake.mu.Unlock()
	assert.Contains(t, last.Args[1], "transform-rotate:45")
}

func TestOperationHandler_FailureIsErrorResultWithClassification(t *testing.T) {
	s := newTestServer(&fakeRunner{}, nil)

	handler := s.operationHandler("union")
	result, err := handler(context.Background(), callRequest(map[string]interface{}{
		"input_path": "doc.svg",
		"targets":    []interface{}{"rect1", "circle2"},
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	var parsed normalize.Result
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &parsed))
	assert.Equal(t, normalize.ClassMissingPrerequisite, parsed.Classification)
}

func TestOperationHandler_NonStringTarget(t *testing.T) {
	s := newTestServer(&fakeRunner{}, nil)

	handler := s.operationHandler("union")
	result, err := handler(context.Background(), callRequest(map[string]interface{}{
		"input_path": "doc.svg",
		"targets":    []interface{}{"rect1", 7},
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleMeasure(t *testing.T) {
	fake := &fakeRunner{stdout: "rect1,0,0,10,10"}
	s := newTestServer(fake, nil)

	_, err := s.handleDiscover(context.Background(), callRequest(map[string]interface{}{
		"input_path": "doc.svg",
	}))
	require.NoError(t, err)
	fake.mu.Lock()
	fake.stdout = "42\n"
	fake.mu.Unlock()

	result, err := s.handleMeasure(context.Background(), callRequest(map[string]interface{}{
		"input_path":  "doc.svg",
		"object_id":   "rect1",
		"measurement": "height",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var parsed normalize.Result
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &parsed))
	assert.True(t, parsed.Success)
	assert.EqualValues(t, 42, parsed.Payload["value"])
}

func TestHandlePluginList(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "blur.inx", sampleManifest)

	fake := &fakeRunner{}
	registry := plugin.NewRegistry([]string{dir}, plugin.ExecConfig{Executable: "vectool", Timeout: time.Second}, fake, normalize.NewNormalizer())
	_, errs := registry.Scan()
	require.Empty(t, errs)

	s := newTestServer(fake, registry)

	result, err := s.handlePluginList(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var descriptors []plugin.Descriptor
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &descriptors))
	require.Len(t, descriptors, 1)
	assert.Equal(t, "org.example.blur", descriptors[0].ID)
}

func TestHandlePluginList_NoRegistry(t *testing.T) {
	s := newTestServer(&fakeRunner{}, nil)

	result, err := s.handlePluginList(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleRescan(t *testing.T) {
	dir := t.TempDir()
	fake := &fakeRunner{}
	registry := plugin.NewRegistry([]string{dir}, plugin.ExecConfig{Executable: "vectool", Timeout: time.Second}, fake, normalize.NewNormalizer())
	s := newTestServer(fake, registry)

	writeManifest(t, dir, "blur.inx", sampleManifest)

	result, err := s.handleRescan(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var summary map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &summary))
	assert.EqualValues(t, 1, summary["plugin_count"])
}

func TestHandleHistory(t *testing.T) {
	fake := &fakeRunner{stdout: "rect1,0,0,10,10"}
	s := newTestServer(fake, nil)

	_, err := s.handleDiscover(context.Background(), callRequest(map[string]interface{}{
		"input_path": "doc.svg",
	}))
	require.NoError(t, err)

	result, err := s.handleHistory(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var entries []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "discover", entries[0]["operation"])
}

func TestNewMCPServer_NilRegistry(t *testing.T) {
	s := newTestServer(&fakeRunner{}, nil)
	require.NotNil(t, s.mcpServer)

	result, err := s.handlePluginExecute(context.Background(), callRequest(map[string]interface{}{
		"plugin":     "org.example.blur",
		"input_path": "doc.svg",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
