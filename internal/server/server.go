package server

import (
	"context"
	"strings"

	"easel/internal/chain"
	"easel/internal/dispatch"
	"easel/internal/plugin"
	"easel/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPServer exposes the orchestrator over the Model Context Protocol using
// stdio transport. Every built-in operation kind is registered as its own
// tool, alongside discovery and plugin registry tools.
type MCPServer struct {
	dispatcher *dispatch.Dispatcher
	registry   *plugin.Registry
	mcpServer  *server.MCPServer
}

// NewMCPServer creates the MCP server and registers all tools. The registry
// may be nil, in which case the plugin tools report a configuration error
// instead of being omitted, so the tool surface stays stable.
func NewMCPServer(dispatcher *dispatch.Dispatcher, registry *plugin.Registry, version string) *MCPServer {
	mcpServer := server.NewMCPServer(
		"easel",
		version,
		server.WithToolCapabilities(true),
	)

	m := &MCPServer{
		dispatcher: dispatcher,
		registry:   registry,
		mcpServer:  mcpServer,
	}
	m.registerTools()
	return m
}

// Start serves MCP over stdin/stdout and blocks until the transport closes.
func (m *MCPServer) Start(ctx context.Context) error {
	logging.Info("Server", "Serving MCP over stdio")
	return server.ServeStdio(m.mcpServer)
}

// toolName maps an operation kind onto the tool namespace. Hyphens are not
// universally accepted in tool names, so kinds are underscored.
func toolName(kind string) string {
	return "vector_" + strings.ReplaceAll(kind, "-", "_")
}

func (m *MCPServer) registerTools() {
	discoverTool := mcp.NewTool("document_discover",
		mcp.WithDescription("List all addressable objects in a document with their identifiers and bounding boxes. Must be called before any operation that addresses objects by identifier."),
		mcp.WithString("input_path",
			mcp.Required(),
			mcp.Description("Path to the document to inspect"),
		),
	)
	m.mcpServer.AddTool(discoverTool, m.handleDiscover)

	measureTool := mcp.NewTool("object_measure",
		mcp.WithDescription("Measure one geometric property of a single object"),
		mcp.WithString("input_path",
			mcp.Required(),
			mcp.Description("Path to the document to inspect"),
		),
		mcp.WithString("object_id",
			mcp.Required(),
			mcp.Description("Object identifier from a prior document_discover call"),
		),
		mcp.WithString("measurement",
			mcp.Required(),
			mcp.Description("Property to measure"),
			mcp.Enum("x", "y", "width", "height"),
		),
	)
	m.mcpServer.AddTool(measureTool, m.handleMeasure)

	for _, op := range chain.Operations() {
		m.mcpServer.AddTool(m.operationTool(op), m.operationHandler(op.Kind))
	}

	pluginListTool := mcp.NewTool("plugin_list",
		mcp.WithDescription("List installed plugins with their parameter schemas"),
		mcp.WithString("category",
			mcp.Description("Only list plugins in this category"),
		),
	)
	m.mcpServer.AddTool(pluginListTool, m.handlePluginList)

	pluginExecuteTool := mcp.NewTool("plugin_execute",
		mcp.WithDescription("Run an installed plugin against a document"),
		mcp.WithString("plugin",
			mcp.Required(),
			mcp.Description("Identifier of the plugin to run"),
		),
		mcp.WithString("input_path",
			mcp.Required(),
			mcp.Description("Path to the document to process"),
		),
		mcp.WithString("output_path",
			mcp.Description("Where to write the result (defaults to input_path)"),
		),
		mcp.WithObject("parameters",
			mcp.Description("Plugin parameters as a JSON object; omitted parameters use their declared defaults"),
		),
	)
	m.mcpServer.AddTool(pluginExecuteTool, m.handlePluginExecute)

	rescanTool := mcp.NewTool("registry_rescan",
		mcp.WithDescription("Re-scan the plugin directories and rebuild the registry"),
	)
	m.mcpServer.AddTool(rescanTool, m.handleRescan)

	historyTool := mcp.NewTool("execution_history",
		mcp.WithDescription("Recent executions, newest first, with outcome and duration"),
	)
	m.mcpServer.AddTool(historyTool, m.handleHistory)
}

// operationTool builds the tool declaration for one built-in operation. All
// operation parameters are numeric in the current catalog.
func (m *MCPServer) operationTool(op chain.Operation) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(op.Description),
		mcp.WithString("input_path",
			mcp.Required(),
			mcp.Description("Path to the document to process"),
		),
		mcp.WithString("output_path",
			mcp.Description("Where to write the result (defaults to input_path)"),
		),
	}
	if !op.TargetIndependent {
		opts = append(opts, mcp.WithArray("targets",
			mcp.Description("Object identifiers from a prior document_discover call"),
		))
	}
	for _, name := range op.Parameters {
		opts = append(opts, mcp.WithNumber(name,
			mcp.Required(),
			mcp.Description("Operation parameter "+name),
		))
	}
	return mcp.NewTool(toolName(op.Kind), opts...)
}
