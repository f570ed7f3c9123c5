package server

import (
	"context"
	"encoding/json"
	"fmt"

	"easel/internal/dispatch"
	"easel/internal/normalize"

	"github.com/mark3labs/mcp-go/mcp"
)

// toolResult renders a normalized result as JSON. Failures are surfaced as
// MCP error results but still carry the full structured payload, so callers
// can branch on the classification instead of parsing prose.
func toolResult(result normalize.Result) *mcp.CallToolResult {
	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	if !result.Success {
		return mcp.NewToolResultError(string(jsonData))
	}
	return mcp.NewToolResultText(string(jsonData))
}

// operationHandler returns the handler for one built-in operation tool. The
// operation's own parameters arrive as top-level arguments next to the
// path and target arguments.
func (m *MCPServer) operationHandler(kind string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		inputPath, err := request.RequireString("input_path")
		if err != nil {
			return mcp.NewToolResultError("input_path argument is required"), nil
		}

		args := request.GetArguments()

		var targets []string
		if raw, ok := args["targets"].([]interface{}); ok {
			for _, item := range raw {
				s, ok := item.(string)
				if !ok {
					return mcp.NewToolResultError(fmt.Sprintf("targets must be strings, got %T", item)), nil
				}
				targets = append(targets, s)
			}
		}

		params := make(map[string]interface{})
		for name, value := range args {
			switch name {
			case "input_path", "output_path", "targets":
			default:
				params[name] = value
			}
		}

		result, err := m.dispatcher.Dispatch(ctx, dispatch.Request{
			Operation:  kind,
			Parameters: params,
			Targets:    targets,
			InputPath:  inputPath,
			OutputPath: request.GetString("output_path", ""),
		})
		if err != nil {
			return nil, err
		}
		return toolResult(result), nil
	}
}

func (m *MCPServer) handleDiscover(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	inputPath, err := request.RequireString("input_path")
	if err != nil {
		return mcp.NewToolResultError("input_path argument is required"), nil
	}

	result, err := m.dispatcher.Discover(ctx, inputPath)
	if err != nil {
		return nil, err
	}
	return toolResult(result), nil
}

func (m *MCPServer) handleMeasure(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	inputPath, err := request.RequireString("input_path")
	if err != nil {
		return mcp.NewToolResultError("input_path argument is required"), nil
	}
	objectID, err := request.RequireString("object_id")
	if err != nil {
		return mcp.NewToolResultError("object_id argument is required"), nil
	}
	measurement, err := request.RequireString("measurement")
	if err != nil {
		return mcp.NewToolResultError("measurement argument is required"), nil
	}

	result, err := m.dispatcher.Measure(ctx, inputPath, objectID, measurement)
	if err != nil {
		return nil, err
	}
	return toolResult(result), nil
}

func (m *MCPServer) handlePluginList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if m.registry == nil {
		return mcp.NewToolResultError("plugin registry is not configured"), nil
	}

	descriptors := m.registry.List(request.GetString("category", ""))
	jsonData, err := json.MarshalIndent(descriptors, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode plugin list: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (m *MCPServer) handlePluginExecute(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("plugin")
	if err != nil {
		return mcp.NewToolResultError("plugin argument is required"), nil
	}
	inputPath, err := request.RequireString("input_path")
	if err != nil {
		return mcp.NewToolResultError("input_path argument is required"), nil
	}

	params := make(map[string]interface{})
	if raw, ok := request.GetArguments()["parameters"].(map[string]interface{}); ok {
		params = raw
	}

	result, err := m.dispatcher.ExecutePlugin(ctx, id, params, inputPath, request.GetString("output_path", ""))
	if err != nil {
		return nil, err
	}
	return toolResult(result), nil
}

func (m *MCPServer) handleRescan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if m.registry == nil {
		return mcp.NewToolResultError("plugin registry is not configured"), nil
	}

	count, errs := m.registry.Scan()
	summary := map[string]interface{}{
		"plugin_count": count,
	}
	if len(errs) > 0 {
		messages := make([]string, 0, len(errs))
		for _, err := range errs {
			messages = append(messages, err.Error())
		}
		summary["errors"] = messages
	}

	jsonData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode scan summary: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (m *MCPServer) handleHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records := m.dispatcher.Recent()
	type entry struct {
		ID             string `json:"id"`
		Operation      string `json:"operation"`
		Success        bool   `json:"success"`
		Classification string `json:"classification,omitempty"`
		Duration       string `json:"duration"`
		StartedAt      string `json:"started_at"`
	}
	entries := make([]entry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, entry{
			ID:             rec.ID,
			Operation:      rec.Operation,
			Success:        rec.Success,
			Classification: string(rec.Classification),
			Duration:       rec.Duration.String(),
			StartedAt:      rec.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	jsonData, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode history: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
