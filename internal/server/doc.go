// Package server exposes the orchestrator as an MCP server over stdio.
//
// Each built-in operation kind is registered as its own tool with a typed
// argument schema, so an agent sees the operation vocabulary directly instead
// of a single generic dispatch endpoint. Discovery, plugin listing and
// execution, registry re-scan, and the execution history round out the tool
// surface.
//
// Handlers return the normalized result as JSON in both directions: a failed
// operation is an MCP error result whose text is still the full structured
// result, so callers branch on the failure classification rather than on
// prose.
package server
