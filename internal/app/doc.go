// Package app bootstraps the orchestrator: it loads configuration, resolves
// the external executable, wires the runner, normalizer, plugin registry and
// dispatcher together, and runs the MCP server.
//
// Commands construct an Application and either serve it or use its components
// directly for one-shot invocations.
package app
