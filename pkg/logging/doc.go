// Package logging provides easel's structured logging, built on the standard
// slog package.
//
// All log entries carry a subsystem identifier so that output from the
// dispatcher, plugin registry, process runner and server layers can be
// filtered independently:
//
//	logging.Init(logging.LevelInfo, os.Stderr)
//
//	logging.Info("Registry", "Scanned %d manifests", n)
//	logging.Error("Runner", err, "Process spawn failed")
//
// Output always goes to the writer passed to Init (normally stderr), never to
// stdout: stdout belongs to the MCP stdio transport.
//
// The package is safe for concurrent use from multiple goroutines.
package logging
