// Package chain compiles high-level operation requests into the external
// tool's stateful batch action protocol.
//
// The tool's batch mode executes a semicolon-delimited action list in order:
// object selection, then modification, then an explicit export ("persist")
// action. A list that omits or reorders these steps does not fail; it
// silently discards all effect. The compiler therefore models the sequence as
// an explicit state machine: a Builder accumulates selecting and modifying
// steps, and only Builder.Persist can produce a Chain value. A chain without
// its terminal persistence step is unrepresentable, not merely checked.
//
// Target identifiers are validated against the document addressing format at
// selection time, catching fabricated or mangled identifiers before they ever
// reach a process. Compiled chains are pure data; execution belongs to the
// dispatcher.
package chain
