// Package runner spawns single external processes with hard wall-clock
// timeouts and deterministic output capture.
//
// The runner knows nothing about the external tool's action protocol: it
// receives a fully compiled Spec (command, arguments, environment, timeout),
// runs exactly one process, and reports a ProcessResult with exit code,
// captured stdout/stderr, duration and a timed-out flag.
//
// On unix the process is started as the leader of a fresh process group.
// When the timeout elapses, or the caller's context is cancelled, the whole
// group is killed so the tool's helper children never outlive the dispatch
// that owns them. A timeout is reported, never retried: a half-completed
// action chain may already have mutated state, so replay is a caller decision.
package runner
