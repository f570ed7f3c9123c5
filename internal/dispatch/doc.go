// Package dispatch is the top-level entry point of the orchestrator.
//
// A dispatch validates the request (known operation kind, well-formed
// parameters, and, for identifier-requiring operations, target identifiers
// obtained from a prior discovery call), compiles it into an action chain or
// routes it to the plugin registry, acquires one slot from a bounded
// semaphore pool, runs exactly one external process, and returns the
// normalized result. The slot is released unconditionally, including on
// timeout and cancellation.
//
// Slot acquisition is the sole serialization point: waiting is FIFO-fair and
// bounded, failing as overloaded rather than queuing indefinitely. Nothing in
// this layer retries: a partially applied action chain has no safe replay,
// so retry policy belongs to the caller.
//
// The discovery ledger and a bounded execution history are the only state a
// dispatcher keeps, both in memory.
package dispatch
