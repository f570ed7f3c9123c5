// Package plugin discovers, parses and executes third-party extensions of the
// external vector-editing tool.
//
// Extensions are described by manifest files (.inx): an XML document carrying
// a globally unique identifier, a display name, a menu placement used as
// category, a typed parameter schema and the script invocation block. Parse
// turns one manifest into a typed Descriptor and rejects malformed documents
// with errors that name the offending field.
//
// The Registry scans a configured set of manifest directories and keeps an
// identifier-keyed catalog. Scans build a complete new snapshot and swap it
// in atomically, so concurrent lookups never observe a half-updated catalog
// and in-flight executions keep the descriptor snapshot they already hold.
// Watch re-scans automatically when manifest files change on disk.
//
// Execute validates supplied parameters against the descriptor's declared
// types and bounds before any process is spawned, then invokes the tool with
// the plugin identifier and the parameters encoded as command-line flags.
package plugin
