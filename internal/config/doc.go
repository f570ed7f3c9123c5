// Package config loads and validates easel's YAML configuration.
//
// Configuration lives in a single directory containing config.yaml; a missing
// file yields the documented defaults. The configuration covers the external
// tool (executable path or auto-detection, per-operation timeout, extra
// stderr noise patterns), the dispatch bounds (slot pool size, acquisition
// wait, execution history size) and the plugin manifest directories.
package config
