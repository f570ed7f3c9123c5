package config

import "time"

// EaselConfig is the top-level configuration structure for easel.
type EaselConfig struct {
	Tool     ToolConfig     `yaml:"tool"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Plugins  PluginConfig   `yaml:"plugins"`
}

// ToolConfig configures the external vector-editing executable.
type ToolConfig struct {
	// Executable is an explicit path or command name. Empty means
	// auto-detection across the platform's usual install locations.
	Executable string `yaml:"executable,omitempty"`
	// TimeoutSeconds is the hard per-operation wall-clock limit.
	TimeoutSeconds int `yaml:"timeoutSeconds,omitempty"`
	// NoisePatterns are extra stderr substrings filtered before error
	// classification, in addition to the built-in toolkit noise list.
	NoisePatterns []string `yaml:"noisePatterns,omitempty"`
}

// DispatchConfig bounds concurrent external process execution.
type DispatchConfig struct {
	// Concurrency is the size of the execution slot pool (default: 4).
	Concurrency int `yaml:"concurrency,omitempty"`
	// AcquireWaitSeconds bounds the wait for a free slot before the dispatch
	// fails as overloaded instead of queuing indefinitely.
	AcquireWaitSeconds int `yaml:"acquireWaitSeconds,omitempty"`
	// HistorySize bounds the in-memory record of recent executions.
	HistorySize int `yaml:"historySize,omitempty"`
}

// PluginConfig configures plugin manifest discovery.
type PluginConfig struct {
	// Directories are scanned for manifest files. Empty means the
	// platform's default extension directories.
	Directories []string `yaml:"directories,omitempty"`
	// Watch re-scans the catalog automatically when manifests change.
	Watch bool `yaml:"watch,omitempty"`
}

// Timeout returns the per-operation timeout as a duration.
func (c ToolConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// AcquireWait returns the slot acquisition bound as a duration.
func (c DispatchConfig) AcquireWait() time.Duration {
	return time.Duration(c.AcquireWaitSeconds) * time.Second
}
