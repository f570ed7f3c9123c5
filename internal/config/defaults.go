package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	// DefaultConcurrency is the default execution slot pool size.
	DefaultConcurrency = 4
	// DefaultTimeoutSeconds is the default per-operation timeout.
	DefaultTimeoutSeconds = 60
	// DefaultAcquireWaitSeconds bounds the wait for a free slot.
	DefaultAcquireWaitSeconds = 5
	// DefaultHistorySize bounds the retained execution records.
	DefaultHistorySize = 128
)

// GetDefaultConfig returns the default configuration for easel.
func GetDefaultConfig() EaselConfig {
	return EaselConfig{
		Tool: ToolConfig{
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Dispatch: DispatchConfig{
			Concurrency:        DefaultConcurrency,
			AcquireWaitSeconds: DefaultAcquireWaitSeconds,
			HistorySize:        DefaultHistorySize,
		},
		Plugins: PluginConfig{
			Directories: defaultPluginDirs(),
		},
	}
}

// defaultPluginDirs lists the platform's usual extension manifest locations,
// plus an extensions directory next to the working directory.
func defaultPluginDirs() []string {
	var dirs []string
	home, err := os.UserHomeDir()

	switch runtime.GOOS {
	case "windows":
		if err == nil {
			dirs = append(dirs, filepath.Join(home, "AppData", "Roaming", "inkscape", "extensions"))
		}
	case "darwin":
		if err == nil {
			dirs = append(dirs, filepath.Join(home, "Library", "Application Support", "org.inkscape.Inkscape", "config", "extensions"))
		}
	default:
		if err == nil {
			dirs = append(dirs, filepath.Join(home, ".config", "inkscape", "extensions"))
		}
		dirs = append(dirs, "/usr/share/inkscape/extensions")
	}

	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs, filepath.Join(cwd, "extensions"))
	}
	return dirs
}
