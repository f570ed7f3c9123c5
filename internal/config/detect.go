package config

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"easel/pkg/logging"
)

// ResolveExecutable returns the external tool executable to use: the explicit
// configuration value when set, otherwise the first detected install for the
// current platform.
func (c ToolConfig) ResolveExecutable() (string, error) {
	if c.Executable != "" {
		return c.Executable, nil
	}
	return detectExecutable()
}

func detectExecutable() (string, error) {
	// PATH lookup first; it covers the common case on every platform.
	if path, err := exec.LookPath("inkscape"); err == nil {
		logging.Debug("Config", "Detected tool executable on PATH: %s", path)
		return path, nil
	}

	for _, candidate := range platformCandidates() {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			logging.Debug("Config", "Detected tool executable at %s", candidate)
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no tool executable found; set tool.executable in config.yaml")
}

func platformCandidates() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{
			`C:\Program Files\Inkscape\bin\inkscape.exe`,
			`C:\Program Files (x86)\Inkscape\bin\inkscape.exe`,
		}
	case "darwin":
		return []string{
			"/Applications/Inkscape.app/Contents/MacOS/inkscape",
			"/opt/homebrew/bin/inkscape",
			"/usr/local/bin/inkscape",
		}
	default:
		return []string{
			"/usr/bin/inkscape",
			"/usr/local/bin/inkscape",
			"/snap/bin/inkscape",
			"/var/lib/flatpak/exports/bin/org.inkscape.Inkscape",
		}
	}
}
