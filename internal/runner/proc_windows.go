//go:build windows

package runner

import (
	"fmt"
	"os"
	"os/exec"
)

// configureProcAttr is a no-op on Windows; process groups are not used.
func configureProcAttr(cmd *exec.Cmd) {}

// killProcessGroup kills the single process on Windows. Child processes of the
// tool are not tracked here.
func killProcessGroup(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process %d: %w", pid, err)
	}
	return proc.Kill()
}
