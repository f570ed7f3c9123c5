package runner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"easel/pkg/logging"
)

// Spec describes a single external process invocation.
type Spec struct {
	// Command is the executable to run, resolved via PATH if not absolute.
	Command string
	// Args are the command-line arguments, not including the command itself.
	Args []string
	// Env is the full environment for the process. When nil, HeadlessEnv() is used.
	Env []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Timeout is the hard wall-clock limit. Zero means no limit beyond ctx.
	Timeout time.Duration
}

// ProcessResult captures everything observed from one finished process.
// It is immutable once returned.
type ProcessResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	TimedOut bool
}

// Runner spawns external processes. Implementations must spawn exactly one
// process per Run call and never retry on their own.
type Runner interface {
	Run(ctx context.Context, spec Spec) (ProcessResult, error)
}

// ExecRunner implements Runner using os/exec. On unix the process is started
// in its own process group so that timeout or cancellation kills the tool and
// any helper children it spawned.
type ExecRunner struct{}

// NewRunner creates a new ExecRunner.
func NewRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes the spec and reports the process outcome. A non-zero exit code
// is not an error at this level: it is recorded in the result and classified
// by the normalizer. Errors are reserved for failures to spawn at all and for
// caller cancellation.
func (r *ExecRunner) Run(ctx context.Context, spec Spec) (ProcessResult, error) {
	var result ProcessResult

	path, err := exec.LookPath(spec.Command)
	if err != nil {
		return result, &ExecutableNotFoundError{Command: spec.Command, Err: err}
	}

	if spec.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}

	cmd := exec.Command(path, spec.Args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Dir = spec.Dir
	if spec.Env != nil {
		cmd.Env = spec.Env
	} else {
		cmd.Env = HeadlessEnv()
	}
	configureProcAttr(cmd)

	logging.Debug("Runner", "Spawning %s with %d args", spec.Command, len(spec.Args))

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return result, &SpawnError{Command: spec.Command, Err: err}
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var waitErr error
	select {
	case waitErr = <-done:
	case <-ctx.Done():
		// Forced termination of the full process group. A half-finished
		// action chain must never linger as an orphan.
		if killErr := killProcessGroup(cmd.Process.Pid); killErr != nil {
			logging.Warn("Runner", "Failed to kill process group for pid %d: %v", cmd.Process.Pid, killErr)
		}
		waitErr = <-done

		result.Stdout = stdout.String()
		result.Stderr = stderr.String()
		result.Duration = time.Since(start)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			result.TimedOut = true
			result.ExitCode = -1
			return result, nil
		}
		// Caller cancelled: termination happened, report the cancellation.
		return result, ctx.Err()
	}

	result.Stdout = stdout.String()
	result.Stderr = stderr.String()
	result.Duration = time.Since(start)
	result.ExitCode = exitCode(waitErr)

	logging.Debug("Runner", "Process %s exited with code %d after %s", spec.Command, result.ExitCode, result.Duration)
	return result, nil
}

func exitCode(waitErr error) int {
	if waitErr == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// HeadlessEnv returns the environment used for batch invocations of the
// external tool: the inherited environment with the display connection removed
// on linux and the tool's own re-entrancy guard set, so no window or splash
// screen can appear in server contexts.
func HeadlessEnv() []string {
	env := os.Environ()
	filtered := env[:0]
	for _, kv := range env {
		if runtime.GOOS == "linux" && strings.HasPrefix(kv, "DISPLAY=") {
			continue
		}
		filtered = append(filtered, kv)
	}
	filtered = append(filtered, "SELF_CALL=true")
	return filtered
}

// Verify ExecRunner implements Runner at compile time.
var _ Runner = (*ExecRunner)(nil)
