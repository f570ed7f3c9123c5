package runner

import "fmt"

// ExecutableNotFoundError indicates the configured tool executable could not
// be resolved. Nothing was spawned.
type ExecutableNotFoundError struct {
	Command string
	Err     error
}

func (e *ExecutableNotFoundError) Error() string {
	return fmt.Sprintf("executable not found: %s: %v", e.Command, e.Err)
}

func (e *ExecutableNotFoundError) Unwrap() error { return e.Err }

// SpawnError indicates the executable exists but the process failed to start.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to spawn %s: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }
