//go:build !windows

package runner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_CapturesStdout(t *testing.T) {
	r := NewRunner()

	result, err := r.Run(context.Background(), Spec{
		Command: "sh",
		Args:    []string{"-c", "echo chain-ok"},
		Timeout: 10 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.Contains(t, result.Stdout, "chain-ok")
	assert.False(t, result.TimedOut)
}

func TestRun_CapturesStderrAndExitCode(t *testing.T) {
	r := NewRunner()

	result, err := r.Run(context.Background(), Spec{
		Command: "sh",
		Args:    []string{"-c", "echo warning >&2; exit 3"},
		Timeout: 10 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.ExitCode)
	assert.Contains(t, result.Stderr, "warning")
}

func TestRun_ExecutableNotFound(t *testing.T) {
	r := NewRunner()

	_, err := r.Run(context.Background(), Spec{
		Command: "definitely-not-a-real-binary-easel",
	})
	require.Error(t, err)
	var notFound *ExecutableNotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.Equal(t, "definitely-not-a-real-binary-easel", notFound.Command)
}

func TestRun_TimeoutKillsProcess(t *testing.T) {
	r := NewRunner()

	start := time.Now()
	result, err := r.Run(context.Background(), Spec{
		Command: "sh",
		Args:    []string{"-c", "echo started; sleep 30"},
		Timeout: 200 * time.Millisecond,
	})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.True(t, result.TimedOut)
	// Output captured before the kill is preserved.
	assert.Contains(t, result.Stdout, "started")
	// Termination must happen within a bounded grace period, not after 30s.
	assert.Less(t, elapsed, 5*time.Second)
}

func TestRun_CancellationTerminates(t *testing.T) {
	r := NewRunner()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	result, err := r.Run(ctx, Spec{
		Command: "sh",
		Args:    []string{"-c", "sleep 30"},
		Timeout: time.Minute,
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, result.TimedOut)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestHeadlessEnv(t *testing.T) {
	env := HeadlessEnv()

	found := false
	for _, kv := range env {
		if kv == "SELF_CALL=true" {
			found = true
		}
	}
	assert.True(t, found, "headless env should carry the re-entrancy guard")
}
