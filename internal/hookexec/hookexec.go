// Package hookexec runs hook handlers. Out-of-process commands and
// in-process builtins share the one Runner contract: the handler gets the
// serialized event, and its decision is its exit code. Failures to run a
// handler are data in the result, never Go errors, so the dispatcher can
// apply uniform isolation logic.
package hookexec

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/hookdsh/hookd/internal/event"
)

// Exit-code protocol. This is the entire surface a handler communicates
// through; stderr is free-form diagnostics only.
const (
	// ExitAllow means the handler is satisfied.
	ExitAllow = 0
	// ExitDeny is the reserved deny sentinel. It vetoes the in-flight
	// action, but only on blocking-capable events; everywhere else it is
	// just another warning.
	ExitDeny = 2
	// ExitTimeout is the synthetic code for a handler killed on timeout.
	ExitTimeout = 124
	// ExitSpawnFailure is the synthetic code for a handler that never
	// started (missing executable, permission denied).
	ExitSpawnFailure = 127
)

// ExecutionResult is the outcome of one handler invocation. Never mutated
// after creation.
type ExecutionResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	TimedOut bool
}

// Runner executes one handler for one event.
type Runner interface {
	Run(ctx context.Context, ev *event.Event) ExecutionResult
}

// CommandRunner runs an external command via the shell. The event JSON is
// supplied on stdin and the command runs in its own process group so a
// timeout kill takes any children with it.
type CommandRunner struct {
	Command string
	Timeout time.Duration
	// Env entries appended to the inherited environment (project dir etc).
	Env []string
}

// Run executes the command and waits up to the configured timeout.
func (r *CommandRunner) Run(ctx context.Context, ev *event.Event) ExecutionResult {
	start := time.Now()

	cmd := exec.Command("sh", "-c", r.Command)
	cmd.Stdin = bytes.NewReader(ev.Raw())
	cmd.Env = append(os.Environ(), r.Env...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return ExecutionResult{
			ExitCode: ExitSpawnFailure,
			Stderr:   err.Error(),
			Duration: time.Since(start),
		}
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(r.Timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return ExecutionResult{
			ExitCode: exitCode(err),
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			Duration: time.Since(start),
		}

	case <-timer.C:
		killGroup(cmd)
		<-done
		return ExecutionResult{
			ExitCode: ExitTimeout,
			Stderr:   stderr.String(),
			Duration: time.Since(start),
			TimedOut: true,
		}

	case <-ctx.Done():
		// The hosting session is going away; there is no resumption, so
		// partial side effects of the handler are accepted as-is.
		killGroup(cmd)
		<-done
		return ExecutionResult{
			ExitCode: ExitTimeout,
			Stderr:   "canceled: " + ctx.Err().Error(),
			Duration: time.Since(start),
			TimedOut: true,
		}
	}
}

// killGroup terminates the command's whole process group.
func killGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	if pgid, err := syscall.Getpgid(cmd.Process.Pid); err == nil {
		syscall.Kill(-pgid, syscall.SIGKILL)
		return
	}
	cmd.Process.Kill()
}

func exitCode(err error) int {
	if err == nil {
		return ExitAllow
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	// Wait failed for a reason other than a nonzero exit; classify like a
	// spawn failure so it stays a warning downstream.
	return ExitSpawnFailure
}
