package hookexec

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/hookdsh/hookd/internal/event"
)

func testEvent() *event.Event {
	return &event.Event{
		Type:      event.PreToolUse,
		SessionID: "test-session",
		ToolName:  "Edit",
		ToolInput: map[string]any{"file_path": "main.go"},
	}
}

func run(t *testing.T, command string, timeout time.Duration) ExecutionResult {
	t.Helper()
	r := &CommandRunner{Command: command, Timeout: timeout}
	return r.Run(context.Background(), testEvent())
}

func TestRunSuccess(t *testing.T) {
	result := run(t, "true", time.Second)
	if result.ExitCode != ExitAllow {
		t.Errorf("expected exit 0, got %d", result.ExitCode)
	}
	if result.TimedOut {
		t.Error("expected TimedOut false")
	}
}

func TestRunExitCodes(t *testing.T) {
	tests := []struct {
		command string
		want    int
	}{
		{"false", 1},
		{"exit 2", ExitDeny},
		{"exit 42", 42},
	}
	for _, tt := range tests {
		if result := run(t, tt.command, time.Second); result.ExitCode != tt.want {
			t.Errorf("command %q: expected exit %d, got %d", tt.command, tt.want, result.ExitCode)
		}
	}
}

func TestRunCapturesOutput(t *testing.T) {
	result := run(t, "echo out; echo err >&2", time.Second)
	if strings.TrimSpace(result.Stdout) != "out" {
		t.Errorf("expected stdout %q, got %q", "out", result.Stdout)
	}
	if strings.TrimSpace(result.Stderr) != "err" {
		t.Errorf("expected stderr %q, got %q", "err", result.Stderr)
	}
}

func TestRunEventOnStdin(t *testing.T) {
	result := run(t, "grep -q test-session", time.Second)
	if result.ExitCode != ExitAllow {
		t.Errorf("handler did not receive event on stdin: exit %d, stderr %q", result.ExitCode, result.Stderr)
	}
}

func TestRunExtraEnv(t *testing.T) {
	r := &CommandRunner{
		Command: `test "$HOOKD_PROJECT_DIR" = /tmp/proj`,
		Timeout: time.Second,
		Env:     []string{"HOOKD_PROJECT_DIR=/tmp/proj"},
	}
	if result := r.Run(context.Background(), testEvent()); result.ExitCode != ExitAllow {
		t.Errorf("environment not passed: exit %d", result.ExitCode)
	}
}

// A handler that fails to start is data, not an exception.
func TestRunSpawnFailure(t *testing.T) {
	result := run(t, "/nonexistent/handler-binary", time.Second)
	if result.ExitCode != ExitSpawnFailure {
		t.Errorf("expected exit %d, got %d", ExitSpawnFailure, result.ExitCode)
	}
	if result.Stderr == "" {
		t.Error("expected spawn diagnostics on stderr")
	}
}

func TestRunTimeout(t *testing.T) {
	start := time.Now()
	result := run(t, "sleep 5", 50*time.Millisecond)
	elapsed := time.Since(start)

	if !result.TimedOut {
		t.Error("expected TimedOut true")
	}
	if result.ExitCode != ExitTimeout {
		t.Errorf("expected exit %d, got %d", ExitTimeout, result.ExitCode)
	}
	if result.Stdout != "" {
		t.Errorf("timed-out handler must not fabricate stdout, got %q", result.Stdout)
	}
	if elapsed > time.Second {
		t.Errorf("timeout not enforced: run took %s", elapsed)
	}
}

func TestRunContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	r := &CommandRunner{Command: "sleep 5", Timeout: 10 * time.Second}
	start := time.Now()
	result := r.Run(ctx, testEvent())
	if time.Since(start) > time.Second {
		t.Error("cancellation did not interrupt the handler")
	}
	if result.ExitCode == ExitAllow {
		t.Error("canceled handler must not report success")
	}
}
