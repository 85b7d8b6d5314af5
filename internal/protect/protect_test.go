package protect

import (
	"context"
	"strings"
	"testing"

	"github.com/hookdsh/hookd/internal/config"
	"github.com/hookdsh/hookd/internal/event"
	"github.com/hookdsh/hookd/internal/hookexec"
)

func editEvent(path string) *event.Event {
	return &event.Event{
		Type:      event.PreToolUse,
		ToolName:  "Edit",
		ToolInput: map[string]any{"file_path": path},
	}
}

func TestDenyProtectedPath(t *testing.T) {
	policy := NewPolicy([]config.PathSpec{
		{Pattern: "settings.local.json", Mode: config.ModeDeny},
	})

	result := policy.Run(context.Background(), editEvent("settings.local.json"))
	if result.ExitCode != hookexec.ExitDeny {
		t.Fatalf("expected deny sentinel %d, got %d", hookexec.ExitDeny, result.ExitCode)
	}
	if !strings.Contains(result.Stderr, "settings.local.json") {
		t.Errorf("deny reason should name the path, got %q", result.Stderr)
	}
}

func TestUnmatchedPathPassesThrough(t *testing.T) {
	policy := NewPolicy([]config.PathSpec{
		{Pattern: "settings.local.json", Mode: config.ModeDeny},
	})

	result := policy.Run(context.Background(), editEvent("src/main.go"))
	if result.ExitCode != hookexec.ExitAllow {
		t.Errorf("expected allow, got exit %d", result.ExitCode)
	}
	if result.Stderr != "" {
		t.Errorf("expected no diagnostics, got %q", result.Stderr)
	}
}

func TestWarnMode(t *testing.T) {
	policy := NewPolicy([]config.PathSpec{
		{Pattern: "*.env", Mode: config.ModeWarn},
	})

	result := policy.Run(context.Background(), editEvent(".env"))
	if result.ExitCode != hookexec.ExitAllow {
		t.Errorf("warn mode must not deny, got exit %d", result.ExitCode)
	}
	if result.Stderr == "" {
		t.Error("warn mode should leave a warning on stderr")
	}
}

func TestFirstMatchWins(t *testing.T) {
	policy := NewPolicy([]config.PathSpec{
		{Pattern: "*.env", Mode: config.ModeWarn},
		{Pattern: "*.env", Mode: config.ModeDeny},
	})

	result := policy.Run(context.Background(), editEvent(".env"))
	if result.ExitCode != hookexec.ExitAllow {
		t.Errorf("first (warn) spec should win, got exit %d", result.ExitCode)
	}
}

func TestBasenameMatching(t *testing.T) {
	policy := NewPolicy([]config.PathSpec{
		{Pattern: "settings.local.json", Mode: config.ModeDeny},
	})

	result := policy.Run(context.Background(), editEvent(".claude/settings.local.json"))
	if result.ExitCode != hookexec.ExitDeny {
		t.Errorf("pattern should guard the file wherever it lives, got exit %d", result.ExitCode)
	}
}

func TestNonMutatingToolPassesThrough(t *testing.T) {
	policy := NewPolicy([]config.PathSpec{
		{Pattern: "**", Mode: config.ModeDeny},
	})

	ev := &event.Event{Type: event.PreToolUse, ToolName: "Read",
		ToolInput: map[string]any{"file_path": "secrets.txt"}}
	if result := policy.Run(context.Background(), ev); result.ExitCode != hookexec.ExitAllow {
		t.Errorf("non-mutating tool must pass through, got exit %d", result.ExitCode)
	}
}
