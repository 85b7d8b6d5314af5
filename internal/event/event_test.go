package event

import (
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	input := `{"hook_event_name":"PreToolUse","session_id":"abc","tool_name":"Edit","tool_input":{"file_path":"main.go"}}`
	ev, err := Parse(strings.NewReader(input), PreToolUse)
	if err != nil {
		t.Fatal(err)
	}
	if ev.SessionID != "abc" || ev.ToolName != "Edit" {
		t.Errorf("unexpected event: %+v", ev)
	}
	if ev.Timestamp.IsZero() {
		t.Error("missing timestamp should be filled in")
	}
	if string(ev.Raw()) != input {
		t.Error("Raw() should return the original document")
	}
}

func TestParseFillsMissingType(t *testing.T) {
	ev, err := Parse(strings.NewReader(`{"session_id":"abc"}`), PreCompact)
	if err != nil {
		t.Fatal(err)
	}
	if ev.Type != PreCompact {
		t.Errorf("expected type filled from caller, got %q", ev.Type)
	}
}

func TestParseTypeMismatch(t *testing.T) {
	input := `{"hook_event_name":"PostToolUse","session_id":"abc"}`
	if _, err := Parse(strings.NewReader(input), PreToolUse); err == nil {
		t.Fatal("expected mismatch error, got nil")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse(strings.NewReader("not json"), PreToolUse); err == nil {
		t.Fatal("expected parse error, got nil")
	}
}

func TestBlocking(t *testing.T) {
	if !PreToolUse.Blocking() {
		t.Error("PreToolUse must be blocking-capable")
	}
	for _, et := range []Type{SessionStart, PostToolUse, PreCompact} {
		if et.Blocking() {
			t.Errorf("%s must not be blocking-capable", et)
		}
	}
}

func TestTargetPath(t *testing.T) {
	tests := []struct {
		input map[string]any
		want  string
	}{
		{map[string]any{"file_path": "a.go"}, "a.go"},
		{map[string]any{"notebook_path": "nb.ipynb"}, "nb.ipynb"},
		{map[string]any{"command": "ls"}, ""},
		{nil, ""},
	}
	for _, tt := range tests {
		ev := &Event{Type: PreToolUse, ToolName: "Edit", ToolInput: tt.input}
		if got := ev.TargetPath(); got != tt.want {
			t.Errorf("TargetPath(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestMutatesFile(t *testing.T) {
	tests := []struct {
		typ  Type
		tool string
		want bool
	}{
		{PreToolUse, "Edit", true},
		{PreToolUse, "Write", true},
		{PreToolUse, "Read", false},
		{PostToolUse, "Edit", false},
	}
	for _, tt := range tests {
		ev := &Event{Type: tt.typ, ToolName: tt.tool}
		if got := ev.MutatesFile(); got != tt.want {
			t.Errorf("MutatesFile(%s, %s) = %v, want %v", tt.typ, tt.tool, got, tt.want)
		}
	}
}
