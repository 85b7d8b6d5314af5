// Package event defines the lifecycle events the agent runtime delivers to
// hookd. Events arrive as a single JSON document on stdin and are immutable
// once parsed.
package event

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Type identifies a lifecycle event.
type Type string

const (
	SessionStart Type = "SessionStart"
	PreToolUse   Type = "PreToolUse"
	PostToolUse  Type = "PostToolUse"
	PreCompact   Type = "PreCompact"
)

// Types lists every recognized event type in a stable order.
var Types = []Type{SessionStart, PreToolUse, PostToolUse, PreCompact}

// Valid reports whether t is a recognized event type.
func (t Type) Valid() bool {
	switch t {
	case SessionStart, PreToolUse, PostToolUse, PreCompact:
		return true
	}
	return false
}

// Blocking reports whether a handler can veto this event. Only PreToolUse
// dispatches before an action the runtime can still abort.
func (t Type) Blocking() bool {
	return t == PreToolUse
}

// Event is one lifecycle notification from the agent runtime.
type Event struct {
	Type           Type           `json:"hook_event_name"`
	SessionID      string         `json:"session_id"`
	Timestamp      time.Time      `json:"timestamp,omitzero"`
	ToolName       string         `json:"tool_name,omitempty"`
	ToolInput      map[string]any `json:"tool_input,omitempty"`
	TranscriptPath string         `json:"transcript_path,omitempty"`
	// LogPath is the session log resolved by the runtime. Handlers must use
	// it instead of scanning a log directory by mtime.
	LogPath string `json:"log_path,omitempty"`
	Cwd     string `json:"cwd,omitempty"`

	raw []byte
}

// Parse reads one event document from r. The event type embedded in the
// document must match want when want is non-empty; a missing type field is
// filled in from want (older runtimes omit it).
func Parse(r io.Reader, want Type) (*Event, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read event: %w", err)
	}

	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("failed to parse event JSON: %w", err)
	}
	ev.raw = data

	if ev.Type == "" {
		ev.Type = want
	}
	if want != "" && ev.Type != want {
		return nil, fmt.Errorf("event type mismatch: got %q, expected %q", ev.Type, want)
	}
	if !ev.Type.Valid() {
		return nil, fmt.Errorf("unknown event type %q", ev.Type)
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	return &ev, nil
}

// Raw returns the original JSON document as received from the runtime, or a
// re-marshaled form when the event was constructed in-process.
func (e *Event) Raw() []byte {
	if e.raw != nil {
		return e.raw
	}
	data, _ := json.Marshal(e)
	return data
}

// fileMutatingTools are the tools whose tool_input carries a target path a
// protection policy can guard.
var fileMutatingTools = map[string]bool{
	"Edit":         true,
	"Write":        true,
	"MultiEdit":    true,
	"NotebookEdit": true,
}

// MutatesFile reports whether the event's tool edits a file on disk.
func (e *Event) MutatesFile() bool {
	return e.Type == PreToolUse && fileMutatingTools[e.ToolName]
}

// TargetPath returns the file path the tool is about to touch, or "" when
// the tool input carries none.
func (e *Event) TargetPath() string {
	for _, key := range []string{"file_path", "notebook_path", "path"} {
		if v, ok := e.ToolInput[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
