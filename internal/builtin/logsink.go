package builtin

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/hookdsh/hookd/internal/event"
	"github.com/hookdsh/hookd/internal/hookexec"
)

// LogSink appends one JSON line per event to the session log. The log path
// comes from the event payload when the runtime resolved one; hookd never
// scans a log directory by modification time to find "the latest" file.
type LogSink struct {
	// Dir overrides the fallback log directory, used in tests.
	Dir string
}

// Run implements hookexec.Runner.
func (l *LogSink) Run(_ context.Context, ev *event.Event) hookexec.ExecutionResult {
	start := time.Now()
	fail := func(err error) hookexec.ExecutionResult {
		return hookexec.ExecutionResult{
			ExitCode: 1,
			Stderr:   "session log append failed: " + err.Error(),
			Duration: time.Since(start),
		}
	}

	path := ev.LogPath
	if path == "" {
		dir := l.Dir
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fail(err)
			}
			dir = filepath.Join(home, ".local", "share", "hookd", "logs")
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fail(err)
		}
		path = filepath.Join(dir, ev.SessionID+".jsonl")
	}

	// Append mode keeps concurrent dispatches from clobbering each other's
	// lines.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fail(err)
	}
	defer f.Close()

	line := append(ev.Raw(), '\n')
	if _, err := f.Write(line); err != nil {
		return fail(err)
	}

	return hookexec.ExecutionResult{ExitCode: hookexec.ExitAllow, Duration: time.Since(start)}
}
