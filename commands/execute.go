package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hookdsh/hookd/internal/event"
)

// Execute runs the appropriate command or hook based on how the binary was
// called. A symlink named after an event dispatches that event directly,
// so runtime settings can point at bare handler names.
func Execute() {
	execName := filepath.Base(os.Args[0])

	switch execName {
	case "session-start", "sessionstart":
		runEvent(event.SessionStart)
		return
	case "pre-tool-use", "pretooluse":
		runEvent(event.PreToolUse)
		return
	case "post-tool-use", "posttooluse":
		runEvent(event.PostToolUse)
		return
	case "pre-compact", "precompact":
		runEvent(event.PreCompact)
		return
	}

	// Not called via a hook symlink; run the full CLI.
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
