package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hookdsh/hookd/internal/logging"
)

type agentSettings map[string]interface{}

type hookEntry struct {
	Matcher string `json:"matcher"`
	Hooks   []hook `json:"hooks"`
}

type hook struct {
	Type    string `json:"type"`
	Command string `json:"command"`
}

// NewInstallCmd wires hookd into a repository's agent runtime settings.
func NewInstallCmd() *cobra.Command {
	var targetDir string
	var settingsDir string

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install hookd into a repository's agent settings",
		Long: `Install hookd into a repository by creating or updating the agent
runtime's settings.local.json so every lifecycle event is routed through
hookd. Existing settings are preserved.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(targetDir, settingsDir)
		},
	}

	cmd.Flags().StringVarP(&targetDir, "directory", "d", ".", "Target directory for installation")
	cmd.Flags().StringVar(&settingsDir, "settings-dir", ".claude", "Runtime settings directory inside the target")

	return cmd
}

func runInstall(targetDir, settingsDir string) error {
	log := logging.NewLogger("install")

	absDir, err := filepath.Abs(targetDir)
	if err != nil {
		return fmt.Errorf("failed to resolve directory: %w", err)
	}
	if _, err := os.Stat(absDir); os.IsNotExist(err) {
		return fmt.Errorf("target directory does not exist: %s", absDir)
	}

	dir := filepath.Join(absDir, settingsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	settingsPath := filepath.Join(dir, "settings.local.json")

	settings := make(agentSettings)
	if data, err := os.ReadFile(settingsPath); err == nil && len(data) > 0 {
		if err := json.Unmarshal(data, &settings); err != nil {
			// Keep the broken file around rather than silently losing it.
			backupPath := settingsPath + ".backup"
			log.Warnf("failed to parse existing settings (%v), backing up to %s", err, backupPath)
			if err := os.WriteFile(backupPath, data, 0o644); err != nil {
				return fmt.Errorf("failed to backup corrupted settings: %w", err)
			}
			settings = make(agentSettings)
		}
	}

	settings["hooks"] = map[string][]hookEntry{
		"SessionStart": {
			{Matcher: "*", Hooks: []hook{{Type: "command", Command: "hookd session-start"}}},
		},
		"PreToolUse": {
			{Matcher: "*", Hooks: []hook{{Type: "command", Command: "hookd pre-tool-use"}}},
		},
		"PostToolUse": {
			{Matcher: "*", Hooks: []hook{{Type: "command", Command: "hookd post-tool-use"}}},
		},
		"PreCompact": {
			{Matcher: "*", Hooks: []hook{{Type: "command", Command: "hookd pre-compact"}}},
		},
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.WriteFile(settingsPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}

	fmt.Printf("hookd installed: %s\n", settingsPath)
	fmt.Println("events routed through hookd: SessionStart, PreToolUse, PostToolUse, PreCompact")
	return nil
}
