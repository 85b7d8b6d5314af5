// Package notify delivers OS notifications (toast/sound) for hook events.
package notify

import (
	"fmt"
	"os/exec"
	"runtime"
)

// SendSystem shows an OS notification with the platform's native tool.
// Returns an error when no notifier is available; callers treat that as a
// warning, never a failure.
func SendSystem(title, message string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf(`display notification %q with title %q`, message, title)
		cmd = exec.Command("osascript", "-e", script)
	case "linux":
		if _, err := exec.LookPath("notify-send"); err != nil {
			return fmt.Errorf("notify-send not found: %w", err)
		}
		cmd = exec.Command("notify-send", title, message)
	default:
		return fmt.Errorf("no system notifier for %s", runtime.GOOS)
	}

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("notifier failed: %w: %s", err, output)
	}
	return nil
}
