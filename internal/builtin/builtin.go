// Package builtin provides in-process hook handlers. They implement the
// same Runner contract as external commands, so config order decides when
// they fire, and performance-sensitive checks skip the process spawn.
package builtin

import (
	"strings"

	"github.com/hookdsh/hookd/internal/config"
	"github.com/hookdsh/hookd/internal/hookexec"
	"github.com/hookdsh/hookd/internal/protect"
)

// Prefix marks a rule command as a builtin handler.
const Prefix = "builtin:"

// IsBuiltin reports whether command names a builtin handler.
func IsBuiltin(command string) bool {
	return strings.HasPrefix(command, Prefix)
}

// Resolve maps a builtin command to its runner. The second return value is
// false for unknown builtin names; the dispatcher surfaces those as spawn
// failures so a typo degrades to a warning instead of breaking dispatch.
func Resolve(command string, cfg *config.Config) (hookexec.Runner, bool) {
	switch strings.TrimPrefix(command, Prefix) {
	case "protect":
		return protect.NewPolicy(cfg.Protected), true
	case "log":
		return &LogSink{}, true
	case "notify":
		return &Notifier{Settings: cfg.Notify}, true
	default:
		return nil, false
	}
}
