package builtin

import (
	"context"
	"fmt"
	"time"

	"github.com/hookdsh/hookd/internal/config"
	"github.com/hookdsh/hookd/internal/event"
	"github.com/hookdsh/hookd/internal/hookexec"
	"github.com/hookdsh/hookd/internal/notify"
)

// Notifier shows an OS notification for the event. A missing or broken
// system notifier is a warning, not a failure.
type Notifier struct {
	Settings config.NotifySettings

	// send is swapped out in tests.
	send func(title, message string) error
}

// Run implements hookexec.Runner.
func (n *Notifier) Run(_ context.Context, ev *event.Event) hookexec.ExecutionResult {
	start := time.Now()

	if !n.wants(ev.Type) {
		return hookexec.ExecutionResult{ExitCode: hookexec.ExitAllow, Duration: time.Since(start)}
	}

	title := n.Settings.Title
	if title == "" {
		title = "hookd"
	}
	message := string(ev.Type)
	if ev.ToolName != "" {
		message = fmt.Sprintf("%s: %s", ev.Type, ev.ToolName)
	}

	send := n.send
	if send == nil {
		send = notify.SendSystem
	}
	if err := send(title, message); err != nil {
		return hookexec.ExecutionResult{
			ExitCode: 1,
			Stderr:   err.Error(),
			Duration: time.Since(start),
		}
	}
	return hookexec.ExecutionResult{ExitCode: hookexec.ExitAllow, Duration: time.Since(start)}
}

func (n *Notifier) wants(t event.Type) bool {
	if len(n.Settings.Events) == 0 {
		return true
	}
	for _, name := range n.Settings.Events {
		if name == string(t) {
			return true
		}
	}
	return false
}
