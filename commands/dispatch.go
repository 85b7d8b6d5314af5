package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"os/user"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hookdsh/hookd/internal/config"
	"github.com/hookdsh/hookd/internal/dispatch"
	"github.com/hookdsh/hookd/internal/event"
	"github.com/hookdsh/hookd/internal/hookexec"
	"github.com/hookdsh/hookd/internal/logging"
	"github.com/hookdsh/hookd/internal/storage"
)

func newSessionStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "session-start",
		Short: "Dispatch a SessionStart event read from stdin",
		Run: func(cmd *cobra.Command, args []string) {
			runEvent(event.SessionStart)
		},
	}
}

func newPreToolUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pre-tool-use",
		Short: "Dispatch a PreToolUse event read from stdin",
		Run: func(cmd *cobra.Command, args []string) {
			runEvent(event.PreToolUse)
		},
	}
}

func newPostToolUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "post-tool-use",
		Short: "Dispatch a PostToolUse event read from stdin",
		Run: func(cmd *cobra.Command, args []string) {
			runEvent(event.PostToolUse)
		},
	}
}

func newPreCompactCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pre-compact",
		Short: "Dispatch a PreCompact event read from stdin",
		Run: func(cmd *cobra.Command, args []string) {
			runEvent(event.PreCompact)
		},
	}
}

// runEvent is the glue between the agent runtime and the dispatcher: parse
// the event, load the rule set, dispatch, translate the outcome into the
// exit-code contract. Nothing in here may panic out to the runtime; the
// worst acceptable outcome is hooks doing less than configured.
func runEvent(et event.Type) {
	log := logging.NewLogger("hookd")

	// If the hosting session goes away mid-dispatch, the context kill
	// takes the spawned handler process groups with it.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ev, err := event.Parse(os.Stdin, et)
	if err != nil {
		// Without a parseable event there is nothing to dispatch; never
		// block the runtime over our own input handling.
		log.WithField("event", string(et)).Errorf("dropping event: %v", err)
		return
	}

	cfg := loadConfig(log)
	store := openStore(log)
	if store != nil {
		defer store.Close()
		ensureSession(store, ev)
	}

	start := time.Now()
	outcome := dispatch.New(cfg).Dispatch(ctx, ev)

	if store != nil {
		record := &storage.Dispatch{
			SessionID:  ev.SessionID,
			Event:      string(ev.Type),
			ToolName:   ev.ToolName,
			Decision:   string(outcome.Decision),
			Reasons:    outcome.Reasons,
			DurationMs: time.Since(start).Milliseconds(),
		}
		if err := store.LogDispatch(record); err != nil {
			log.Warnf("failed to record dispatch: %v", err)
		}
	}

	switch outcome.Decision {
	case dispatch.Deny:
		// The denying handler's stderr goes back verbatim as the reason
		// the runtime shows the operator.
		for _, reason := range outcome.Reasons {
			fmt.Fprintln(os.Stderr, reason)
		}
		os.Exit(hookexec.ExitDeny)
	case dispatch.ErrorButAllow:
		for _, reason := range outcome.Reasons {
			log.Warn(reason)
		}
	}
}

// loadConfig resolves and loads hooks.yaml. A broken document is surfaced
// loudly but the session proceeds with zero hooks.
func loadConfig(log *logrus.Entry) *config.Config {
	path := configFlag
	if path == "" {
		path = config.Discover()
	}
	if path == "" {
		return config.Empty()
	}

	cfg, _, err := config.Load(path)
	if err != nil {
		log.Errorf("hook config %s unusable, continuing with no hooks: %v", path, err)
		return config.Empty()
	}
	return cfg
}

func openStore(log *logrus.Entry) storage.SessionStorer {
	store, err := storage.NewSQLiteStore()
	if err != nil {
		log.Warnf("session store unavailable: %v", err)
		return nil
	}
	return store
}

func ensureSession(store storage.SessionStorer, ev *event.Event) {
	if ev.SessionID == "" {
		return
	}
	if ev.Type != event.SessionStart {
		if _, err := store.GetSession(ev.SessionID); err == nil {
			return
		}
	}

	username := ""
	if u, err := user.Current(); err == nil {
		username = u.Username
	}
	cwd := ev.Cwd
	if cwd == "" {
		cwd, _ = os.Getwd()
	}

	now := time.Now()
	store.EnsureSessionExists(&storage.Session{
		ID:               ev.SessionID,
		PID:              os.Getppid(),
		WorkingDirectory: cwd,
		User:             username,
		Status:           "running",
		StartedAt:        now,
		LastActivity:     now,
	})
}
