// Package dispatch orchestrates hook execution for one lifecycle event:
// match rules in declaration order, run their handlers sequentially, fold
// the exit codes into a single decision for the agent runtime.
package dispatch

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/hookdsh/hookd/internal/builtin"
	"github.com/hookdsh/hookd/internal/config"
	"github.com/hookdsh/hookd/internal/event"
	"github.com/hookdsh/hookd/internal/hookexec"
	"github.com/hookdsh/hookd/internal/logging"
	"github.com/hookdsh/hookd/internal/match"
)

// Decision is the aggregate verdict for one event.
type Decision string

const (
	// Allow means every handler was satisfied.
	Allow Decision = "allow"
	// Deny means a protection handler vetoed the action. Only blocking
	// events can carry this decision.
	Deny Decision = "deny"
	// ErrorButAllow means at least one handler misbehaved (bad exit,
	// timeout, spawn failure) but nothing vetoed. The action proceeds;
	// the reasons belong in session diagnostics.
	ErrorButAllow Decision = "error"
)

// Outcome is the result of dispatching one event. Computed fresh per
// event and discarded.
type Outcome struct {
	Decision Decision
	Reasons  []string
}

// Dispatcher runs the loaded rule set against incoming events. It holds no
// cross-event state; concurrent dispatches of different events are safe.
type Dispatcher struct {
	cfg   *config.Config
	rules map[event.Type][]*config.Rule
	log   *logrus.Entry

	// Resolver maps a rule to its runner. Overridable in tests.
	Resolver func(rule *config.Rule) hookexec.Runner
}

// New builds a dispatcher over an immutable config. When protected paths
// are configured and no PreToolUse rule names builtin:protect explicitly,
// the policy is installed as the first PreToolUse rule so it holds veto
// power before any logging or notification side effects fire.
func New(cfg *config.Config) *Dispatcher {
	d := &Dispatcher{
		cfg:   cfg,
		rules: make(map[event.Type][]*config.Rule, len(cfg.Rules)),
		log:   logging.NewLogger("dispatch"),
	}
	d.Resolver = d.defaultResolver

	for et, rules := range cfg.Rules {
		d.rules[et] = rules
	}

	if len(cfg.Protected) > 0 && !hasProtectRule(cfg.Rules[event.PreToolUse]) {
		always, _ := match.Compile(match.Always)
		implicit := &config.Rule{
			Event:    event.PreToolUse,
			Matcher:  always,
			Command:  builtin.Prefix + "protect",
			Blocking: true,
			Timeout:  config.Defaults.Timeout,
		}
		d.rules[event.PreToolUse] = append([]*config.Rule{implicit}, d.rules[event.PreToolUse]...)
	}

	return d
}

// Dispatch runs all matching handlers for the event, strictly sequentially
// and in declaration order. A deny is terminal; every other failure is
// isolated to its handler and degrades the decision to ErrorButAllow at
// worst. Dispatch never returns an error: the worst outcome is "hooks did
// less than configured".
func (d *Dispatcher) Dispatch(ctx context.Context, ev *event.Event) Outcome {
	outcome := Outcome{Decision: Allow}

	for _, rule := range d.rules[ev.Type] {
		if !rule.Matcher.Matches(ev) {
			continue
		}

		result := d.Resolver(rule).Run(ctx, ev)
		rlog := d.log.WithFields(logrus.Fields{
			"event":       string(ev.Type),
			"command":     rule.Command,
			"exit_code":   result.ExitCode,
			"duration_ms": result.Duration.Milliseconds(),
		})

		switch {
		case result.ExitCode == hookexec.ExitAllow:
			// A clean exit may still carry a warning on stderr
			// (protection policies in warn mode do this).
			if reason := strings.TrimSpace(result.Stderr); reason != "" {
				outcome.Reasons = append(outcome.Reasons, reason)
			}
			rlog.Debug("handler allowed")

		case result.ExitCode == hookexec.ExitDeny && rule.Blocking && ev.Type.Blocking():
			outcome.Decision = Deny
			outcome.Reasons = append(outcome.Reasons, denyReason(rule, result))
			rlog.Info("handler denied, stopping dispatch")
			// Deny is terminal; running a notifier after the action was
			// already refused helps no one.
			return outcome

		default:
			// Timeouts, spawn failures, and undocumented exit codes are
			// warnings. They must never be indistinguishable from a
			// deliberate veto, or a flaky handler would block all tool use.
			outcome.Decision = ErrorButAllow
			outcome.Reasons = append(outcome.Reasons, warnReason(rule, result))
			rlog.Warn("handler failed, continuing")
		}
	}

	return outcome
}

// defaultResolver maps builtin: commands to their in-process runners and
// everything else to a shell command with the event on stdin.
func (d *Dispatcher) defaultResolver(rule *config.Rule) hookexec.Runner {
	if builtin.IsBuiltin(rule.Command) {
		if runner, ok := builtin.Resolve(rule.Command, d.cfg); ok {
			return runner
		}
		return unknownBuiltin(rule.Command)
	}

	var env []string
	if dir := os.Getenv(config.ProjectDirEnv); dir != "" {
		env = append(env, config.ProjectDirEnv+"="+dir)
	}
	return &hookexec.CommandRunner{
		Command: rule.Command,
		Timeout: rule.Timeout,
		Env:     env,
	}
}

// unknownBuiltin degrades a typo'd builtin name to a spawn failure so it
// surfaces as a warning like any other missing executable.
func unknownBuiltin(command string) hookexec.Runner {
	return runnerFunc(func(context.Context, *event.Event) hookexec.ExecutionResult {
		return hookexec.ExecutionResult{
			ExitCode: hookexec.ExitSpawnFailure,
			Stderr:   fmt.Sprintf("unknown builtin handler %q", command),
		}
	})
}

type runnerFunc func(ctx context.Context, ev *event.Event) hookexec.ExecutionResult

func (f runnerFunc) Run(ctx context.Context, ev *event.Event) hookexec.ExecutionResult {
	return f(ctx, ev)
}

func denyReason(rule *config.Rule, result hookexec.ExecutionResult) string {
	if reason := strings.TrimSpace(result.Stderr); reason != "" {
		return reason
	}
	return fmt.Sprintf("denied by %s", rule.Command)
}

func warnReason(rule *config.Rule, result hookexec.ExecutionResult) string {
	detail := strings.TrimSpace(result.Stderr)
	switch {
	case result.TimedOut:
		if detail == "" {
			detail = fmt.Sprintf("timed out after %s", rule.Timeout)
		}
	case detail == "":
		detail = fmt.Sprintf("exited %d", result.ExitCode)
	}
	return fmt.Sprintf("%s: %s", rule.Command, detail)
}

func hasProtectRule(rules []*config.Rule) bool {
	for _, rule := range rules {
		if rule.Command == builtin.Prefix+"protect" {
			return true
		}
	}
	return false
}
