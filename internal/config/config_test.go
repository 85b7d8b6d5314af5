package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hookdsh/hookd/internal/event"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	if Defaults.Timeout != 5*time.Second {
		t.Errorf("expected default timeout 5s, got %s", Defaults.Timeout)
	}
	if Defaults.Blocking {
		t.Error("expected blocking to default to false")
	}
	if Defaults.Matcher != "always" {
		t.Errorf("expected default matcher %q, got %q", "always", Defaults.Matcher)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
hooks:
  PreToolUse:
    - command: ./check.sh
`)
	cfg, cerrs, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cerrs) != 0 {
		t.Fatalf("expected no config errors, got %v", cerrs)
	}

	rules := cfg.Rules[event.PreToolUse]
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	rule := rules[0]
	if rule.Timeout != 5*time.Second {
		t.Errorf("expected default timeout, got %s", rule.Timeout)
	}
	if rule.Blocking {
		t.Error("expected blocking default false")
	}
	if !rule.Matcher.Matches(&event.Event{Type: event.PreToolUse, ToolName: "anything"}) {
		t.Error("default matcher should match every tool")
	}
}

func TestLoadExplicitFields(t *testing.T) {
	path := writeConfig(t, `
hooks:
  PreToolUse:
    - matcher: Edit|Write
      command: builtin:protect
      blocking: true
      timeout_ms: 2500
`)
	cfg, _, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	rule := cfg.Rules[event.PreToolUse][0]
	if !rule.Blocking {
		t.Error("expected blocking true")
	}
	if rule.Timeout != 2500*time.Millisecond {
		t.Errorf("expected timeout 2.5s, got %s", rule.Timeout)
	}
}

// A rule missing its command is disabled with a precise ConfigError while
// every valid rule survives.
func TestLoadDisablesRuleMissingCommand(t *testing.T) {
	path := writeConfig(t, `
hooks:
  PreToolUse:
    - command: ./first.sh
    - matcher: Edit
    - command: ./third.sh
`)
	cfg, cerrs, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if len(cerrs) != 1 {
		t.Fatalf("expected 1 config error, got %d", len(cerrs))
	}
	cerr := cerrs[0]
	if cerr.EventType != event.PreToolUse {
		t.Errorf("expected event type PreToolUse, got %s", cerr.EventType)
	}
	if cerr.RuleIndex != 1 {
		t.Errorf("expected rule index 1, got %d", cerr.RuleIndex)
	}
	if cerr.Field != "command" {
		t.Errorf("expected field %q, got %q", "command", cerr.Field)
	}

	rules := cfg.Rules[event.PreToolUse]
	if len(rules) != 2 {
		t.Fatalf("expected 2 surviving rules, got %d", len(rules))
	}
	if rules[0].Command != "./first.sh" || rules[1].Command != "./third.sh" {
		t.Errorf("surviving rules out of order: %q, %q", rules[0].Command, rules[1].Command)
	}
}

func TestLoadDisablesBadMatcher(t *testing.T) {
	path := writeConfig(t, `
hooks:
  PostToolUse:
    - matcher: "[unclosed"
      command: ./log.sh
`)
	cfg, cerrs, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cerrs) != 1 || cerrs[0].Field != "matcher" {
		t.Fatalf("expected one matcher error, got %v", cerrs)
	}
	if len(cfg.Rules[event.PostToolUse]) != 0 {
		t.Error("bad-matcher rule should be excluded")
	}
}

func TestLoadUnknownEventType(t *testing.T) {
	path := writeConfig(t, `
hooks:
  OnTeleport:
    - command: ./nope.sh
`)
	cfg, cerrs, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cerrs) != 1 {
		t.Fatalf("expected 1 config error, got %d", len(cerrs))
	}
	if len(cfg.Rules) != 0 {
		t.Error("unknown event type should produce no rules")
	}
}

func TestLoadProtectedPaths(t *testing.T) {
	path := writeConfig(t, `
protected_paths:
  - pattern: settings.local.json
    mode: deny
  - pattern: "**/*.env"
    mode: warn
  - pattern: missing-mode.txt
`)
	cfg, cerrs, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Protected) != 2 {
		t.Fatalf("expected 2 valid specs, got %d", len(cfg.Protected))
	}
	if len(cerrs) != 1 || cerrs[0].Field != "mode" {
		t.Fatalf("expected one mode error, got %v", cerrs)
	}
}

func TestLoadRejectsNonPositiveTimeout(t *testing.T) {
	path := writeConfig(t, `
hooks:
  PreCompact:
    - command: ./snap.sh
      timeout_ms: 0
`)
	_, cerrs, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cerrs) != 1 || cerrs[0].Field != "timeout_ms" {
		t.Fatalf("expected one timeout error, got %v", cerrs)
	}
}

func TestLoadUnreadableDocument(t *testing.T) {
	if _, _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "hooks: [not: a: map\n")
	if _, _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid yaml, got nil")
	}
}

func TestDiscoverProjectDir(t *testing.T) {
	dir := t.TempDir()
	full := filepath.Join(dir, FileName)
	if err := os.WriteFile(full, []byte("hooks: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ProjectDirEnv, dir)

	if got := Discover(); got != full {
		t.Errorf("expected %s, got %s", full, got)
	}
}
