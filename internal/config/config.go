// Package config loads the hookd rule set from hooks.yaml. The document is
// read once per session; a malformed rule disables that rule only and never
// takes the rest of the set down with it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hookdsh/hookd/internal/event"
	"github.com/hookdsh/hookd/internal/logging"
	"github.com/hookdsh/hookd/internal/match"
)

// Defaults enumerates every optional rule field and its default, in one
// place, so the effective configuration is auditable.
var Defaults = struct {
	Matcher  string
	Blocking bool
	Timeout  time.Duration
}{
	Matcher:  match.Always,
	Blocking: false,
	Timeout:  5 * time.Second,
}

// FileName is the config document hookd looks for.
const FileName = "hooks.yaml"

// ProjectDirEnv resolves the project root for config discovery and is
// exported into every handler's environment.
const ProjectDirEnv = "HOOKD_PROJECT_DIR"

// Rule is one loaded hook entry. Rules are immutable after Load; the
// dispatcher relies on declaration order being preserved.
type Rule struct {
	Event    event.Type
	Matcher  *match.Pattern
	Command  string
	Blocking bool
	Timeout  time.Duration
}

// Mode says what the protection policy does with a matching path.
type Mode string

const (
	ModeDeny Mode = "deny"
	ModeWarn Mode = "warn"
)

// PathSpec is one entry in the protected-path list.
type PathSpec struct {
	Pattern string `yaml:"pattern"`
	Mode    Mode   `yaml:"mode"`
}

// NotifySettings controls the builtin:notify handler.
type NotifySettings struct {
	// Events lists the event types that produce an OS notification when a
	// builtin:notify rule fires. Empty means all.
	Events []string `yaml:"events"`
	Title  string   `yaml:"title"`
}

// Config is the immutable result of loading hooks.yaml.
type Config struct {
	Rules     map[event.Type][]*Rule
	Protected []PathSpec
	Notify    NotifySettings
}

// ConfigError describes one disabled rule. It satisfies error.
type ConfigError struct {
	EventType event.Type
	RuleIndex int
	Field     string
	Reason    string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s rule %d: field %q: %s", e.EventType, e.RuleIndex, e.Field, e.Reason)
}

// raw yaml shapes; defaults are applied during compilation, not by yaml.
type fileDoc struct {
	Hooks     map[string][]ruleDoc `yaml:"hooks"`
	Protected []PathSpec           `yaml:"protected_paths"`
	Notify    NotifySettings       `yaml:"notify"`
}

type ruleDoc struct {
	Matcher   string `yaml:"matcher"`
	Command   string `yaml:"command"`
	Blocking  *bool  `yaml:"blocking"`
	TimeoutMs *int   `yaml:"timeout_ms"`
}

// Load reads and compiles the config document at path. Individual bad rules
// come back as ConfigErrors and are excluded from the result; only an
// unreadable or unparseable document is a hard error. Load never checks
// that referenced commands exist on disk.
func Load(path string) (*Config, []*ConfigError, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return compile(&doc)
}

// Empty returns a config with no rules, used when no document exists.
func Empty() *Config {
	return &Config{Rules: map[event.Type][]*Rule{}}
}

func compile(doc *fileDoc) (*Config, []*ConfigError, error) {
	log := logging.NewLogger("config")

	cfg := &Config{
		Rules:  make(map[event.Type][]*Rule),
		Notify: doc.Notify,
	}
	var cerrs []*ConfigError

	for name, entries := range doc.Hooks {
		et := event.Type(name)
		if !et.Valid() {
			cerrs = append(cerrs, &ConfigError{
				EventType: et,
				RuleIndex: -1,
				Field:     "hooks",
				Reason:    "unrecognized event type",
			})
			continue
		}

		for i, entry := range entries {
			rule, cerr := compileRule(et, i, entry)
			if cerr != nil {
				cerrs = append(cerrs, cerr)
				continue
			}
			cfg.Rules[et] = append(cfg.Rules[et], rule)
		}
	}

	for i, spec := range doc.Protected {
		if cerr := validatePathSpec(i, spec); cerr != nil {
			cerrs = append(cerrs, cerr)
			continue
		}
		cfg.Protected = append(cfg.Protected, spec)
	}

	for _, cerr := range cerrs {
		log.WithFields(map[string]any{
			"event": string(cerr.EventType),
			"rule":  cerr.RuleIndex,
			"field": cerr.Field,
		}).Errorf("disabling rule: %s", cerr.Reason)
	}

	return cfg, cerrs, nil
}

func compileRule(et event.Type, index int, entry ruleDoc) (*Rule, *ConfigError) {
	if entry.Command == "" {
		return nil, &ConfigError{EventType: et, RuleIndex: index, Field: "command", Reason: "required field missing"}
	}

	matcherText := entry.Matcher
	if matcherText == "" {
		matcherText = Defaults.Matcher
	}
	pattern, err := match.Compile(matcherText)
	if err != nil {
		return nil, &ConfigError{EventType: et, RuleIndex: index, Field: "matcher", Reason: err.Error()}
	}

	rule := &Rule{
		Event:    et,
		Matcher:  pattern,
		Command:  entry.Command,
		Blocking: Defaults.Blocking,
		Timeout:  Defaults.Timeout,
	}
	if entry.Blocking != nil {
		rule.Blocking = *entry.Blocking
	}
	if entry.TimeoutMs != nil {
		if *entry.TimeoutMs <= 0 {
			return nil, &ConfigError{EventType: et, RuleIndex: index, Field: "timeout_ms", Reason: "must be positive"}
		}
		rule.Timeout = time.Duration(*entry.TimeoutMs) * time.Millisecond
	}
	return rule, nil
}

func validatePathSpec(index int, spec PathSpec) *ConfigError {
	if spec.Pattern == "" {
		return &ConfigError{RuleIndex: index, Field: "pattern", Reason: "required field missing"}
	}
	if _, err := match.Compile(spec.Pattern); err != nil {
		return &ConfigError{RuleIndex: index, Field: "pattern", Reason: err.Error()}
	}
	switch spec.Mode {
	case ModeDeny, ModeWarn:
		return nil
	case "":
		return &ConfigError{RuleIndex: index, Field: "mode", Reason: "required field missing"}
	default:
		return &ConfigError{RuleIndex: index, Field: "mode", Reason: fmt.Sprintf("unknown mode %q", spec.Mode)}
	}
}

// Discover returns the first config document that exists, checking the
// project dir, the working directory, then the user config dir. An empty
// string means no hooks are configured.
func Discover() string {
	var candidates []string
	if dir := os.Getenv(ProjectDirEnv); dir != "" {
		candidates = append(candidates, filepath.Join(dir, FileName))
	}
	candidates = append(candidates, FileName)
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "hookd", FileName))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
