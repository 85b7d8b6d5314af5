// Package match implements hook rule matching. Patterns are globs, compiled
// and validated once at config load time; a session can emit thousands of
// tool-use events and must not pay pattern parsing per event.
package match

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/hookdsh/hookd/internal/event"
)

// Always is the pattern that matches every event.
const Always = "always"

// pathPrefix marks a pattern that is evaluated against the target file path
// carried in the tool input rather than the tool name.
const pathPrefix = "path:"

// Pattern is a compiled matcher pattern.
type Pattern struct {
	raw    string
	always bool
	onPath bool
	alts   []string
}

// Compile validates and compiles a matcher pattern. Supported forms:
//
//	"" or "always"        matches everything
//	"Edit|Write"          glob alternatives against the tool name
//	"path:**/*.env"       glob against the target file path
func Compile(raw string) (*Pattern, error) {
	p := &Pattern{raw: raw}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == Always || trimmed == "*" {
		p.always = true
		return p, nil
	}

	if strings.HasPrefix(trimmed, pathPrefix) {
		p.onPath = true
		trimmed = strings.TrimPrefix(trimmed, pathPrefix)
	}

	for _, alt := range strings.Split(trimmed, "|") {
		alt = strings.TrimSpace(alt)
		if alt == "" {
			continue
		}
		if !doublestar.ValidatePattern(alt) {
			return nil, fmt.Errorf("invalid glob pattern %q", alt)
		}
		p.alts = append(p.alts, alt)
	}
	if len(p.alts) == 0 {
		return nil, fmt.Errorf("matcher %q contains no usable pattern", raw)
	}
	return p, nil
}

// String returns the original pattern text.
func (p *Pattern) String() string { return p.raw }

// Matches reports whether the pattern applies to the event. For events with
// no tool context (SessionStart, PreCompact) the pattern is ignored and the
// rule always applies.
func (p *Pattern) Matches(ev *event.Event) bool {
	if ev.Type == event.SessionStart || ev.Type == event.PreCompact {
		return true
	}
	if p.always {
		return true
	}

	subject := ev.ToolName
	if p.onPath {
		subject = ev.TargetPath()
		if subject == "" {
			return false
		}
	}
	return p.matchValue(subject)
}

func (p *Pattern) matchValue(value string) bool {
	for _, alt := range p.alts {
		// ValidatePattern ran at compile time, so Match cannot fail here.
		if ok, _ := doublestar.Match(alt, value); ok {
			return true
		}
		if alt == value {
			return true
		}
	}
	return false
}
