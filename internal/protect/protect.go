// Package protect guards file paths from agent-initiated edits. The policy
// is a declarative ordered list of path patterns rather than bespoke logic
// per protected file, and it speaks the same Runner contract as external
// commands so it can be ordered freely among other hooks.
package protect

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/hookdsh/hookd/internal/config"
	"github.com/hookdsh/hookd/internal/event"
	"github.com/hookdsh/hookd/internal/hookexec"
)

// Policy evaluates a target path against an ordered protected-path list.
// First matching spec wins; unmatched paths pass through silently.
type Policy struct {
	specs []config.PathSpec
}

// NewPolicy builds a policy over the loaded path specs. The specs were
// validated at config load time and are read-only for the session.
func NewPolicy(specs []config.PathSpec) *Policy {
	return &Policy{specs: specs}
}

// Run implements hookexec.Runner. Non-file-mutating events pass through.
func (p *Policy) Run(_ context.Context, ev *event.Event) hookexec.ExecutionResult {
	start := time.Now()
	result := func(code int, stderr string) hookexec.ExecutionResult {
		return hookexec.ExecutionResult{
			ExitCode: code,
			Stderr:   stderr,
			Duration: time.Since(start),
		}
	}

	if !ev.MutatesFile() {
		return result(hookexec.ExitAllow, "")
	}
	path := ev.TargetPath()
	if path == "" {
		return result(hookexec.ExitAllow, "")
	}

	for _, spec := range p.specs {
		if !pathMatches(spec.Pattern, path) {
			continue
		}
		switch spec.Mode {
		case config.ModeDeny:
			return result(hookexec.ExitDeny,
				fmt.Sprintf("%s is protected (pattern %q); edit it manually instead", path, spec.Pattern))
		default:
			return result(hookexec.ExitAllow,
				fmt.Sprintf("warning: %s matches protected pattern %q", path, spec.Pattern))
		}
	}
	return result(hookexec.ExitAllow, "")
}

// pathMatches tries the pattern against the full path and its basename, so
// "settings.local.json" guards the file wherever it lives.
func pathMatches(pattern, path string) bool {
	if ok, _ := doublestar.Match(pattern, path); ok {
		return true
	}
	if ok, _ := doublestar.Match(pattern, filepath.Base(path)); ok {
		return true
	}
	return false
}
