// Package version carries build metadata injected at link time.
package version

import "fmt"

var (
	// Version is the semantic version, set via -ldflags.
	Version = "dev"
	// Commit is the git revision the binary was built from.
	Commit = "unknown"
	// Date is the build timestamp.
	Date = "unknown"
)

// Info bundles the build metadata for display.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// GetInfo returns the current build metadata.
func GetInfo() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}

func (i Info) String() string {
	return fmt.Sprintf("hookd %s (%s, built %s)", i.Version, i.Commit, i.Date)
}
