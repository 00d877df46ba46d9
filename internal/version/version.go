package version

import (
	"fmt"
	"time"

	"github.com/carlmjohnson/versioninfo"
)

var (
	// Version is the semantic version of the build. It can be overridden via ldflags.
	Version = ""
	// Commit is the short git SHA embedded at build time (or "none").
	Commit = "none"
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = "unknown"
)

// shortRevision is the length of an abbreviated git SHA.
const shortRevision = 7

// Short returns only the semantic version string.
// Without ldflags it falls back to the module version recorded by the Go toolchain.
func Short() string {
	if Version != "" {
		return Version
	}

	return versioninfo.Short()
}

// Full returns a human-readable version string with commit and build time.
func Full() string {
	return fmt.Sprintf("catpoint %s, commit: %s, built at: %s", Short(), commit(), buildTime())
}

// KV returns the build metadata as logger key/value pairs.
func KV() []any {
	return []any{"version", Short(), "commit", commit(), "build_time", buildTime()}
}

func commit() string {
	if Commit != "none" || versioninfo.Revision == "unknown" {
		return Commit
	}

	if len(versioninfo.Revision) > shortRevision {
		return versioninfo.Revision[:shortRevision]
	}

	return versioninfo.Revision
}

func buildTime() string {
	if BuildTime != "unknown" || versioninfo.LastCommit.IsZero() {
		return BuildTime
	}

	return versioninfo.LastCommit.UTC().Format(time.RFC3339)
}
