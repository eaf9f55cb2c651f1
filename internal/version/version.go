package version

import (
	"fmt"
	"runtime/debug"
)

const unknownCommit = "none"

var (
	// Version is the semantic version of the build. It can be overridden via ldflags.
	Version = "0.1.0-dev"
	// Commit is the short git SHA embedded at build time (or "none").
	Commit = unknownCommit
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = "unknown"
)

// Short returns only the semantic version string.
func Short() string {
	return Version
}

// Full returns the binary name, version, commit and build time.
func Full() string {
	return fmt.Sprintf("shell-packager %s (commit %s, built at %s)", Version, commit(), BuildTime)
}

// commit falls back to the revision recorded by the Go toolchain when no
// commit was injected with ldflags.
func commit() string {
	if Commit != unknownCommit {
		return Commit
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Commit
	}

	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && len(setting.Value) >= 7 {
			return setting.Value[:7]
		}
	}

	return Commit
}
