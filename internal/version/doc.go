// Package version exposes build metadata of the shell-packager binary itself.
//
// Variables Version, Commit, and BuildTime are injected at build time via
// Go ldflags. They are unrelated to the version of the packaged application,
// which is read from the package manifest.
package version
