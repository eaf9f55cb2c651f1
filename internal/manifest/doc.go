// Package manifest reads the application's package manifest, the single
// source of the version string stamped on every build.
package manifest
