// Package config defines the orchestrator configuration and provides helpers
// to load, validate and save it in YAML format.
//
// Config holds every fixed path the pipeline touches (schemas, licenses,
// window-manager artifacts, output layout) and the PackagingConfig handed to
// the packaging framework. Resolve turns the path templates into absolute
// paths once, before any stage runs.
package config
