// Package watcher regenerates type definitions while settings schemas are edited.
//
// The parent directories of the configured schemas are watched with fsnotify.
// Changes are debounced and only the schemas that changed are recompiled; the
// bundle step does not run.
package watcher
