// Package build contains the core domain types describing one packaging run.
//
// It defines Actor (who ran the build), Report (what happened) and the
// per-stage and per-artifact records, with Clone helpers to avoid leaking
// internal references.
package build
