// Package pipeline runs the packaging stages as an explicit ordered list.
//
// The order is data, not a calling convention of the packaging framework:
// generate-assets, package, pre-package, copy, post-copy, make, publish.
// Each stage runs to completion before the next begins; the first failure
// aborts the run without rollback. A small state machine tracks which hooks
// have completed so a build can never re-enter an earlier phase.
package pipeline
