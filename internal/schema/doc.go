// Package schema turns settings schemas into typed interface definitions by
// running the configured schema compiler and writing its output verbatim.
package schema
