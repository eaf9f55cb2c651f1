// Package report implements persistence for the build Report.
//
// The FileRepository stores and loads the report as JSON on disk and exposes a
// Repository interface that the packager service depends on.
package report
