package build

import (
	"slices"
	"time"
)

// StageRecord is the persisted outcome of one stage.
type StageRecord struct {
	// Name is the stage name.
	Name string
	// Result is success, skipped, failed or canceled.
	Result string
	// Duration is the wall time of the stage.
	Duration time.Duration
	// Error is the failure text, empty on success.
	Error string
}

// ArtifactRecord describes one file staged into the build path.
type ArtifactRecord struct {
	// Name is the base name of the staged file.
	Name string
	// Target is the absolute path the file was installed to.
	Target string
	// Checksum is the base64-encoded SHA-512 of the file.
	Checksum string
}

// Report describes a single packaging run.
type Report struct {
	// BuildID uniquely identifies the run.
	BuildID string
	// Version is the application version being packaged.
	Version string
	// Prerelease is derived from Version.
	Prerelease bool
	// Platform is the target operating system.
	Platform string
	// Arch is the target CPU architecture.
	Arch string
	// Commit is the HEAD commit of the application repository, if known.
	Commit string
	// Actor is who ran the build.
	Actor *Actor
	// State is the final pipeline state.
	State string
	// Stages lists executed stages in order.
	Stages []StageRecord
	// Artifacts lists the files staged by the post-copy hook.
	Artifacts []ArtifactRecord
	// StartedAt is when the run began.
	StartedAt time.Time
	// FinishedAt is when the run ended.
	FinishedAt time.Time
}

// Clone returns a copy of the report to avoid leaking internal references.
func (r *Report) Clone() *Report {
	if r == nil {
		return nil
	}

	cloned := *r
	cloned.Actor = r.Actor.Clone()
	cloned.Stages = slices.Clone(r.Stages)
	cloned.Artifacts = slices.Clone(r.Artifacts)

	return &cloned
}

// Duration returns the total wall time of the run, zero if unfinished.
func (r *Report) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.FinishedAt.IsZero() {
		return 0
	}

	return r.FinishedAt.Sub(r.StartedAt)
}
