package metrics

import "time"

// Stage result and build outcome labels.
const (
	ResultSuccess  = "success"
	ResultSkipped  = "skipped"
	ResultFailed   = "failed"
	ResultCanceled = "canceled"
)

// Recorder defines observability hooks for build and stage metrics.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	IncStageResult(stage, result string)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) IncStageResult(string, string)              {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncBuildOutcome(string)                     {}
