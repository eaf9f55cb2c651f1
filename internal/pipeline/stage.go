package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// StageName identifies a pipeline stage.
type StageName string

// Stage names in their fixed order.
const (
	StageGenerateAssets StageName = "generate-assets"
	StagePackage        StageName = "package"
	StagePrePackage     StageName = "pre-package"
	StageCopy           StageName = "copy"
	StagePostCopy       StageName = "post-copy"
	StageMake           StageName = "make"
	StagePublish        StageName = "publish"
)

// Result is the outcome of one stage.
type Result string

// Stage results.
const (
	ResultSuccess  Result = "success"
	ResultSkipped  Result = "skipped"
	ResultFailed   Result = "failed"
	ResultCanceled Result = "canceled"
)

// ErrSkipped is returned by a stage that had nothing to do.
// The run continues; the stage is recorded as skipped.
var ErrSkipped = errors.New("stage skipped")

// Stage is one named step of the pipeline.
type Stage struct {
	// Name identifies the stage in logs, reports and metrics.
	Name StageName
	// Enters is the state reached once the stage completes; empty keeps the state.
	Enters State
	// Fn performs the work.
	Fn func(ctx context.Context) error
}

// Record is the outcome of an executed stage.
type Record struct {
	// Stage is the stage name.
	Stage StageName
	// Result is the stage outcome.
	Result Result
	// Duration is the wall time spent in the stage.
	Duration time.Duration
	// Error holds the failure text, empty on success.
	Error string
}

// StageError wraps the error that aborted the run.
type StageError struct {
	// Stage is the failing stage.
	Stage StageName
	// Err is the underlying cause.
	Err error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
