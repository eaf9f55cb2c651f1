package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/wmshell/shell-packager/internal/logger"
	"github.com/wmshell/shell-packager/internal/metrics"
)

// Runner executes stages in order and keeps their records.
type Runner struct {
	machine  *Machine
	recorder metrics.Recorder
	records  []Record
}

// NewRunner creates a runner; a nil recorder disables metrics.
func NewRunner(recorder metrics.Recorder) *Runner {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}

	return &Runner{
		machine:  NewMachine(),
		recorder: recorder,
	}
}

// State returns the current build state.
func (r *Runner) State() State {
	return r.machine.Current()
}

// Records returns the records of the executed stages in execution order.
func (r *Runner) Records() []Record {
	return append([]Record(nil), r.records...)
}

// Run executes the stages in order, stopping at the first failure.
// The returned error is a *StageError naming the failing stage.
func (r *Runner) Run(ctx context.Context, stages []Stage) error {
	started := time.Now()

	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			r.record(Record{Stage: stage.Name, Result: ResultCanceled, Error: err.Error()})
			return r.abort(started, metrics.ResultCanceled, &StageError{Stage: stage.Name, Err: err})
		}

		stageCtx := logger.WithName(ctx, string(stage.Name))
		logger.Info(stageCtx, "Stage started")

		t0 := time.Now()
		err := stage.Fn(stageCtx)
		duration := time.Since(t0)

		result := ResultSuccess

		switch {
		case err == nil:
		case errors.Is(err, ErrSkipped):
			result = ResultSkipped
			err = nil
		case ctx.Err() != nil:
			result = ResultCanceled
		default:
			result = ResultFailed
		}

		if err == nil && stage.Enters != "" {
			if err = r.machine.Advance(stage.Enters); err != nil {
				result = ResultFailed
			}
		}

		rec := Record{Stage: stage.Name, Result: result, Duration: duration}
		if err != nil {
			rec.Error = err.Error()
		}

		r.record(rec)

		if err != nil {
			logger.ErrorKV(stageCtx, "Stage failed", "duration", duration, "error", err)

			outcome := metrics.ResultFailed
			if result == ResultCanceled {
				outcome = metrics.ResultCanceled
			}

			return r.abort(started, outcome, &StageError{Stage: stage.Name, Err: err})
		}

		logger.InfoKV(stageCtx, "Stage finished", "result", result, "duration", duration)
	}

	if err := r.machine.Advance(StateCompleted); err != nil {
		return r.abort(started, metrics.ResultFailed, err)
	}

	r.recorder.ObserveBuildDuration(time.Since(started))
	r.recorder.IncBuildOutcome(metrics.ResultSuccess)

	return nil
}

func (r *Runner) record(rec Record) {
	r.records = append(r.records, rec)
	r.recorder.ObserveStageDuration(string(rec.Stage), rec.Duration)
	r.recorder.IncStageResult(string(rec.Stage), string(rec.Result))
}

func (r *Runner) abort(started time.Time, outcome string, err error) error {
	r.machine.Fail()
	r.recorder.ObserveBuildDuration(time.Since(started))
	r.recorder.IncBuildOutcome(outcome)

	return err
}
