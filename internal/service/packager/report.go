package packager

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	domain "github.com/wmshell/shell-packager/internal/domain/build"
	"github.com/wmshell/shell-packager/internal/logger"
	"github.com/wmshell/shell-packager/internal/pipeline"
	"github.com/wmshell/shell-packager/internal/vcs"
)

// newReport starts the report of a run. Commit and actor are best effort.
func (p *packager) newReport(ctx context.Context) *domain.Report {
	r := &domain.Report{
		BuildID:    uuid.NewString(),
		Version:    p.manifest.Version,
		Prerelease: p.manifest.Prerelease(),
		Platform:   p.cfg.Platform,
		Arch:       p.cfg.Arch,
		StartedAt:  time.Now().UTC(),
	}

	commit, err := vcs.HeadCommit(p.paths.AppDir)
	if err != nil {
		logger.DebugKV(ctx, "Commit unavailable", "error", err)
	}

	r.Commit = commit

	actor, err := domain.DetectActor()
	if err != nil {
		logger.DebugKV(ctx, "Actor unavailable", "error", err)
	}

	r.Actor = actor

	return r
}

// finishReport copies the pipeline outcome into the report.
func (p *packager) finishReport(r *domain.Report, runner *pipeline.Runner) {
	r.State = string(runner.State())
	r.FinishedAt = time.Now().UTC()

	for _, record := range runner.Records() {
		r.Stages = append(r.Stages, domain.StageRecord{
			Name:     string(record.Stage),
			Result:   string(record.Result),
			Duration: record.Duration,
			Error:    record.Error,
		})
	}

	for _, staged := range p.staged {
		r.Artifacts = append(r.Artifacts, domain.ArtifactRecord{
			Name:     staged.name,
			Target:   staged.target,
			Checksum: staged.checksum,
		})
	}
}

// printNextSteps logs a human-readable summary of the finished build.
func (p *packager) printNextSteps(ctx context.Context, r *domain.Report) {
	var builder strings.Builder

	builder.WriteString("Build ")
	builder.WriteString(r.BuildID)
	builder.WriteString(" of ")
	builder.WriteString(p.packaging.Packager.Name)
	builder.WriteString(" ")
	builder.WriteString(r.Version)
	builder.WriteString(" finished in ")
	builder.WriteString(r.Duration().Round(time.Millisecond).String())

	for _, stage := range r.Stages {
		builder.WriteString("\n  ")
		builder.WriteString(stage.Name)
		builder.WriteString(": ")
		builder.WriteString(stage.Result)
	}

	if len(r.Artifacts) > 0 {
		builder.WriteString("\nStaged window-manager files:")

		for _, staged := range r.Artifacts {
			builder.WriteString("\n  ")
			builder.WriteString(staged.Target)
		}
	}

	if r.Prerelease {
		builder.WriteString("\nThis version is a prerelease; publishers will mark the release accordingly.")
	}

	builder.WriteString("\nFinal artifacts are expected in ")
	builder.WriteString(p.paths.MakeDir)

	logger.Info(ctx, builder.String())
}
