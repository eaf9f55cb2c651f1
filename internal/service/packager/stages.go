package packager

import (
	"context"
	"errors"

	"github.com/wmshell/shell-packager/internal/config"
	"github.com/wmshell/shell-packager/internal/lock"
	"github.com/wmshell/shell-packager/internal/logger"
	"github.com/wmshell/shell-packager/internal/metrics"
	"github.com/wmshell/shell-packager/internal/pipeline"
	"github.com/wmshell/shell-packager/internal/repository/report"
)

// stages returns every stage in its fixed order.
func (p *packager) stages(bc BuildContext) []pipeline.Stage {
	return []pipeline.Stage{
		{
			Name:   pipeline.StageGenerateAssets,
			Enters: pipeline.StateAssetsGenerated,
			Fn:     func(ctx context.Context) error { return p.GenerateAssets(ctx, bc) },
		},
		{
			Name: pipeline.StagePackage,
			Fn:   p.external(p.cfg.Commands.Package, bc),
		},
		{
			Name:   pipeline.StagePrePackage,
			Enters: pipeline.StatePrePackaged,
			Fn:     func(ctx context.Context) error { return p.PrePackage(ctx, bc) },
		},
		{
			Name: pipeline.StageCopy,
			Fn:   p.external(p.cfg.Commands.Copy, bc),
		},
		{
			Name:   pipeline.StagePostCopy,
			Enters: pipeline.StatePostCopyComplete,
			Fn:     func(ctx context.Context) error { return p.PackageAfterCopy(ctx, bc) },
		},
		{
			Name: pipeline.StageMake,
			Fn:   p.external(p.cfg.Commands.Make, bc),
		},
		{
			Name: pipeline.StagePublish,
			Fn:   func(ctx context.Context) error { return p.Publish(ctx, bc) },
		},
	}
}

// external wraps a framework command; an empty template skips the stage.
func (p *packager) external(template string, bc BuildContext) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if template == "" {
			logger.Info(ctx, "No command configured, skipping stage")
			return pipeline.ErrSkipped
		}

		_, err := p.exec(ctx, template, p.vars(bc))

		return err
	}
}

// run holds the output lock, executes the stages and persists the report.
func (p *packager) run(ctx context.Context, stages []pipeline.Stage) error {
	runLock, err := lock.Acquire(ctx, p.paths.OutputRoot)
	if err != nil {
		return err
	}

	defer func() {
		if releaseErr := runLock.Release(); releaseErr != nil {
			logger.ErrorKV(ctx, "Failed to release run lock", "error", releaseErr)
		}
	}()

	if err = config.RenderFrameworkConfig(p.paths.RenderedConfig, p.packaging); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Framework configuration rendered", "path", p.paths.RenderedConfig)

	buildReport := p.newReport(ctx)
	ctx = logger.WithKV(ctx, "build_id", buildReport.BuildID)

	logger.InfoKV(ctx, "Starting build",
		"version", buildReport.Version,
		"prerelease", buildReport.Prerelease,
		"platform", buildReport.Platform,
		"arch", buildReport.Arch)

	var recorder metrics.Recorder = metrics.NoopRecorder{}

	prometheusRecorder := metrics.NewPrometheusRecorder()
	if p.paths.MetricsFile != "" {
		recorder = prometheusRecorder
	}

	runner := pipeline.NewRunner(recorder)
	runErr := runner.Run(ctx, stages)

	p.finishReport(buildReport, runner)

	// A failed build still leaves its report and metrics behind.
	var persistErrs []error

	if err = report.NewFileRepository(p.paths.StateFile).Save(ctx, buildReport); err != nil {
		persistErrs = append(persistErrs, err)
	} else {
		logger.InfoKV(ctx, "Build report saved", "path", p.paths.StateFile)
	}

	if p.paths.MetricsFile != "" {
		if err = prometheusRecorder.WriteTextfile(p.paths.MetricsFile); err != nil {
			persistErrs = append(persistErrs, err)
		}
	}

	if runErr != nil {
		for _, persistErr := range persistErrs {
			logger.ErrorKV(ctx, "Failed to persist build outputs", "error", persistErr)
		}

		return runErr
	}

	if err = errors.Join(persistErrs...); err != nil {
		return err
	}

	p.printNextSteps(ctx, buildReport)

	return nil
}
