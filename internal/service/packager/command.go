package packager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/wmshell/shell-packager/internal/config"
	"github.com/wmshell/shell-packager/internal/logger"
	"github.com/wmshell/shell-packager/internal/manifest"
	"github.com/wmshell/shell-packager/internal/pipeline"
	"github.com/wmshell/shell-packager/internal/process"
)

// Options contains inputs for the packager entry points.
type Options struct {
	// ConfigPath is the project configuration file (defaults to shell-packager.yaml).
	ConfigPath string
	// Platform overrides the configured target platform.
	Platform string
	// Arch overrides the configured target architecture.
	Arch string
	// BuildPath overrides the staging directory used by the post-copy stage.
	BuildPath string
	// Stages restricts the run to the named stages; empty runs the default order.
	Stages []pipeline.StageName
	// Publish appends the publish stage to the default order.
	Publish bool
	// Output receives a live copy of external command output; nil keeps it captured only.
	Output io.Writer
	// Runner executes external commands; nil uses os/exec.
	Runner process.Runner
}

// BuildContext is what every lifecycle hook receives.
type BuildContext struct {
	// Platform is the target platform.
	Platform string
	// Arch is the target architecture.
	Arch string
	// Version is the application version from the manifest.
	Version string
	// BuildPath is the staging directory; only the post-copy hook uses it.
	BuildPath string
}

var (
	errUnknownStage = errors.New("unknown stage")
	errConfigExists = errors.New("configuration file already exists")
)

// packager holds everything resolved once at startup.
// It is unexported; callers use Run, Check, RenderConfig and Init.
type packager struct {
	// cfg is the validated project configuration.
	cfg *config.Config
	// paths are the absolute build paths.
	paths *config.Paths
	// manifest provides the application version.
	manifest *manifest.Manifest
	// packaging is the framework configuration resolved for the version.
	packaging config.PackagingConfig
	// runner executes external commands.
	runner process.Runner
	// output receives live command output.
	output io.Writer
	// newPublisher builds release publishers; replaced in tests.
	newPublisher publisherFactory
	// staged collects the artifacts installed by the post-copy stage.
	staged []stagedArtifact
}

// Run executes the packaging pipeline.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "shell-packager")

	pkg, err := newPackager(opts)
	if err != nil {
		return fmt.Errorf("initialize packager: %w", err)
	}

	stages, err := pkg.selectStages(opts)
	if err != nil {
		return err
	}

	if err = pkg.run(ctx, stages); err != nil {
		return fmt.Errorf("packaging failed: %w", err)
	}

	logger.Info(ctx, "Packaging completed successfully")

	return nil
}

// Init writes the default project configuration to path, refusing to overwrite.
func Init(path string) error {
	if path == "" {
		path = config.DefaultConfigFilename
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", errConfigExists, path)
	}

	return config.Save(path, config.Default())
}

// newPackager loads the configuration, applies overrides and reads the manifest.
func newPackager(opts *Options) (*packager, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	if opts.Platform != "" {
		cfg.Platform = opts.Platform
	}

	if opts.Arch != "" {
		cfg.Arch = opts.Arch
	}

	if err = config.Validate(cfg); err != nil {
		return nil, err
	}

	paths, err := cfg.Resolve()
	if err != nil {
		return nil, err
	}

	m, err := manifest.Read(paths.Manifest)
	if err != nil {
		return nil, err
	}

	runner := opts.Runner
	if runner == nil {
		runner = process.NewExecRunner()
	}

	return &packager{
		cfg:          cfg,
		paths:        paths,
		manifest:     m,
		packaging:    cfg.Packaging.Resolve(m.Version),
		runner:       runner,
		output:       opts.Output,
		newPublisher: newS3Publisher,
	}, nil
}

// buildContext returns the hook context; an empty buildPath means the staging directory.
func (p *packager) buildContext(buildPath string) BuildContext {
	if buildPath == "" {
		buildPath = p.paths.StagingDir
	}

	return BuildContext{
		Platform:  p.cfg.Platform,
		Arch:      p.cfg.Arch,
		Version:   p.manifest.Version,
		BuildPath: buildPath,
	}
}

// vars returns the template variables for a hook invocation.
func (p *packager) vars(bc BuildContext) map[string]string {
	return p.paths.Vars(map[string]string{
		config.VarVersion:    bc.Version,
		config.VarStagingDir: bc.BuildPath,
	})
}

// selectStages returns the stages to run in their fixed order.
func (p *packager) selectStages(opts *Options) ([]pipeline.Stage, error) {
	bc := p.buildContext(opts.BuildPath)
	all := p.stages(bc)

	if len(opts.Stages) == 0 {
		if opts.Publish {
			return all, nil
		}

		return slices.DeleteFunc(all, func(s pipeline.Stage) bool {
			return s.Name == pipeline.StagePublish
		}), nil
	}

	for _, name := range opts.Stages {
		if !slices.ContainsFunc(all, func(s pipeline.Stage) bool { return s.Name == name }) {
			return nil, fmt.Errorf("%w: %q", errUnknownStage, name)
		}
	}

	return slices.DeleteFunc(all, func(s pipeline.Stage) bool {
		return !slices.Contains(opts.Stages, s.Name)
	}), nil
}
