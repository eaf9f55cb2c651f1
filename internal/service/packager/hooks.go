package packager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/wmshell/shell-packager/internal/artifact"
	"github.com/wmshell/shell-packager/internal/config"
	"github.com/wmshell/shell-packager/internal/license"
	"github.com/wmshell/shell-packager/internal/logger"
	"github.com/wmshell/shell-packager/internal/pipeline"
	"github.com/wmshell/shell-packager/internal/process"
	"github.com/wmshell/shell-packager/internal/schema"
)

var (
	errOutputDirMissing = errors.New("output folder does not exist")
	errNotDirectory     = errors.New("not a directory")
)

// stagedArtifact is an artifact installed into the build path.
type stagedArtifact struct {
	name     string
	target   string
	checksum string
}

// GenerateAssets compiles both settings schemas into type definitions and
// then runs the bundle command.
func (p *packager) GenerateAssets(ctx context.Context, bc BuildContext) error {
	vars := p.vars(bc)

	compiler := schema.NewCompiler(p.runner, p.cfg.Commands.SchemaCompiler, p.paths.AppDir, vars)
	if err := compiler.Generate(ctx, p.paths.Schemas...); err != nil {
		return err
	}

	if p.cfg.Commands.Bundle == "" {
		logger.Info(ctx, "No bundle command configured, skipping bundle")
		return nil
	}

	if _, err := p.exec(ctx, p.cfg.Commands.Bundle, vars); err != nil {
		return fmt.Errorf("bundle: %w", err)
	}

	return nil
}

// PrePackage runs the platform script against the output folder.
// On other platforms it does nothing.
func (p *packager) PrePackage(ctx context.Context, bc BuildContext) error {
	if !p.cfg.RunsPrePackage() {
		logger.InfoKV(ctx, "Pre-package script does not apply to platform", "platform", bc.Platform)
		return pipeline.ErrSkipped
	}

	info, err := os.Stat(p.paths.OutputDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", errOutputDirMissing, p.paths.OutputDir)
		}

		return fmt.Errorf("stat output folder: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%s: %w", p.paths.OutputDir, errNotDirectory)
	}

	vars := p.vars(bc)
	vars[config.VarOutputDir] = p.paths.OutputDir

	if _, err = p.exec(ctx, p.cfg.PrePackage.Command, vars); err != nil {
		return fmt.Errorf("pre-package script: %w", err)
	}

	return nil
}

// PackageAfterCopy consolidates the license texts into the framework license
// and stages the window-manager artifacts into the build path.
// Every input is checked before anything is written.
func (p *packager) PackageAfterCopy(ctx context.Context, bc BuildContext) error {
	frameworkLicense := p.paths.FrameworkLicense(bc.BuildPath)
	licenses := []string{p.paths.AppLicense, p.paths.WrappedLicense, frameworkLicense}

	if err := p.verifyPostCopyInputs(bc.BuildPath, licenses); err != nil {
		return err
	}

	info, err := os.Stat(frameworkLicense)
	if err != nil {
		return fmt.Errorf("stat framework license: %w", err)
	}

	if err = license.MergeFiles(frameworkLicense, info.Mode().Perm(), licenses...); err != nil {
		return err
	}

	logger.InfoKV(ctx, "License texts merged", "destination", frameworkLicense)

	staged := make([]stagedArtifact, 0, len(p.paths.Artifacts))

	for _, source := range p.paths.Artifacts {
		installed, installErr := artifact.Install(ctx, source, bc.BuildPath)
		if installErr != nil {
			return installErr
		}

		logger.InfoKV(ctx, "Artifact staged", "name", installed.Name, "target", installed.Target)

		staged = append(staged, stagedArtifact{
			name:     installed.Name,
			target:   installed.Target,
			checksum: installed.EncodedChecksum(),
		})
	}

	p.staged = staged

	return nil
}

func (p *packager) verifyPostCopyInputs(buildPath string, licenses []string) error {
	var dirErr error

	info, err := os.Stat(buildPath)

	switch {
	case err != nil:
		dirErr = fmt.Errorf("build path: %w", err)
	case !info.IsDir():
		dirErr = fmt.Errorf("%s: %w", buildPath, errNotDirectory)
	}

	files := slices.Concat(licenses, p.paths.Artifacts)
	if err = errors.Join(dirErr, artifact.Verify(files...)); err != nil {
		return fmt.Errorf("post-copy inputs missing: %w", err)
	}

	return nil
}

// exec runs a command template in the project directory.
// The template is logged unexpanded so environment values stay out of logs.
func (p *packager) exec(ctx context.Context, template string, vars map[string]string) (*process.Result, error) {
	cmd, err := process.Parse(template, vars)
	if err != nil {
		return nil, err
	}

	cmd.Dir = p.paths.AppDir
	cmd.Stdout = p.output
	cmd.Stderr = p.output

	logger.InfoKV(ctx, "Running command", "template", template)

	return p.runner.Run(ctx, cmd)
}
