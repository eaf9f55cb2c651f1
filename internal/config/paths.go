package config

import (
	"fmt"
	"maps"
	"path/filepath"

	"github.com/wmshell/shell-packager/internal/process"
)

// Template variables available to path and command templates.
const (
	VarProduct    = "PRODUCT"
	VarPlatform   = "PLATFORM"
	VarArch       = "ARCH"
	VarAppDir     = "APP_DIR"
	VarOutputRoot = "OUTPUT_ROOT"
	VarOutputDir  = "OUTPUT_DIR"
	VarStagingDir = "STAGING_DIR"
	VarMakeDir    = "MAKE_DIR"
	VarConfig     = "FRAMEWORK_CONFIG"
	VarVersion    = "VERSION"
	VarSchema     = "SCHEMA"
)

// Paths holds every fixed path of a build, resolved to absolute form.
type Paths struct {
	// AppDir is the project root.
	AppDir string
	// Manifest is the package manifest.
	Manifest string
	// Schemas carry absolute sources and destinations.
	Schemas []Schema
	// OutputRoot is the framework output root.
	OutputRoot string
	// OutputDir is the not-yet-finalized output folder.
	OutputDir string
	// StagingDir is the application staging directory.
	StagingDir string
	// MakeDir holds final artifacts.
	MakeDir string
	// RenderedConfig is the framework configuration JSON.
	RenderedConfig string
	// AppLicense is the application's own license.
	AppLicense string
	// WrappedLicense is the window-manager license.
	WrappedLicense string
	// Artifacts are the window-manager files to stage.
	Artifacts []string
	// StateFile receives the build report.
	StateFile string
	// MetricsFile receives Prometheus text metrics; empty disables it.
	MetricsFile string

	frameworkLicense string
	vars             map[string]string
}

// Resolve expands the layout templates and makes every configured path absolute.
func (c *Config) Resolve() (*Paths, error) {
	appDir, err := filepath.Abs(c.AppDir)
	if err != nil {
		return nil, fmt.Errorf("resolve app dir: %w", err)
	}

	p := &Paths{
		AppDir:           appDir,
		Manifest:         absolute(appDir, c.Manifest),
		AppLicense:       absolute(appDir, c.Licenses.App),
		WrappedLicense:   absolute(appDir, c.Licenses.Wrapped),
		frameworkLicense: c.Licenses.Framework,
		vars: map[string]string{
			VarProduct:  c.Packaging.Packager.Name,
			VarPlatform: c.Platform,
			VarArch:     c.Arch,
			VarAppDir:   appDir,
		},
	}

	// Order matters: later templates may reference earlier results.
	steps := []struct {
		template string
		target   *string
		variable string
	}{
		{c.Layout.OutputRoot, &p.OutputRoot, VarOutputRoot},
		{c.Layout.OutputDir, &p.OutputDir, VarOutputDir},
		{c.Layout.StagingDir, &p.StagingDir, VarStagingDir},
		{c.Layout.MakeDir, &p.MakeDir, VarMakeDir},
		{c.Layout.RenderedConfig, &p.RenderedConfig, VarConfig},
		{c.Report.StateFile, &p.StateFile, ""},
		{c.Report.MetricsFile, &p.MetricsFile, ""},
	}

	for _, step := range steps {
		if step.template == "" {
			continue
		}

		expanded, err := process.Expand(step.template, p.vars)
		if err != nil {
			return nil, err
		}

		*step.target = absolute(appDir, expanded)

		if step.variable != "" {
			p.vars[step.variable] = *step.target
		}
	}

	for _, schema := range c.Schemas {
		p.Schemas = append(p.Schemas, Schema{
			Name:        schema.Name,
			Source:      absolute(appDir, schema.Source),
			Destination: absolute(appDir, schema.Destination),
		})
	}

	for _, artifact := range c.Artifacts {
		p.Artifacts = append(p.Artifacts, absolute(appDir, artifact))
	}

	return p, nil
}

// FrameworkLicense returns the framework license path for a staging directory.
func (p *Paths) FrameworkLicense(buildPath string) string {
	return absolute(buildPath, p.frameworkLicense)
}

// Vars returns a copy of the template variables, extended with extra pairs.
func (p *Paths) Vars(extra map[string]string) map[string]string {
	vars := maps.Clone(p.vars)
	if vars == nil {
		vars = make(map[string]string, len(extra))
	}

	maps.Copy(vars, extra)

	return vars
}

// Inputs lists the files that must exist before any stage runs.
// The framework license is excluded: it appears only after the copy phase.
func (p *Paths) Inputs() []string {
	inputs := make([]string, 0, len(p.Schemas)+len(p.Artifacts)+3)
	inputs = append(inputs, p.Manifest)

	for _, schema := range p.Schemas {
		inputs = append(inputs, schema.Source)
	}

	inputs = append(inputs, p.AppLicense, p.WrappedLicense)
	inputs = append(inputs, p.Artifacts...)

	return inputs
}

func absolute(base, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}

	return filepath.Join(base, path)
}
