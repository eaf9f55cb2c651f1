package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the static packaging configuration of a project.
type Config struct {
	// AppDir is the project root; relative paths are resolved against it.
	AppDir string `yaml:"app_dir"`
	// Manifest is the package manifest providing the application version.
	Manifest string `yaml:"manifest"`
	// Platform is the target platform identifier (win32, darwin, linux).
	// Empty means the host platform.
	Platform string `yaml:"platform,omitempty"`
	// Arch is the target architecture identifier (x64, ia32, arm64, armv7l).
	// Empty means the host architecture.
	Arch string `yaml:"arch,omitempty"`
	// LogLevel is the minimum level of emitted log entries.
	LogLevel string `yaml:"log_level"`
	// LogFormat selects the console or json encoder.
	LogFormat string `yaml:"log_format"`
	// Schemas lists the settings schemas compiled into type definitions.
	Schemas []Schema `yaml:"schemas"`
	// Commands holds the external command templates.
	Commands Commands `yaml:"commands"`
	// PrePackage configures the platform script run before packaging.
	PrePackage PrePackage `yaml:"pre_package"`
	// Layout holds the output path templates.
	Layout Layout `yaml:"layout"`
	// Licenses names the license files merged after the copy phase.
	Licenses Licenses `yaml:"licenses"`
	// Artifacts are the window-manager files copied into the staging directory.
	Artifacts []string `yaml:"artifacts"`
	// Report configures the build report and metrics outputs.
	Report Report `yaml:"report"`
	// Packaging is the configuration rendered for the packaging framework.
	Packaging PackagingConfig `yaml:"packaging"`
}

// Schema is one schema-to-type compilation unit.
type Schema struct {
	// Name identifies the schema in logs and in the watch command.
	Name string `yaml:"name"`
	// Source is the JSON schema file.
	Source string `yaml:"source"`
	// Destination is the generated type-definition file, overwritten on every run.
	Destination string `yaml:"destination"`
}

// Commands are templates expanded with the variables documented on each field.
type Commands struct {
	// SchemaCompiler prints type definitions for $SCHEMA to stdout.
	SchemaCompiler string `yaml:"schema_compiler"`
	// Bundle builds the UI assets after type generation.
	Bundle string `yaml:"bundle"`
	// Package starts the framework packaging step; empty skips the stage.
	Package string `yaml:"package"`
	// Copy runs the framework copy phase that fills $STAGING_DIR; empty skips the stage.
	Copy string `yaml:"copy"`
	// Make runs the makers that finalize installers and archives; empty skips the stage.
	Make string `yaml:"make"`
}

// PrePackage configures the platform-specific pre-package script.
type PrePackage struct {
	// Command receives the output folder as $OUTPUT_DIR.
	Command string `yaml:"command"`
	// Platforms lists the platforms the script runs on.
	Platforms []string `yaml:"platforms"`
}

// Layout holds the output path templates.
type Layout struct {
	// OutputRoot is the framework output root, usually "out".
	OutputRoot string `yaml:"output_root"`
	// OutputDir is the not-yet-finalized output folder of the current target.
	OutputDir string `yaml:"output_dir"`
	// StagingDir is the application directory filled by the copy phase.
	StagingDir string `yaml:"staging_dir"`
	// MakeDir is where makers put final artifacts.
	MakeDir string `yaml:"make_dir"`
	// RenderedConfig is where render-config writes the framework JSON.
	RenderedConfig string `yaml:"rendered_config"`
}

// Licenses names the three license texts merged by the post-copy stage.
type Licenses struct {
	// App is the application's own license.
	App string `yaml:"app"`
	// Wrapped is the window-manager license.
	Wrapped string `yaml:"wrapped"`
	// Framework is the framework license relative to the staging directory.
	Framework string `yaml:"framework"`
}

// Report configures run outputs.
type Report struct {
	// StateFile receives the JSON build report.
	StateFile string `yaml:"state_file"`
	// MetricsFile receives Prometheus text metrics when set.
	MetricsFile string `yaml:"metrics_file"`
}

const (
	// DefaultConfigFilename is the default filename of the orchestrator configuration.
	DefaultConfigFilename = "shell-packager.yaml"

	// DefaultFilePermissions is the permission of files written by the orchestrator.
	DefaultFilePermissions = 0o644

	// DefaultDirPermissions is the permission of directories created by the orchestrator.
	DefaultDirPermissions = 0o755

	// PlatformWindows is the only platform the pre-package script runs on by default.
	PlatformWindows = "win32"
)

var (
	errConfigIsNotSet         = errors.New("configuration is not set")
	errNoSchemas              = errors.New("at least one schema must be configured")
	errIncompleteSchema       = errors.New("schema needs a name, a source and a destination")
	errDuplicateSchema        = errors.New("duplicate schema name")
	errSchemaCompilerRequired = errors.New("commands.schema_compiler must be provided")
	errWrappedLicenseRequired = errors.New("licenses.wrapped must be provided")
	errNoArtifacts            = errors.New("at least one artifact must be configured")
	errDuplicateArtifact      = errors.New("artifacts must have distinct file names")
	errUnknownPlatform        = errors.New("unknown platform")
	errUnknownArch            = errors.New("unknown arch")
	errUnknownLogFormat       = errors.New("unknown log format")
)

//nolint:gochecknoglobals // Read-only lookup tables.
var (
	knownPlatforms = []string{"win32", "darwin", "linux", "mas"}
	knownArchs     = []string{"x64", "ia32", "arm64", "armv7l", "universal"}
)

// Load reads configuration from the provided path and validates it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err = yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Relative app_dir is relative to the configuration file.
	if !filepath.IsAbs(cfg.AppDir) {
		cfg.AppDir = filepath.Join(filepath.Dir(path), cfg.AppDir)
	}

	if err = Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	// Platform and arch left empty follow the host running the build.
	platform, arch := cfg.Platform, cfg.Arch

	if err := Validate(cfg); err != nil {
		return err
	}

	persisted := *cfg
	persisted.Platform, persisted.Arch = platform, arch

	data, err := yaml.Marshal(&persisted)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err = os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// Validate checks required fields and fills defaults in place.
//
//nolint:cyclop // Flat list of independent checks.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	applyDefaults(cfg)

	if !slices.Contains(knownPlatforms, cfg.Platform) {
		return fmt.Errorf("%w: %q", errUnknownPlatform, cfg.Platform)
	}

	if !slices.Contains(knownArchs, cfg.Arch) {
		return fmt.Errorf("%w: %q", errUnknownArch, cfg.Arch)
	}

	if cfg.LogFormat != "console" && cfg.LogFormat != "json" {
		return fmt.Errorf("%w: %q", errUnknownLogFormat, cfg.LogFormat)
	}

	if err := validateSchemas(cfg.Schemas); err != nil {
		return err
	}

	if strings.TrimSpace(cfg.Commands.SchemaCompiler) == "" {
		return errSchemaCompilerRequired
	}

	if strings.TrimSpace(cfg.Licenses.Wrapped) == "" {
		return errWrappedLicenseRequired
	}

	if err := validateArtifacts(cfg.Artifacts); err != nil {
		return err
	}

	return cfg.Packaging.Validate()
}

func applyDefaults(cfg *Config) {
	applyProjectDefaults(cfg)
	setDefault(&cfg.Platform, CurrentPlatform())
	setDefault(&cfg.Arch, CurrentArch())
}

// applyProjectDefaults fills everything that does not depend on the host.
func applyProjectDefaults(cfg *Config) {
	setDefault(&cfg.AppDir, ".")
	setDefault(&cfg.Manifest, "package.json")
	setDefault(&cfg.LogLevel, "info")
	setDefault(&cfg.LogFormat, "console")
	setDefault(&cfg.Layout.OutputRoot, "out")
	setDefault(&cfg.Layout.OutputDir, "${OUTPUT_ROOT}/${PRODUCT}-${PLATFORM}-${ARCH}")
	setDefault(&cfg.Layout.StagingDir, "${OUTPUT_DIR}/resources/app")
	setDefault(&cfg.Layout.MakeDir, "${OUTPUT_ROOT}/make")
	setDefault(&cfg.Layout.RenderedConfig, "${OUTPUT_ROOT}/forge.config.json")
	setDefault(&cfg.Licenses.App, "LICENSE")
	setDefault(&cfg.Licenses.Framework, "../../LICENSE")
	setDefault(&cfg.Report.StateFile, "${OUTPUT_ROOT}/shell-packager-report.json")

	if cfg.PrePackage.Platforms == nil {
		cfg.PrePackage.Platforms = []string{PlatformWindows}
	}

	cfg.Packaging.applyDefaults()
}

func setDefault(field *string, value string) {
	if strings.TrimSpace(*field) == "" {
		*field = value
	}
}

func validateSchemas(schemas []Schema) error {
	if len(schemas) == 0 {
		return errNoSchemas
	}

	seen := make(map[string]struct{}, len(schemas))

	for _, schema := range schemas {
		if schema.Name == "" || schema.Source == "" || schema.Destination == "" {
			return fmt.Errorf("%w: %+v", errIncompleteSchema, schema)
		}

		if _, ok := seen[schema.Name]; ok {
			return fmt.Errorf("%w: %s", errDuplicateSchema, schema.Name)
		}

		seen[schema.Name] = struct{}{}
	}

	return nil
}

func validateArtifacts(artifacts []string) error {
	if len(artifacts) == 0 {
		return errNoArtifacts
	}

	seen := make(map[string]struct{}, len(artifacts))

	for _, artifact := range artifacts {
		name := filepath.Base(artifact)
		if _, ok := seen[name]; ok {
			return fmt.Errorf("%w: %s", errDuplicateArtifact, name)
		}

		seen[name] = struct{}{}
	}

	return nil
}

// RunsPrePackage reports whether the pre-package script applies to the configured platform.
func (c *Config) RunsPrePackage() bool {
	return strings.TrimSpace(c.PrePackage.Command) != "" && slices.Contains(c.PrePackage.Platforms, c.Platform)
}

// CurrentPlatform maps the host OS to the packaging framework's platform identifier.
func CurrentPlatform() string {
	if runtime.GOOS == "windows" {
		return PlatformWindows
	}

	return runtime.GOOS
}

// CurrentArch maps the host architecture to the packaging framework's identifier.
func CurrentArch() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x64"
	case "386":
		return "ia32"
	case "arm":
		return "armv7l"
	default:
		return runtime.GOARCH
	}
}
