package packager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wmshell/shell-packager/internal/config"
	"github.com/wmshell/shell-packager/internal/process"
)

const (
	appLicenseText       = "Seelen UI license"
	wrappedLicenseText   = "komorebi license"
	frameworkLicenseText = "Electron license"
)

//nolint:gochecknoglobals // Shared fixture layout.
var fixtureArtifacts = []string{
	"komorebi/target/release/komorebi.exe",
	"komorebi/target/release/komorebic.exe",
	"komorebi/komorebic.lib.ahk",
	"komorebi/komorebi.generated.ahk",
}

// fakeRunner records commands and answers them without starting processes.
type fakeRunner struct {
	mu    sync.Mutex
	calls []process.Command
	// fail maps a program name to the stderr of a failing exit.
	fail map[string]string
	// onRun is called for programs that succeed.
	onRun func(cmd process.Command) error
}

func (f *fakeRunner) Run(_ context.Context, cmd process.Command) (*process.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	f.mu.Unlock()

	if stderr, ok := f.fail[cmd.Name]; ok {
		result := &process.Result{ExitCode: 1, Stderr: []byte(stderr)}
		return result, &process.ExitError{Command: cmd.Name, Result: result}
	}

	if f.onRun != nil {
		if err := f.onRun(cmd); err != nil {
			return nil, err
		}
	}

	if cmd.Name == "json2ts" {
		return &process.Result{Stdout: []byte(generated(cmd.Args[len(cmd.Args)-1]))}, nil
	}

	return &process.Result{}, nil
}

func (f *fakeRunner) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	names := make([]string, 0, len(f.calls))
	for _, call := range f.calls {
		names = append(names, call.Name)
	}

	return names
}

func generated(schema string) string {
	return fmt.Sprintf("export interface Settings {\n  // from %s\n}\n", filepath.Base(schema))
}

// project is a throwaway application directory with a valid configuration.
type project struct {
	dir        string
	configPath string
	cfg        *config.Config
}

func newProject(t *testing.T, version string, mutate ...func(cfg *config.Config)) *project {
	t.Helper()

	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "package.json"), fmt.Sprintf(`{"name":"seelen-ui","productName":"Seelen UI","version":%q}`, version))
	writeFile(t, filepath.Join(dir, "static/schemas/settings.schema.json"), `{"type":"object"}`)
	writeFile(t, filepath.Join(dir, "static/schemas/settings-yaml.schema.json"), `{"type":"object"}`)
	writeFile(t, filepath.Join(dir, "LICENSE"), appLicenseText)
	writeFile(t, filepath.Join(dir, "komorebi/LICENSE"), wrappedLicenseText)

	for _, artifact := range fixtureArtifacts {
		writeFile(t, filepath.Join(dir, artifact), "contents of "+filepath.Base(artifact))
	}

	cfg := &config.Config{
		AppDir:   ".",
		Platform: "win32",
		Arch:     "x64",
		Schemas: []config.Schema{
			{Name: "settings", Source: "static/schemas/settings.schema.json", Destination: "src/gen/Settings.ts"},
			{Name: "settings-yaml", Source: "static/schemas/settings-yaml.schema.json", Destination: "src/gen/SettingsYaml.ts"},
		},
		Commands: config.Commands{
			SchemaCompiler: "json2ts --input $SCHEMA",
			Bundle:         "node scripts/build.js",
		},
		PrePackage: config.PrePackage{
			Command: `prepackage "$OUTPUT_DIR"`,
		},
		Licenses:  config.Licenses{Wrapped: "komorebi/LICENSE"},
		Artifacts: append([]string(nil), fixtureArtifacts...),
		Packaging: config.PackagingConfig{
			Packager: config.PackagerOptions{Name: "Seelen UI"},
			Publishers: []config.Publisher{
				{
					Name:       "@electron-forge/publisher-github",
					Type:       config.PublisherGitHub,
					Repository: config.Repository{Owner: "owner", Name: "shell"},
					TokenEnv:   "SHELL_PACKAGER_TEST_TOKEN",
				},
			},
		},
	}

	for _, fn := range mutate {
		fn(cfg)
	}

	configPath := filepath.Join(dir, config.DefaultConfigFilename)
	require.NoError(t, config.Save(configPath, cfg))

	return &project{dir: dir, configPath: configPath, cfg: cfg}
}

func (p *project) options(runner process.Runner) *Options {
	return &Options{ConfigPath: p.configPath, Runner: runner}
}

func (p *project) packager(t *testing.T, runner process.Runner) *packager {
	t.Helper()

	pkg, err := newPackager(p.options(runner))
	require.NoError(t, err)

	return pkg
}

// simulateCopy creates what the framework copy phase leaves behind.
func simulateCopy(t *testing.T, pkg *packager) {
	t.Helper()

	require.NoError(t, os.MkdirAll(pkg.paths.StagingDir, 0o755))
	writeFile(t, pkg.paths.FrameworkLicense(pkg.paths.StagingDir), frameworkLicenseText)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(data)
}
