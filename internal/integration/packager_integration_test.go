package integration

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wmshell/shell-packager/internal/config"
	"github.com/wmshell/shell-packager/internal/license"
	"github.com/wmshell/shell-packager/internal/repository/report"
	"github.com/wmshell/shell-packager/internal/service/packager"
)

//nolint:gochecknoglobals // Fixture layout.
var artifacts = []string{
	"komorebi/target/release/komorebi.exe",
	"komorebi/target/release/komorebic.exe",
	"komorebi/komorebic.lib.ahk",
	"komorebi/komorebi.generated.ahk",
}

// newShellProject lays out an application whose external tools are small sh scripts.
func newShellProject(t *testing.T, version string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("sh scripts are not available on windows")
	}

	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh is not installed")
	}

	dir := t.TempDir()

	write := func(rel, content string) {
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	write("package.json", `{"name":"seelen-ui","productName":"Seelen UI","version":"`+version+`"}`)
	write("static/schemas/settings.schema.json", `{"title":"Settings"}`)
	write("static/schemas/settings-yaml.schema.json", `{"title":"SettingsYaml"}`)
	write("LICENSE", "own license")
	write("komorebi/LICENSE", "wrapped license")

	for _, artifact := range artifacts {
		write(artifact, "binary "+filepath.Base(artifact))
	}

	cfg := &config.Config{
		AppDir:   ".",
		Platform: "win32",
		Arch:     "x64",
		Schemas: []config.Schema{
			{Name: "settings", Source: "static/schemas/settings.schema.json", Destination: "src/apps/shared/schemas/Settings.ts"},
			{Name: "settings-yaml", Source: "static/schemas/settings-yaml.schema.json", Destination: "src/apps/shared/schemas/SettingsYaml.ts"},
		},
		Commands: config.Commands{
			SchemaCompiler: `sh -c 'printf "export interface Generated {}\n// %s\n" "$(basename "$1")"' json2ts "$SCHEMA"`,
			Bundle:         `sh -c 'mkdir -p dist && printf bundle > dist/main.js'`,
			Package:        `mkdir -p "$OUTPUT_DIR"`,
			Copy:           `sh -c 'mkdir -p "$1" && printf "framework license" > "$1/../../LICENSE"' copy "$STAGING_DIR"`,
			Make:           `sh -c 'mkdir -p "$1" && printf installer > "$1/Setup.exe"' make "$MAKE_DIR"`,
		},
		PrePackage: config.PrePackage{
			Command: `sh -c 'test -d "$1" && printf "%s" "$1" > "$1/prepackage.txt"' prepackage "$OUTPUT_DIR"`,
		},
		Licenses:  config.Licenses{Wrapped: "komorebi/LICENSE"},
		Artifacts: append([]string(nil), artifacts...),
		Packaging: config.PackagingConfig{
			Packager: config.PackagerOptions{Name: "Seelen UI"},
			Publishers: []config.Publisher{
				{
					Name:       "@electron-forge/publisher-github",
					Type:       config.PublisherGitHub,
					Repository: config.Repository{Owner: "owner", Name: "shell"},
					TokenEnv:   "GITHUB_TOKEN",
				},
			},
		},
	}

	configPath := filepath.Join(dir, config.DefaultConfigFilename)
	require.NoError(t, config.Save(configPath, cfg))

	return configPath
}

// TestPackager_EndToEnd runs every stage with real processes against a beta version.
func TestPackager_EndToEnd(t *testing.T) {
	t.Parallel()

	configPath := newShellProject(t, "2.0.0-beta")

	require.NoError(t, packager.Run(context.Background(), &packager.Options{ConfigPath: configPath}))

	cfg, err := config.Load(configPath)
	require.NoError(t, err)

	paths, err := cfg.Resolve()
	require.NoError(t, err)

	// Two non-empty definition files, one per schema.
	for _, schema := range paths.Schemas {
		data, readErr := os.ReadFile(schema.Destination)
		require.NoError(t, readErr)
		require.Contains(t, string(data), "// "+filepath.Base(schema.Source))
	}

	// The pre-package script saw the exact output folder.
	seen, err := os.ReadFile(filepath.Join(paths.OutputDir, "prepackage.txt"))
	require.NoError(t, err)
	require.Equal(t, paths.OutputDir, string(seen))

	// The framework license holds all three texts.
	merged, err := os.ReadFile(paths.FrameworkLicense(paths.StagingDir))
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(string(merged), license.Separator))
	require.Equal(t, "own license"+license.Separator+"wrapped license"+license.Separator+"framework license", string(merged))

	// Four staged window-manager files.
	for _, artifact := range artifacts {
		data, readErr := os.ReadFile(filepath.Join(paths.StagingDir, filepath.Base(artifact)))
		require.NoError(t, readErr)
		require.Equal(t, "binary "+filepath.Base(artifact), string(data))
	}

	// The publisher is marked as prerelease.
	rendered, err := os.ReadFile(paths.RenderedConfig)
	require.NoError(t, err)

	var frameworkConfig struct {
		Publishers []struct {
			Name   string         `json:"name"`
			Config map[string]any `json:"config"`
		} `json:"publishers"`
	}

	require.NoError(t, json.Unmarshal(rendered, &frameworkConfig))
	require.Len(t, frameworkConfig.Publishers, 1)
	require.Equal(t, true, frameworkConfig.Publishers[0].Config["prerelease"])

	buildReport, err := report.NewFileRepository(paths.StateFile).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "completed", buildReport.State)
	require.True(t, buildReport.Prerelease)
	require.Len(t, buildReport.Artifacts, len(artifacts))
	require.Len(t, buildReport.Stages, 6)

	require.FileExists(t, filepath.Join(paths.MakeDir, "Setup.exe"))
}

// TestPackager_PrePackageFailureStops checks that a failing script aborts the run
// before the copy phase.
func TestPackager_PrePackageFailureStops(t *testing.T) {
	t.Parallel()

	configPath := newShellProject(t, "1.0.0")

	cfg, err := config.Load(configPath)
	require.NoError(t, err)

	cfg.PrePackage.Command = `sh -c 'echo "signing tool missing" >&2; exit 4'`
	require.NoError(t, config.Save(configPath, cfg))

	err = packager.Run(context.Background(), &packager.Options{ConfigPath: configPath})
	require.ErrorContains(t, err, "signing tool missing")

	paths, err := cfg.Resolve()
	require.NoError(t, err)

	_, err = os.Stat(paths.StagingDir)
	require.ErrorIs(t, err, os.ErrNotExist)

	buildReport, err := report.NewFileRepository(paths.StateFile).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "failed", buildReport.State)
}
