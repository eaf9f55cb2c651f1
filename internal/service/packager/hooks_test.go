package packager

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wmshell/shell-packager/internal/artifact"
	"github.com/wmshell/shell-packager/internal/config"
	"github.com/wmshell/shell-packager/internal/license"
	"github.com/wmshell/shell-packager/internal/pipeline"
	"github.com/wmshell/shell-packager/internal/process"
)

func TestGenerateAssets(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	pkg := newProject(t, "1.2.0").packager(t, runner)
	bc := pkg.buildContext("")

	require.NoError(t, pkg.GenerateAssets(context.Background(), bc))
	require.Equal(t, []string{"json2ts", "json2ts", "node"}, runner.names())

	first := make([]string, 0, len(pkg.paths.Schemas))

	for _, schema := range pkg.paths.Schemas {
		content := readFile(t, schema.Destination)
		require.NotEmpty(t, content)
		require.Equal(t, generated(schema.Source), content)

		first = append(first, content)
	}

	require.NoError(t, pkg.GenerateAssets(context.Background(), bc))

	for i, schema := range pkg.paths.Schemas {
		require.Equal(t, first[i], readFile(t, schema.Destination))
	}
}

func TestGenerateAssets_CompilerFailure(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{fail: map[string]string{"json2ts": "schema is not valid JSON"}}
	pkg := newProject(t, "1.2.0").packager(t, runner)

	err := pkg.GenerateAssets(context.Background(), pkg.buildContext(""))

	var exitErr *process.ExitError

	require.ErrorAs(t, err, &exitErr)
	require.Contains(t, err.Error(), "schema is not valid JSON")
	require.Equal(t, []string{"json2ts"}, runner.names())
}

func TestGenerateAssets_BundleFailure(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{fail: map[string]string{"node": "cannot resolve module"}}
	pkg := newProject(t, "1.2.0").packager(t, runner)

	err := pkg.GenerateAssets(context.Background(), pkg.buildContext(""))
	require.ErrorContains(t, err, "bundle")
	require.ErrorContains(t, err, "cannot resolve module")

	for _, schema := range pkg.paths.Schemas {
		require.FileExists(t, schema.Destination)
	}
}

func TestPrePackage_InterpolatesOutputDir(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	pkg := newProject(t, "1.2.0").packager(t, runner)
	require.NoError(t, os.MkdirAll(pkg.paths.OutputDir, 0o755))

	require.NoError(t, pkg.PrePackage(context.Background(), pkg.buildContext("")))
	require.Len(t, runner.calls, 1)
	require.Equal(t, "prepackage", runner.calls[0].Name)
	require.Equal(t, []string{pkg.paths.OutputDir}, runner.calls[0].Args)
	require.Equal(t, pkg.paths.AppDir, runner.calls[0].Dir)
}

func TestPrePackage_ScriptFailure(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{fail: map[string]string{"prepackage": "access denied"}}
	pkg := newProject(t, "1.2.0").packager(t, runner)
	require.NoError(t, os.MkdirAll(pkg.paths.OutputDir, 0o755))

	err := pkg.PrePackage(context.Background(), pkg.buildContext(""))

	var exitErr *process.ExitError

	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 1, exitErr.Result.ExitCode)
	require.Contains(t, err.Error(), "access denied")
}

func TestPrePackage_MissingOutputDir(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	pkg := newProject(t, "1.2.0").packager(t, runner)

	err := pkg.PrePackage(context.Background(), pkg.buildContext(""))
	require.ErrorIs(t, err, errOutputDirMissing)
	require.Empty(t, runner.calls)
}

func TestPrePackage_OtherPlatform(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	pkg := newProject(t, "1.2.0", func(cfg *config.Config) {
		cfg.Platform = "linux"
	}).packager(t, runner)

	err := pkg.PrePackage(context.Background(), pkg.buildContext(""))
	require.ErrorIs(t, err, pipeline.ErrSkipped)
	require.Empty(t, runner.calls)
}

func TestPackageAfterCopy(t *testing.T) {
	t.Parallel()

	pkg := newProject(t, "1.2.0").packager(t, &fakeRunner{})
	simulateCopy(t, pkg)

	bc := pkg.buildContext("")
	require.NoError(t, pkg.PackageAfterCopy(context.Background(), bc))

	merged := readFile(t, pkg.paths.FrameworkLicense(bc.BuildPath))
	require.Equal(t, appLicenseText+license.Separator+wrappedLicenseText+license.Separator+frameworkLicenseText, merged)

	require.Len(t, pkg.staged, len(fixtureArtifacts))

	for i, source := range pkg.paths.Artifacts {
		target := filepath.Join(bc.BuildPath, filepath.Base(source))
		require.Equal(t, readFile(t, source), readFile(t, target))

		sum, err := artifact.Checksum(source)
		require.NoError(t, err)

		staged := artifact.Staged{Checksum: sum}
		require.Equal(t, staged.EncodedChecksum(), pkg.staged[i].checksum)
		require.Equal(t, target, pkg.staged[i].target)
	}
}

func TestPackageAfterCopy_EmptyLicenses(t *testing.T) {
	t.Parallel()

	prj := newProject(t, "1.2.0")
	pkg := prj.packager(t, &fakeRunner{})

	writeFile(t, pkg.paths.AppLicense, "")
	writeFile(t, pkg.paths.WrappedLicense, "")
	require.NoError(t, os.MkdirAll(pkg.paths.StagingDir, 0o755))
	writeFile(t, pkg.paths.FrameworkLicense(pkg.paths.StagingDir), "")

	require.NoError(t, pkg.PackageAfterCopy(context.Background(), pkg.buildContext("")))
	require.Equal(t, license.Separator+license.Separator, readFile(t, pkg.paths.FrameworkLicense(pkg.paths.StagingDir)))
}

func TestPackageAfterCopy_MissingArtifactWritesNothing(t *testing.T) {
	t.Parallel()

	pkg := newProject(t, "1.2.0").packager(t, &fakeRunner{})
	simulateCopy(t, pkg)

	missing := pkg.paths.Artifacts[1]
	require.NoError(t, os.Remove(missing))

	err := pkg.PackageAfterCopy(context.Background(), pkg.buildContext(""))
	require.ErrorIs(t, err, os.ErrNotExist)
	require.ErrorContains(t, err, missing)

	require.Equal(t, frameworkLicenseText, readFile(t, pkg.paths.FrameworkLicense(pkg.paths.StagingDir)))

	entries, err := os.ReadDir(pkg.paths.StagingDir)
	require.NoError(t, err)
	require.Empty(t, entries)
	require.Empty(t, pkg.staged)
}

func TestPackageAfterCopy_ReportsEveryMissingInput(t *testing.T) {
	t.Parallel()

	pkg := newProject(t, "1.2.0").packager(t, &fakeRunner{})
	simulateCopy(t, pkg)

	require.NoError(t, os.Remove(pkg.paths.WrappedLicense))
	require.NoError(t, os.Remove(pkg.paths.Artifacts[0]))
	require.NoError(t, os.Remove(pkg.paths.Artifacts[3]))

	err := pkg.PackageAfterCopy(context.Background(), pkg.buildContext(""))
	require.Error(t, err)

	for _, path := range []string{pkg.paths.WrappedLicense, pkg.paths.Artifacts[0], pkg.paths.Artifacts[3]} {
		require.ErrorContains(t, err, path)
	}
}

func TestPackageAfterCopy_MissingBuildPath(t *testing.T) {
	t.Parallel()

	pkg := newProject(t, "1.2.0").packager(t, &fakeRunner{})

	err := pkg.PackageAfterCopy(context.Background(), pkg.buildContext(filepath.Join(t.TempDir(), "missing", "resources", "app")))
	require.Error(t, err)
	require.True(t, errors.Is(err, os.ErrNotExist))
}
