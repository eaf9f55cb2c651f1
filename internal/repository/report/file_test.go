package report

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/wmshell/shell-packager/internal/domain/build"
)

func TestFileRepository_NotFound(t *testing.T) {
	t.Parallel()
	repo := NewFileRepository(filepath.Join(t.TempDir(), "missing.json"))
	r, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, r)
}

func TestFileRepository_SaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()
	file := filepath.Join(t.TempDir(), "out", "report.json")
	repo := NewFileRepository(file)

	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	want := &domain.Report{
		BuildID:    "3f1c6c52-9a4c-4b59-9d1c-6a7f1e0f9e21",
		Version:    "2.0.0-beta",
		Prerelease: true,
		Platform:   "win32",
		Arch:       "x64",
		Commit:     "0123456789abcdef",
		Actor:      &domain.Actor{Hostname: "build-01", Username: "ci"},
		State:      "completed",
		Stages: []domain.StageRecord{
			{Name: "generate-assets", Result: "success", Duration: 1500 * time.Millisecond},
			{Name: "package", Result: "skipped"},
			{Name: "post-copy", Result: "failed", Duration: time.Second, Error: "missing artifact"},
		},
		Artifacts: []domain.ArtifactRecord{
			{Name: "komorebi.exe", Target: "/stage/komorebi.exe", Checksum: "c2hh"},
		},
		StartedAt:  started,
		FinishedAt: started.Add(time.Minute),
	}

	require.NoError(t, repo.Save(context.Background(), want))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, got)

	_, err = os.Stat(file)
	require.NoError(t, err)
}

func TestFileRepository_EmptyReport(t *testing.T) {
	t.Parallel()
	repo := NewFileRepository(filepath.Join(t.TempDir(), "report.json"))

	require.NoError(t, repo.Save(context.Background(), &domain.Report{BuildID: "id"}))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "id", got.BuildID)
	require.Nil(t, got.Actor)
	require.Empty(t, got.Stages)
	require.True(t, got.StartedAt.IsZero())
}

func TestFileRepository_Malformed(t *testing.T) {
	t.Parallel()
	file := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"stages":[{"duration":"soon"}]}`), 0o600))

	_, err := NewFileRepository(file).Load(context.Background())
	require.ErrorIs(t, err, errMalformedReport)
}
