package build

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestActorClone(t *testing.T) {
	t.Parallel()
	require.Nil(t, (*Actor)(nil).Clone())

	a := &Actor{Hostname: "build-01", Username: "ci"}
	b := a.Clone()

	require.Equal(t, a, b)
	require.NotSame(t, a, b)
}

func TestDetectActor(t *testing.T) {
	t.Parallel()

	a, err := DetectActor()
	require.NoError(t, err)
	require.NotEmpty(t, a.Hostname)
	require.NotEmpty(t, a.Username)
}

func TestReportClone(t *testing.T) {
	t.Parallel()

	r := &Report{
		BuildID: "id",
		Actor:   &Actor{Hostname: "h", Username: "u"},
		Stages:  []StageRecord{{Name: "generate-assets", Result: "success"}},
		Artifacts: []ArtifactRecord{
			{Name: "komorebi.exe", Checksum: "abc"},
		},
	}

	c := r.Clone()
	require.Equal(t, r, c)
	require.NotSame(t, r.Actor, c.Actor)

	c.Stages[0].Result = "failed"
	c.Artifacts[0].Name = "other"

	require.Equal(t, "success", r.Stages[0].Result)
	require.Equal(t, "komorebi.exe", r.Artifacts[0].Name)
}

func TestReportDuration(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	r := &Report{StartedAt: start}
	require.Zero(t, r.Duration())

	r.FinishedAt = start.Add(90 * time.Second)
	require.Equal(t, 90*time.Second, r.Duration())
}
