package license

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestMerge checks the exact concatenation, including empty texts.
func TestMerge(t *testing.T) {
	t.Parallel()

	cases := []struct {
		own, wrapped, framework string
	}{
		{"MIT own", "MIT wrapped", "MIT electron"},
		{"", "", ""},
		{"own\n", "", "framework\n\n"},
	}

	for _, tc := range cases {
		got := Merge(tc.own, tc.wrapped, tc.framework)
		require.Equal(t, tc.own+"\n\n- - -\n\n"+tc.wrapped+"\n\n- - -\n\n"+tc.framework, got)
	}
}

// TestMergeFiles overwrites the framework license in place.
func TestMergeFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	own := filepath.Join(dir, "LICENSE")
	wrapped := filepath.Join(dir, "WM_LICENSE")
	framework := filepath.Join(dir, "ELECTRON_LICENSE")

	require.NoError(t, os.WriteFile(own, []byte("own"), 0o600))
	require.NoError(t, os.WriteFile(wrapped, []byte("wrapped"), 0o600))
	require.NoError(t, os.WriteFile(framework, []byte("framework"), 0o600))

	require.NoError(t, MergeFiles(framework, 0o644, own, wrapped, framework))

	got, err := os.ReadFile(framework)
	require.NoError(t, err)
	require.Equal(t, "own"+Separator+"wrapped"+Separator+"framework", string(got))
}

// TestMergeFiles_MissingSource leaves the destination untouched.
func TestMergeFiles_MissingSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	framework := filepath.Join(dir, "LICENSE")
	require.NoError(t, os.WriteFile(framework, []byte("framework"), 0o600))

	err := MergeFiles(framework, 0o644, filepath.Join(dir, "missing"), framework)
	require.ErrorIs(t, err, os.ErrNotExist)

	got, err := os.ReadFile(framework)
	require.NoError(t, err)
	require.Equal(t, "framework", string(got))
}
