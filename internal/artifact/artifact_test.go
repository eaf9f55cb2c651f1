package artifact

import (
	"context"
	"crypto/sha512"
	"encoding/base64"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestChecksum matches the standard library digest.
func TestChecksum(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "komorebi.exe")
	require.NoError(t, os.WriteFile(path, []byte("binary"), 0o600))

	got, err := Checksum(path)
	require.NoError(t, err)

	want := sha512.Sum512([]byte("binary"))
	require.Equal(t, want[:], got)
}

// TestVerify reports every missing path at once.
func TestVerify(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	present := filepath.Join(dir, "present")
	require.NoError(t, os.WriteFile(present, nil, 0o600))

	require.NoError(t, Verify(present))

	err := Verify(present, filepath.Join(dir, "a"), filepath.Join(dir, "b"), dir)
	require.ErrorIs(t, err, os.ErrNotExist)
	require.ErrorIs(t, err, errNotRegularFile)
	require.Contains(t, err.Error(), filepath.Join(dir, "a"))
	require.Contains(t, err.Error(), filepath.Join(dir, "b"))
}

// TestInstall copies a new artifact and replaces an existing one.
func TestInstall(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	staging := t.TempDir()
	source := filepath.Join(src, "komorebic.exe")
	require.NoError(t, os.WriteFile(source, []byte("v1"), 0o755))

	staged, err := Install(context.Background(), source, staging)
	require.NoError(t, err)
	require.Equal(t, "komorebic.exe", staged.Name)
	require.Equal(t, filepath.Join(staging, "komorebic.exe"), staged.Target)

	got, err := os.ReadFile(staged.Target)
	require.NoError(t, err)
	require.Equal(t, "v1", string(got))

	sum := sha512.Sum512([]byte("v1"))
	require.Equal(t, base64.StdEncoding.EncodeToString(sum[:]), staged.EncodedChecksum())

	if runtime.GOOS != "windows" {
		info, statErr := os.Stat(staged.Target)
		require.NoError(t, statErr)
		require.Equal(t, os.FileMode(0o755), info.Mode().Perm())
	}

	require.NoError(t, os.WriteFile(source, []byte("v2"), 0o755))

	_, err = Install(context.Background(), source, staging)
	require.NoError(t, err)

	got, err = os.ReadFile(staged.Target)
	require.NoError(t, err)
	require.Equal(t, "v2", string(got))

	_, err = os.Stat(filepath.Join(staging, ".komorebic.exe.old"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestInstall_Canceled refuses to start once the context is done.
func TestInstall_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Install(ctx, "whatever", t.TempDir())
	require.ErrorIs(t, err, context.Canceled)
}
