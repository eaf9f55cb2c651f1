package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestIsPrerelease checks the substring rule for the prerelease flag.
func TestIsPrerelease(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"1.2.0-beta.1": true,
		"1.2.0":        false,
		"1.2.0-betax":  true,
		"2.0.0-beta":   true,
		"1.0.0-alpha":  false,
		"1.0.0-BETA":   false,
		"":             false,
	}
	for version, want := range cases {
		require.Equal(t, want, IsPrerelease(version), version)
	}
}

// TestRead parses a package manifest from disk.
func TestRead(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "package.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
	"name": "seelen-ui",
	"productName": "Seelen UI",
	"version": "2.0.0-beta"
}`), 0o600))

	m, err := Read(path)
	require.NoError(t, err)
	require.Equal(t, "seelen-ui", m.Name)
	require.Equal(t, "Seelen UI", m.ProductName)
	require.Equal(t, "2.0.0-beta", m.Version)
	require.Equal(t, "Seelen UI", m.DisplayName())
	require.True(t, m.Prerelease())

	parsed, err := m.Semver()
	require.NoError(t, err)
	require.Equal(t, "beta", parsed.Prerelease())
}

// TestParse_LooseVersions keeps versions that are not strict semantic versions.
func TestParse_LooseVersions(t *testing.T) {
	t.Parallel()

	m, err := Parse([]byte(`{"name":"seelen-ui","version":"v2.0.0"}`))
	require.NoError(t, err)
	require.Equal(t, "seelen-ui", m.DisplayName())
	require.False(t, m.Prerelease())

	parsed, err := m.Semver()
	require.NoError(t, err)
	require.Equal(t, "2.0.0", parsed.String())

	m, err = Parse([]byte(`{"version":"1.2.0-beta.01"}`))
	require.NoError(t, err)
	require.Equal(t, "1.2.0-beta.01", m.Version)
	require.True(t, m.Prerelease())

	_, err = m.Semver()
	require.Error(t, err)
}

// TestParse_Errors covers missing and malformed versions.
func TestParse_Errors(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(`{"name":"x"}`))
	require.ErrorIs(t, err, errVersionMissing)

	_, err = Parse([]byte(`{"version":"   "}`))
	require.ErrorIs(t, err, errVersionMissing)

	_, err = Parse([]byte(`not json`))
	require.Error(t, err)

	_, err = Read(filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
