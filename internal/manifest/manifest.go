package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// prereleaseMarker turns a version into a prerelease when it appears anywhere in it.
const prereleaseMarker = "beta"

var errVersionMissing = errors.New("manifest has no version")

// Manifest holds the fields of package.json the orchestrator uses.
type Manifest struct {
	// Name is the package name.
	Name string `json:"name"`
	// ProductName is the human readable product name, if any.
	ProductName string `json:"productName"`
	// Version is the raw version string; it drives the build as written.
	Version string `json:"version"`

	semver    *semver.Version
	semverErr error
}

// Read loads and validates the manifest at path.
func Read(path string) (*Manifest, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	return Parse(contents)
}

// Parse decodes manifest contents. Any non-empty version is accepted;
// whether it is also a semantic version is reported by Semver.
func Parse(contents []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(contents, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	m.Version = strings.TrimSpace(m.Version)
	if m.Version == "" {
		return nil, errVersionMissing
	}

	m.semver, m.semverErr = semver.NewVersion(m.Version)
	if m.semverErr != nil {
		m.semverErr = fmt.Errorf("manifest version %q: %w", m.Version, m.semverErr)
	}

	return &m, nil
}

// Prerelease reports whether this manifest's version is a prerelease.
func (m *Manifest) Prerelease() bool {
	return IsPrerelease(m.Version)
}

// Semver returns the parsed version, or the reason the version is not semantic.
func (m *Manifest) Semver() (*semver.Version, error) {
	return m.semver, m.semverErr
}

// DisplayName returns the product name, falling back to the package name.
func (m *Manifest) DisplayName() string {
	if m.ProductName != "" {
		return m.ProductName
	}

	return m.Name
}

// IsPrerelease reports whether the version contains "beta" anywhere.
// It is a substring test, not a prerelease-tag comparison: "1.2.0-betax" counts.
func IsPrerelease(version string) bool {
	return strings.Contains(version, prereleaseMarker)
}
