package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wmshell/shell-packager/internal/manifest"
)

// Publisher types.
const (
	// PublisherGitHub releases are created by the packaging framework itself.
	PublisherGitHub = "github"
	// PublisherS3 uploads are performed by the publish stage.
	PublisherS3 = "s3"
)

var (
	errProductNameRequired  = errors.New("packaging.packager.name must be provided")
	errMakerNameRequired    = errors.New("maker name must be provided")
	errPluginNameRequired   = errors.New("plugin name must be provided")
	errUnknownPublisher     = errors.New("unknown publisher type")
	errRepositoryRequired   = errors.New("github publisher needs repository owner and name")
	errBucketRequired       = errors.New("s3 publisher needs bucket and endpoint")
	errCredentialEnvMissing = errors.New("publisher credentials must be referenced by environment variable name")
)

// PackagingConfig is the nested configuration consumed by the packaging framework.
type PackagingConfig struct {
	// Packager holds the options of the packaging step.
	Packager PackagerOptions `yaml:"packager"`
	// Makers define target installer and archive formats.
	Makers []Maker `yaml:"makers"`
	// Plugins are framework plugins with their options.
	Plugins []Plugin `yaml:"plugins"`
	// Publishers are release targets.
	Publishers []Publisher `yaml:"publishers"`
}

// PackagerOptions configures the framework packaging step.
type PackagerOptions struct {
	// Name is the product name.
	Name string `yaml:"name"`
	// ExecutableName is the name of the produced executable.
	ExecutableName string `yaml:"executable_name"`
	// Icon is the icon path without extension.
	Icon string `yaml:"icon"`
	// ExtraResources are copied next to the application archive.
	ExtraResources []string `yaml:"extra_resources"`
	// Asar enables packing the application into an archive.
	Asar bool `yaml:"asar"`
	// Ignore lists path patterns excluded from the package.
	Ignore []string `yaml:"ignore"`
}

// Maker is a target artifact format with its options.
type Maker struct {
	// Name is the maker module name.
	Name string `yaml:"name"`
	// Platforms restricts the maker to the listed platforms.
	Platforms []string `yaml:"platforms"`
	// Config is passed to the maker unchanged.
	Config map[string]any `yaml:"config"`
}

// Plugin is a framework plugin definition.
type Plugin struct {
	// Name is the plugin module name.
	Name string `yaml:"name"`
	// Config is passed to the plugin unchanged.
	Config map[string]any `yaml:"config"`
}

// Publisher is a release target.
type Publisher struct {
	// Name is the publisher module name.
	Name string `yaml:"name"`
	// Type is github or s3.
	Type string `yaml:"type"`
	// Repository is the GitHub release target.
	Repository Repository `yaml:"repository,omitempty"`
	// TokenEnv names the environment variable holding the publishing credential.
	TokenEnv string `yaml:"token_env,omitempty"`
	// Draft creates draft releases.
	Draft bool `yaml:"draft,omitempty"`
	// Prerelease is derived from the application version by Resolve.
	Prerelease bool `yaml:"-"`
	// Bucket is the S3 bucket.
	Bucket string `yaml:"bucket,omitempty"`
	// Endpoint is the S3 endpoint host[:port].
	Endpoint string `yaml:"endpoint,omitempty"`
	// Region is the S3 region.
	Region string `yaml:"region,omitempty"`
	// Folder is the key prefix inside the bucket.
	Folder string `yaml:"folder,omitempty"`
	// UseSSL enables TLS towards the S3 endpoint.
	UseSSL bool `yaml:"use_ssl,omitempty"`
	// AccessKeyEnv names the environment variable holding the S3 access key.
	AccessKeyEnv string `yaml:"access_key_env,omitempty"`
	// SecretKeyEnv names the environment variable holding the S3 secret key.
	SecretKeyEnv string `yaml:"secret_key_env,omitempty"`
}

// Repository identifies a GitHub repository.
type Repository struct {
	Owner string `yaml:"owner"`
	Name  string `yaml:"name"`
}

func (p *PackagingConfig) applyDefaults() {
	for i := range p.Publishers {
		if p.Publishers[i].Type == "" {
			p.Publishers[i].Type = PublisherGitHub
		}
	}
}

// Validate checks the packaging configuration.
func (p *PackagingConfig) Validate() error {
	if strings.TrimSpace(p.Packager.Name) == "" {
		return errProductNameRequired
	}

	for _, maker := range p.Makers {
		if maker.Name == "" {
			return errMakerNameRequired
		}
	}

	for _, plugin := range p.Plugins {
		if plugin.Name == "" {
			return errPluginNameRequired
		}
	}

	for _, publisher := range p.Publishers {
		if err := publisher.validate(); err != nil {
			return fmt.Errorf("publisher %q: %w", publisher.Name, err)
		}
	}

	return nil
}

func (p *Publisher) validate() error {
	switch p.Type {
	case PublisherGitHub:
		if p.Repository.Owner == "" || p.Repository.Name == "" {
			return errRepositoryRequired
		}

		if p.TokenEnv == "" {
			return errCredentialEnvMissing
		}
	case PublisherS3:
		if p.Bucket == "" || p.Endpoint == "" {
			return errBucketRequired
		}

		if p.AccessKeyEnv == "" || p.SecretKeyEnv == "" {
			return errCredentialEnvMissing
		}
	default:
		return fmt.Errorf("%w: %q", errUnknownPublisher, p.Type)
	}

	return nil
}

// Resolve returns a copy of the packaging configuration for the given
// application version, with the prerelease flag of every publisher derived
// from it.
func (p PackagingConfig) Resolve(version string) PackagingConfig {
	prerelease := manifest.IsPrerelease(version)

	resolved := p
	resolved.Publishers = make([]Publisher, len(p.Publishers))

	for i, publisher := range p.Publishers {
		publisher.Prerelease = prerelease
		resolved.Publishers[i] = publisher
	}

	return resolved
}

// PublishersOfType returns the publishers with the given type.
func (p PackagingConfig) PublishersOfType(kind string) []Publisher {
	var result []Publisher

	for _, publisher := range p.Publishers {
		if publisher.Type == kind {
			result = append(result, publisher)
		}
	}

	return result
}
