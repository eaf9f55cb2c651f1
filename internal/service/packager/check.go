package packager

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/wmshell/shell-packager/internal/artifact"
	"github.com/wmshell/shell-packager/internal/config"
	"github.com/wmshell/shell-packager/internal/logger"
)

var errCredentialUnset = errors.New("credential environment variable is not set")

// Check verifies the configuration and every build input without running anything.
// All problems are reported together.
func Check(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "check")

	pkg, err := newPackager(opts)
	if err != nil {
		return err
	}

	errs := []error{artifact.Verify(pkg.paths.Inputs()...)}

	for _, publisher := range pkg.packaging.Publishers {
		for _, name := range credentialEnvs(publisher) {
			if _, ok := os.LookupEnv(name); !ok {
				errs = append(errs, fmt.Errorf("publisher %q: %w: %s", publisher.Name, errCredentialUnset, name))
			}
		}
	}

	if err = errors.Join(errs...); err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	if _, semverErr := pkg.manifest.Semver(); semverErr != nil {
		logger.WarnKV(ctx, "Version is not a semantic version", "error", semverErr)
	}

	logger.InfoKV(ctx, "Configuration is valid",
		"product", pkg.packaging.Packager.Name,
		"package", pkg.manifest.DisplayName(),
		"version", pkg.manifest.Version,
		"prerelease", pkg.manifest.Prerelease(),
		"platform", pkg.cfg.Platform,
		"arch", pkg.cfg.Arch,
		"pre_package", pkg.cfg.RunsPrePackage())

	return nil
}

// RenderConfig writes the framework configuration and returns its path.
func RenderConfig(ctx context.Context, opts *Options) (string, error) {
	pkg, err := newPackager(opts)
	if err != nil {
		return "", err
	}

	if err = config.RenderFrameworkConfig(pkg.paths.RenderedConfig, pkg.packaging); err != nil {
		return "", err
	}

	logger.InfoKV(ctx, "Framework configuration rendered", "path", pkg.paths.RenderedConfig)

	return pkg.paths.RenderedConfig, nil
}

func credentialEnvs(p config.Publisher) []string {
	switch p.Type {
	case config.PublisherGitHub:
		return []string{p.TokenEnv}
	case config.PublisherS3:
		return []string{p.AccessKeyEnv, p.SecretKeyEnv}
	default:
		return nil
	}
}
