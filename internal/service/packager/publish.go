package packager

import (
	"context"
	"fmt"

	"github.com/wmshell/shell-packager/internal/config"
	"github.com/wmshell/shell-packager/internal/logger"
	"github.com/wmshell/shell-packager/internal/pipeline"
	"github.com/wmshell/shell-packager/internal/publish"
)

// releasePublisher uploads the files of a release.
type releasePublisher interface {
	Publish(ctx context.Context, release publish.Release) ([]string, error)
}

type publisherFactory func(p config.Publisher) (releasePublisher, error)

func newS3Publisher(p config.Publisher) (releasePublisher, error) {
	return publish.NewS3Publisher(p)
}

// Publish uploads the maker output to every s3 publisher.
// GitHub publishers are handled by the framework and only logged.
func (p *packager) Publish(ctx context.Context, bc BuildContext) error {
	for _, github := range p.packaging.PublishersOfType(config.PublisherGitHub) {
		logger.InfoKV(ctx, "Publisher is handled by the packaging framework",
			"publisher", github.Name,
			"prerelease", github.Prerelease)
	}

	targets := p.packaging.PublishersOfType(config.PublisherS3)
	if len(targets) == 0 {
		logger.Info(ctx, "No s3 publishers configured")
		return pipeline.ErrSkipped
	}

	release := publish.Release{
		Version:    bc.Version,
		Prerelease: p.manifest.Prerelease(),
		Platform:   bc.Platform,
		Arch:       bc.Arch,
		Dir:        p.paths.MakeDir,
	}

	for _, target := range targets {
		publisher, err := p.newPublisher(target)
		if err != nil {
			return err
		}

		keys, err := publisher.Publish(ctx, release)
		if err != nil {
			return fmt.Errorf("publish to %s: %w", target.Name, err)
		}

		logger.InfoKV(ctx, "Release published",
			"publisher", target.Name,
			"bucket", target.Bucket,
			"objects", len(keys))
	}

	return nil
}
