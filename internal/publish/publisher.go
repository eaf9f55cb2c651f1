package publish

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/wmshell/shell-packager/internal/config"
	"github.com/wmshell/shell-packager/internal/logger"
)

var (
	errNotS3Publisher = errors.New("publisher is not of type s3")
	errEnvNotSet      = errors.New("credential environment variable is not set")
	errNoArtifacts    = errors.New("no artifacts to publish")
)

// Release identifies what is being published.
type Release struct {
	// Version is the application version.
	Version string
	// Prerelease marks beta builds.
	Prerelease bool
	// Platform is the target platform.
	Platform string
	// Arch is the target architecture.
	Arch string
	// Dir holds the files produced by the makers.
	Dir string
}

// File is a local file scheduled for upload.
type File struct {
	// Path is the absolute local path.
	Path string
	// Rel is the slash-separated path relative to the release directory.
	Rel string
}

// S3Publisher uploads release files through a Store.
type S3Publisher struct {
	name   string
	folder string
	store  Store
}

// NewS3Publisher creates a publisher for an s3 publisher definition,
// reading the credentials from the environment variables it names.
func NewS3Publisher(p config.Publisher) (*S3Publisher, error) {
	if p.Type != config.PublisherS3 {
		return nil, fmt.Errorf("%w: %q", errNotS3Publisher, p.Name)
	}

	accessKey, err := env(p.AccessKeyEnv)
	if err != nil {
		return nil, err
	}

	secretKey, err := env(p.SecretKeyEnv)
	if err != nil {
		return nil, err
	}

	store, err := NewS3Store(S3Config{
		Endpoint:  p.Endpoint,
		Region:    p.Region,
		AccessKey: accessKey,
		SecretKey: secretKey,
		Bucket:    p.Bucket,
		UseSSL:    p.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("publisher %q: %w", p.Name, err)
	}

	return NewPublisher(p.Name, p.Folder, store), nil
}

// NewPublisher creates a publisher on top of an existing store.
func NewPublisher(name, folder string, store Store) *S3Publisher {
	return &S3Publisher{
		name:   name,
		folder: folder,
		store:  store,
	}
}

// Publish uploads every file under the release directory and returns the object keys.
func (p *S3Publisher) Publish(ctx context.Context, release Release) ([]string, error) {
	files, err := Collect(release.Dir)
	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", errNoArtifacts, release.Dir)
	}

	metadata := map[string]string{
		"version":    release.Version,
		"prerelease": strconv.FormatBool(release.Prerelease),
	}

	keys := make([]string, 0, len(files))

	for _, file := range files {
		if err = ctx.Err(); err != nil {
			return keys, err
		}

		key := ObjectKey(p.folder, release, file.Rel)
		if err = p.store.Put(ctx, key, file.Path, metadata); err != nil {
			return keys, fmt.Errorf("publisher %q: %w", p.name, err)
		}

		logger.InfoKV(ctx, "Artifact published", "publisher", p.name, "key", key)

		keys = append(keys, key)
	}

	return keys, nil
}

// ObjectKey builds <folder>/<version>/<platform>-<arch>/<rel>.
func ObjectKey(folder string, release Release, rel string) string {
	return path.Join(
		strings.Trim(folder, "/"),
		release.Version,
		release.Platform+"-"+release.Arch,
		filepath.ToSlash(rel),
	)
}

// Collect lists regular files under dir in lexical order.
func Collect(dir string) ([]File, error) {
	var files []File

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}

		files = append(files, File{Path: p, Rel: filepath.ToSlash(rel)})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("collect artifacts: %w", err)
	}

	slices.SortFunc(files, func(a, b File) int {
		return strings.Compare(a.Rel, b.Rel)
	})

	return files, nil
}

func env(name string) (string, error) {
	value, ok := os.LookupEnv(name)
	if !ok || strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%w: %s", errEnvNotSet, name)
	}

	return value, nil
}
