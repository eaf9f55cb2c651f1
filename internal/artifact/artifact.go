package artifact

import (
	"bytes"
	"context"
	"crypto"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/wmshell/shell-packager/internal/logger"

	// Ensure SHA512 available for checksum calculation.
	_ "crypto/sha512"
)

// DefaultChecksumFunction is used to calculate artifact hashes.
const DefaultChecksumFunction crypto.Hash = crypto.SHA512

var (
	errHashUnavailable = errors.New("hash function unavailable")
	errNotRegularFile  = errors.New("not a regular file")
)

// Staged describes a file placed into the staging directory.
type Staged struct {
	// Name is the base file name, identical in source and target.
	Name string
	// Source is the original file.
	Source string
	// Target is the installed copy.
	Target string
	// Checksum is the SHA-512 digest of the content.
	Checksum []byte
}

// EncodedChecksum returns the checksum in base64 as stored in build reports.
func (s *Staged) EncodedChecksum() string {
	return base64.StdEncoding.EncodeToString(s.Checksum)
}

// Checksum returns checksum bytes for a file using DefaultChecksumFunction.
func Checksum(path string) ([]byte, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	return checksum(contents)
}

func checksum(contents []byte) ([]byte, error) {
	if !DefaultChecksumFunction.Available() {
		return nil, fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	hasher := DefaultChecksumFunction.New()
	if _, err := hasher.Write(contents); err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	return hasher.Sum(nil), nil
}

// Verify checks that every path exists and is a regular file.
// All problems are reported together.
func Verify(paths ...string) error {
	var errs []error

	for _, path := range paths {
		info, err := os.Stat(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			errs = append(errs, fmt.Errorf("%s: %w", path, os.ErrNotExist))
		case err != nil:
			errs = append(errs, fmt.Errorf("stat %s: %w", path, err))
		case !info.Mode().IsRegular():
			errs = append(errs, fmt.Errorf("%s: %w", path, errNotRegularFile))
		}
	}

	return errors.Join(errs...)
}

// Install copies source into dir under the same base name, keeping its permissions.
func Install(ctx context.Context, source, dir string) (*Staged, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(source)
	if err != nil {
		return nil, fmt.Errorf("stat artifact: %w", err)
	}

	contents, err := os.ReadFile(filepath.Clean(source))
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}

	sum, err := checksum(contents)
	if err != nil {
		return nil, err
	}

	name := filepath.Base(source)
	target := filepath.Join(dir, name)

	// go-update swaps an existing file, so the target has to exist first.
	if _, err = os.Stat(target); errors.Is(err, os.ErrNotExist) {
		var placeholder *os.File

		if placeholder, err = os.Create(filepath.Clean(target)); err != nil {
			return nil, fmt.Errorf("create %s: %w", target, err)
		}

		_ = placeholder.Close()
	}

	logger.DebugKV(ctx, "Installing artifact", "source", source, "target", target)

	options := goupdate.Options{
		TargetPath: target,
		TargetMode: info.Mode().Perm(),
		Checksum:   sum,
		Hash:       DefaultChecksumFunction,
	}

	if err = goupdate.Apply(bytes.NewReader(contents), options); err != nil {
		return nil, fmt.Errorf("install %s: %w", name, err)
	}

	// Windows cannot always delete the swapped-out file, go-update hides it instead.
	if oldFile := filepath.Join(dir, "."+name+".old"); fileExists(oldFile) {
		_ = os.Remove(oldFile)
	}

	return &Staged{
		Name:     name,
		Source:   source,
		Target:   target,
		Checksum: sum,
	}, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
