// Package lock keeps two orchestrator runs from working on the same output
// tree at once. The marker file stores the owner's PID; a marker whose
// process is gone is treated as stale and taken over.
package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/wmshell/shell-packager/internal/logger"
)

// MarkerFilename is created inside the output root while a run is active.
const MarkerFilename = ".shell-packager.lock"

const markerPermissions = 0o644

// ErrAlreadyRunning indicates that another live process holds the marker.
var ErrAlreadyRunning = errors.New("another packaging run is in progress")

// processAlive reports whether a process with the PID exists.
// Replaced in tests.
//
//nolint:gochecknoglobals // Test seam.
var processAlive = func(pid int) (bool, error) {
	process, err := ps.FindProcess(pid)
	if err != nil {
		return false, err
	}

	return process != nil, nil
}

// Lock is a held run marker.
type Lock struct {
	path string
}

// Acquire creates the marker in dir, taking over a stale one.
func Acquire(ctx context.Context, dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}

	path := filepath.Join(dir, MarkerFilename)

	for attempt := 0; attempt < 2; attempt++ {
		file, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_EXCL|os.O_WRONLY, markerPermissions)
		if err == nil {
			_, writeErr := file.WriteString(strconv.Itoa(os.Getpid()))
			closeErr := file.Close()

			if err = errors.Join(writeErr, closeErr); err != nil {
				_ = os.Remove(path)
				return nil, fmt.Errorf("write lock marker: %w", err)
			}

			logger.DebugKV(ctx, "Acquired run lock", "path", path)

			return &Lock{path: path}, nil
		}

		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create lock marker: %w", err)
		}

		owner, stale, err := inspect(path)
		if err != nil {
			return nil, err
		}

		if !stale {
			return nil, fmt.Errorf("%s: %w", path, ErrAlreadyRunning)
		}

		logger.InfoKV(ctx, "Removing stale run lock", "path", path)

		if err = takeOver(path, owner); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%s: %w", path, ErrAlreadyRunning)
}

// Release removes the marker. Releasing twice is harmless.
func (l *Lock) Release() error {
	if l == nil || l.path == "" {
		return nil
	}

	err := os.Remove(l.path)
	l.path = ""

	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("release lock: %w", err)
	}

	return nil
}

// inspect reads the marker and reports its raw owner and whether that owner is gone.
func inspect(path string) (string, bool, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, os.ErrNotExist) {
		return "", true, nil
	}

	if err != nil {
		return "", false, fmt.Errorf("read lock marker: %w", err)
	}

	owner := strings.TrimSpace(string(contents))

	pid, err := strconv.Atoi(owner)
	if err != nil || pid <= 0 {
		// Unreadable markers cannot belong to a live run of ours.
		return owner, true, nil //nolint:nilerr // Garbage content means stale.
	}

	if pid == os.Getpid() {
		return owner, false, nil
	}

	alive, err := processAlive(pid)
	if err != nil {
		return owner, false, fmt.Errorf("check lock owner %d: %w", pid, err)
	}

	return owner, !alive, nil
}

// takeOver moves the stale marker aside before deleting it, so a marker that
// another run created after inspection is handed back instead of removed.
func takeOver(path, owner string) error {
	aside := fmt.Sprintf("%s.%d", path, os.Getpid())

	if err := os.Rename(path, aside); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("move stale lock marker: %w", err)
	}

	contents, err := os.ReadFile(filepath.Clean(aside))
	if err != nil {
		_ = os.Remove(aside)
		return fmt.Errorf("read moved lock marker: %w", err)
	}

	if strings.TrimSpace(string(contents)) != owner {
		// Link fails when yet another marker appeared; that run holds the lock then.
		_ = os.Link(aside, path)
		_ = os.Remove(aside)

		return fmt.Errorf("%s: %w", path, ErrAlreadyRunning)
	}

	if err = os.Remove(aside); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale lock marker: %w", err)
	}

	return nil
}
