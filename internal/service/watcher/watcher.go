package watcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/wmshell/shell-packager/internal/config"
	"github.com/wmshell/shell-packager/internal/logger"
	"github.com/wmshell/shell-packager/internal/process"
	"github.com/wmshell/shell-packager/internal/schema"
)

// DefaultDebounce is how long the watcher waits for further changes before regenerating.
const DefaultDebounce = 300 * time.Millisecond

var errNoSchemas = errors.New("no schemas to watch")

// Options contains inputs for the watch entry point.
type Options struct {
	// ConfigPath is the project configuration file.
	ConfigPath string
	// Debounce overrides DefaultDebounce.
	Debounce time.Duration
	// Runner executes the schema compiler; nil uses os/exec.
	Runner process.Runner
}

// Watcher recompiles schemas whose source files change.
type Watcher struct {
	fs       *fsnotify.Watcher
	compiler *schema.Compiler
	schemas  []config.Schema
	debounce time.Duration
}

// Run loads the configuration and watches until the context is canceled.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "watch")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	paths, err := cfg.Resolve()
	if err != nil {
		return err
	}

	runner := opts.Runner
	if runner == nil {
		runner = process.NewExecRunner()
	}

	compiler := schema.NewCompiler(runner, cfg.Commands.SchemaCompiler, paths.AppDir, paths.Vars(nil))

	w, err := New(compiler, paths.Schemas, opts.Debounce)
	if err != nil {
		return err
	}

	defer func() {
		_ = w.Close()
	}()

	return w.Run(ctx)
}

// New starts watching the directories of the given schemas.
func New(compiler *schema.Compiler, schemas []config.Schema, debounce time.Duration) (*Watcher, error) {
	if len(schemas) == 0 {
		return nil, errNoSchemas
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}

	var dirs []string

	for _, s := range schemas {
		dir := filepath.Dir(filepath.Clean(s.Source))
		if slices.Contains(dirs, dir) {
			continue
		}

		if err = fsWatcher.Add(dir); err != nil {
			_ = fsWatcher.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}

		dirs = append(dirs, dir)
	}

	return &Watcher{
		fs:       fsWatcher,
		compiler: compiler,
		schemas:  schemas,
		debounce: debounce,
	}, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

// Run handles file events until the context is canceled.
// Compilation errors are logged and watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	logger.InfoKV(ctx, "Watching schemas", "count", len(w.schemas))

	timer := time.NewTimer(w.debounce)
	timer.Stop()

	defer timer.Stop()

	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}

			s, matched := w.match(event)
			if !matched {
				continue
			}

			logger.DebugKV(ctx, "Schema changed", "schema", s.Name, "op", event.Op.String())

			pending[s.Name] = struct{}{}

			timer.Reset(w.debounce)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}

			logger.WarnKV(ctx, "Watch error", "error", err)
		case <-timer.C:
			w.regenerate(ctx, pending)
			clear(pending)
		}
	}
}

// match returns the schema whose source the event refers to.
// Chmod-only events are ignored; removals wait for the file to reappear.
func (w *Watcher) match(event fsnotify.Event) (config.Schema, bool) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return config.Schema{}, false
	}

	name := filepath.Clean(event.Name)

	for _, s := range w.schemas {
		if filepath.Clean(s.Source) == name {
			return s, true
		}
	}

	return config.Schema{}, false
}

// regenerate compiles the pending schemas in configuration order.
func (w *Watcher) regenerate(ctx context.Context, pending map[string]struct{}) {
	for _, s := range w.schemas {
		if _, ok := pending[s.Name]; !ok {
			continue
		}

		if err := w.compiler.Generate(ctx, s); err != nil {
			logger.ErrorKV(ctx, "Failed to regenerate type definitions", "schema", s.Name, "error", err)
		}
	}
}
