package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"tartan/internal/trace"
)

// DefaultDebounce is the quiet period after the last change before a re-check.
const DefaultDebounce = 150 * time.Millisecond

// WatchFunc receives the results of every run. Returning an error stops
// the watch.
type WatchFunc func(results []*FileResult, err error) error

// Watch checks paths once, then again after every batch of changes to a
// matching file, until ctx is cancelled. Directories are watched
// recursively; for file arguments their parent directory is watched.
func Watch(ctx context.Context, paths []string, opts CheckOptions, debounce time.Duration, onRun WatchFunc) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, p := range paths {
		if err := watchPath(watcher, p, opts.Exclude); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
	}

	run := func() error {
		// кэш между прогонами сохраняется, перепроверяются только изменённые файлы
		results, err := CheckPaths(ctx, paths, opts)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return onRun(results, err)
	}
	if err := run(); err != nil {
		return err
	}

	tracer := trace.FromContext(ctx)
	timer := time.NewTimer(debounce)
	timer.Stop()
	pending := false
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					_ = watchPath(watcher, event.Name, opts.Exclude)
					continue
				}
			}
			name := filepath.Base(event.Name)
			if !matchAny(opts.includes(), name, name) || matchAny(opts.Exclude, name, name) {
				continue
			}
			trace.Point(tracer, trace.ScopeDriver, "watch_event", event.String(), 0)
			timer.Reset(debounce)
			pending = true
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			trace.Point(tracer, trace.ScopeDriver, "watch_error", werr.Error(), 0)
		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			if err := run(); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}

// watchPath adds dir and its subdirectories (or the parent of a file).
func watchPath(watcher *fsnotify.Watcher, root string, exclude []string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return watcher.Add(filepath.Dir(root))
	}
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && (skipDirs[d.Name()] || matchAny(exclude, d.Name(), d.Name())) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
