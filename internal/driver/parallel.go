package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"tartan/internal/trace"
)

// skipDirs are never descended into while walking.
var skipDirs = map[string]bool{".git": true, ".hg": true, ".svn": true, "_build": true}

// ListFiles returns the sorted files under root matching include and not
// matching exclude. A pattern matches either the base name or the
// slash-separated path relative to root; an excluded directory is not
// descended into. When root is a regular file it is returned as is.
func ListFiles(root string, include, exclude []string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{root}, nil
	}
	if len(include) == 0 {
		include = DefaultIncludes
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if path != root && (skipDirs[d.Name()] || matchAny(exclude, d.Name(), rel)) {
				return filepath.SkipDir
			}
			return nil
		}
		if matchAny(include, d.Name(), rel) && !matchAny(exclude, d.Name(), rel) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Сортируем для детерминированного порядка
	slices.Sort(files)
	return files, nil
}

func matchAny(patterns []string, name, rel string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
		if ok, _ := filepath.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// ExpandPaths lists the files of every input path, keeping input order and
// dropping duplicates.
func ExpandPaths(paths []string, opts *CheckOptions) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, p := range paths {
		files, err := ListFiles(p, opts.includes(), opts.Exclude)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", p, err)
		}
		for _, f := range files {
			if seen[f] {
				continue
			}
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

// CheckPaths expands paths and checks the files in parallel. Results are in
// the order ExpandPaths returns the files.
func CheckPaths(ctx context.Context, paths []string, opts CheckOptions) ([]*FileResult, error) {
	files, err := ExpandPaths(paths, &opts)
	if err != nil {
		return nil, err
	}
	return CheckFiles(ctx, files, opts)
}

// CheckFiles checks files with at most opts.Jobs running at once.
func CheckFiles(ctx context.Context, files []string, opts CheckOptions) ([]*FileResult, error) {
	if len(files) == 0 {
		return nil, nil
	}
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "check_files", trace.CurrentSpan(ctx).SpanID)
	defer span.End(fmt.Sprintf("%d files", len(files)))
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})

	// Настраиваем параллелизм
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	for _, path := range files {
		emit(opts.Progress, Event{File: path, Status: StatusQueued})
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]*FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	start := time.Now()
	for i, path := range files {
		g.Go(func() error {
			// Проверка отмены
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			began := time.Now()
			res, err := CheckFile(gctx, path, opts)
			if err != nil {
				emit(opts.Progress, Event{File: path, Status: StatusError, Err: err, Elapsed: time.Since(began)})
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = res
			return nil
		})
	}

	err := g.Wait()
	emit(opts.Progress, Event{Status: StatusDone, Elapsed: time.Since(start)})
	if err != nil {
		return results, err
	}
	return results, nil
}
