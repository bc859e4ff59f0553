package driver

import (
	"context"
	"fmt"
	"strconv"

	"fortio.org/safecast"

	"tartan/internal/diag"
	"tartan/internal/gvariant"
	"tartan/internal/observ"
	"tartan/internal/parser"
	"tartan/internal/source"
	"tartan/internal/trace"
	"tartan/internal/typemgr"
)

// FileResult is the outcome of checking one translation unit.
type FileResult struct {
	Path    string
	FileSet *source.FileSet
	FileID  source.FileID
	Bag     *diag.Bag
	// Calls counts the recorded call sites of recognised functions.
	Calls int
	// Checked counts the calls whose format string was examined.
	Checked int
	// CallSites are the recorded calls themselves. Cache hits leave it nil.
	CallSites []gvariant.Call
	Cached    bool
	Timing    *observ.Report
}

// CheckFile loads path from disk and checks it. Problems with the file
// itself are reported as IO diagnostics; the returned error covers
// configuration problems and cancellation.
func CheckFile(ctx context.Context, path string, opts CheckOptions) (*FileResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeFile, "check_file", trace.CurrentSpan(ctx).SpanID)
	defer span.End(path)

	timer := observ.NewTimer()
	fs := source.NewFileSetWithBase(opts.BaseDir)
	if err := fs.SetCharset(opts.Charset); err != nil {
		return nil, fmt.Errorf("input charset: %w", err)
	}
	res := &FileResult{Path: path, FileSet: fs, Bag: diag.NewBag(opts.MaxDiagnostics)}

	emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusWorking})
	idx := timer.Begin(string(StageLoad))
	id, err := fs.Load(path)
	timer.End(idx, "")
	if err != nil {
		id = fs.AddVirtual(path, nil)
		res.FileID = id
		res.Bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{File: id},
			"failed to load file: "+err.Error()))
		emit(opts.Progress, Event{File: path, Status: StatusError, Err: err})
		return res, nil
	}
	res.FileID = id

	key := cacheKey(&opts, fs.Get(id).Content)
	if opts.Cache != nil {
		var payload DiskPayload
		hit, cerr := opts.Cache.Get(key, &payload)
		if cerr == nil && hit && payload.Schema == diskCacheSchemaVersion {
			restorePayload(res, &payload)
			span.WithExtra("cache", "hit")
			emit(opts.Progress, Event{File: path, Status: StatusCached})
			return res, nil
		}
	}

	if err := checkUnit(ctx, res, timer, opts); err != nil {
		return nil, err
	}
	if opts.Cache != nil && cacheable(res) {
		if err := opts.Cache.Put(key, toPayload(res)); err != nil {
			trace.Point(tracer, trace.ScopeFile, "cache_put_failed", err.Error(), span.ID())
		}
	}
	return res, nil
}

// CheckSource checks src as a file called name. It never touches the disk
// cache.
func CheckSource(ctx context.Context, name string, src []byte, opts CheckOptions) (*FileResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fs := source.NewFileSetWithBase(opts.BaseDir)
	id := fs.AddVirtual(name, src)
	res := &FileResult{Path: name, FileSet: fs, FileID: id, Bag: diag.NewBag(opts.MaxDiagnostics)}
	opts.Cache = nil
	if err := checkUnit(ctx, res, observ.NewTimer(), opts); err != nil {
		return nil, err
	}
	return res, nil
}

// checkUnit runs parse and check over res.FileID and fills res.
func checkUnit(ctx context.Context, res *FileResult, timer *observ.Timer, opts CheckOptions) error {
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx).SpanID

	var reporter diag.Reporter = diag.BagReporter{Bag: res.Bag}
	reporter = diag.FilterReporter{
		Next:             reporter,
		IgnoreWarnings:   opts.IgnoreWarnings,
		WarningsAsErrors: opts.WarningsAsErrors,
	}
	reporter = diag.NewDedupReporter(reporter)

	maxErrors, err := safecast.Conv[uint](max(opts.MaxDiagnostics, 0))
	if err != nil {
		return fmt.Errorf("max diagnostics: %w", err)
	}
	table := opts.table()

	emit(opts.Progress, Event{File: res.Path, Stage: StageParse, Status: StatusWorking})
	idx := timer.Begin(string(StageParse))
	pass := trace.Begin(tracer, trace.ScopePass, "parse", parent)
	unit, err := parser.ParseUnit(res.FileSet, res.FileID, parser.Config{
		Target:   opts.target(),
		Defines:  opts.Defines,
		Typedefs: opts.Typedefs,
		Options: parser.Options{
			MaxErrors: maxErrors,
			Reporter:  reporter,
			Track: func(name string) bool {
				_, ok := table.Lookup(name)
				return ok
			},
		},
	})
	pass.End(res.Path)
	timer.End(idx, "")
	if err != nil {
		emit(opts.Progress, Event{File: res.Path, Status: StatusError, Err: err})
		return err
	}
	res.Calls = len(unit.Calls)
	res.CallSites = unit.Calls

	emit(opts.Progress, Event{File: res.Path, Stage: StageCheck, Status: StatusWorking})
	idx = timer.Begin(string(StageCheck))
	pass = trace.Begin(tracer, trace.ScopePass, "check", parent)
	checker := gvariant.New(table, typemgr.New(unit.Types, unit.Table),
		gvariant.DiagSink{Reporter: reporter, Types: unit.Types},
		gvariant.Options{MaxDepth: opts.MaxDepth, Tracer: tracer, Parent: pass.ID()})
	for i := range unit.Calls {
		if err := ctx.Err(); err != nil {
			pass.End("cancelled")
			return err
		}
		call := &unit.Calls[i]
		sig, ok := table.Lookup(call.Callee)
		if !ok {
			continue
		}
		if checker.Check(call, sig).Checked {
			res.Checked++
		}
	}
	pass.WithExtra("calls", strconv.Itoa(res.Calls)).End(res.Path)
	timer.End(idx, strconv.Itoa(res.Checked)+" checked")

	res.Bag.Sort()
	if opts.EnableTimings {
		report := timer.Report()
		res.Timing = &report
	}
	status := StatusDone
	if res.Bag.HasErrors() {
		status = StatusError
	}
	emit(opts.Progress, Event{File: res.Path, Status: status})
	return nil
}
