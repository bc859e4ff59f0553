package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"tartan/internal/diag"
	"tartan/internal/gvariant"
	"tartan/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on a checked file:
// 1) every diagnostic span (primary, notes, fix edits) names a loaded file
// 2) each such span is ordered and lies within that file's content
// 3) every recorded call and its arguments lie within the checked file
func CheckSpanInvariants(fs *source.FileSet, fileID source.FileID, bag *diag.Bag, calls []gvariant.Call) error {
	if fs == nil || bag == nil {
		return fmt.Errorf("nil file set or bag")
	}
	for i, d := range bag.Items() {
		if err := checkSpan(fs, d.Primary); err != nil {
			return fmt.Errorf("diagnostic %d (%s): %w", i, d.Code.ID(), err)
		}
		for j, n := range d.Notes {
			if err := checkSpan(fs, n.Span); err != nil {
				return fmt.Errorf("diagnostic %d note %d: %w", i, j, err)
			}
		}
		for j, fix := range d.Fixes {
			for k, e := range fix.Edits {
				if err := checkSpan(fs, e.Span); err != nil {
					return fmt.Errorf("diagnostic %d fix %d edit %d: %w", i, j, k, err)
				}
			}
		}
	}

	for i, call := range calls {
		if call.Span.File != fileID {
			return fmt.Errorf("call %d (%s) outside checked file: file=%d want=%d", i, call.Callee, call.Span.File, fileID)
		}
		if err := checkSpan(fs, call.Span); err != nil {
			return fmt.Errorf("call %d (%s): %w", i, call.Callee, err)
		}
		for j, arg := range call.Args {
			if err := checkSpan(fs, arg.Span); err != nil {
				return fmt.Errorf("call %d (%s) arg %d: %w", i, call.Callee, j, err)
			}
		}
	}
	return nil
}

func checkSpan(fs *source.FileSet, sp source.Span) error {
	if sp.End < sp.Start {
		return fmt.Errorf("reversed span: %v", sp)
	}
	if int(sp.File) >= fs.Len() {
		return fmt.Errorf("span points to unknown file id %d", sp.File)
	}
	f := fs.Get(sp.File)
	if f == nil {
		return fmt.Errorf("span points to unknown file id %d", sp.File)
	}
	lenContent, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if sp.End > lenContent {
		return fmt.Errorf("span end beyond content of %s: %d > %d", f.Path, sp.End, lenContent)
	}
	return nil
}
