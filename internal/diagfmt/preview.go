package diagfmt

import (
	"fmt"
	"strings"

	"tartan/internal/diag"
	"tartan/internal/source"
)

// fixPreview holds the whole lines an edit touches, before and after it
// is applied.
type fixPreview struct {
	before []string
	after  []string
}

func previewEdit(fs *source.FileSet, edit diag.FixEdit) (fixPreview, error) {
	sp := edit.Span
	if fs == nil || int(sp.File) >= fs.Len() {
		return fixPreview{}, fmt.Errorf("file %d not loaded", sp.File)
	}
	if sp.End < sp.Start {
		return fixPreview{}, fmt.Errorf("reversed edit span %v", sp)
	}
	file := fs.Get(sp.File)
	first, last := fs.Resolve(sp)
	lo, _, ok := file.LineBounds(first.Line)
	if !ok {
		return fixPreview{}, fmt.Errorf("line %d out of range", first.Line)
	}
	_, hi, ok := file.LineBounds(max(first.Line, last.Line))
	if !ok || sp.Start < lo || sp.End > hi {
		return fixPreview{}, fmt.Errorf("edit span %v outside lines %d-%d", sp, first.Line, last.Line)
	}

	block := string(file.Content[lo:hi])
	var after strings.Builder
	after.WriteString(block[:sp.Start-lo])
	after.WriteString(edit.NewText)
	after.WriteString(block[sp.End-lo:])
	return fixPreview{
		before: previewLines(block),
		after:  previewLines(after.String()),
	}, nil
}

func previewLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
