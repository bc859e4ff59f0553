package diag

import (
	"testing"

	"tartan/internal/source"
)

func TestFormatShortDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")

	file := fs.Add("/workspace/testdata/sample.c", []byte("a\nb\n"), 0)

	diags := []Diagnostic{
		{
			Severity: SevWarning,
			Code:     GVarNonLiteralFormat,
			Message:  "another",
			Primary:  source.Span{File: file, Start: 2, End: 3},
		},
		{
			Severity: SevError,
			Code:     GVarTypeMismatch,
			Message:  "first line\nsecond",
			Primary:  source.Span{File: file, Start: 0, End: 1},
			Notes: []Note{
				{Span: source.Span{File: file, Start: 2, End: 3}, Msg: "note line"},
			},
		},
	}

	expected := "error GVR6006 testdata/sample.c:1:1 first line second\n" +
		"warning GVR6010 testdata/sample.c:2:1 another\n" +
		"note GVR6006 testdata/sample.c:2:1 note line"

	if got := FormatShortDiagnostics(diags, fs, true); got != expected {
		t.Fatalf("unexpected short diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}

func TestBagLimitAndSort(t *testing.T) {
	bag := NewBag(2)
	r := BagReporter{Bag: bag}
	r.Report(GVarTypeMismatch, SevError, source.Span{Start: 10, End: 12}, "b", nil, nil)
	r.Report(GVarNonLiteralFormat, SevWarning, source.Span{Start: 1, End: 2}, "a", nil, nil)
	r.Report(GVarMissingArgument, SevError, source.Span{Start: 0, End: 1}, "dropped", nil, nil)

	if bag.Len() != 2 || bag.Dropped() != 1 {
		t.Fatalf("want 2 items and 1 dropped, got %d/%d", bag.Len(), bag.Dropped())
	}
	bag.Sort()
	if bag.Items()[0].Message != "a" {
		t.Fatalf("bag not sorted by position: %+v", bag.Items())
	}
	if !bag.HasErrors() || bag.Count(SevWarning) != 1 {
		t.Fatalf("unexpected severity summary")
	}
}

func TestFilterReporter(t *testing.T) {
	bag := NewBag(0)
	promote := FilterReporter{Next: BagReporter{Bag: bag}, WarningsAsErrors: true}
	promote.Report(GVarNonLiteralFormat, SevWarning, source.Span{}, "w", nil, nil)
	if bag.Items()[0].Severity != SevError {
		t.Fatalf("warning was not promoted")
	}

	drop := FilterReporter{Next: BagReporter{Bag: bag}, IgnoreWarnings: true}
	drop.Report(GVarNonLiteralFormat, SevWarning, source.Span{}, "w", nil, nil)
	if bag.Len() != 1 {
		t.Fatalf("warning was not dropped")
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: bag})
	sp := source.Span{Start: 3, End: 5}
	r.Report(GVarTypeMismatch, SevError, sp, "same", nil, nil)
	r.Report(GVarTypeMismatch, SevError, sp, "same", nil, nil)
	r.Report(GVarTypeMismatch, SevError, sp, "other", nil, nil)
	if bag.Len() != 2 {
		t.Fatalf("want 2 diagnostics, got %d", bag.Len())
	}
}
