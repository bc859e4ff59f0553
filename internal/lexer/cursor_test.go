package lexer

import (
	"testing"

	"tartan/internal/source"
)

func newCursor(t *testing.T, content string) (*source.FileSet, Cursor) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.c", []byte(content))
	return fs, NewCursor(fs.Get(id))
}

// TestCursorBumpToEOF: "a\nb" читается как a, \n, b, затем нули.
func TestCursorBumpToEOF(t *testing.T) {
	_, c := newCursor(t, "a\nb")
	for _, want := range []byte("a\nb") {
		if c.EOF() {
			t.Fatalf("unexpected EOF before %q", want)
		}
		if got := c.Bump(); got != want {
			t.Fatalf("Bump() = %q, want %q", got, want)
		}
	}
	if !c.EOF() || c.Peek() != 0 || c.Bump() != 0 {
		t.Fatalf("cursor past end must read zeros")
	}
	if c.Off != 3 {
		t.Fatalf("Bump at EOF moved the cursor to %d", c.Off)
	}
}

func TestCursorLookahead(t *testing.T) {
	_, c := newCursor(t, "0x1F")
	if c.At(0) != '0' || c.At(1) != 'x' || c.At(3) != 'F' || c.At(4) != 0 {
		t.Fatalf("At() lookahead mismatch")
	}
	if b0, b1, ok := c.Peek2(); !ok || b0 != '0' || b1 != 'x' {
		t.Fatalf("Peek2() = %q %q %v", b0, b1, ok)
	}
	c.Advance(3)
	if b0, b1, ok := c.Peek2(); ok || b0 != 'F' || b1 != 0 {
		t.Fatalf("Peek2() on last byte = %q %q %v", b0, b1, ok)
	}
	c.Advance(10)
	if c.Off != 4 || !c.EOF() {
		t.Fatalf("Advance must stop at the end, got %d", c.Off)
	}
}

func TestCursorHasPrefix(t *testing.T) {
	_, c := newCursor(t, "<<=x")
	tests := []struct {
		prefix string
		want   bool
	}{
		{"<", true},
		{"<<=", true},
		{"<<=x", true},
		{"<<=x!", false},
		{">>", false},
		{"", true},
	}
	for _, tt := range tests {
		if got := c.HasPrefix(tt.prefix); got != tt.want {
			t.Errorf("HasPrefix(%q) = %v, want %v", tt.prefix, got, tt.want)
		}
	}
}

func TestCursorEatAndSplice(t *testing.T) {
	_, c := newCursor(t, "a\\\nb\\")
	if c.Eat('b') || !c.Eat('a') {
		t.Fatalf("Eat must consume only a matching byte")
	}
	if !c.Splice() || c.Peek() != 'b' {
		t.Fatalf("Splice must consume backslash-newline")
	}
	c.Bump()
	// одиночный обратный слэш в конце файла не склейка
	if c.Splice() || c.Peek() != '\\' {
		t.Fatalf("lone backslash treated as a splice")
	}
}

// TestCursorSpans: α занимает 2 байта, колонки считаются в байтах.
func TestCursorSpans(t *testing.T) {
	fs, c := newCursor(t, "α\nβ")
	mark := c.Mark()
	c.Advance(2)
	sp := c.SpanFrom(mark)
	if sp.Start != 0 || sp.End != 2 {
		t.Fatalf("span = %+v, want 0..2", sp)
	}
	start, end := fs.Resolve(sp)
	if start != (source.LineCol{Line: 1, Col: 1}) || end != (source.LineCol{Line: 1, Col: 3}) {
		t.Fatalf("resolve = %+v..%+v", start, end)
	}

	nl := c.Mark()
	c.Bump()
	start, end = fs.Resolve(c.SpanFrom(nl))
	if start != (source.LineCol{Line: 1, Col: 3}) || end != (source.LineCol{Line: 2, Col: 1}) {
		t.Fatalf("newline resolves to %+v..%+v", start, end)
	}

	c.Reset(mark)
	if c.Off != 0 || c.Peek() != "α"[0] {
		t.Fatalf("Reset did not return to the mark")
	}
}
