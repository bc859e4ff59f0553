package lexer

import (
	"fmt"

	"fortio.org/safecast"

	"tartan/internal/source"
)

// Cursor is a byte position inside one file. Reads past the end yield 0.
type Cursor struct {
	File *source.File
	Off  uint32
	end  uint32
}

// NewCursor returns a cursor at the start of f.
func NewCursor(f *source.File) Cursor {
	end, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("len file content overflow: %w", err))
	}
	return Cursor{File: f, end: end}
}

// EOF reports whether every byte has been consumed.
func (c *Cursor) EOF() bool {
	return c.Off >= c.end
}

// At returns the byte n positions ahead of the cursor, 0 past the end.
func (c *Cursor) At(n uint32) byte {
	if c.Off+n >= c.end {
		return 0
	}
	return c.File.Content[c.Off+n]
}

// Peek returns the current byte, 0 at EOF.
func (c *Cursor) Peek() byte {
	return c.At(0)
}

// Peek2 returns the current and the next byte; ok is false when fewer
// than two bytes remain.
func (c *Cursor) Peek2() (b0, b1 byte, ok bool) {
	return c.At(0), c.At(1), c.Off+1 < c.end
}

// HasPrefix reports whether the remaining input starts with s.
func (c *Cursor) HasPrefix(s string) bool {
	n, err := safecast.Conv[uint32](len(s))
	if err != nil || c.Off+n > c.end {
		return false
	}
	return string(c.File.Content[c.Off:c.Off+n]) == s
}

// Bump consumes and returns the current byte, 0 at EOF.
func (c *Cursor) Bump() byte {
	b := c.At(0)
	if !c.EOF() {
		c.Off++
	}
	return b
}

// Advance consumes n bytes, stopping at the end.
func (c *Cursor) Advance(n uint32) {
	c.Off = min(c.Off+n, c.end)
}

// Eat consumes the current byte if it is b.
func (c *Cursor) Eat(b byte) bool {
	if c.EOF() || c.File.Content[c.Off] != b {
		return false
	}
	c.Off++
	return true
}

// Splice consumes a backslash-newline pair (a C line continuation) if the
// cursor sits on one.
func (c *Cursor) Splice() bool {
	if c.HasPrefix("\\\n") {
		c.Off += 2
		return true
	}
	return false
}

// Mark это метка, чтобы быстро получать Span читаемого фрагмента
type Mark uint32

// Mark saves the current position.
func (c *Cursor) Mark() Mark {
	return Mark(c.Off)
}

// SpanFrom returns the span from m to the current position.
func (c *Cursor) SpanFrom(m Mark) source.Span {
	return source.Span{File: c.File.ID, Start: uint32(m), End: c.Off}
}

// Reset moves the cursor back to m.
func (c *Cursor) Reset(m Mark) {
	c.Off = uint32(m)
}
