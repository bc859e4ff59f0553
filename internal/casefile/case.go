package casefile

import (
	"fmt"
	"strings"
)

// Case is one section of a case file: the expected diagnostics and the
// code block they are expected for.
type Case struct {
	// Index is the sequential number of the section within its file.
	Index int

	// Name identifies the case in runner output: "<file> section <index>".
	Name string

	// Line is the 1-based line of the opening "/*" in the case file.
	Line int

	// Expected lists the lines that must each appear in some line of the
	// rendered diagnostics. Empty means the section expects no error.
	Expected []string

	// Lines holds the section verbatim, comment included.
	Lines []string
}

// NoError reports whether the section expects a clean check.
func (c *Case) NoError() bool {
	return len(c.Expected) == 0
}

// Source assembles the translation unit checked for c.
func (c *Case) Source(t Template) string {
	var sb strings.Builder
	sb.WriteString(t.Head)
	sb.WriteByte('\n')
	for _, line := range c.Lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	sb.WriteString(t.Tail)
	return sb.String()
}

// FileName returns the virtual file name the case is checked under.
func (c *Case) FileName(base string) string {
	return fmt.Sprintf("%s.section%d.c", strings.TrimSuffix(base, ".c"), c.Index)
}

// Nonmatching returns the expected lines that occur in no output line.
func (c *Case) Nonmatching(output []string) []string {
	var missing []string
	for _, want := range c.Expected {
		found := false
		for _, line := range output {
			if strings.Contains(line, want) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, want)
		}
	}
	return missing
}
