// Package casefile reads section-based C test files and runs them through
// a checker.
//
// A case file starts with an optional template header followed by
// sections:
//
//	/* Template: gvariant */
//
//	/*
//	 * Expected a GVariant variadic argument of type 'char *' but saw one of type 'int'.
//	 *         g_variant_builder_add (builder, "{ss}", "hi", 15);
//	 *                                                       ^
//	 */
//	{
//		...
//	}
//
// Sections start at a line holding exactly "/*". Lines starting with " * "
// inside the section comment are expected output, except " * No error".
// The code must not contain block comments on lines of their own.
package casefile

import (
	"bufio"
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var templateHeader = regexp.MustCompile(`^/\*\s*Template:(.*)\*/`)

const noErrorLine = " * No error"

// File is a parsed case file.
type File struct {
	Path     string
	Template string
	Cases    []Case
}

// Parse splits data into cases. path is used for case names only.
func Parse(path string, data []byte) (*File, error) {
	f := &File{Path: path, Template: DefaultTemplate}
	base := filepath.Base(path)

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var cur *Case
	lineNo := 0
	flush := func() {
		if cur != nil {
			f.Cases = append(f.Cases, *cur)
			cur = nil
		}
	}
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if lineNo == 1 {
			if m := templateHeader.FindStringSubmatch(line); m != nil {
				f.Template = strings.TrimSpace(m[1])
				continue
			}
		}

		switch {
		case line == "/*":
			flush()
			idx := len(f.Cases)
			cur = &Case{
				Index: idx,
				Name:  fmt.Sprintf("%s section %d", base, idx),
				Line:  lineNo,
			}
		case cur == nil:
			continue
		case strings.HasPrefix(line, " * ") && line != noErrorLine:
			cur.Expected = append(cur.Expected, line[3:])
		}
		if cur != nil {
			cur.Lines = append(cur.Lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	flush()
	return f, nil
}
