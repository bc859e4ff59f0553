package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"tartan/internal/diag"
	"tartan/internal/source"
)

type palette struct {
	err, warn, info, note, bold, caret, fix *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:   mk(color.FgRed, color.Bold),
		warn:  mk(color.FgMagenta, color.Bold),
		info:  mk(color.FgCyan, color.Bold),
		note:  mk(color.FgBlack, color.Bold),
		bold:  mk(color.Bold),
		caret: mk(color.FgGreen, color.Bold),
		fix:   mk(color.FgGreen),
	}
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в виде, привычном для C-компиляторов.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
//
//	<path>:<line>:<col>: <severity>: <Message> [<CODE>]
//	<source line, tabs expanded>
//	<caret line: ^~~~ under the span>
//
// затем Notes в том же виде и, по опциям, fixes с превью.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil {
		return
	}
	pal := newPalette(opts.Color)
	for _, d := range bag.Items() {
		headline := d.Message
		if opts.ShowCodes {
			headline += " [" + d.Code.ID() + "]"
		}
		writeLocated(w, fs, d.Primary, opts, pal, pal.severity(d.Severity), d.Severity.Label(), headline)

		if opts.ShowNotes {
			for _, n := range d.Notes {
				writeLocated(w, fs, n.Span, opts, pal, pal.note, "note", n.Msg)
			}
		}
		if opts.ShowFixes {
			for i, fix := range d.Fixes {
				writeFix(w, fs, i+1, fix, opts, pal)
			}
		}
	}
}

// PrettyLines renders bag without color and splits the result into lines.
func PrettyLines(bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) []string {
	var sb strings.Builder
	opts.Color = false
	Pretty(&sb, bag, fs, opts)
	out := strings.TrimRight(sb.String(), "\n")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

func writeLocated(w io.Writer, fs *source.FileSet, span source.Span, opts PrettyOpts, pal palette, sevColor *color.Color, label, msg string) {
	file := fs.Get(span.File)
	if file == nil {
		fmt.Fprintf(w, "%s %s\n", sevColor.Sprint(label+":"), pal.bold.Sprint(msg))
		return
	}
	start, end := fs.Resolve(span)
	loc := fmt.Sprintf("%s:%d:%d:", formatPath(file, fs, opts.PathMode), start.Line, start.Col)
	fmt.Fprintf(w, "%s %s %s\n", pal.bold.Sprint(loc), sevColor.Sprint(label+":"), pal.bold.Sprint(msg))

	if len(file.Content) == 0 {
		return
	}
	first := start.Line
	if opts.Context > 0 {
		first = uint32(max(1, int(start.Line)-int(opts.Context)))
	}
	for line := first; line < start.Line; line++ {
		fmt.Fprintln(w, expandTabs(file.GetLine(line)))
	}
	text := file.GetLine(start.Line)
	fmt.Fprintln(w, expandTabs(text))

	endCol := end.Col
	if end.Line != start.Line {
		endCol = uint32(len(text)) + 1
	}
	fmt.Fprintln(w, pal.caret.Sprint(caretLine(text, int(start.Col), int(endCol))))
}

func writeFix(w io.Writer, fs *source.FileSet, n int, fix diag.Fix, opts PrettyOpts, pal palette) {
	fmt.Fprintf(w, "%s %s\n", pal.fix.Sprintf("fix #%d:", n), fix.Title)
	for _, edit := range fix.Edits {
		file := fs.Get(edit.Span.File)
		if file == nil {
			continue
		}
		start, end := fs.Resolve(edit.Span)
		fmt.Fprintf(w, "  edit %s:%d:%d-%d:%d apply=%s\n",
			formatPath(file, fs, opts.PathMode), start.Line, start.Col, end.Line, end.Col,
			strconv.Quote(edit.NewText))
		if !opts.ShowPreview {
			continue
		}
		preview, err := previewEdit(fs, edit)
		if err != nil {
			continue
		}
		fmt.Fprintln(w, "  preview:")
		for _, line := range preview.before {
			fmt.Fprintf(w, "    - %s\n", expandTabs(line))
		}
		for _, line := range preview.after {
			fmt.Fprintf(w, "    %s\n", pal.fix.Sprint("+ "+expandTabs(line)))
		}
	}
}

func formatPath(f *source.File, fs *source.FileSet, mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		return f.FormatPath("absolute", "")
	case PathModeRelative:
		return f.FormatPath("relative", fs.BaseDir())
	case PathModeBasename:
		return f.FormatPath("basename", "")
	default:
		return f.FormatPath("auto", "")
	}
}

// expandTabs replaces tabs with spaces up to the next TabWidth stop.
func expandTabs(s string) string {
	if !strings.ContainsRune(s, '\t') {
		return s
	}
	var sb strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			pad := TabWidth - col%TabWidth
			sb.WriteString(strings.Repeat(" ", pad))
			col += pad
			continue
		}
		sb.WriteRune(r)
		col += runewidth.RuneWidth(r)
	}
	return sb.String()
}

// displayWidth is the number of terminal columns s occupies after tab
// expansion.
func displayWidth(s string) int {
	return runewidth.StringWidth(expandTabs(s))
}

// caretLine places '^' under byte column startCol (1-based) of line and
// '~' under the rest of the span up to endCol (exclusive).
func caretLine(line string, startCol, endCol int) string {
	startByte := min(max(startCol-1, 0), len(line))
	endByte := min(max(endCol-1, startByte), len(line))
	pad := displayWidth(line[:startByte])
	width := displayWidth(line[:endByte]) - pad
	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", pad))
	sb.WriteByte('^')
	if width > 1 {
		sb.WriteString(strings.Repeat("~", width-1))
	}
	return sb.String()
}
