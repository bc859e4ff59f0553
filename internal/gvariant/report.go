package gvariant

import (
	"strconv"
	"strings"

	"tartan/internal/ctypes"
	"tartan/internal/diag"
	"tartan/internal/source"
)

// Subst is a value substituted for %N in a report template.
type Subst struct {
	IsType bool
	Type   ctypes.QualType
	Text   string
}

// TypeArg substitutes a type, rendered the way a C compiler quotes it.
func TypeArg(qt ctypes.QualType) Subst { return Subst{IsType: true, Type: qt} }

// TextArg substitutes raw text.
func TextArg(s string) Subst { return Subst{Text: s} }

// Report is one finding. The checker selects the template and its
// substitutions; rendering them is up to the Sink.
type Report struct {
	Severity diag.Severity
	Code     diag.Code
	Template string
	Anchor   source.Span
	Args     []Subst
	Fix      *diag.Fix
}

// Error renders the report without type names so it can travel as an error
// through the grammar walk.
func (r *Report) Error() string {
	return r.Code.ID() + ": " + r.Template
}

// Render substitutes r's arguments into its template.
func Render(r *Report, types *ctypes.Interner) string {
	var sb strings.Builder
	tpl := r.Template
	for i := 0; i < len(tpl); i++ {
		if tpl[i] != '%' || i+1 >= len(tpl) || tpl[i+1] < '0' || tpl[i+1] > '9' {
			sb.WriteByte(tpl[i])
			continue
		}
		n := int(tpl[i+1] - '0')
		i++
		if n >= len(r.Args) {
			sb.WriteString("%" + strconv.Itoa(n))
			continue
		}
		arg := r.Args[n]
		switch {
		case !arg.IsType:
			sb.WriteString(arg.Text)
		case types == nil:
			sb.WriteString("<type>")
		default:
			sb.WriteString(types.Quoted(arg.Type))
		}
	}
	return sb.String()
}

// Sink receives reports as the checker produces them.
type Sink interface {
	Emit(r *Report)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(r *Report)

func (f SinkFunc) Emit(r *Report) { f(r) }

// Collector keeps every report it is given.
type Collector struct {
	Reports []*Report
}

func (c *Collector) Emit(r *Report) { c.Reports = append(c.Reports, r) }

// Codes lists the codes of the collected reports in order.
func (c *Collector) Codes() []diag.Code {
	out := make([]diag.Code, len(c.Reports))
	for i, r := range c.Reports {
		out[i] = r.Code
	}
	return out
}

// DiagSink renders reports and hands them to a diag.Reporter.
type DiagSink struct {
	Reporter diag.Reporter
	Types    *ctypes.Interner
}

func (s DiagSink) Emit(r *Report) {
	var fixes []diag.Fix
	if r.Fix != nil {
		fixes = []diag.Fix{*r.Fix}
	}
	s.Reporter.Report(r.Code, r.Severity, r.Anchor, Render(r, s.Types), nil, fixes)
}
