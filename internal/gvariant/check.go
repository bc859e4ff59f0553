package gvariant

import (
	"errors"
	"strconv"
	"strings"

	"tartan/internal/diag"
	"tartan/internal/trace"
	"tartan/internal/typemgr"
)

// DefaultMaxDepth bounds the nesting of tuples, dict entries, arrays and
// maybes in one format string.
const DefaultMaxDepth = 64

// Options tune a Checker.
type Options struct {
	// MaxDepth is the deepest nesting accepted before the check gives up
	// with GVarNestingTooDeep. Zero selects DefaultMaxDepth.
	MaxDepth int
	// Tracer receives a span per checked call and a point per production.
	Tracer trace.Tracer
	// Parent is the span the per-call spans hang from.
	Parent uint64
}

// Checker validates calls to the functions of its table. It holds no
// per-call state; one Checker serves every call of a translation unit.
type Checker struct {
	table *Table
	types *typemgr.Manager
	sink  Sink
	opts  Options
}

// New returns a checker that resolves GLib types through types and sends
// its findings to sink. A nil table selects DefaultTable.
func New(table *Table, types *typemgr.Manager, sink Sink, opts Options) *Checker {
	if table == nil {
		table = DefaultTable()
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Tracer == nil {
		opts.Tracer = trace.Nop
	}
	if sink == nil {
		sink = SinkFunc(func(*Report) {})
	}
	return &Checker{table: table, types: types, sink: sink, opts: opts}
}

// Table returns the signatures the checker recognises.
func (c *Checker) Table() *Table {
	return c.table
}

// Result is the outcome of checking one call.
type Result struct {
	// Checked is false when the callee is not in the table or the call is
	// too short to hold a format argument.
	Checked bool
	// OK is true when no report was produced.
	OK      bool
	Reports []*Report
}

// CheckCall checks call if its callee is registered and reports whether it
// passed. Unregistered callees always pass.
func (c *Checker) CheckCall(call *Call) bool {
	sig, ok := c.table.Lookup(call.Callee)
	if !ok {
		return true
	}
	return c.Check(call, sig).OK
}

// Check validates call against sig.
func (c *Checker) Check(call *Call, sig Signature) Result {
	res := Result{OK: true}
	if sig.FormatParam >= len(call.Args) {
		return res
	}
	res.Checked = true

	span := trace.Begin(c.opts.Tracer, trace.ScopeCall, sig.Name, c.opts.Parent)
	emit := func(r *Report) {
		res.OK = false
		res.Reports = append(res.Reports, r)
		c.sink.Emit(r)
	}
	defer func() {
		span.WithExtra("reports", strconv.Itoa(len(res.Reports))).End(call.Span.String())
	}()

	formatArg := call.Args[sig.FormatParam]
	if formatArg.Literal == nil {
		emit(&Report{
			Severity: diag.SevWarning,
			Code:     diag.GVarNonLiteralFormat,
			Template: "Non-literal GVariant format string in call to %0(). Cannot check format string correctness. Instead of a non-literal format string, use GVariantBuilder.",
			Anchor:   formatArg.Span,
			Args:     []Subst{TextArg(sig.Name)},
		})
		return res
	}

	whole := formatArg.Literal.Value
	if i := strings.IndexByte(whole, 0); i >= 0 {
		whole = whole[:i]
	}
	p := &parser{
		c:      c,
		fmt:    []rune(whole),
		lit:    formatArg.Literal,
		args:   call.Args,
		next:   min(sig.FirstVararg, len(call.Args)),
		span:   span.ID(),
		tracer: c.opts.Tracer,
	}

	flags := FlagConsumeArgs
	if sig.UsesVaList {
		flags = FlagForceVaList
	}
	if !sig.ArgsIn {
		flags = flags.With(FlagDirectionOut | FlagAllowMaybe)
	}

	if err := p.parse(grammarFormat, flags); err != nil {
		var rep *Report
		if !errors.As(err, &rep) {
			panic(err)
		}
		emit(rep)
		return res
	}

	if p.pos < len(p.fmt) {
		emit(&Report{
			Severity: diag.SevError,
			Code:     diag.GVarUnconsumedFormat,
			Template: "Unexpected GVariant format strings ‘%0’ with unpaired arguments. If using multiple format strings, they should be enclosed in brackets to create a tuple (e.g. ‘(%1)’).",
			Anchor:   p.lit.Span,
			Args:     []Subst{TextArg(p.rest()), TextArg(whole)},
			Fix: &diag.Fix{
				Title: "wrap the format string in a tuple",
				Edits: []diag.FixEdit{{Span: p.lit.Span, NewText: strconv.Quote("(" + whole + ")")}},
			},
		})
		return res
	}

	if sig.UsesVaList {
		return res
	}
	for ; p.next < len(p.args); p.next++ {
		emit(c.unexpectedArg(&p.args[p.next]))
	}
	return res
}

func (c *Checker) unexpectedArg(arg *Arg) *Report {
	if format, ok := SuggestFormat(c.types, arg.Type); ok {
		return argError(arg, diag.GVarUnconsumedArgument,
			"Unexpected GVariant variadic argument of type %0. Either it should be removed, or a ‘%1’ (or other valid) GVariant format string should be added to the format argument to use it.",
			TypeArg(arg.Type), TextArg(format))
	}
	return argError(arg, diag.GVarUnconsumedArgument,
		"Unexpected GVariant variadic argument of type %0. Either it should be removed, or a GVariant format string should be added to the format argument to use it. There is no known GVariant representation of the argument’s type, so the argument must be serialized to a GVariant-representable type first.",
		TypeArg(arg.Type))
}
