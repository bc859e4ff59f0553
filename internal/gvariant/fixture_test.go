package gvariant

import (
	"testing"

	"tartan/internal/ctypes"
	"tartan/internal/diag"
	"tartan/internal/source"
	"tartan/internal/typemgr"

	"github.com/stretchr/testify/require"
)

type mapScope map[string]ctypes.QualType

func (s mapScope) LookupTypedef(name string) (ctypes.QualType, bool) {
	qt, ok := s[name]
	return qt, ok
}

// fixture declares the GLib typedefs the checker resolves by name.
type fixture struct {
	t     *testing.T
	in    *ctypes.Interner
	names mapScope
	types *typemgr.Manager
	opts  Options
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	in := ctypes.NewInterner(ctypes.LP64)
	names := mapScope{}
	def := func(name string, qt ctypes.QualType) {
		names[name] = in.RegisterTypedef(name, qt)
	}
	b := in.Builtin
	def("gchar", b(ctypes.KindChar))
	def("guchar", b(ctypes.KindUChar))
	def("gint", b(ctypes.KindInt))
	def("guint", b(ctypes.KindUInt))
	def("gboolean", names["gint"])
	def("gint16", b(ctypes.KindShort))
	def("guint16", b(ctypes.KindUShort))
	def("gint32", b(ctypes.KindInt))
	def("guint32", b(ctypes.KindUInt))
	def("gint64", b(ctypes.KindLong))
	def("guint64", b(ctypes.KindULong))
	def("glong", b(ctypes.KindLong))
	def("gulong", b(ctypes.KindULong))
	def("gfloat", b(ctypes.KindFloat))
	def("gdouble", b(ctypes.KindDouble))
	def("GVariant", in.Record("_GVariant", false))
	def("GVariantIter", in.Record("_GVariantIter", false))
	def("GVariantBuilder", in.Record("_GVariantBuilder", false))
	def("va_list", in.Record("__va_list_tag", false))
	return &fixture{t: t, in: in, names: names, types: typemgr.New(in, names)}
}

func (f *fixture) named(name string) ctypes.QualType {
	f.t.Helper()
	qt, ok := f.names[name]
	require.True(f.t, ok, "no typedef %s", name)
	return qt
}

func (f *fixture) ptr(qt ctypes.QualType, depth int) ctypes.QualType {
	for range depth {
		qt = f.in.PointerTo(qt)
	}
	return qt
}

func (f *fixture) builtin(k ctypes.Kind) ctypes.QualType { return f.in.Builtin(k) }

func constOf(qt ctypes.QualType) ctypes.QualType { return qt.WithQuals(ctypes.QualConst) }

func (f *fixture) arg(qt ctypes.QualType) Arg { return Arg{Type: qt} }

// null is the NULL macro: ((void *) 0).
func (f *fixture) null() Arg {
	return Arg{Type: f.ptr(f.builtin(ctypes.KindVoid), 1), NullConst: true}
}

func (f *fixture) intLit(v int64) Arg {
	a := Arg{Type: f.builtin(ctypes.KindInt), NullConst: v == 0}
	if v < 0 {
		a.Int = &IntConst{Value: uint64(-v), Negative: true}
	} else {
		a.Int = &IntConst{Value: uint64(v)}
	}
	return a
}

func (f *fixture) str(s string) Arg {
	return Arg{
		Type:    f.ptr(f.builtin(ctypes.KindChar), 1),
		Literal: &StringLiteral{Value: s},
	}
}

// call lays the arguments out at distinct offsets so anchors can be told apart.
func (f *fixture) call(callee string, args ...Arg) *Call {
	c := &Call{Callee: callee, Span: source.Span{File: 1, Start: 0, End: 1000}}
	for i, a := range args {
		a.Span = source.Span{File: 1, Start: uint32(10 * (i + 1)), End: uint32(10*(i+1) + 5)}
		if a.Literal != nil {
			lit := *a.Literal
			lit.Span = a.Span
			a.Literal = &lit
		}
		c.Args = append(c.Args, a)
	}
	return c
}

func (f *fixture) run(callee string, args ...Arg) (Result, *Collector) {
	f.t.Helper()
	sig, ok := DefaultTable().Lookup(callee)
	require.True(f.t, ok, callee)
	col := &Collector{}
	res := New(nil, f.types, col, f.opts).Check(f.call(callee, args...), sig)
	require.Equal(f.t, len(col.Reports), len(res.Reports))
	return res, col
}

func (f *fixture) gvNew(format string, args ...Arg) (Result, *Collector) {
	return f.run("g_variant_new", append([]Arg{f.str(format)}, args...)...)
}

func (f *fixture) gvGet(format string, args ...Arg) (Result, *Collector) {
	existing := f.arg(f.ptr(f.named("GVariant"), 1))
	return f.run("g_variant_get", append([]Arg{existing, f.str(format)}, args...)...)
}

func (f *fixture) render(r *Report) string { return Render(r, f.in) }

// anchorOf returns the span call() gave argument i.
func anchorOf(i int) source.Span {
	return source.Span{File: 1, Start: uint32(10 * (i + 1)), End: uint32(10*(i+1) + 5)}
}

func single(t *testing.T, col *Collector, code diag.Code) *Report {
	t.Helper()
	require.Len(t, col.Reports, 1, "reports: %v", col.Codes())
	require.Equal(t, code, col.Reports[0].Code)
	return col.Reports[0]
}
