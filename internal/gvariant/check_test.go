package gvariant

import (
	"testing"

	"tartan/internal/ctypes"
	"tartan/internal/diag"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAcceptsMatchingInboundArguments(t *testing.T) {
	f := newFixture(t)
	char := f.builtin(ctypes.KindChar)
	intT := f.builtin(ctypes.KindInt)
	variant := f.ptr(f.named("GVariant"), 1)
	builder := f.ptr(f.named("GVariantBuilder"), 1)

	cases := []struct {
		format string
		args   []Arg
	}{
		{"i", []Arg{f.arg(f.named("gint32"))}},
		{"h", []Arg{f.arg(intT)}},
		{"b", []Arg{f.arg(f.named("gboolean"))}},
		{"y", []Arg{f.arg(intT)}},
		{"n", []Arg{f.arg(intT)}},
		{"q", []Arg{f.arg(intT)}},
		{"u", []Arg{f.arg(f.named("guint32"))}},
		{"u", []Arg{f.intLit(5)}},
		{"x", []Arg{f.arg(f.named("gint64"))}},
		{"t", []Arg{f.arg(f.named("guint64"))}},
		{"d", []Arg{f.arg(f.named("gdouble"))}},
		{"s", []Arg{f.str("hi")}},
		{"s", []Arg{f.arg(f.ptr(constOf(char), 1))}},
		{"o", []Arg{f.arg(f.ptr(f.named("gchar"), 1))}},
		{"&s", []Arg{f.arg(f.ptr(char, 1))}},
		{"v", []Arg{f.arg(variant)}},
		{"v", []Arg{f.arg(f.ptr(constOf(f.named("GVariant")), 1))}},
		{"@s", []Arg{f.arg(variant)}},
		{"*", []Arg{f.arg(variant)}},
		{"?", []Arg{f.arg(variant)}},
		{"r", []Arg{f.arg(variant)}},
		{"ms", []Arg{f.null()}},
		{"mi", []Arg{f.arg(intT)}},
		{"as", []Arg{f.arg(builder)}},
		{"a{sv}", []Arg{f.arg(builder)}},
		{"^as", []Arg{f.arg(f.ptr(char, 2))}},
		{"()", nil},
		{"(si)", []Arg{f.str("hi"), f.arg(intT)}},
		{"{sv}", []Arg{f.str("key"), f.arg(variant)}},
		{"((s)(si))", []Arg{f.str("a"), f.str("b"), f.arg(intT)}},
		{"(@s@ss)", []Arg{f.arg(variant), f.arg(variant), f.str("c")}},
	}
	for _, tc := range cases {
		t.Run(tc.format, func(t *testing.T) {
			res, col := f.gvNew(tc.format, tc.args...)
			assert.True(t, res.Checked)
			assert.True(t, res.OK, "reports: %v", col.Codes())
			assert.Empty(t, col.Reports)
		})
	}
}

func TestCheckAcceptsMatchingOutboundArguments(t *testing.T) {
	f := newFixture(t)
	gchar := f.named("gchar")
	constGchar := constOf(gchar)

	cases := []struct {
		format string
		args   []Arg
	}{
		{"(ss)", []Arg{f.arg(f.ptr(gchar, 2)), f.arg(f.ptr(gchar, 2))}},
		{"(ss)", []Arg{f.null(), f.null()}},
		{"(&s&s)", []Arg{f.arg(f.ptr(constGchar, 2)), f.arg(f.ptr(constGchar, 2))}},
		{"^as", []Arg{f.arg(f.ptr(gchar, 3))}},
		{"^ao", []Arg{f.arg(f.ptr(gchar, 3))}},
		{"^a&s", []Arg{f.arg(f.ptr(constGchar, 3))}},
		{"^a&o", []Arg{f.arg(f.ptr(constGchar, 3))}},
		{"^ay", []Arg{f.arg(f.ptr(gchar, 2))}},
		{"^&ay", []Arg{f.arg(f.ptr(constGchar, 2))}},
		{"^aay", []Arg{f.arg(f.ptr(gchar, 3))}},
		{"^a&ay", []Arg{f.arg(f.ptr(constGchar, 3))}},
		{"@s", []Arg{f.null()}},
		{"@s", []Arg{f.arg(f.ptr(f.named("GVariant"), 2))}},
		{"v", []Arg{f.null()}},
		{"ms", []Arg{f.arg(f.ptr(gchar, 2))}},
		{"m&s", []Arg{f.arg(f.ptr(constGchar, 2))}},
		{"as", []Arg{f.arg(f.ptr(f.named("GVariantIter"), 2))}},
		{"a?", []Arg{f.null()}},
		{"a(sss)", []Arg{f.arg(f.ptr(f.named("GVariantIter"), 2))}},
		{"a{?*}", []Arg{f.arg(f.ptr(f.named("GVariantIter"), 2))}},
		{"b", []Arg{f.arg(f.ptr(f.named("gboolean"), 1))}},
		{"y", []Arg{f.arg(f.ptr(f.named("guchar"), 1))}},
		{"d", []Arg{f.arg(f.ptr(f.named("gdouble"), 1))}},
		{"x", []Arg{f.arg(f.ptr(f.named("gint64"), 1))}},
		{"{sv}", []Arg{f.arg(f.ptr(gchar, 2)), f.arg(f.ptr(f.named("GVariant"), 2))}},
	}
	for _, tc := range cases {
		t.Run(tc.format, func(t *testing.T) {
			res, col := f.gvGet(tc.format, tc.args...)
			assert.True(t, res.OK, "reports: %v", col.Codes())
		})
	}
}

func TestCheckReportsTypeMismatch(t *testing.T) {
	f := newFixture(t)
	gchar := f.named("gchar")

	cases := []struct {
		name   string
		run    func() (Result, *Collector)
		anchor int
		msg    string
	}{
		{
			name:   "borrowed string needs const",
			run:    func() (Result, *Collector) { return f.gvGet("(&s&s)", f.arg(f.ptr(gchar, 2)), f.arg(f.ptr(gchar, 2))) },
			anchor: 2,
			msg:    "Expected a GVariant variadic argument of type 'const char **' but saw one of type 'gchar **' (aka 'char **').",
		},
		{
			name:   "string array must not be const",
			run:    func() (Result, *Collector) { return f.gvGet("^as", f.arg(f.ptr(constOf(gchar), 3))) },
			anchor: 2,
			msg:    "Expected a GVariant variadic argument of type 'char ***' but saw one of type 'const gchar ***' (aka 'const char ***').",
		},
		{
			name:   "variant by value",
			run:    func() (Result, *Collector) { return f.gvGet("v", f.str("nope")) },
			anchor: 2,
			msg:    "Expected a GVariant variadic argument of type 'GVariant **' (aka 'struct _GVariant **') but saw one of type 'char *'.",
		},
		{
			name:   "outbound variant keeps qualifiers",
			run:    func() (Result, *Collector) { return f.gvGet("v", f.arg(f.ptr(constOf(f.named("GVariant")), 2))) },
			anchor: 2,
			msg:    "Expected a GVariant variadic argument of type 'GVariant **' (aka 'struct _GVariant **') but saw one of type 'const GVariant **' (aka 'const struct _GVariant **').",
		},
		{
			name:   "iterator not passed by reference",
			run:    func() (Result, *Collector) { return f.gvGet("as", f.arg(f.ptr(f.named("GVariantIter"), 1))) },
			anchor: 2,
			msg:    "Expected a GVariant variadic argument of type 'GVariantIter **' (aka 'struct _GVariantIter **') but saw one of type 'GVariantIter *' (aka 'struct _GVariantIter *').",
		},
		{
			name:   "no promotion for outbound",
			run:    func() (Result, *Collector) { return f.gvGet("y", f.arg(f.ptr(f.named("guint"), 1))) },
			anchor: 2,
			msg:    "Expected a GVariant variadic argument of type 'unsigned char *' but saw one of type 'guint *' (aka 'unsigned int *').",
		},
		{
			name:   "float is not double",
			run:    func() (Result, *Collector) { return f.gvGet("d", f.arg(f.ptr(f.named("gfloat"), 1))) },
			anchor: 2,
			msg:    "Expected a GVariant variadic argument of type 'double *' but saw one of type 'gfloat *' (aka 'float *').",
		},
		{
			name:   "signedness matters",
			run:    func() (Result, *Collector) { return f.gvGet("x", f.arg(f.ptr(f.named("guint64"), 1))) },
			anchor: 2,
			msg:    "Expected a GVariant variadic argument of type 'gint64 *' (aka 'long *') but saw one of type 'guint64 *' (aka 'unsigned long *').",
		},
		{
			name:   "dict value",
			run:    func() (Result, *Collector) { return f.gvGet("{sv}", f.arg(f.ptr(gchar, 2)), f.arg(f.ptr(gchar, 2))) },
			anchor: 3,
			msg:    "Expected a GVariant variadic argument of type 'GVariant **' (aka 'struct _GVariant **') but saw one of type 'gchar **' (aka 'char **').",
		},
		{
			name:   "inbound dict value",
			run:    func() (Result, *Collector) { return f.gvNew("{ss}", f.str("hi"), f.intLit(15)) },
			anchor: 2,
			msg:    "Expected a GVariant variadic argument of type 'char *' but saw one of type 'int'.",
		},
		{
			name:   "negative literal for unsigned",
			run:    func() (Result, *Collector) { return f.gvNew("u", f.intLit(-1)) },
			anchor: 1,
			msg:    "Expected a GVariant variadic argument of type 'guint32' (aka 'unsigned int') but saw one of type 'int'.",
		},
		{
			name:   "int for gint64",
			run:    func() (Result, *Collector) { return f.gvNew("x", f.intLit(5)) },
			anchor: 1,
			msg:    "Expected a GVariant variadic argument of type 'gint64' (aka 'long') but saw one of type 'int'.",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, col := tc.run()
			assert.False(t, res.OK)
			r := single(t, col, diag.GVarTypeMismatch)
			assert.Equal(t, anchorOf(tc.anchor), r.Anchor)
			assert.Equal(t, tc.msg, f.render(r))
		})
	}
}

func TestCheckReportsArchitectureDependentTypes(t *testing.T) {
	f := newFixture(t)

	_, col := f.gvNew("x", f.arg(f.builtin(ctypes.KindLong)))
	r := single(t, col, diag.GVarArchDependent)
	assert.Equal(t, "Expected a GVariant variadic argument of type 'gint64' (aka 'long') but saw one of type 'long'. These types are not compatible on every architecture.", f.render(r))

	// Reported even though glong and gint64 are the same type here.
	_, col = f.gvGet("x", f.arg(f.ptr(f.named("glong"), 1)))
	single(t, col, diag.GVarArchDependent)

	_, col = f.gvNew("d", f.arg(f.builtin(ctypes.KindLongDouble)))
	single(t, col, diag.GVarArchDependent)
}

func TestCheckMissingArgumentAnchorsAtLiteral(t *testing.T) {
	f := newFixture(t)
	res, col := f.gvGet("invalid")
	assert.False(t, res.OK)
	r := single(t, col, diag.GVarMissingArgument)
	assert.Equal(t, anchorOf(1), r.Anchor)
	assert.Equal(t, "Expected a GVariant variadic argument of type 'gint32 *' (aka 'int *') but there wasn’t one.", f.render(r))
}

func TestCheckNullHandling(t *testing.T) {
	f := newFixture(t)

	falseLit := f.intLit(0)
	_, col := f.gvNew("s", falseLit)
	r := single(t, col, diag.GVarNullNotAllowed)
	assert.Equal(t, anchorOf(1), r.Anchor)
	assert.Equal(t, "Expected a GVariant variadic argument of type 'char *' but saw NULL instead.", f.render(r))

	_, col = f.gvNew("s", f.null())
	single(t, col, diag.GVarNullNotAllowed)

	res, _ := f.gvNew("ms", f.null())
	assert.True(t, res.OK)
	res, _ = f.gvGet("s", f.null())
	assert.True(t, res.OK)

	// Zero for a scalar is just zero.
	res, _ = f.gvNew("i", f.intLit(0))
	assert.True(t, res.OK)
}

func TestCheckStructuralErrors(t *testing.T) {
	f := newFixture(t)
	gchar2 := f.arg(f.ptr(f.named("gchar"), 2))
	variant2 := f.arg(f.ptr(f.named("GVariant"), 2))
	int1 := f.arg(f.ptr(f.named("gint32"), 1))

	cases := []struct {
		format string
		args   []Arg
		code   diag.Code
		msg    string
	}{
		{"(si", []Arg{gchar2, int1}, diag.GVarUnterminatedTuple,
			"Invalid GVariant format string: tuple did not end with ‘)’."},
		{"as(s", []Arg{f.null()}, diag.GVarUnconsumedFormat, ""},
		{"a(s", []Arg{f.null()}, diag.GVarUnterminatedTuple,
			"Invalid GVariant type string: tuple did not end with ‘)’."},
		{"{}", nil, diag.GVarMalformedDictEntry,
			"Invalid GVariant format string: dict did not contain exactly two elements."},
		{"{s}", []Arg{gchar2}, diag.GVarMalformedDictEntry,
			"Invalid GVariant format string: dict did not contain exactly two elements."},
		{"{svs}", []Arg{gchar2, variant2, gchar2}, diag.GVarMalformedDictEntry,
			"Invalid GVariant format string: dict contains more than two elements."},
		{"{sv", []Arg{gchar2, variant2}, diag.GVarMalformedDictEntry,
			"Invalid GVariant format string: dict did not end with ‘}’."},
		{"a{s}", []Arg{f.null()}, diag.GVarMalformedDictEntry,
			"Invalid GVariant type string: dict did not contain exactly two elements."},
		{"z", nil, diag.GVarInvalidFormatChar,
			"Expected a GVariant basic type string but saw ‘z’."},
		{"{vs}", []Arg{variant2, gchar2}, diag.GVarInvalidFormatChar,
			"Expected a GVariant basic type string but saw ‘v’."},
		{"^xs", []Arg{gchar2}, diag.GVarInvalidFormatChar,
			"Invalid GVariant basic format string: convenience operator ‘^’ was not followed by a recognized convenience conversion."},
		{"a", []Arg{f.null()}, diag.GVarInvalidFormatChar,
			"Expected a GVariant basic type string but saw ‘’."},
	}
	for _, tc := range cases {
		t.Run(tc.format, func(t *testing.T) {
			res, col := f.gvGet(tc.format, tc.args...)
			assert.False(t, res.OK)
			r := single(t, col, tc.code)
			assert.Equal(t, anchorOf(1), r.Anchor)
			if tc.msg != "" {
				assert.Equal(t, tc.msg, f.render(r))
			}
		})
	}
}

func TestCheckUnconsumedFormatSuppressesLeftoverArguments(t *testing.T) {
	f := newFixture(t)
	res, col := f.gvGet("si", f.arg(f.ptr(f.named("gchar"), 2)), f.arg(f.ptr(f.named("gint32"), 1)))
	assert.False(t, res.OK)
	r := single(t, col, diag.GVarUnconsumedFormat)
	assert.Equal(t, "Unexpected GVariant format strings ‘i’ with unpaired arguments. If using multiple format strings, they should be enclosed in brackets to create a tuple (e.g. ‘(si)’).", f.render(r))
	require.NotNil(t, r.Fix)
	require.Len(t, r.Fix.Edits, 1)
	assert.Equal(t, anchorOf(1), r.Fix.Edits[0].Span)
	assert.Equal(t, `"(si)"`, r.Fix.Edits[0].NewText)
}

func TestCheckReportsEveryLeftoverArgument(t *testing.T) {
	f := newFixture(t)
	res, col := f.gvNew("s",
		f.str("used"),
		f.intLit(1),
		f.arg(f.named("gboolean")),
		f.arg(f.in.Record("point", false)),
	)
	assert.False(t, res.OK)
	require.Len(t, col.Reports, 3)
	for i, r := range col.Reports {
		assert.Equal(t, diag.GVarUnconsumedArgument, r.Code)
		assert.Equal(t, anchorOf(i+2), r.Anchor)
	}
	assert.Equal(t, "Unexpected GVariant variadic argument of type 'int'. Either it should be removed, or a ‘i’ (or other valid) GVariant format string should be added to the format argument to use it.", f.render(col.Reports[0]))
	assert.Contains(t, f.render(col.Reports[1]), "a ‘b’ (or other valid)")
	assert.Equal(t, "Unexpected GVariant variadic argument of type 'struct point'. Either it should be removed, or a GVariant format string should be added to the format argument to use it. There is no known GVariant representation of the argument’s type, so the argument must be serialized to a GVariant-representable type first.", f.render(col.Reports[2]))
}

func TestCheckVaListCallsValidateOnlyTheFormat(t *testing.T) {
	f := newFixture(t)
	existing := f.arg(f.ptr(f.named("GVariant"), 1))
	vaList := f.arg(f.ptr(f.named("va_list"), 1))

	res, col := f.run("g_variant_get_va", existing, f.str("(sss)"), f.null(), vaList)
	assert.True(t, res.OK, "reports: %v", col.Codes())

	_, col = f.run("g_variant_get_va", existing, f.str("invalid"), f.null(), vaList)
	r := single(t, col, diag.GVarUnconsumedFormat)
	assert.Equal(t, []Subst{TextArg("nvalid"), TextArg("invalid")}, r.Args)

	_, col = f.run("g_variant_new_va", f.str("(s"), f.null(), vaList)
	single(t, col, diag.GVarUnterminatedTuple)
}

func TestCheckNonLiteralFormatIsOnlyAWarning(t *testing.T) {
	f := newFixture(t)
	dynamic := f.arg(f.ptr(constOf(f.named("gchar")), 1))

	res, col := f.run("g_variant_new", dynamic, f.intLit(1), f.arg(f.builtin(ctypes.KindLong)), f.null())
	assert.False(t, res.OK)
	r := single(t, col, diag.GVarNonLiteralFormat)
	assert.Equal(t, diag.SevWarning, r.Severity)
	assert.Equal(t, anchorOf(0), r.Anchor)
	assert.Equal(t, "Non-literal GVariant format string in call to g_variant_new(). Cannot check format string correctness. Instead of a non-literal format string, use GVariantBuilder.", f.render(r))
}

func TestCheckDepthGuard(t *testing.T) {
	f := newFixture(t)
	f.opts.MaxDepth = 4

	res, _ := f.gvNew("((i))", f.arg(f.builtin(ctypes.KindInt)))
	assert.True(t, res.OK)

	_, col := f.gvNew("((((((i))))))", f.arg(f.builtin(ctypes.KindInt)))
	r := single(t, col, diag.GVarNestingTooDeep)
	assert.Equal(t, "GVariant format string is nested more than 4 levels deep.", f.render(r))
}

func TestCheckFormatStopsAtNUL(t *testing.T) {
	f := newFixture(t)
	res, col := f.gvNew("i\x00i", f.arg(f.builtin(ctypes.KindInt)))
	assert.True(t, res.OK, "reports: %v", col.Codes())
}

func TestCheckCallIgnoresUnknownCallees(t *testing.T) {
	f := newFixture(t)
	col := &Collector{}
	c := New(nil, f.types, col, Options{})
	assert.True(t, c.CheckCall(f.call("printf", f.str("%d"), f.intLit(1))))
	assert.False(t, c.CheckCall(f.call("g_variant_new", f.str("s"))))
	assert.Len(t, col.Reports, 1)
}

func TestCheckShortCallIsSkipped(t *testing.T) {
	f := newFixture(t)
	sig, _ := DefaultTable().Lookup("g_variant_get")
	res := New(nil, f.types, nil, Options{}).Check(f.call("g_variant_get", f.null()), sig)
	assert.False(t, res.Checked)
	assert.True(t, res.OK)
}
