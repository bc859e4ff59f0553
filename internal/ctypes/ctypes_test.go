package ctypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternerDeduplicatesPointers(t *testing.T) {
	in := NewInterner(LP64)
	char := in.Builtin(KindChar)
	assert.Equal(t, in.PointerTo(char), in.PointerTo(char))
	assert.NotEqual(t, in.PointerTo(char), in.PointerTo(char.WithQuals(QualConst)))
}

func TestTypedefsAreNominalButSameType(t *testing.T) {
	in := NewInterner(LP64)
	long := in.Builtin(KindLong)
	gint64 := in.RegisterTypedef("gint64", long)
	glong := in.RegisterTypedef("glong", long)

	assert.NotEqual(t, gint64, glong)
	assert.True(t, in.SameType(gint64, glong))
	assert.True(t, in.SameType(in.PointerTo(gint64), in.PointerTo(long)))
	assert.False(t, in.SameType(in.PointerTo(gint64), in.PointerTo(long.WithQuals(QualConst))))
}

func TestLabels(t *testing.T) {
	in := NewInterner(LP64)
	char := in.Builtin(KindChar)
	constChar := char.WithQuals(QualConst)
	gchar := in.RegisterTypedef("gchar", char)
	variant := in.RegisterTypedef("GVariant", in.Record("_GVariant", false))
	gint64 := in.RegisterTypedef("gint64", in.Builtin(KindLong))

	cases := []struct {
		qt     QualType
		label  string
		quoted string
	}{
		{in.PointerTo(char), "char *", "'char *'"},
		{in.PointerTo(in.PointerTo(constChar)), "const char **", "'const char **'"},
		{in.PointerTo(in.PointerTo(char).WithQuals(QualConst)), "char *const *", "'char *const *'"},
		{in.PointerTo(in.PointerTo(gchar)), "gchar **", "'gchar **' (aka 'char **')"},
		{in.PointerTo(in.PointerTo(variant)), "GVariant **", "'GVariant **' (aka 'struct _GVariant **')"},
		{in.PointerTo(gint64), "gint64 *", "'gint64 *' (aka 'long *')"},
		{in.Builtin(KindUChar), "unsigned char", "'unsigned char'"},
		{in.ArrayOf(char, 3), "char [3]", "'char [3]'"},
		{in.PointerTo(in.Function(FuncInfo{Result: in.Builtin(KindInt)})), "int (*)(void)", "'int (*)(void)'"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.label, in.Label(tc.qt))
		assert.Equal(t, tc.quoted, in.Quoted(tc.qt))
	}
}

func TestIntegerQueries(t *testing.T) {
	in := NewInterner(LP64)
	guint32 := in.RegisterTypedef("guint32", in.Builtin(KindUInt))

	assert.True(t, in.IsUnsignedInteger(guint32))
	assert.True(t, in.IsSignedInteger(in.Builtin(KindInt)))
	assert.True(t, in.IsUnsignedInteger(in.Builtin(KindBool)))
	assert.Equal(t, in.Builtin(KindUInt), in.CorrespondingUnsigned(in.Builtin(KindInt)))
	assert.Equal(t, in.Builtin(KindULong), in.CorrespondingUnsigned(in.Builtin(KindLong)))
	assert.Equal(t, uint64(64), in.SizeBits(in.Builtin(KindLong)))

	ilp := NewInterner(ILP32)
	assert.Equal(t, uint64(32), ilp.SizeBits(ilp.Builtin(KindLong)))
}

func TestPromotionAndDecay(t *testing.T) {
	in := NewInterner(LP64)
	guchar := in.RegisterTypedef("guchar", in.Builtin(KindUChar))
	char := in.Builtin(KindChar)

	assert.Equal(t, in.Builtin(KindInt), in.PromoteVariadic(guchar))
	assert.Equal(t, in.Builtin(KindDouble), in.PromoteVariadic(in.Builtin(KindFloat)))
	assert.Equal(t, in.PointerTo(char), in.PromoteVariadic(in.ArrayOf(char, 4)))

	gint := in.RegisterTypedef("gint", in.Builtin(KindInt))
	assert.Equal(t, gint, in.PromoteVariadic(gint), "int-sized typedefs keep their sugar")
}

func TestParseTarget(t *testing.T) {
	tg, err := ParseTarget("ILP32")
	require.NoError(t, err)
	assert.Equal(t, "long long", tg.Int64Spelling())

	tg, err = ParseTarget("")
	require.NoError(t, err)
	assert.Equal(t, "long", tg.Int64Spelling())

	_, err = ParseTarget("pdp11")
	assert.Error(t, err)
}

func TestRecordMembers(t *testing.T) {
	in := NewInterner(LP64)
	inner := in.Record("(anonymous 1)", true)
	require.True(t, in.CompleteRecord(inner, []Field{{Name: "u", Type: in.Builtin(KindUInt)}}))

	point := in.Record("point", false)
	_, ok := in.Member(point, "x")
	assert.False(t, ok, "incomplete records have no members")

	require.True(t, in.CompleteRecord(point, []Field{
		{Name: "x", Type: in.Builtin(KindInt)},
		{Name: "name", Type: in.PointerTo(in.Builtin(KindChar))},
		{Type: inner},
	}))
	assert.False(t, in.CompleteRecord(point, nil), "a body may be attached once")

	alias := in.RegisterTypedef("Point", point)
	m, ok := in.Member(alias, "name")
	require.True(t, ok)
	assert.Equal(t, "char *", in.Label(m))

	m, ok = in.Member(point, "u")
	require.True(t, ok, "members of anonymous nested records are visible")
	assert.Equal(t, in.Builtin(KindUInt), m)

	info, ok := in.RecordInfo(point.ID)
	require.True(t, ok)
	assert.True(t, info.Complete)
	assert.Len(t, info.Fields, 3)
	assert.False(t, in.CompleteRecord(in.Builtin(KindInt), nil))
}
