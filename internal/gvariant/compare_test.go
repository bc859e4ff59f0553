package gvariant

import (
	"testing"

	"tartan/internal/ctypes"

	"github.com/stretchr/testify/assert"
)

func TestTypesEqual(t *testing.T) {
	f := newFixture(t)
	char := f.builtin(ctypes.KindChar)
	cchar := constOf(char)
	variant := f.named("GVariant")
	in := FlagConsumeArgs
	out := FlagConsumeArgs | FlagDirectionOut

	cases := []struct {
		name             string
		actual, expected ctypes.QualType
		flags            Flags
		want             bool
	}{
		{"same builtin", f.builtin(ctypes.KindInt), f.builtin(ctypes.KindInt), in, true},
		{"typedef sugar", f.named("gint32"), f.builtin(ctypes.KindInt), in, true},
		{"char * for const char * keeps expected const", f.ptr(char, 1), f.ptr(cchar, 1), in, false},
		{"const char * for char *", f.ptr(cchar, 1), f.ptr(char, 1), in, true},
		{"const GVariant * for GVariant *", f.ptr(constOf(variant), 1), f.ptr(variant, 1), in, true},
		{"const char *const * for char **", f.ptr(constOf(f.ptr(cchar, 1)), 1), f.ptr(char, 2), in, true},
		{"outbound keeps qualifiers", f.ptr(char, 2), f.ptr(cchar, 2), out, false},
		{"outbound exact", f.ptr(cchar, 2), f.ptr(cchar, 2), out, true},
		{"pointer depth", f.ptr(char, 1), f.ptr(char, 2), in, false},
		{"scalar mismatch", f.builtin(ctypes.KindInt), f.builtin(ctypes.KindUInt), in, false},
		{"pointer and scalar", f.ptr(char, 1), f.builtin(ctypes.KindLong), in, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, typesEqual(f.in, tc.actual, tc.expected, tc.flags))
		})
	}
}

func TestArchDependent(t *testing.T) {
	f := newFixture(t)
	myLong := f.in.RegisterTypedef("my_long", f.builtin(ctypes.KindLong))

	cases := []struct {
		qt   ctypes.QualType
		want bool
	}{
		{f.builtin(ctypes.KindLong), true},
		{f.builtin(ctypes.KindULong), true},
		{f.builtin(ctypes.KindLongDouble), true},
		{constOf(f.builtin(ctypes.KindLong)), true},
		{f.ptr(f.builtin(ctypes.KindLong), 2), true},
		{f.named("glong"), true},
		{f.ptr(f.named("gulong"), 1), true},
		{f.named("gint64"), false},
		{f.ptr(f.named("guint64"), 1), false},
		{myLong, false},
		{f.builtin(ctypes.KindInt), false},
		{f.builtin(ctypes.KindLongLong), false},
		{f.builtin(ctypes.KindDouble), false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, archDependent(f.in, tc.qt), f.in.Label(tc.qt))
	}
}
