package gvariant

import (
	"tartan/internal/ctypes"
	"tartan/internal/typemgr"
)

// scalarType resolves a basic type character to the C type GLib stores it
// as. ok is false for characters that are not basic types.
func scalarType(types *typemgr.Manager, c rune) (qt ctypes.QualType, ok bool) {
	in := types.Types()
	switch c {
	case 'b':
		return in.Builtin(ctypes.KindInt), true
	case 'y':
		return in.Builtin(ctypes.KindUChar), true
	case 'n':
		return types.TypeByName("gint16"), true
	case 'q':
		return types.TypeByName("guint16"), true
	case 'i', 'h':
		return types.TypeByName("gint32"), true
	case 'u':
		return types.TypeByName("guint32"), true
	case 'x':
		return types.TypeByName("gint64"), true
	case 't':
		return types.TypeByName("guint64"), true
	case 'd':
		return in.Builtin(ctypes.KindDouble), true
	case 's', 'o', 'g':
		return in.PointerTo(in.Builtin(ctypes.KindChar)), true
	case '?':
		return types.PointerTypeByName("GVariant"), true
	}
	return ctypes.QualType{}, false
}

// promoted applies the default argument promotions to the type a basic
// character expects. Only values travel through "...": outbound arguments
// are pointers and keep their pointee.
func promoted(in *ctypes.Interner, c rune, qt ctypes.QualType, flags Flags) ctypes.QualType {
	if flags.Has(FlagDirectionOut) {
		return qt
	}
	switch c {
	case 'y', 'n', 'q':
		return in.Builtin(ctypes.KindInt)
	}
	return qt
}

type convenience struct {
	conv     string
	depth    int
	borrowed bool
}

// conveniences are the conversions accepted after '^', tried in order.
// depth counts the pointer levels above char.
var conveniences = []convenience{
	{conv: "as", depth: 2},
	{conv: "ao", depth: 2},
	{conv: "a&s", depth: 2, borrowed: true},
	{conv: "a&o", depth: 2, borrowed: true},
	{conv: "aay", depth: 2},
	{conv: "ay", depth: 1},
	{conv: "&ay", depth: 1, borrowed: true},
	{conv: "a&ay", depth: 2, borrowed: true},
}

func (cv convenience) build(in *ctypes.Interner) ctypes.QualType {
	qt := in.Builtin(ctypes.KindChar)
	if cv.borrowed {
		qt = qt.WithQuals(ctypes.QualConst)
	}
	for range cv.depth {
		qt = in.PointerTo(qt)
	}
	return qt
}
