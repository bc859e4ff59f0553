package gvariant

import (
	"tartan/internal/ctypes"
	"tartan/internal/typemgr"
)

// SuggestFormat guesses a format string that would consume an argument of
// type qt. Only scalars, strings, variants and string arrays are known;
// ok is false for anything else.
func SuggestFormat(types *typemgr.Manager, qt ctypes.QualType) (format string, ok bool) {
	in := types.Types()

	if isTypedefNamed(in, qt, "gboolean") {
		return "b", true
	}
	switch in.KindOf(qt) {
	case ctypes.KindBool:
		return "b", true
	case ctypes.KindUChar:
		return "y", true
	case ctypes.KindDouble, ctypes.KindLongDouble:
		return "d", true
	}

	switch {
	case in.IsSignedInteger(qt):
		return bySize(in.SizeBits(qt), "n", "i", "x")
	case in.IsUnsignedInteger(qt):
		return bySize(in.SizeBits(qt), "q", "u", "t")
	}

	pointee, isPtr := in.Pointee(qt)
	if !isPtr {
		return "", false
	}
	variant := types.TypeByName("GVariant")
	switch {
	case in.IsCharType(pointee):
		if in.Desugar(pointee).IsConst() {
			return "&s", true
		}
		return "s", true
	case sameUnqualified(in, pointee, variant):
		return "v", true
	}
	if inner, ok := in.Pointee(pointee); ok {
		switch {
		case sameUnqualified(in, inner, variant):
			return "v", true
		case in.IsCharType(inner):
			return "^as", true
		}
	}
	return "", false
}

func bySize(bits uint64, s16, s32, s64 string) (string, bool) {
	switch bits {
	case 16:
		return s16, true
	case 32:
		return s32, true
	case 64:
		return s64, true
	}
	return "", false
}

func isTypedefNamed(in *ctypes.Interner, qt ctypes.QualType, name string) bool {
	for {
		n, ok := in.TypedefName(qt)
		if !ok {
			return false
		}
		if n == name {
			return true
		}
		qt = in.MustLookup(qt.ID).Elem
	}
}

func sameUnqualified(in *ctypes.Interner, a, b ctypes.QualType) bool {
	if b.IsNull() {
		return false
	}
	return in.SameType(in.Desugar(a).Unqualified(), in.Desugar(b).Unqualified())
}
