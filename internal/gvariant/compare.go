package gvariant

import "tartan/internal/ctypes"

// typesEqual reports whether an argument of type actual may be passed where
// expected is required. Inbound pointees may be more qualified than
// expected (char * passes for const char *); outbound pointees must match
// exactly at every level of indirection.
func typesEqual(in *ctypes.Interner, actual, expected ctypes.QualType, flags Flags) bool {
	for {
		if in.SameType(actual, expected) {
			return true
		}
		ap, ok := in.Pointee(actual)
		if !ok {
			return false
		}
		ep, ok := in.Pointee(expected)
		if !ok {
			return false
		}
		if !flags.Has(FlagDirectionOut) {
			ap = in.Desugar(ap).Unqualified()
		}
		actual, expected = ap, ep
	}
}

// archDependent reports whether qt, pointers stripped, has a width that
// changes between data models. GLib's fixed-width typedefs are trusted;
// glong and gulong are the exceptions that name a plain long.
func archDependent(in *ctypes.Interner, qt ctypes.QualType) bool {
	for {
		tt, ok := in.Lookup(qt.ID)
		if !ok {
			return false
		}
		switch tt.Kind {
		case ctypes.KindPointer:
			qt = tt.Elem
			continue
		case ctypes.KindTypedef:
			name, _ := in.TypedefName(qt)
			return name == "glong" || name == "gulong"
		}
		break
	}
	switch in.KindOf(qt) {
	case ctypes.KindLong, ctypes.KindULong, ctypes.KindLongDouble:
		return true
	}
	return false
}
