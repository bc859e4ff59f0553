package ctypes

// Desugar strips typedefs at the top level only, merging their qualifiers.
func (in *Interner) Desugar(qt QualType) QualType {
	for {
		tt, ok := in.Lookup(qt.ID)
		if !ok || tt.Kind != KindTypedef {
			return qt
		}
		qt = tt.Elem.WithQuals(qt.Quals)
	}
}

// Canonical strips every typedef, at every depth. Two types are the same
// type exactly when their canonical forms are equal.
func (in *Interner) Canonical(qt QualType) QualType {
	qt = in.Desugar(qt)
	tt, ok := in.Lookup(qt.ID)
	if !ok {
		return qt
	}
	switch tt.Kind {
	case KindPointer:
		return in.PointerTo(in.Canonical(tt.Elem)).WithQuals(qt.Quals)
	case KindArray:
		return in.ArrayOf(in.Canonical(tt.Elem), tt.Count).WithQuals(qt.Quals)
	case KindFunction:
		info := in.funcs[tt.Payload]
		canon := FuncInfo{
			Result:   in.Canonical(info.Result),
			Params:   make([]QualType, len(info.Params)),
			Variadic: info.Variadic,
			NoProto:  info.NoProto,
		}
		for i, p := range info.Params {
			canon.Params[i] = in.Canonical(p)
		}
		return in.Function(canon).WithQuals(qt.Quals)
	}
	return qt
}

// SameType reports whether a and b denote the same type, qualifiers included.
func (in *Interner) SameType(a, b QualType) bool {
	if a == b {
		return true
	}
	return in.Canonical(a) == in.Canonical(b)
}

// KindOf returns the kind of qt after stripping top-level typedefs.
func (in *Interner) KindOf(qt QualType) Kind {
	tt, ok := in.Lookup(in.Desugar(qt).ID)
	if !ok {
		return KindInvalid
	}
	return tt.Kind
}

// IsPointer reports whether qt is a pointer type, looking through typedefs.
func (in *Interner) IsPointer(qt QualType) bool {
	return in.KindOf(qt) == KindPointer
}

// Pointee returns the pointee of a pointer type (typedefs looked through).
func (in *Interner) Pointee(qt QualType) (QualType, bool) {
	tt, ok := in.Lookup(in.Desugar(qt).ID)
	if !ok || tt.Kind != KindPointer {
		return QualType{}, false
	}
	return tt.Elem, true
}

// Element returns the element type of an array (typedefs looked through).
func (in *Interner) Element(qt QualType) (QualType, bool) {
	tt, ok := in.Lookup(in.Desugar(qt).ID)
	if !ok || tt.Kind != KindArray {
		return QualType{}, false
	}
	return tt.Elem, true
}

// IsInteger reports whether qt is an integer type (_Bool and chars included).
func (in *Interner) IsInteger(qt QualType) bool {
	return in.KindOf(qt).IsInteger()
}

// IsArithmetic reports whether qt is an integer or floating type.
func (in *Interner) IsArithmetic(qt QualType) bool {
	k := in.KindOf(qt)
	return k.IsInteger() || k == KindFloat || k == KindDouble || k == KindLongDouble
}

// IsScalar reports whether qt is arithmetic or a pointer.
func (in *Interner) IsScalar(qt QualType) bool {
	return in.IsArithmetic(qt) || in.IsPointer(qt)
}

// IsVoid reports whether qt is void.
func (in *Interner) IsVoid(qt QualType) bool {
	return in.KindOf(qt) == KindVoid
}

// IsCharType reports whether qt is char, signed char or unsigned char.
func (in *Interner) IsCharType(qt QualType) bool {
	switch in.KindOf(qt) {
	case KindChar, KindSChar, KindUChar:
		return true
	}
	return false
}

// IsSignedInteger reports whether qt is a signed integer type. Plain char
// follows the target's signedness.
func (in *Interner) IsSignedInteger(qt QualType) bool {
	switch in.KindOf(qt) {
	case KindSChar, KindShort, KindInt, KindLong, KindLongLong:
		return true
	case KindChar:
		return in.target.CharSigned
	}
	return false
}

// IsUnsignedInteger reports whether qt is an unsigned integer type; _Bool counts.
func (in *Interner) IsUnsignedInteger(qt QualType) bool {
	switch in.KindOf(qt) {
	case KindBool, KindUChar, KindUShort, KindUInt, KindULong, KindULongLong:
		return true
	case KindChar:
		return !in.target.CharSigned
	}
	return false
}

// CorrespondingUnsigned maps a signed integer type to its unsigned partner.
// Other types are returned unchanged.
func (in *Interner) CorrespondingUnsigned(qt QualType) QualType {
	var k Kind
	switch in.KindOf(qt) {
	case KindChar, KindSChar:
		k = KindUChar
	case KindShort:
		k = KindUShort
	case KindInt:
		k = KindUInt
	case KindLong:
		k = KindULong
	case KindLongLong:
		k = KindULongLong
	default:
		return qt
	}
	return in.Builtin(k).WithQuals(qt.Quals)
}

// SizeBits returns the width of qt in bits on the interner's target,
// or 0 for incomplete and function types.
func (in *Interner) SizeBits(qt QualType) uint64 {
	qt = in.Desugar(qt)
	tt, ok := in.Lookup(qt.ID)
	if !ok {
		return 0
	}
	if tt.Kind == KindArray {
		if tt.Count == ArrayUnknownLength {
			return 0
		}
		return uint64(tt.Count) * in.SizeBits(tt.Elem)
	}
	return uint64(in.target.bits(tt.Kind))
}

// Decay converts arrays to pointers to their first element and functions
// to function pointers. Other types are returned unchanged.
func (in *Interner) Decay(qt QualType) QualType {
	d := in.Desugar(qt)
	tt, ok := in.Lookup(d.ID)
	if !ok {
		return qt
	}
	switch tt.Kind {
	case KindArray:
		return in.PointerTo(tt.Elem)
	case KindFunction:
		return in.PointerTo(d.Unqualified())
	}
	return qt
}

// PromoteInteger applies the C integer promotions: integer types narrower
// than int become int. Other types are returned unchanged.
func (in *Interner) PromoteInteger(qt QualType) QualType {
	switch in.KindOf(qt) {
	case KindBool, KindChar, KindSChar, KindUChar, KindShort, KindUShort:
		return in.Builtin(KindInt)
	}
	return qt
}

// PromoteVariadic applies the default argument promotions used for
// arguments matched by "...": integer promotion and float to double.
func (in *Interner) PromoteVariadic(qt QualType) QualType {
	qt = in.Decay(qt)
	if in.KindOf(qt) == KindFloat {
		return in.Builtin(KindDouble)
	}
	return in.PromoteInteger(qt).Unqualified()
}

// TypedefName returns the name of qt if it is spelled as a typedef.
func (in *Interner) TypedefName(qt QualType) (string, bool) {
	info, ok := in.TypedefInfo(qt.ID)
	if !ok {
		return "", false
	}
	return info.Name, true
}
