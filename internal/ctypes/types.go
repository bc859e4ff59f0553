package ctypes

import "fmt"

// TypeID uniquely identifies an unqualified type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates the C type kinds the checker understands.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindBool
	KindChar
	KindSChar
	KindUChar
	KindShort
	KindUShort
	KindInt
	KindUInt
	KindLong
	KindULong
	KindLongLong
	KindULongLong
	KindFloat
	KindDouble
	KindLongDouble
	KindPointer
	KindArray
	KindFunction
	KindRecord
	KindTypedef
)

func (k Kind) String() string {
	if name, ok := builtinNames[k]; ok {
		return name
	}
	switch k {
	case KindInvalid:
		return "invalid"
	case KindPointer:
		return "pointer"
	case KindArray:
		return "array"
	case KindFunction:
		return "function"
	case KindRecord:
		return "record"
	case KindTypedef:
		return "typedef"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

var builtinNames = map[Kind]string{
	KindVoid:       "void",
	KindBool:       "_Bool",
	KindChar:       "char",
	KindSChar:      "signed char",
	KindUChar:      "unsigned char",
	KindShort:      "short",
	KindUShort:     "unsigned short",
	KindInt:        "int",
	KindUInt:       "unsigned int",
	KindLong:       "long",
	KindULong:      "unsigned long",
	KindLongLong:   "long long",
	KindULongLong:  "unsigned long long",
	KindFloat:      "float",
	KindDouble:     "double",
	KindLongDouble: "long double",
}

// IsBuiltin reports whether k is an arithmetic or void kind.
func (k Kind) IsBuiltin() bool {
	return k >= KindVoid && k <= KindLongDouble
}

// IsInteger reports whether k is an integer kind, _Bool and char included.
func (k Kind) IsInteger() bool {
	return k >= KindBool && k <= KindULongLong
}

// Qual is a set of C type qualifiers.
type Qual uint8

const (
	QualConst Qual = 1 << iota
	QualVolatile
	QualRestrict
)

func (q Qual) Has(x Qual) bool { return q&x == x }

func (q Qual) String() string {
	s := ""
	add := func(w string) {
		if s != "" {
			s += " "
		}
		s += w
	}
	if q.Has(QualConst) {
		add("const")
	}
	if q.Has(QualVolatile) {
		add("volatile")
	}
	if q.Has(QualRestrict) {
		add("restrict")
	}
	return s
}

// QualType is a type together with its top-level qualifiers.
// It is a small value and is compared with ==.
type QualType struct {
	ID    TypeID
	Quals Qual
}

// IsNull reports whether qt refers to no type.
func (qt QualType) IsNull() bool { return qt.ID == NoTypeID }

// IsConst reports whether qt is const-qualified at the top level.
func (qt QualType) IsConst() bool { return qt.Quals.Has(QualConst) }

// WithQuals returns qt with q added.
func (qt QualType) WithQuals(q Qual) QualType {
	qt.Quals |= q
	return qt
}

// Unqualified returns qt without top-level qualifiers.
func (qt QualType) Unqualified() QualType {
	return QualType{ID: qt.ID}
}

// ArrayUnknownLength marks arrays declared as T[].
const ArrayUnknownLength = ^uint32(0)

// Type is a compact descriptor for an unqualified type.
type Type struct {
	Kind    Kind
	Elem    QualType // pointee, array element, function result, typedef target
	Count   uint32   // array length
	Payload uint32   // slot in a side table (typedefs, records, functions)
}
