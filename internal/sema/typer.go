package sema

import (
	"fmt"

	"tartan/internal/ctypes"
	"tartan/internal/diag"
)

// Typer applies the C typing rules over one interner.
type Typer struct {
	types *ctypes.Interner
}

// New returns a Typer working on types.
func New(types *ctypes.Interner) *Typer {
	return &Typer{types: types}
}

// Types returns the interner the typer works on.
func (t *Typer) Types() *ctypes.Interner {
	return t.types
}

// Error is a semantic problem found while typing an expression. The
// caller reports it; the operation returns an invalid operand.
type Error struct {
	Code diag.Code
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

func errorf(code diag.Code, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// SizeType returns the type of sizeof expressions on the target.
func (t *Typer) SizeType() ctypes.QualType {
	target := t.types.Target()
	if target.LongBits == target.PointerBits {
		return t.types.Builtin(ctypes.KindULong)
	}
	return t.types.Builtin(ctypes.KindULongLong)
}

// PtrDiffType returns the type of the difference of two pointers.
func (t *Typer) PtrDiffType() ctypes.QualType {
	target := t.types.Target()
	if target.LongBits == target.PointerBits {
		return t.types.Builtin(ctypes.KindLong)
	}
	return t.types.Builtin(ctypes.KindLongLong)
}

func (t *Typer) intType() ctypes.QualType {
	return t.types.Builtin(ctypes.KindInt)
}

// rank orders the integer kinds for the usual arithmetic conversions.
func rank(k ctypes.Kind) int {
	switch k {
	case ctypes.KindBool:
		return 1
	case ctypes.KindChar, ctypes.KindSChar, ctypes.KindUChar:
		return 2
	case ctypes.KindShort, ctypes.KindUShort:
		return 3
	case ctypes.KindInt, ctypes.KindUInt:
		return 4
	case ctypes.KindLong, ctypes.KindULong:
		return 5
	case ctypes.KindLongLong, ctypes.KindULongLong:
		return 6
	}
	return 0
}

// Arithmetic returns the common type of the usual arithmetic conversions.
// Both operands must be arithmetic.
func (t *Typer) Arithmetic(l, r ctypes.QualType) ctypes.QualType {
	in := t.types
	l, r = l.Unqualified(), r.Unqualified()
	lk, rk := in.KindOf(l), in.KindOf(r)
	for _, k := range []ctypes.Kind{ctypes.KindLongDouble, ctypes.KindDouble, ctypes.KindFloat} {
		if lk == k {
			return l
		}
		if rk == k {
			return r
		}
	}

	l, r = in.PromoteInteger(l), in.PromoteInteger(r)
	if in.SameType(l, r) {
		return l
	}
	lk, rk = in.KindOf(l), in.KindOf(r)
	lSigned, rSigned := in.IsSignedInteger(l), in.IsSignedInteger(r)
	if lSigned == rSigned {
		if rank(lk) >= rank(rk) {
			return l
		}
		return r
	}
	u, s := l, r
	if lSigned {
		u, s = r, l
	}
	switch {
	case rank(in.KindOf(u)) >= rank(in.KindOf(s)):
		return u
	case in.SizeBits(s) > in.SizeBits(u):
		return s
	default:
		return in.CorrespondingUnsigned(s).Unqualified()
	}
}

// convert returns the value of c after conversion to qt.
func (t *Typer) convert(c Const, qt ctypes.QualType) Const {
	in := t.types
	if in.KindOf(qt) == ctypes.KindBool {
		if c.Bits != 0 {
			return Const{Bits: 1}
		}
		return Const{}
	}
	bits := c.Bits
	signed := in.IsSignedInteger(qt)
	if w := in.SizeBits(qt); w > 0 && w < 64 {
		mask := uint64(1)<<w - 1
		bits &= mask
		if signed && bits>>(w-1)&1 == 1 {
			bits |= ^mask
		}
	}
	return Const{Bits: bits, Signed: signed}
}

// Int returns a constant operand of type qt holding v.
func (t *Typer) Int(v int64, qt ctypes.QualType) Operand {
	c := t.convert(Const{Bits: uint64(v), Signed: true}, qt)
	return Operand{Type: qt, Const: &c}
}
