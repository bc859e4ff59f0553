package sema

import (
	"tartan/internal/ctypes"
	"tartan/internal/source"
)

// Operand is the typed summary of one expression.
type Operand struct {
	Type   ctypes.QualType
	Span   source.Span
	LValue bool
	// Const holds the value of an integer constant expression.
	Const *Const
	// NullPtr marks a null pointer constant of pointer type: an integer
	// zero cast to void *, possibly through several casts.
	NullPtr bool
	// Literal is set for a string literal, seen through parentheses and
	// implicit conversions but not through casts.
	Literal *Literal
	// Invalid operands come from expressions that already produced a
	// diagnostic; operations on them stay invalid and quiet.
	Invalid bool
}

// Const is an integer constant in the width and signedness of its type.
// Signed values are kept sign-extended to 64 bits.
type Const struct {
	Bits   uint64
	Signed bool
}

// Negative reports whether c is below zero.
func (c Const) Negative() bool {
	return c.Signed && int64(c.Bits) < 0
}

// Literal is the decoded value of a string literal, adjacent literals
// joined.
type Literal struct {
	Value string
	Span  source.Span
	// Prefix is the encoding prefix of the literal (L, u, U, u8) or "".
	Prefix string
}

// Invalid returns an invalid operand covering span.
func Invalid(span source.Span) Operand {
	return Operand{Span: span, Invalid: true}
}

// IsNullPointerConstant reports whether x is an integer constant
// expression equal to zero or such a constant cast to void *.
func (t *Typer) IsNullPointerConstant(x Operand) bool {
	if x.Invalid {
		return false
	}
	if x.NullPtr {
		return true
	}
	return x.Const != nil && x.Const.Bits == 0 && t.types.IsInteger(x.Type)
}
