package gvariant

import (
	"tartan/internal/ctypes"
	"tartan/internal/source"
)

// Call is a call site as seen by the checker.
type Call struct {
	Callee string
	Span   source.Span
	Args   []Arg
}

// Arg is one argument expression. Type is the type after the implicit
// conversions the call applies: arguments matched by "..." carry their
// promoted type, fixed arguments the type of their parameter.
type Arg struct {
	Span source.Span
	Type ctypes.QualType
	// NullConst marks a null pointer constant: 0, FALSE, NULL, (void *) 0.
	NullConst bool
	// Int is set when the argument folds to an integer constant.
	Int *IntConst
	// Literal is set when the argument is a string literal once parentheses
	// and implicit conversions are looked through.
	Literal *StringLiteral
}

// IntConst is the value of an integer constant expression.
type IntConst struct {
	Value    uint64
	Negative bool
}

// StringLiteral is the decoded contents of a string literal, adjacent
// literals already joined.
type StringLiteral struct {
	Value string
	Span  source.Span
}
