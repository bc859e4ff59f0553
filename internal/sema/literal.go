package sema

import (
	"strings"
	"unicode/utf8"

	"fortio.org/safecast"

	"tartan/internal/ctypes"
	"tartan/internal/diag"
	"tartan/internal/lexer"
	"tartan/internal/source"
	"tartan/internal/token"
)

// IntLiteral types an integer constant: the first type of its candidate
// list that can hold the value, as C11 6.4.4.1 prescribes.
func (t *Typer) IntLiteral(tok token.Token) (Operand, error) {
	iv, err := lexer.ParseInt(tok.Text)
	if err != nil {
		return Invalid(tok.Span), errorf(diag.LexBadNumber, "%v", err)
	}
	in := t.types
	var candidates []ctypes.Kind
	switch {
	case iv.Unsigned && iv.Longs == 0:
		candidates = []ctypes.Kind{ctypes.KindUInt, ctypes.KindULong, ctypes.KindULongLong}
	case iv.Unsigned && iv.Longs == 1:
		candidates = []ctypes.Kind{ctypes.KindULong, ctypes.KindULongLong}
	case iv.Unsigned:
		candidates = []ctypes.Kind{ctypes.KindULongLong}
	case iv.Decimal && iv.Longs == 0:
		candidates = []ctypes.Kind{ctypes.KindInt, ctypes.KindLong, ctypes.KindLongLong}
	case iv.Decimal && iv.Longs == 1:
		candidates = []ctypes.Kind{ctypes.KindLong, ctypes.KindLongLong}
	case iv.Decimal:
		candidates = []ctypes.Kind{ctypes.KindLongLong}
	case iv.Longs == 0:
		candidates = []ctypes.Kind{ctypes.KindInt, ctypes.KindUInt, ctypes.KindLong, ctypes.KindULong, ctypes.KindLongLong, ctypes.KindULongLong}
	case iv.Longs == 1:
		candidates = []ctypes.Kind{ctypes.KindLong, ctypes.KindULong, ctypes.KindLongLong, ctypes.KindULongLong}
	default:
		candidates = []ctypes.Kind{ctypes.KindLongLong, ctypes.KindULongLong}
	}
	// без подходящего типа - unsigned long long, как делает clang
	qt := in.Builtin(ctypes.KindULongLong)
	for _, k := range candidates {
		cand := in.Builtin(k)
		if fits(iv.Value, in.SizeBits(cand), in.IsSignedInteger(cand)) {
			qt = cand
			break
		}
	}
	c := t.convert(Const{Bits: iv.Value}, qt)
	return Operand{Type: qt, Span: tok.Span, Const: &c}, nil
}

func fits(v uint64, width uint64, signed bool) bool {
	if signed {
		width--
	}
	if width >= 64 {
		return true
	}
	return v < uint64(1)<<width
}

// CharLiteral types a character constant. Plain and L constants are int,
// u and U constants are the unsigned 16 and 32 bit types.
func (t *Typer) CharLiteral(tok token.Token) (Operand, error) {
	v, err := lexer.DecodeChar(tok.Text)
	if err != nil {
		return Invalid(tok.Span), errorf(diag.LexBadEscape, "%v", err)
	}
	qt := t.intType()
	switch prefix, _ := lexer.SplitPrefix(tok.Text); prefix {
	case "u":
		qt = t.types.Builtin(ctypes.KindUShort)
	case "U":
		qt = t.types.Builtin(ctypes.KindUInt)
	}
	op := t.Int(v, qt)
	op.Span = tok.Span
	return op, nil
}

// FloatLiteral types a floating constant by its suffix.
func (t *Typer) FloatLiteral(tok token.Token) Operand {
	k := ctypes.KindDouble
	switch strings.ToLower(tok.Text[len(tok.Text)-1:]) {
	case "f":
		if !strings.HasPrefix(strings.ToLower(tok.Text), "0x") || strings.ContainsAny(tok.Text, "pP") {
			k = ctypes.KindFloat
		}
	case "l":
		k = ctypes.KindLongDouble
	}
	return Operand{Type: t.types.Builtin(k), Span: tok.Span}
}

// StringLiteral types a run of adjacent string literal tokens as one
// array lvalue of the joined value plus the terminating NUL.
func (t *Typer) StringLiteral(toks []token.Token) (Operand, error) {
	if len(toks) == 0 {
		return Invalid(source.Span{}), errorf(diag.SynExpectExpression, "expected string literal")
	}
	var sb strings.Builder
	prefix := ""
	span := toks[0].Span
	var firstErr error
	for _, tok := range toks {
		span = span.Cover(tok.Span)
		p, _ := lexer.SplitPrefix(tok.Text)
		if p != "" && p != "u8" {
			prefix = p
		}
		v, err := lexer.DecodeString(tok.Text)
		if err != nil && firstErr == nil {
			firstErr = errorf(diag.LexBadEscape, "%v", err)
		}
		sb.WriteString(v)
	}
	value := sb.String()

	elem := t.types.Builtin(ctypes.KindChar)
	count := len(value)
	switch prefix {
	case "L":
		elem, count = t.intType(), utf8.RuneCountInString(value)
	case "u":
		elem, count = t.types.Builtin(ctypes.KindUShort), utf8.RuneCountInString(value)
	case "U":
		elem, count = t.types.Builtin(ctypes.KindUInt), utf8.RuneCountInString(value)
	}
	n, err := safecast.Conv[uint32](count + 1)
	if err != nil || n == ctypes.ArrayUnknownLength {
		n = ctypes.ArrayUnknownLength - 1
	}
	return Operand{
		Type:    t.types.ArrayOf(elem, n),
		Span:    span,
		LValue:  true,
		Literal: &Literal{Value: value, Span: span, Prefix: prefix},
	}, firstErr
}
