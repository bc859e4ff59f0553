package sema

import (
	"tartan/internal/ctypes"
	"tartan/internal/diag"
	"tartan/internal/source"
	"tartan/internal/token"
)

// RValue applies lvalue conversion: arrays and functions decay to
// pointers, top-level qualifiers are dropped. Constants and literals are
// kept, since the conversion is implicit.
func (t *Typer) RValue(x Operand) Operand {
	if x.Invalid {
		return x
	}
	switch t.types.KindOf(x.Type) {
	case ctypes.KindArray, ctypes.KindFunction:
		x.Type = t.types.Decay(x.Type)
	default:
		x.Type = x.Type.Unqualified()
	}
	x.LValue = false
	return x
}

// Paren returns x as seen through parentheses spanning span.
func (t *Typer) Paren(x Operand, span source.Span) Operand {
	x.Span = span
	return x
}

// Unary types a prefix operator expression.
func (t *Typer) Unary(op token.Kind, x Operand, span source.Span) (Operand, error) {
	if x.Invalid {
		return Invalid(span), nil
	}
	in := t.types
	switch op {
	case token.Amp:
		return Operand{Type: in.PointerTo(x.Type), Span: span}, nil
	case token.Star:
		v := t.RValue(x)
		pointee, ok := in.Pointee(v.Type)
		if !ok {
			return Invalid(span), errorf(diag.SemaBadDereference,
				"indirection requires pointer operand (%s invalid)", in.Quoted(v.Type))
		}
		return Operand{Type: pointee, Span: span, LValue: true}, nil
	case token.PlusPlus, token.MinusMinus:
		return Operand{Type: t.RValue(x).Type, Span: span}, nil
	}

	v := t.RValue(x)
	switch op {
	case token.Bang:
		if !in.IsScalar(v.Type) {
			return Invalid(span), t.badUnary(op, v)
		}
		res := Operand{Type: t.intType(), Span: span}
		if v.Const != nil {
			res.Const = &Const{Signed: true}
			if v.Const.Bits == 0 {
				res.Const.Bits = 1
			}
		}
		return res, nil
	case token.Plus, token.Minus, token.Tilde:
		if !in.IsArithmetic(v.Type) || (op == token.Tilde && !in.IsInteger(v.Type)) {
			return Invalid(span), t.badUnary(op, v)
		}
		rt := in.PromoteInteger(v.Type)
		res := Operand{Type: rt, Span: span}
		if v.Const != nil {
			c := t.convert(*v.Const, rt)
			switch op {
			case token.Minus:
				c.Bits = -c.Bits
			case token.Tilde:
				c.Bits = ^c.Bits
			}
			c = t.convert(c, rt)
			res.Const = &c
		}
		return res, nil
	}
	return Invalid(span), t.badUnary(op, v)
}

func (t *Typer) badUnary(op token.Kind, x Operand) error {
	return errorf(diag.SemaBadOperands, "invalid argument type %s to unary expression '%s'",
		t.types.Quoted(x.Type), opText(op))
}

// Postfix types x++ and x--.
func (t *Typer) Postfix(x Operand, span source.Span) Operand {
	if x.Invalid {
		return Invalid(span)
	}
	return Operand{Type: t.RValue(x).Type, Span: span}
}

// Binary types a binary operator expression other than assignment.
func (t *Typer) Binary(op token.Kind, l, r Operand, span source.Span) (Operand, error) {
	if l.Invalid || r.Invalid {
		return Invalid(span), nil
	}
	in := t.types
	l, r = t.RValue(l), t.RValue(r)
	bothArith := in.IsArithmetic(l.Type) && in.IsArithmetic(r.Type)
	bothInt := in.IsInteger(l.Type) && in.IsInteger(r.Type)

	switch op {
	case token.Comma:
		return Operand{Type: r.Type, Span: span}, nil

	case token.AndAnd, token.OrOr:
		if !in.IsScalar(l.Type) || !in.IsScalar(r.Type) {
			return Invalid(span), t.badBinary(l, r)
		}
		res := Operand{Type: t.intType(), Span: span}
		if l.Const != nil && r.Const != nil {
			lv, rv := l.Const.Bits != 0, r.Const.Bits != 0
			v := lv && rv
			if op == token.OrOr {
				v = lv || rv
			}
			res.Const = boolConst(v)
		}
		return res, nil

	case token.EqEq, token.BangEq, token.Lt, token.LtEq, token.Gt, token.GtEq:
		res := Operand{Type: t.intType(), Span: span}
		switch {
		case bothArith:
			ct := t.Arithmetic(l.Type, r.Type)
			if l.Const != nil && r.Const != nil && in.IsInteger(ct) {
				res.Const = boolConst(compare(op, t.convert(*l.Const, ct), t.convert(*r.Const, ct)))
			}
		case in.IsPointer(l.Type) && (in.IsPointer(r.Type) || in.IsInteger(r.Type)),
			in.IsPointer(r.Type) && in.IsInteger(l.Type):
		default:
			return Invalid(span), t.badBinary(l, r)
		}
		return res, nil

	case token.Shl, token.Shr:
		if !bothInt {
			return Invalid(span), t.badBinary(l, r)
		}
		rt := in.PromoteInteger(l.Type)
		res := Operand{Type: rt, Span: span}
		if l.Const != nil && r.Const != nil && !r.Const.Negative() && r.Const.Bits < in.SizeBits(rt) {
			lc := t.convert(*l.Const, rt)
			var c Const
			switch {
			case op == token.Shl:
				c = Const{Bits: lc.Bits << r.Const.Bits}
			case lc.Signed:
				c = Const{Bits: uint64(int64(lc.Bits) >> r.Const.Bits)}
			default:
				c = Const{Bits: lc.Bits >> r.Const.Bits}
			}
			c = t.convert(c, rt)
			res.Const = &c
		}
		return res, nil

	case token.Plus, token.Minus:
		if !bothArith {
			return t.pointerArith(op, l, r, span)
		}
		fallthrough
	case token.Star, token.Slash:
		if !bothArith {
			return Invalid(span), t.badBinary(l, r)
		}
		return t.arith(op, l, r, span), nil

	case token.Percent, token.Amp, token.Pipe, token.Caret:
		if !bothInt {
			return Invalid(span), t.badBinary(l, r)
		}
		return t.arith(op, l, r, span), nil
	}
	return Invalid(span), t.badBinary(l, r)
}

func (t *Typer) arith(op token.Kind, l, r Operand, span source.Span) Operand {
	rt := t.Arithmetic(l.Type, r.Type)
	res := Operand{Type: rt, Span: span}
	if l.Const == nil || r.Const == nil || !t.types.IsInteger(rt) {
		return res
	}
	a, b := t.convert(*l.Const, rt), t.convert(*r.Const, rt)
	var v uint64
	switch op {
	case token.Plus:
		v = a.Bits + b.Bits
	case token.Minus:
		v = a.Bits - b.Bits
	case token.Star:
		v = a.Bits * b.Bits
	case token.Amp:
		v = a.Bits & b.Bits
	case token.Pipe:
		v = a.Bits | b.Bits
	case token.Caret:
		v = a.Bits ^ b.Bits
	case token.Slash, token.Percent:
		if b.Bits == 0 {
			return res
		}
		switch {
		case a.Signed && op == token.Slash:
			v = uint64(int64(a.Bits) / int64(b.Bits))
		case a.Signed:
			v = uint64(int64(a.Bits) % int64(b.Bits))
		case op == token.Slash:
			v = a.Bits / b.Bits
		default:
			v = a.Bits % b.Bits
		}
	}
	c := t.convert(Const{Bits: v}, rt)
	res.Const = &c
	return res
}

func (t *Typer) pointerArith(op token.Kind, l, r Operand, span source.Span) (Operand, error) {
	in := t.types
	switch {
	case in.IsPointer(l.Type) && in.IsInteger(r.Type):
		return Operand{Type: l.Type, Span: span}, nil
	case op == token.Plus && in.IsInteger(l.Type) && in.IsPointer(r.Type):
		return Operand{Type: r.Type, Span: span}, nil
	case op == token.Minus && in.IsPointer(l.Type) && in.IsPointer(r.Type):
		return Operand{Type: t.PtrDiffType(), Span: span}, nil
	}
	return Invalid(span), t.badBinary(l, r)
}

func (t *Typer) badBinary(l, r Operand) error {
	return errorf(diag.SemaBadOperands, "invalid operands to binary expression (%s and %s)",
		t.types.Quoted(l.Type), t.types.Quoted(r.Type))
}

func compare(op token.Kind, a, b Const) bool {
	if op == token.EqEq {
		return a.Bits == b.Bits
	}
	if op == token.BangEq {
		return a.Bits != b.Bits
	}
	var less, equal bool
	equal = a.Bits == b.Bits
	if a.Signed {
		less = int64(a.Bits) < int64(b.Bits)
	} else {
		less = a.Bits < b.Bits
	}
	switch op {
	case token.Lt:
		return less
	case token.LtEq:
		return less || equal
	case token.Gt:
		return !less && !equal
	default:
		return !less
	}
}

func boolConst(v bool) *Const {
	c := &Const{Signed: true}
	if v {
		c.Bits = 1
	}
	return c
}

// Assign types an assignment or compound assignment. The result has the
// type of the left operand after lvalue conversion and is never constant.
func (t *Typer) Assign(l, r Operand, span source.Span) Operand {
	if l.Invalid || r.Invalid {
		return Invalid(span)
	}
	return Operand{Type: l.Type.Unqualified(), Span: span}
}

// Conditional types c ? a : b.
func (t *Typer) Conditional(c, a, b Operand, span source.Span) Operand {
	if c.Invalid || a.Invalid || b.Invalid {
		return Invalid(span)
	}
	in := t.types
	a, b = t.RValue(a), t.RValue(b)
	res := Operand{Type: a.Type, Span: span}
	switch {
	case in.IsArithmetic(a.Type) && in.IsArithmetic(b.Type):
		res.Type = t.Arithmetic(a.Type, b.Type)
	case in.IsPointer(a.Type) && t.IsNullPointerConstant(b):
	case in.IsPointer(b.Type) && t.IsNullPointerConstant(a):
		res.Type = b.Type
	case in.IsPointer(a.Type) && in.IsPointer(b.Type):
		// void * с любой стороны даёт void *
		if pb, _ := in.Pointee(b.Type); in.IsVoid(pb) {
			res.Type = b.Type
		}
	}
	if c.Const != nil {
		pick := b
		if c.Const.Bits != 0 {
			pick = a
		}
		if pick.Const != nil && in.IsInteger(res.Type) {
			v := t.convert(*pick.Const, res.Type)
			res.Const = &v
		}
		res.NullPtr = pick.NullPtr
	}
	return res
}

// Cast types (to) x. Integer constants are converted to the target type;
// a null pointer constant cast to void * stays one.
func (t *Typer) Cast(to ctypes.QualType, x Operand, span source.Span) Operand {
	if x.Invalid {
		return Invalid(span)
	}
	in := t.types
	to = to.Unqualified()
	res := Operand{Type: to, Span: span}
	v := t.RValue(x)
	switch {
	case in.IsInteger(to) && v.Const != nil:
		c := t.convert(*v.Const, to)
		res.Const = &c
	case in.IsPointer(to) && t.IsNullPointerConstant(v):
		if pointee, _ := in.Pointee(to); in.IsVoid(pointee) {
			res.NullPtr = true
		}
	}
	return res
}

// SizeOf types sizeof applied to qt. Incomplete types give a non-constant
// result.
func (t *Typer) SizeOf(qt ctypes.QualType, span source.Span) Operand {
	st := t.SizeType()
	bits := t.types.SizeBits(qt)
	if bits == 0 {
		return Operand{Type: st, Span: span}
	}
	c := t.convert(Const{Bits: bits / 8}, st)
	return Operand{Type: st, Span: span, Const: &c}
}

// Index types base[idx]; either operand may be the pointer.
func (t *Typer) Index(base, idx Operand, span source.Span) (Operand, error) {
	if base.Invalid || idx.Invalid {
		return Invalid(span), nil
	}
	in := t.types
	b, i := t.RValue(base), t.RValue(idx)
	if !in.IsPointer(b.Type) {
		b, i = i, b
	}
	elem, ok := in.Pointee(b.Type)
	if !ok || !in.IsInteger(i.Type) {
		return Invalid(span), errorf(diag.SemaNotSubscript, "subscripted value is not an array or pointer")
	}
	return Operand{Type: elem, Span: span, LValue: true}, nil
}

// Member types base.name, or base->name when arrow is set.
func (t *Typer) Member(base Operand, name string, arrow bool, span source.Span) (Operand, error) {
	if base.Invalid {
		return Invalid(span), nil
	}
	in := t.types
	rec := base.Type
	lvalue := base.LValue
	if arrow {
		pointee, ok := in.Pointee(t.RValue(base).Type)
		if !ok {
			return Invalid(span), errorf(diag.SemaNotRecord,
				"member reference type %s is not a pointer", in.Quoted(t.RValue(base).Type))
		}
		rec, lvalue = pointee, true
	}
	if in.KindOf(rec) != ctypes.KindRecord {
		return Invalid(span), errorf(diag.SemaNotRecord,
			"member reference base type %s is not a structure or union", in.Quoted(rec))
	}
	field, ok := in.Member(rec, name)
	if !ok {
		return Invalid(span), errorf(diag.SemaNoMember, "no member named '%s' in %s", name, in.Quoted(rec))
	}
	// квалификаторы объекта переходят на поле
	field = field.WithQuals(in.Desugar(rec).Quals)
	return Operand{Type: field, Span: span, LValue: lvalue}, nil
}

// ArgType returns the type an argument has once passed: the parameter
// type for a prototyped parameter, the default argument promotions
// otherwise.
func (t *Typer) ArgType(x Operand, param *ctypes.QualType) ctypes.QualType {
	if param != nil {
		return param.Unqualified()
	}
	return t.types.PromoteVariadic(t.RValue(x).Type)
}

// AdjustParam applies the parameter type adjustments of a prototype:
// arrays and functions become pointers, top-level qualifiers go.
func (t *Typer) AdjustParam(qt ctypes.QualType) ctypes.QualType {
	switch t.types.KindOf(qt) {
	case ctypes.KindArray, ctypes.KindFunction:
		return t.types.Decay(qt)
	}
	return qt.Unqualified()
}

func opText(op token.Kind) string {
	switch op {
	case token.Bang:
		return "!"
	case token.Tilde:
		return "~"
	case token.Minus:
		return "-"
	case token.Plus:
		return "+"
	case token.Star:
		return "*"
	case token.Amp:
		return "&"
	}
	return op.String()
}
