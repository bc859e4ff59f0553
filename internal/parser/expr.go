package parser

import (
	"fmt"

	"fortio.org/safecast"

	"tartan/internal/ctypes"
	"tartan/internal/diag"
	"tartan/internal/sema"
	"tartan/internal/source"
	"tartan/internal/symbols"
	"tartan/internal/token"
)

// Все parseX ниже возвращают (операнд, ok). ok == false означает
// синтаксическую ошибку, о которой уже сообщено; семантические ошибки
// дают ok == true и недействительный операнд.

// parseExpr разбирает выражение с запятой.
func (p *Parser) parseExpr() (sema.Operand, bool) {
	lhs, ok := p.parseAssign()
	if !ok {
		return lhs, false
	}
	for p.at(token.Comma) {
		p.advance()
		rhs, ok := p.parseAssign()
		if !ok {
			return rhs, false
		}
		lhs = p.binary(token.Comma, lhs, rhs)
	}
	return lhs, true
}

// parseAssign разбирает присваивание (правоассоциативно).
func (p *Parser) parseAssign() (sema.Operand, bool) {
	lhs, ok := p.parseConditional()
	if !ok {
		return lhs, false
	}
	if !isAssignOp(p.peek().Kind) {
		return lhs, true
	}
	op := p.advance()
	rhs, ok := p.parseAssign()
	if !ok {
		return rhs, false
	}
	span := lhs.Span.Cover(rhs.Span)
	if bin, compound := compoundAssignOp(op.Kind); compound {
		// ошибки типов в "a op= b" те же, что и в "a op b"
		p.binary(bin, lhs, rhs)
	}
	return p.typer.Assign(lhs, rhs, span), true
}

// parseConditional разбирает c ? a : b, включая GNU форму c ?: b.
func (p *Parser) parseConditional() (sema.Operand, bool) {
	cond, ok := p.parseBinary(precLogicalOr)
	if !ok {
		return cond, false
	}
	if !p.at(token.Question) {
		return cond, true
	}
	p.advance()
	then := cond
	if !p.at(token.Colon) {
		then, ok = p.parseExpr()
		if !ok {
			return then, false
		}
	}
	if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken, "expected ':'"); !ok {
		return sema.Operand{}, false
	}
	els, ok := p.parseConditional()
	if !ok {
		return els, false
	}
	return p.typer.Conditional(cond, then, els, cond.Span.Cover(els.Span)), true
}

// parseBinary - precedence climbing по таблице из op_table.go.
func (p *Parser) parseBinary(minPrec int) (sema.Operand, bool) {
	lhs, ok := p.parseCast()
	if !ok {
		return lhs, false
	}
	for {
		op := p.peek().Kind
		prec := p.getBinaryOperatorPrec(op)
		if prec < minPrec {
			return lhs, true
		}
		p.advance()
		rhs, ok := p.parseBinary(prec + 1)
		if !ok {
			return rhs, false
		}
		lhs = p.binary(op, lhs, rhs)
	}
}

func (p *Parser) binary(op token.Kind, lhs, rhs sema.Operand) sema.Operand {
	span := lhs.Span.Cover(rhs.Span)
	x, err := p.typer.Binary(op, lhs, rhs, span)
	p.semaError(err, span)
	return x
}

// parseCast разбирает приведение типа, составной литерал или унарное выражение.
func (p *Parser) parseCast() (sema.Operand, bool) {
	if !p.at(token.LParen) || !p.startsTypeName(p.peekN(1)) {
		return p.parseUnary()
	}
	open := p.advance()
	qt, ok := p.parseTypeName()
	if !ok {
		return sema.Operand{}, false
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'"); !ok {
		return sema.Operand{}, false
	}
	if p.at(token.LBrace) {
		lit, ok := p.parseCompoundLiteral(qt, open)
		if !ok {
			return lit, false
		}
		return p.parsePostfix(lit)
	}
	x, ok := p.parseCast()
	if !ok {
		return x, false
	}
	return p.typer.Cast(qt, x, open.Span.Cover(x.Span)), true
}

// parseCompoundLiteral разбирает "(T){ ... }".
func (p *Parser) parseCompoundLiteral(qt ctypes.QualType, open token.Token) (sema.Operand, bool) {
	count, ok := p.parseInitList()
	if !ok {
		return sema.Operand{}, false
	}
	if p.isUnsizedArray(qt) {
		elem, _ := p.types.Element(qt)
		if n, ok := toCount(count); ok {
			qt = p.types.ArrayOf(elem, n)
		}
	}
	return sema.Operand{Type: qt, Span: open.Span.Cover(p.lastSpan), LValue: true}, true
}

// parseUnary разбирает префиксные операторы и sizeof.
func (p *Parser) parseUnary() (sema.Operand, bool) {
	tok := p.peek()
	switch {
	case tok.Kind == token.PlusPlus || tok.Kind == token.MinusMinus:
		p.advance()
		x, ok := p.parseUnary()
		if !ok {
			return x, false
		}
		return p.unary(tok, x), true
	case isUnaryOp(tok.Kind):
		p.advance()
		x, ok := p.parseCast()
		if !ok {
			return x, false
		}
		return p.unary(tok, x), true
	case tok.Kind == token.AndAnd:
		// GNU &&label
		p.advance()
		label, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected identifier")
		if !ok {
			return sema.Operand{}, false
		}
		void := p.types.Builtin(ctypes.KindVoid)
		return sema.Operand{Type: p.types.PointerTo(void), Span: tok.Span.Cover(label.Span)}, true
	case tok.Kind == token.KwSizeof:
		return p.parseSizeof(false)
	case tok.Kind == token.Ident && (tok.Text == "__alignof__" || tok.Text == "_Alignof" || tok.Text == "__alignof"):
		return p.parseSizeof(true)
	case tok.Kind == token.Ident && tok.Text == "__extension__":
		p.advance()
		return p.parseCast()
	}
	x, ok := p.parsePrimary()
	if !ok {
		return x, false
	}
	return p.parsePostfix(x)
}

func (p *Parser) unary(op token.Token, x sema.Operand) sema.Operand {
	span := op.Span.Cover(x.Span)
	res, err := p.typer.Unary(op.Kind, x, span)
	p.semaError(err, span)
	return res
}

// parseSizeof разбирает sizeof и alignof: операнд-тип или выражение
// без преобразования массивов в указатели. Значение alignof не вычисляется.
func (p *Parser) parseSizeof(alignof bool) (sema.Operand, bool) {
	kw := p.advance()
	if p.at(token.LParen) && p.startsTypeName(p.peekN(1)) {
		p.advance()
		qt, ok := p.parseTypeName()
		if !ok {
			return sema.Operand{}, false
		}
		if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'"); !ok {
			return sema.Operand{}, false
		}
		if p.at(token.LBrace) {
			// sizeof (T){ ... }
			lit, ok := p.parseCompoundLiteral(qt, kw)
			if !ok {
				return lit, false
			}
			lit, ok = p.parsePostfix(lit)
			if !ok {
				return lit, false
			}
			return p.sizeofOperand(kw, lit, alignof), true
		}
		if alignof {
			return sema.Operand{Type: p.typer.SizeType(), Span: kw.Span.Cover(p.lastSpan)}, true
		}
		return p.typer.SizeOf(qt, kw.Span.Cover(p.lastSpan)), true
	}
	x, ok := p.parseUnary()
	if !ok {
		return x, false
	}
	return p.sizeofOperand(kw, x, alignof), true
}

func (p *Parser) sizeofOperand(kw token.Token, x sema.Operand, alignof bool) sema.Operand {
	span := kw.Span.Cover(x.Span)
	if x.Invalid || alignof {
		return sema.Operand{Type: p.typer.SizeType(), Span: span}
	}
	return p.typer.SizeOf(x.Type, span)
}

// parsePostfix разбирает цепочку [], (), ., ->, ++, -- после первичного выражения.
func (p *Parser) parsePostfix(x sema.Operand) (sema.Operand, bool) {
	for {
		tok := p.peek()
		switch tok.Kind {
		case token.LBracket:
			p.advance()
			idx, ok := p.parseExpr()
			if !ok {
				return idx, false
			}
			if _, ok := p.expect(token.RBracket, diag.SynUnclosedBracket, "expected ']'"); !ok {
				return sema.Operand{}, false
			}
			span := x.Span.Cover(p.lastSpan)
			res, err := p.typer.Index(x, idx, span)
			p.semaError(err, span)
			x = res
		case token.LParen:
			res, ok := p.parseCall(x)
			if !ok {
				return res, false
			}
			x = res
		case token.Dot, token.Arrow:
			p.advance()
			name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected identifier")
			if !ok {
				return sema.Operand{}, false
			}
			span := x.Span.Cover(name.Span)
			res, err := p.typer.Member(x, name.Text, tok.Kind == token.Arrow, span)
			p.semaError(err, span)
			x = res
		case token.PlusPlus, token.MinusMinus:
			p.advance()
			x = p.typer.Postfix(x, x.Span.Cover(tok.Span))
		default:
			return x, true
		}
	}
}

// parsePrimary разбирает идентификаторы, литералы и скобки.
func (p *Parser) parsePrimary() (sema.Operand, bool) {
	tok := p.peek()
	switch tok.Kind {
	case token.Ident:
		return p.parseIdent()
	case token.IntLit:
		p.advance()
		x, err := p.typer.IntLiteral(tok)
		p.semaError(err, tok.Span)
		return x, true
	case token.CharLit:
		p.advance()
		x, err := p.typer.CharLiteral(tok)
		p.semaError(err, tok.Span)
		return x, true
	case token.FloatLit:
		p.advance()
		return p.typer.FloatLiteral(tok), true
	case token.StringLit:
		toks := []token.Token{p.advance()}
		for p.at(token.StringLit) {
			toks = append(toks, p.advance())
		}
		x, err := p.typer.StringLiteral(toks)
		p.semaError(err, x.Span)
		return x, true
	case token.LParen:
		open := p.advance()
		if p.at(token.LBrace) {
			return p.parseStatementExpr(open)
		}
		x, ok := p.parseExpr()
		if !ok {
			return x, false
		}
		if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'"); !ok {
			return sema.Operand{}, false
		}
		return p.typer.Paren(x, open.Span.Cover(p.lastSpan)), true
	default:
		p.err(diag.SynExpectExpression, "expected expression")
		return sema.Operand{}, false
	}
}

// parseIdent разбирает идентификатор в выражении.
func (p *Parser) parseIdent() (sema.Operand, bool) {
	tok := p.peek()
	switch tok.Text {
	case "__func__", "__FUNCTION__", "__PRETTY_FUNCTION__":
		p.advance()
		return p.funcNameOperand(tok), true
	case "__builtin_va_arg":
		return p.parseVaArg()
	case "__builtin_offsetof":
		if p.peekN(1).Kind == token.LParen {
			return p.parseOffsetof()
		}
	case "__builtin_types_compatible_p":
		return p.parseTypesCompatible()
	}
	p.advance()

	sym, ok := p.res.Lookup(tok.Text)
	if !ok {
		if p.at(token.LParen) {
			return p.implicitFunction(tok), true
		}
		p.report(diag.SemaUndeclaredIdent, diag.SevError, tok.Span,
			fmt.Sprintf("use of undeclared identifier '%s'", tok.Text))
		return sema.Invalid(tok.Span), true
	}
	switch sym.Kind {
	case symbols.SymbolTypedef:
		p.report(diag.SynExpectExpression, diag.SevError, tok.Span,
			fmt.Sprintf("unexpected type name '%s': expected expression", tok.Text))
		return sema.Invalid(tok.Span), true
	case symbols.SymbolEnumConst:
		return withSpan(p.typer.Int(sym.Value, sym.Type), tok.Span), true
	case symbols.SymbolFunction:
		p.direct = directRef{name: tok.Text, span: tok.Span}
		return sema.Operand{Type: sym.Type, Span: tok.Span}, true
	default:
		return sema.Operand{Type: sym.Type, Span: tok.Span, LValue: true}, true
	}
}

// implicitFunction declares name as "int name()" at file scope, as C89
// does for a call to an undeclared function.
func (p *Parser) implicitFunction(tok token.Token) sema.Operand {
	qt := p.types.Function(ctypes.FuncInfo{Result: p.types.Builtin(ctypes.KindInt), NoProto: true})
	p.res.DeclareFile(symbols.Symbol{
		Name:  tok.Text,
		Kind:  symbols.SymbolFunction,
		Span:  tok.Span,
		Flags: p.declFlags(symbols.SymbolFlagImplicit | symbols.SymbolFlagExtern),
		Type:  qt,
	})
	p.direct = directRef{name: tok.Text, span: tok.Span}
	return sema.Operand{Type: qt, Span: tok.Span}
}

// funcNameOperand types __func__: a static const char array holding the
// enclosing function name.
func (p *Parser) funcNameOperand(tok token.Token) sema.Operand {
	char := p.types.Builtin(ctypes.KindChar).WithQuals(ctypes.QualConst)
	n, _ := toCount(uint64(len(p.funcName)) + 1)
	return sema.Operand{Type: p.types.ArrayOf(char, n), Span: tok.Span, LValue: true}
}

// parseVaArg разбирает __builtin_va_arg(ap, type).
func (p *Parser) parseVaArg() (sema.Operand, bool) {
	kw := p.advance()
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '('"); !ok {
		return sema.Operand{}, false
	}
	if _, ok := p.parseAssign(); !ok {
		return sema.Operand{}, false
	}
	if _, ok := p.expect(token.Comma, diag.SynUnexpectedToken, "expected ','"); !ok {
		return sema.Operand{}, false
	}
	qt, ok := p.parseTypeName()
	if !ok {
		return sema.Operand{}, false
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'"); !ok {
		return sema.Operand{}, false
	}
	return sema.Operand{Type: qt.Unqualified(), Span: kw.Span.Cover(p.lastSpan)}, true
}

// parseOffsetof разбирает __builtin_offsetof(type, member); значение не
// вычисляется.
func (p *Parser) parseOffsetof() (sema.Operand, bool) {
	kw := p.advance()
	p.advance()
	if _, ok := p.parseTypeName(); !ok {
		return sema.Operand{}, false
	}
	if _, ok := p.expect(token.Comma, diag.SynUnexpectedToken, "expected ','"); !ok {
		return sema.Operand{}, false
	}
	p.resyncUntil(token.RParen, token.Semicolon)
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'"); !ok {
		return sema.Operand{}, false
	}
	return sema.Operand{Type: p.typer.SizeType(), Span: kw.Span.Cover(p.lastSpan)}, true
}

// parseTypesCompatible разбирает __builtin_types_compatible_p(T1, T2).
func (p *Parser) parseTypesCompatible() (sema.Operand, bool) {
	kw := p.advance()
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '('"); !ok {
		return sema.Operand{}, false
	}
	a, ok := p.parseTypeName()
	if !ok {
		return sema.Operand{}, false
	}
	if _, ok := p.expect(token.Comma, diag.SynUnexpectedToken, "expected ','"); !ok {
		return sema.Operand{}, false
	}
	b, ok := p.parseTypeName()
	if !ok {
		return sema.Operand{}, false
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'"); !ok {
		return sema.Operand{}, false
	}
	var v int64
	if p.types.SameType(a.Unqualified(), b.Unqualified()) {
		v = 1
	}
	return withSpan(p.typer.Int(v, p.types.Builtin(ctypes.KindInt)), kw.Span.Cover(p.lastSpan)), true
}

// parseStatementExpr разбирает GNU "({ ... })". Значение - последнее
// выражение-оператор блока.
func (p *Parser) parseStatementExpr(open token.Token) (sema.Operand, bool) {
	scope := p.res.Enter(symbols.ScopeBlock, p.peek().Span)
	last, hasValue := p.parseCompoundBody()
	p.res.Leave(scope)
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'"); !ok {
		return sema.Operand{}, false
	}
	span := open.Span.Cover(p.lastSpan)
	if !hasValue {
		return sema.Operand{Type: p.types.Builtin(ctypes.KindVoid), Span: span}, true
	}
	if last.Invalid {
		return sema.Invalid(span), true
	}
	return sema.Operand{Type: p.typer.RValue(last).Type, Span: span}, true
}

func withSpan(x sema.Operand, span source.Span) sema.Operand {
	x.Span = span
	return x
}

// toCount converts an element count to an array length.
func toCount(n uint64) (uint32, bool) {
	c, err := safecast.Conv[uint32](n)
	if err != nil || c == ctypes.ArrayUnknownLength {
		return 0, false
	}
	return c, true
}
