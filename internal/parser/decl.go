package parser

import (
	"fmt"

	"tartan/internal/ctypes"
	"tartan/internal/diag"
	"tartan/internal/symbols"
	"tartan/internal/token"
)

func (p *Parser) declFlags(flags symbols.SymbolFlags) symbols.SymbolFlags {
	if p.prelude {
		flags |= symbols.SymbolFlagPrelude
	}
	return flags
}

// parseExternalDecl разбирает объявление или определение функции на
// верхнем уровне.
func (p *Parser) parseExternalDecl() bool {
	if p.atIdent("_Static_assert") {
		return p.parseStaticAssert()
	}
	spec, ok := p.parseDeclSpecs()
	if !ok {
		if !p.at(token.Ident) || p.peekN(1).Kind == token.Semicolon {
			p.err(diag.SynUnexpectedToken, "expected external declaration")
			return false
		}
		// неявный int: "main(void) { ... }"
		p.warn(diag.SynExpectType, "type specifier missing, defaults to 'int'")
		spec = declSpec{typ: p.types.Builtin(ctypes.KindInt), span: p.peek().Span}
	}
	return p.parseInitDeclarators(spec, true)
}

// parseDeclaration разбирает объявление внутри блока.
func (p *Parser) parseDeclaration() bool {
	if p.atIdent("_Static_assert") {
		return p.parseStaticAssert()
	}
	spec, ok := p.parseDeclSpecs()
	if !ok {
		p.err(diag.SynExpectType, "expected a type")
		return false
	}
	return p.parseInitDeclarators(spec, false)
}

// parseInitDeclarators разбирает список деклараторов с инициализаторами
// после спецификаторов. На верхнем уровне первый декларатор функции может
// начинать её определение.
func (p *Parser) parseInitDeclarators(spec declSpec, top bool) bool {
	if p.at(token.Semicolon) {
		p.advance() // "struct x { ... };"
		return true
	}
	first := true
	for {
		d, ok := p.parseDeclarator(declNamed)
		if !ok {
			return false
		}
		qt := d.apply(p, spec.typ)
		isFunc := p.types.KindOf(qt) == ctypes.KindFunction
		if first && top && isFunc && d.params != nil && spec.storage != token.KwTypedef &&
			(p.at(token.LBrace) || (d.params.knr && !p.at(token.Semicolon) && !p.at(token.Comma))) {
			return p.parseFunctionDef(spec, d, qt)
		}
		first = false

		id, declared := p.declare(spec, d, qt, p.at(token.Assign))
		if p.at(token.Assign) {
			p.advance()
			count, ok := p.parseInitializer()
			if !ok {
				return false
			}
			if declared && p.isUnsizedArray(qt) && count > 0 {
				elem, _ := p.types.Element(qt)
				if n, ok := toCount(count); ok {
					p.res.Table().Symbol(id).Type = p.types.ArrayOf(elem, n)
				}
			}
		}
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after declaration"); !ok {
		return false
	}
	return true
}

func (p *Parser) isUnsizedArray(qt ctypes.QualType) bool {
	tt, ok := p.types.Lookup(p.types.Desugar(qt).ID)
	return ok && tt.Kind == ctypes.KindArray && tt.Count == ctypes.ArrayUnknownLength
}

// declare installs the name introduced by d.
func (p *Parser) declare(spec declSpec, d *declarator, qt ctypes.QualType, initialised bool) (symbols.SymbolID, bool) {
	sym := symbols.Symbol{Name: d.name.Text, Span: d.name.Span, Type: qt}
	switch {
	case spec.storage == token.KwTypedef:
		sym.Kind = symbols.SymbolTypedef
		sym.Type = p.types.RegisterTypedef(d.name.Text, qt)
	case p.types.KindOf(qt) == ctypes.KindFunction:
		sym.Kind = symbols.SymbolFunction
		sym.Flags = symbols.SymbolFlagExtern
	default:
		sym.Kind = symbols.SymbolVar
	}
	switch spec.storage {
	case token.KwExtern:
		sym.Flags |= symbols.SymbolFlagExtern
	case token.KwStatic:
		sym.Flags |= symbols.SymbolFlagStatic
	}
	if initialised {
		sym.Flags |= symbols.SymbolFlagDefined
	}
	sym.Flags = p.declFlags(sym.Flags)
	return p.res.Declare(sym)
}

// parseFunctionDef разбирает тело функции. Параметры и внешний блок
// тела образуют одну область видимости.
func (p *Parser) parseFunctionDef(spec declSpec, d *declarator, qt ctypes.QualType) bool {
	params := d.params
	if params.knr && !p.parseKnRDecls(params) {
		return false
	}
	p.declare(spec, d, qt, true)

	if !p.at(token.LBrace) {
		p.err(diag.SynUnexpectedToken, "expected function body after function declarator")
		return false
	}
	scope := p.res.Enter(symbols.ScopeFunction, p.peek().Span)
	defer p.res.Leave(scope)
	for _, prm := range params.params {
		if prm.name.Kind != token.Ident {
			continue
		}
		p.res.Declare(symbols.Symbol{
			Name:  prm.name.Text,
			Kind:  symbols.SymbolParam,
			Span:  prm.name.Span,
			Flags: p.declFlags(0),
			Type:  prm.typ,
		})
	}

	saved := p.funcName
	p.funcName = d.name.Text
	defer func() { p.funcName = saved }()
	p.parseCompoundBody()
	return true
}

// parseKnRDecls разбирает объявления параметров старого стиля между ")" и "{".
func (p *Parser) parseKnRDecls(fn *funcSuffix) bool {
	for !p.at(token.LBrace) && !p.at(token.EOF) {
		spec, ok := p.parseDeclSpecs()
		if !ok {
			p.err(diag.SynExpectType, "expected a type")
			return false
		}
		for {
			d, ok := p.parseDeclarator(declNamed)
			if !ok {
				return false
			}
			qt := p.typer.AdjustParam(d.apply(p, spec.typ))
			found := false
			for i := range fn.params {
				if fn.params[i].name.Text == d.name.Text {
					fn.params[i].typ = qt
					found = true
				}
			}
			if !found {
				p.report(diag.SemaInfo, diag.SevError, d.name.Span,
					fmt.Sprintf("parameter named '%s' is missing", d.name.Text))
			}
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
		if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' at end of declaration"); !ok {
			return false
		}
	}
	return true
}

// parseInitializer разбирает инициализатор и возвращает число элементов,
// нужное для массива неизвестной длины: длину строки или число элементов
// списка. Для прочих случаев возвращает 0.
func (p *Parser) parseInitializer() (uint64, bool) {
	if !p.at(token.LBrace) {
		x, ok := p.parseAssign()
		if !ok {
			return 0, false
		}
		if x.Literal != nil {
			if n, ok := p.types.Lookup(p.types.Desugar(x.Type).ID); ok && n.Kind == ctypes.KindArray {
				return uint64(n.Count), true
			}
		}
		return 0, true
	}
	return p.parseInitList()
}

// parseInitList разбирает "{ ... }" с десигнаторами.
func (p *Parser) parseInitList() (uint64, bool) {
	p.advance()
	var index, count uint64
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		designated := false
		for p.at_or(token.Dot, token.LBracket) {
			designated = true
			if p.at(token.Dot) {
				p.advance()
				if _, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected a field designator"); !ok {
					return 0, false
				}
				continue
			}
			p.advance()
			x, ok := p.parseConditional()
			if !ok {
				return 0, false
			}
			if c := p.typer.RValue(x).Const; c != nil && !c.Negative() {
				index = c.Bits
			}
			if p.at(token.Ellipsis) {
				p.advance()
				hi, ok := p.parseConditional()
				if !ok {
					return 0, false
				}
				if c := p.typer.RValue(hi).Const; c != nil && !c.Negative() {
					index = c.Bits
				}
			}
			if _, ok := p.expect(token.RBracket, diag.SynUnclosedBracket, "expected ']'"); !ok {
				return 0, false
			}
		}
		if designated {
			if _, ok := p.expect(token.Assign, diag.SynUnexpectedToken, "expected '=' or another designator"); !ok {
				return 0, false
			}
		}
		if p.at(token.LBrace) {
			if _, ok := p.parseInitList(); !ok {
				return 0, false
			}
		} else if _, ok := p.parseAssign(); !ok {
			return 0, false
		}
		index++
		count = max(count, index)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	if _, ok := p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}'"); !ok {
		return 0, false
	}
	return count, true
}

// parseStaticAssert разбирает _Static_assert(expr, "msg");
func (p *Parser) parseStaticAssert() bool {
	kw := p.advance()
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '('"); !ok {
		return false
	}
	x, ok := p.parseConditional()
	if !ok {
		return false
	}
	msg := ""
	if p.at(token.Comma) {
		p.advance()
		lit, ok := p.parseAssign()
		if !ok {
			return false
		}
		if lit.Literal != nil {
			msg = lit.Literal.Value
		}
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'"); !ok {
		return false
	}
	if c := p.typer.RValue(x).Const; c != nil && c.Bits == 0 {
		text := "static assertion failed"
		if msg != "" {
			text += ": " + msg
		}
		p.report(diag.SemaInfo, diag.SevError, kw.Span.Cover(p.lastSpan), text)
	}
	_, ok = p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after static_assert")
	return ok
}
