package parser

import (
	"slices"

	"fortio.org/safecast"

	"tartan/internal/ctypes"
	"tartan/internal/diag"
	"tartan/internal/source"
	"tartan/internal/symbols"
	"tartan/internal/token"
)

// declMode says whether a declarator must, may or must not carry a name.
type declMode uint8

const (
	declNamed    declMode = iota // объявления
	declEither                   // параметры
	declAbstract                 // имена типов
)

type derivKind uint8

const (
	derivPointer derivKind = iota
	derivArray
	derivFunc
)

// derivation is one step from the base type towards the declared type.
type derivation struct {
	kind  derivKind
	quals ctypes.Qual
	count uint32
	fn    *funcSuffix
}

// funcSuffix is a parameter list.
type funcSuffix struct {
	params   []paramDecl
	variadic bool
	noProto  bool
	// knr marks an identifier list: "f(a, b)".
	knr  bool
	span source.Span
}

type paramDecl struct {
	name token.Token // Kind == token.Invalid для безымянных
	typ  ctypes.QualType
	span source.Span
}

// declarator - разобранный декларатор: имя и цепочка производных типов.
type declarator struct {
	name token.Token
	span source.Span
	ops  []derivation // в порядке применения к базовому типу
	// params is the parameter list attached directly to the name, set
	// when the declarator declares a function.
	params *funcSuffix
}

func (d *declarator) named() bool {
	return d.name.Kind == token.Ident
}

// apply builds the declared type on top of base.
func (d *declarator) apply(p *Parser, base ctypes.QualType) ctypes.QualType {
	in := p.types
	qt := base
	for _, op := range d.ops {
		switch op.kind {
		case derivPointer:
			qt = in.PointerTo(qt).WithQuals(op.quals)
		case derivArray:
			qt = in.ArrayOf(qt, op.count)
		case derivFunc:
			info := ctypes.FuncInfo{
				Result:   qt.Unqualified(),
				Variadic: op.fn.variadic,
				NoProto:  op.fn.noProto,
			}
			if !op.fn.noProto {
				info.Params = make([]ctypes.QualType, len(op.fn.params))
				for i, prm := range op.fn.params {
					info.Params[i] = prm.typ
				}
			}
			qt = in.Function(info)
		}
	}
	return qt
}

// parseDeclarator разбирает (возможно абстрактный) декларатор.
func (p *Parser) parseDeclarator(mode declMode) (*declarator, bool) {
	d := &declarator{name: token.Token{Kind: token.Invalid}, span: p.getDiagnosticSpan()}
	p.skipAttributes()

	var ptrs []derivation
	for p.at(token.Star) {
		p.advance()
		var quals ctypes.Qual
		for {
			if isQualifier(p.peek().Kind) {
				quals |= qualOf(p.advance().Kind)
				continue
			}
			if p.at(token.Ident) && gnuAttributeWords[p.peek().Text] {
				p.skipAttributes()
				continue
			}
			break
		}
		ptrs = append(ptrs, derivation{kind: derivPointer, quals: quals})
	}

	var inner *declarator
	switch {
	case p.at(token.Ident) && mode != declAbstract:
		d.name = p.advance()
	case p.at(token.LParen) && p.nestedDeclarator(mode):
		p.advance()
		in, ok := p.parseDeclarator(mode)
		if !ok {
			return nil, false
		}
		if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'"); !ok {
			return nil, false
		}
		inner = in
	case mode == declNamed:
		p.err(diag.SynExpectIdentifier, "expected identifier or '('")
		return nil, false
	}

	var suffixes []derivation
	for {
		if p.at(token.LBracket) {
			count, ok := p.parseArraySuffix()
			if !ok {
				return nil, false
			}
			suffixes = append(suffixes, derivation{kind: derivArray, count: count})
			continue
		}
		if p.at(token.LParen) {
			fn, ok := p.parseParams()
			if !ok {
				return nil, false
			}
			suffixes = append(suffixes, derivation{kind: derivFunc, fn: fn})
			continue
		}
		break
	}
	p.skipAttributes()

	d.ops = append(d.ops, ptrs...)
	for _, s := range slices.Backward(suffixes) {
		d.ops = append(d.ops, s)
	}
	if inner != nil {
		d.ops = append(d.ops, inner.ops...)
		d.name = inner.name
		if inner.named() && len(inner.ops) == 0 && len(suffixes) > 0 && suffixes[0].kind == derivFunc {
			// "(f)(int x)"
			d.params = suffixes[0].fn
		} else {
			d.params = inner.params
		}
	} else if d.named() && len(suffixes) > 0 && suffixes[0].kind == derivFunc {
		d.params = suffixes[0].fn
	}
	d.span = d.span.Cover(p.lastSpan)
	return d, true
}

// nestedDeclarator decides whether '(' opens a parenthesised declarator
// rather than a parameter list.
func (p *Parser) nestedDeclarator(mode declMode) bool {
	if mode == declNamed {
		return true
	}
	next := p.peekN(1)
	switch next.Kind {
	case token.Star, token.LParen, token.LBracket:
		return true
	case token.Ident:
		if gnuAttributeWords[next.Text] {
			return true
		}
		return mode == declEither && !p.startsTypeName(next)
	}
	return false
}

// parseArraySuffix разбирает "[N]". Неизвестная длина даёт ArrayUnknownLength.
func (p *Parser) parseArraySuffix() (uint32, bool) {
	p.advance()
	for p.at_or(token.KwStatic, token.KwConst, token.KwVolatile, token.KwRestrict) {
		p.advance()
	}
	count := ctypes.ArrayUnknownLength
	switch {
	case p.at(token.RBracket):
	case p.at(token.Star) && p.peekN(1).Kind == token.RBracket:
		p.advance()
	default:
		x, ok := p.parseAssign()
		if !ok {
			return 0, false
		}
		if c := p.typer.RValue(x).Const; c != nil {
			if c.Negative() {
				p.report(diag.SemaInfo, diag.SevError, x.Span, "array has negative size")
			} else if n, err := safecast.Conv[uint32](c.Bits); err == nil && n != ctypes.ArrayUnknownLength {
				count = n
			}
		}
	}
	if _, ok := p.expect(token.RBracket, diag.SynUnclosedBracket, "expected ']'"); !ok {
		return 0, false
	}
	return count, true
}

// parseParams разбирает список параметров в скобках.
func (p *Parser) parseParams() (*funcSuffix, bool) {
	open := p.advance()
	fn := &funcSuffix{span: open.Span}
	scope := p.res.Enter(symbols.ScopePrototype, open.Span)
	defer p.res.Leave(scope)

	switch {
	case p.at(token.RParen):
		fn.noProto = true
	case p.at(token.Ident) && !p.startsTypeName(p.peek()) && !gnuSkipWords[p.peek().Text] &&
		(p.peekN(1).Kind == token.Comma || p.peekN(1).Kind == token.RParen):
		fn.noProto, fn.knr = true, true
		for {
			name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected identifier")
			if !ok {
				return nil, false
			}
			fn.params = append(fn.params, paramDecl{name: name, typ: p.types.Builtin(ctypes.KindInt), span: name.Span})
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
	default:
		if !p.parseParamList(fn) {
			return nil, false
		}
	}

	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'"); !ok {
		return nil, false
	}
	fn.span = fn.span.Cover(p.lastSpan)
	return fn, true
}

func (p *Parser) parseParamList(fn *funcSuffix) bool {
	for {
		if p.at(token.Ellipsis) {
			p.advance()
			fn.variadic = true
			return true
		}
		start := p.peek().Span
		spec, ok := p.parseDeclSpecs()
		if !ok {
			if !p.at(token.Ident) {
				p.err(diag.SynExpectType, "expected parameter declarator")
				return false
			}
			spec = p.unknownTypeName()
		}
		if spec.storage != token.Invalid && spec.storage != token.KwRegister {
			p.report(diag.SynBadDeclSpecifiers, diag.SevError, spec.span, "invalid storage class specifier in function declarator")
		}
		d, ok := p.parseDeclarator(declEither)
		if !ok {
			return false
		}
		qt := d.apply(p, spec.typ)
		if len(fn.params) == 0 && !d.named() && len(d.ops) == 0 && p.types.IsVoid(qt) && p.at(token.RParen) {
			return true // (void)
		}
		fn.params = append(fn.params, paramDecl{
			name: d.name,
			typ:  p.typer.AdjustParam(qt),
			span: start.Cover(p.lastSpan),
		})
		if !p.at(token.Comma) {
			return true
		}
		p.advance()
	}
}
