package parser

import (
	"fmt"

	"tartan/internal/ctypes"
	"tartan/internal/diag"
	"tartan/internal/symbols"
	"tartan/internal/token"
)

// parseRecordSpec разбирает struct/union спецификатор, с телом или без.
func (p *Parser) parseRecordSpec() (ctypes.QualType, bool) {
	kw := p.advance()
	union := kw.Kind == token.KwUnion
	p.skipAttributes()

	var tag token.Token
	if p.at(token.Ident) {
		tag = p.advance()
	}
	p.skipAttributes()

	if !p.at(token.LBrace) {
		if tag.Kind != token.Ident {
			p.err(diag.SynExpectIdentifier, "declaration of anonymous "+kw.Text+" must be a definition")
			return ctypes.QualType{}, false
		}
		// "struct x;" объявляет тег в текущей области видимости
		if p.at(token.Semicolon) {
			if qt, ok := p.res.LookupTagLocal(tag.Text); ok {
				return qt, true
			}
		} else if qt, ok := p.res.LookupTag(tag.Text); ok {
			return qt, true
		}
		qt := p.types.Record(tag.Text, union)
		p.res.DeclareTag(tag.Text, qt)
		return qt, true
	}

	var qt ctypes.QualType
	if tag.Kind == token.Ident {
		if prev, ok := p.res.LookupTagLocal(tag.Text); ok {
			qt = prev
			if info, _ := p.types.RecordInfo(prev.ID); info.Complete {
				p.report(diag.SemaRedefinition, diag.SevError, tag.Span, fmt.Sprintf("redefinition of '%s'", tag.Text))
			}
		} else {
			qt = p.types.Record(tag.Text, union)
			p.res.DeclareTag(tag.Text, qt)
		}
	} else {
		qt = p.types.Record(p.unnamedTag(kw), union)
	}

	fields, ok := p.parseRecordBody()
	if !ok {
		return ctypes.QualType{}, false
	}
	p.types.CompleteRecord(qt, fields)
	p.skipAttributes()
	return qt, true
}

// unnamedTag builds the synthetic tag of an anonymous record.
func (p *Parser) unnamedTag(kw token.Token) string {
	start, _ := p.fs.Resolve(kw.Span)
	return fmt.Sprintf("(unnamed at %s:%d:%d)", p.fs.Get(kw.Span.File).Path, start.Line, start.Col)
}

// parseRecordBody разбирает "{ поля }".
func (p *Parser) parseRecordBody() ([]ctypes.Field, bool) {
	p.advance()
	var fields []ctypes.Field
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		if p.at(token.Semicolon) {
			p.advance()
			continue
		}
		spec, ok := p.parseDeclSpecs()
		if !ok {
			if !p.at(token.Ident) {
				p.err(diag.SynExpectType, "expected member declaration")
				p.resyncStatement()
				continue
			}
			spec = p.unknownTypeName()
		}
		if spec.storage != token.Invalid {
			p.report(diag.SynBadDeclSpecifiers, diag.SevError, spec.span, "type name does not allow storage class to be specified")
		}
		if p.at(token.Semicolon) {
			// анонимная вложенная структура
			p.advance()
			if p.types.KindOf(spec.typ) == ctypes.KindRecord {
				fields = append(fields, ctypes.Field{Type: spec.typ})
			}
			continue
		}
		if !p.parseMemberDeclarators(spec, &fields) {
			p.resyncStatement()
		}
	}
	if _, ok := p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}'"); !ok {
		return nil, false
	}
	return fields, true
}

func (p *Parser) parseMemberDeclarators(spec declSpec, fields *[]ctypes.Field) bool {
	for {
		field := ctypes.Field{Type: spec.typ}
		if !p.at(token.Colon) {
			d, ok := p.parseDeclarator(declNamed)
			if !ok {
				return false
			}
			field.Name = d.name.Text
			field.Type = d.apply(p, spec.typ)
		}
		if p.at(token.Colon) {
			// ширина битового поля
			p.advance()
			if _, ok := p.parseConditional(); !ok {
				return false
			}
		}
		p.skipAttributes()
		if field.Name != "" {
			*fields = append(*fields, field)
		}
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	_, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' at end of declaration list")
	return ok
}

// parseEnumSpec разбирает enum. Перечисления имеют тип int, константы
// объявляются как обычные идентификаторы.
func (p *Parser) parseEnumSpec() (ctypes.QualType, bool) {
	p.advance()
	p.skipAttributes()
	intType := p.types.Builtin(ctypes.KindInt)

	var tag token.Token
	if p.at(token.Ident) {
		tag = p.advance()
		if _, ok := p.res.LookupTag(tag.Text); !ok || p.at(token.LBrace) {
			p.res.DeclareTag(tag.Text, intType)
		}
	}
	if !p.at(token.LBrace) {
		if tag.Kind != token.Ident {
			p.err(diag.SynExpectIdentifier, "expected identifier or '{'")
			return ctypes.QualType{}, false
		}
		return intType, true
	}

	p.advance()
	var next int64
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected identifier")
		if !ok {
			p.resyncUntil(token.RBrace)
			break
		}
		p.skipAttributes()
		if p.at(token.Assign) {
			p.advance()
			x, ok := p.parseConditional()
			if !ok {
				p.resyncUntil(token.RBrace)
				break
			}
			if c := p.typer.RValue(x).Const; c != nil {
				next = int64(c.Bits) // #nosec G115 -- enumerator values keep their bit pattern
			} else if !x.Invalid {
				p.report(diag.SemaInfo, diag.SevError, x.Span, "expression is not an integer constant expression")
			}
		}
		p.res.Declare(symbols.Symbol{
			Name:  name.Text,
			Kind:  symbols.SymbolEnumConst,
			Span:  name.Span,
			Flags: p.declFlags(0),
			Type:  intType,
			Value: next,
		})
		next++
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	if _, ok := p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}'"); !ok {
		return ctypes.QualType{}, false
	}
	p.skipAttributes()
	return intType, true
}
