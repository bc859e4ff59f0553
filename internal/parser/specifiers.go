package parser

import (
	"fmt"
	"strings"

	"tartan/internal/ctypes"
	"tartan/internal/diag"
	"tartan/internal/source"
	"tartan/internal/token"
)

// declSpec - результат разбора спецификаторов объявления.
type declSpec struct {
	storage token.Kind // KwTypedef, KwExtern, KwStatic, KwAuto, KwRegister или Invalid
	typ     ctypes.QualType
	span    source.Span
	// explicit is false when no type specifier was written (implicit int).
	explicit bool
}

// typeWords counts the keyword type specifiers of one declaration.
type typeWords struct {
	void, boolean, char, short, int, long int
	signed, unsigned, float, double       int
	named                                 ctypes.QualType // typedef, struct, union, enum, typeof
	first                                 token.Token
}

func (w *typeWords) any() bool {
	return w.void+w.boolean+w.char+w.short+w.int+w.long+w.signed+w.unsigned+w.float+w.double > 0 || !w.named.IsNull()
}

// gnuSkipWords are identifiers the parser drops wherever specifiers may appear.
var gnuSkipWords = map[string]bool{
	"__extension__": true,
	"_Noreturn":     true,
	"__thread":      true,
	"_Thread_local": true,
}

// gnuAttributeWords take a parenthesised argument that is skipped.
var gnuAttributeWords = map[string]bool{
	"__attribute__": true,
	"__attribute":   true,
	"__declspec":    true,
	"__asm__":       true,
	"__asm":         true,
	"asm":           true,
	"_Alignas":      true,
}

func isStorageClass(k token.Kind) bool {
	switch k {
	case token.KwTypedef, token.KwExtern, token.KwStatic, token.KwAuto, token.KwRegister:
		return true
	}
	return false
}

func isQualifier(k token.Kind) bool {
	return k == token.KwConst || k == token.KwVolatile || k == token.KwRestrict
}

func isTypeKeyword(k token.Kind) bool {
	switch k {
	case token.KwVoid, token.KwBool, token.KwChar, token.KwShort, token.KwInt, token.KwLong,
		token.KwSigned, token.KwUnsigned, token.KwFloat, token.KwDouble,
		token.KwStruct, token.KwUnion, token.KwEnum:
		return true
	}
	return false
}

func isTypeofWord(text string) bool {
	return text == "typeof" || text == "__typeof__" || text == "__typeof"
}

// startsTypeName reports whether tok can begin a type name, as in a cast
// or sizeof operand.
func (p *Parser) startsTypeName(tok token.Token) bool {
	if isTypeKeyword(tok.Kind) || isQualifier(tok.Kind) {
		return true
	}
	if tok.Kind != token.Ident {
		return false
	}
	return p.res.IsTypedefName(tok.Text) || isTypeofWord(tok.Text)
}

// startsDeclaration reports whether the next tokens begin a declaration
// inside a block.
func (p *Parser) startsDeclaration() bool {
	tok := p.peek()
	if isStorageClass(tok.Kind) || tok.Kind == token.KwInline {
		return true
	}
	if tok.Kind == token.Ident {
		if gnuSkipWords[tok.Text] || tok.Text == "__attribute__" {
			return true
		}
		// метка с именем типа остаётся меткой
		if p.res.IsTypedefName(tok.Text) && p.peekN(1).Kind == token.Colon {
			return false
		}
	}
	return p.startsTypeName(tok)
}

// skipAttributes съедает __attribute__((...)), __asm__("...") и подобное.
func (p *Parser) skipAttributes() {
	for p.at(token.Ident) && gnuAttributeWords[p.peek().Text] {
		p.advance()
		if !p.at(token.LParen) {
			continue
		}
		depth := 0
		for !p.at(token.EOF) {
			tok := p.advance()
			if tok.Kind == token.LParen {
				depth++
			} else if tok.Kind == token.RParen {
				depth--
				if depth == 0 {
					break
				}
			}
		}
	}
}

// parseDeclSpecs разбирает спецификаторы объявления. Возвращает false,
// если не найдено ни одного спецификатора.
func (p *Parser) parseDeclSpecs() (declSpec, bool) {
	spec := declSpec{span: p.peek().Span}
	var words typeWords
	var quals ctypes.Qual
	seen := false

loop:
	for {
		tok := p.peek()
		switch {
		case isStorageClass(tok.Kind):
			if spec.storage != token.Invalid && spec.storage != tok.Kind {
				p.err(diag.SynBadDeclSpecifiers, "cannot combine with previous '"+spec.storage.String()+"' declaration specifier")
			}
			spec.storage = tok.Kind
			p.advance()
		case isQualifier(tok.Kind):
			quals |= qualOf(tok.Kind)
			p.advance()
		case tok.Kind == token.KwInline:
			p.advance()
		case tok.Kind == token.KwStruct || tok.Kind == token.KwUnion:
			if !p.namedSpecifier(&words, tok) {
				return spec, false
			}
			qt, ok := p.parseRecordSpec()
			if !ok {
				return spec, false
			}
			words.named = qt
		case tok.Kind == token.KwEnum:
			if !p.namedSpecifier(&words, tok) {
				return spec, false
			}
			qt, ok := p.parseEnumSpec()
			if !ok {
				return spec, false
			}
			words.named = qt
		case isTypeKeyword(tok.Kind):
			p.countWord(&words, tok)
			p.advance()
		case tok.Kind == token.Ident && gnuSkipWords[tok.Text]:
			p.advance()
		case tok.Kind == token.Ident && gnuAttributeWords[tok.Text]:
			p.skipAttributes()
		case tok.Kind == token.Ident && isTypeofWord(tok.Text):
			if !p.namedSpecifier(&words, tok) {
				return spec, false
			}
			qt, ok := p.parseTypeof()
			if !ok {
				return spec, false
			}
			words.named = qt
		case tok.Kind == token.Ident && !words.any() && p.res.IsTypedefName(tok.Text):
			sym, _ := p.res.Lookup(tok.Text)
			words.named = sym.Type
			words.first = tok
			p.advance()
		default:
			break loop
		}
		seen = true
		spec.span = spec.span.Cover(p.lastSpan)
	}
	if !seen {
		return spec, false
	}
	qt, explicit := p.resolveTypeWords(&words)
	spec.typ = qt.WithQuals(quals)
	spec.explicit = explicit
	return spec, true
}

func (p *Parser) namedSpecifier(words *typeWords, tok token.Token) bool {
	if words.any() {
		p.err(diag.SynBadDeclSpecifiers, fmt.Sprintf("cannot combine with previous '%s' declaration specifier", words.first.Text))
		p.resyncStatement()
		return false
	}
	words.first = tok
	return true
}

func (p *Parser) countWord(words *typeWords, tok token.Token) {
	if !words.any() {
		words.first = tok
	}
	switch tok.Kind {
	case token.KwVoid:
		words.void++
	case token.KwBool:
		words.boolean++
	case token.KwChar:
		words.char++
	case token.KwShort:
		words.short++
	case token.KwInt:
		words.int++
	case token.KwLong:
		words.long++
	case token.KwSigned:
		words.signed++
	case token.KwUnsigned:
		words.unsigned++
	case token.KwFloat:
		words.float++
	case token.KwDouble:
		words.double++
	}
}

func qualOf(k token.Kind) ctypes.Qual {
	switch k {
	case token.KwConst:
		return ctypes.QualConst
	case token.KwVolatile:
		return ctypes.QualVolatile
	default:
		return ctypes.QualRestrict
	}
}

// resolveTypeWords сводит мультимножество ключевых слов к одному типу.
func (p *Parser) resolveTypeWords(w *typeWords) (ctypes.QualType, bool) {
	in := p.types
	if !w.any() {
		return in.Builtin(ctypes.KindInt), false
	}
	if !w.named.IsNull() {
		return w.named, true
	}
	sign := w.signed + w.unsigned
	kind := ctypes.KindInvalid
	switch {
	case sign > 1:
	case w.void == 1 && w.void+w.boolean+w.char+w.short+w.int+w.long+sign+w.float+w.double == 1:
		kind = ctypes.KindVoid
	case w.boolean == 1 && w.boolean+w.char+w.short+w.int+w.long+sign+w.float+w.double == 1:
		kind = ctypes.KindBool
	case w.float == 1 && w.float+w.void+w.boolean+w.char+w.short+w.int+w.long+sign+w.double == 1:
		kind = ctypes.KindFloat
	case w.double == 1 && w.long <= 1 && w.void+w.boolean+w.char+w.short+w.int+sign+w.float == 0:
		kind = ctypes.KindDouble
		if w.long == 1 {
			kind = ctypes.KindLongDouble
		}
	case w.void+w.boolean+w.float+w.double > 0:
	case w.char == 1 && w.short+w.int+w.long == 0:
		kind = pick(w, ctypes.KindChar, ctypes.KindSChar, ctypes.KindUChar)
	case w.char > 0:
	case w.short == 1 && w.long == 0 && w.int <= 1:
		kind = pick(w, ctypes.KindShort, ctypes.KindShort, ctypes.KindUShort)
	case w.short > 0 || w.int > 1:
	case w.long == 1:
		kind = pick(w, ctypes.KindLong, ctypes.KindLong, ctypes.KindULong)
	case w.long == 2:
		kind = pick(w, ctypes.KindLongLong, ctypes.KindLongLong, ctypes.KindULongLong)
	case w.long == 0:
		kind = pick(w, ctypes.KindInt, ctypes.KindInt, ctypes.KindUInt)
	}
	if kind == ctypes.KindInvalid {
		p.report(diag.SynBadDeclSpecifiers, diag.SevError, w.first.Span,
			"cannot combine "+strings.TrimSpace(describeWords(w))+" in a type specifier")
		return in.Builtin(ctypes.KindInt), true
	}
	return in.Builtin(kind), true
}

func pick(w *typeWords, plain, signed, unsigned ctypes.Kind) ctypes.Kind {
	switch {
	case w.unsigned > 0:
		return unsigned
	case w.signed > 0:
		return signed
	default:
		return plain
	}
}

func describeWords(w *typeWords) string {
	var parts []string
	add := func(n int, word string) {
		for range n {
			parts = append(parts, "'"+word+"'")
		}
	}
	add(w.signed, "signed")
	add(w.unsigned, "unsigned")
	add(w.short, "short")
	add(w.long, "long")
	add(w.void, "void")
	add(w.boolean, "_Bool")
	add(w.char, "char")
	add(w.int, "int")
	add(w.float, "float")
	add(w.double, "double")
	return strings.Join(parts, " ")
}

// parseTypeof разбирает typeof(type) и typeof(expr).
func (p *Parser) parseTypeof() (ctypes.QualType, bool) {
	p.advance()
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after 'typeof'"); !ok {
		return ctypes.QualType{}, false
	}
	var qt ctypes.QualType
	if p.startsTypeName(p.peek()) {
		t, ok := p.parseTypeName()
		if !ok {
			return ctypes.QualType{}, false
		}
		qt = t
	} else {
		x, ok := p.parseExpr()
		if !ok {
			return ctypes.QualType{}, false
		}
		qt = x.Type
		if x.Invalid {
			qt = p.types.Builtin(ctypes.KindInt)
		}
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'"); !ok {
		return ctypes.QualType{}, false
	}
	return qt, true
}

// parseTypeName разбирает имя типа: спецификаторы и абстрактный декларатор.
func (p *Parser) parseTypeName() (ctypes.QualType, bool) {
	spec, ok := p.parseDeclSpecs()
	if !ok {
		p.err(diag.SynExpectType, "expected a type")
		return ctypes.QualType{}, false
	}
	if spec.storage != token.Invalid {
		p.report(diag.SynBadDeclSpecifiers, diag.SevError, spec.span, "type name does not allow storage class to be specified")
	}
	d, ok := p.parseDeclarator(declAbstract)
	if !ok {
		return ctypes.QualType{}, false
	}
	return d.apply(p, spec.typ), true
}

// unknownTypeName consumes an identifier used where a type is required
// and recovers with int.
func (p *Parser) unknownTypeName() declSpec {
	tok := p.advance()
	p.report(diag.SemaUnknownTypeName, diag.SevError, tok.Span, fmt.Sprintf("unknown type name '%s'", tok.Text))
	return declSpec{typ: p.types.Builtin(ctypes.KindInt), span: tok.Span, explicit: true}
}
