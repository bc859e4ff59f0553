package gvariant

import (
	"fmt"
	"strconv"
	"strings"

	"tartan/internal/diag"
	"tartan/internal/trace"
)

// grammar selects one of the four nested sub-grammars of a format string.
type grammar uint8

const (
	grammarBasicType grammar = iota
	grammarType
	grammarBasicFormat
	grammarFormat
)

func (g grammar) String() string {
	switch g {
	case grammarBasicType:
		return "basic type string"
	case grammarType:
		return "type string"
	case grammarBasicFormat:
		return "basic format string"
	default:
		return "format string"
	}
}

// production is the rule a grammar applies to the character under the
// cursor.
type production uint8

const (
	prodScalar       production = iota // b y n q i h u x t d s o g
	prodAnyBasic                       // ?
	prodVariant                        // v
	prodArray                          // a
	prodMaybe                          // m
	prodTuple                          // ( ... )
	prodAnyTuple                       // r
	prodDictEntry                      // { K V }
	prodAnyType                        // *
	prodForceVariant                   // @
	prodBorrowed                       // &
	prodConvenience                    // ^
	prodFallback                       // anything else: defer to the next grammar
)

var productionNames = [...]string{
	"scalar", "any-basic", "variant", "array", "maybe", "tuple", "any-tuple",
	"dict-entry", "any-type", "force-variant", "borrowed", "convenience", "fallback",
}

func (p production) String() string {
	if int(p) < len(productionNames) {
		return productionNames[p]
	}
	return "production(" + strconv.Itoa(int(p)) + ")"
}

// classify maps a character to its production under g.
func classify(g grammar, c rune) production {
	switch g {
	case grammarBasicType:
		switch c {
		case 'b', 'y', 'n', 'q', 'i', 'h', 'u', 'x', 't', 'd', 's', 'o', 'g':
			return prodScalar
		case '?':
			return prodAnyBasic
		}
	case grammarType:
		switch c {
		case 'v':
			return prodVariant
		case 'a':
			return prodArray
		case 'm':
			return prodMaybe
		case '(':
			return prodTuple
		case 'r':
			return prodAnyTuple
		case '{':
			return prodDictEntry
		case '*':
			return prodAnyType
		}
	case grammarBasicFormat:
		switch c {
		case '@':
			return prodForceVariant
		case '?':
			return prodAnyBasic
		case '&':
			return prodBorrowed
		case '^':
			return prodConvenience
		}
	case grammarFormat:
		switch c {
		case '@':
			return prodForceVariant
		case 'm':
			return prodMaybe
		case '*':
			return prodAnyType
		case '?':
			return prodAnyBasic
		case 'r':
			return prodAnyTuple
		case '(':
			return prodTuple
		case '{':
			return prodDictEntry
		case '&':
			return prodBorrowed
		case '^':
			return prodConvenience
		}
	}
	return prodFallback
}

// fallback is the grammar an unrecognised character is handed to.
// Basic type strings have no fallback.
func (g grammar) fallback() (grammar, bool) {
	switch g {
	case grammarType, grammarBasicFormat:
		return grammarBasicType, true
	case grammarFormat:
		return grammarType, true
	}
	return 0, false
}

// inner is the grammar used after '@' and '&'.
func (g grammar) inner() grammar {
	if g == grammarBasicFormat {
		return grammarBasicType
	}
	return grammarType
}

// member is the grammar of tuple members and dict values.
func (g grammar) member() grammar {
	if g == grammarFormat {
		return grammarFormat
	}
	return grammarType
}

// key is the grammar of dict keys.
func (g grammar) key() grammar {
	if g == grammarFormat {
		return grammarBasicFormat
	}
	return grammarBasicType
}

// parser walks one format string against one argument list. Both cursors
// only move forward.
type parser struct {
	c    *Checker
	fmt  []rune
	pos  int
	lit  *StringLiteral
	args []Arg
	next int

	depth  int
	span   uint64
	tracer trace.Tracer
}

const eof rune = 0

func (p *parser) peek() rune {
	if p.pos >= len(p.fmt) {
		return eof
	}
	return p.fmt[p.pos]
}

func (p *parser) rest() string {
	if p.pos >= len(p.fmt) {
		return ""
	}
	return string(p.fmt[p.pos:])
}

// parse applies one production of g at the cursor.
func (p *parser) parse(g grammar, flags Flags) error {
	if p.depth >= p.c.opts.MaxDepth {
		return p.literalError(diag.GVarNestingTooDeep,
			"GVariant format string is nested more than %0 levels deep.",
			TextArg(strconv.Itoa(p.c.opts.MaxDepth)))
	}
	p.depth++
	defer func() { p.depth-- }()
	return p.apply(g, flags)
}

func (p *parser) apply(g grammar, flags Flags) error {
	c := p.peek()
	prod := classify(g, c)
	if p.tracer.Enabled() {
		trace.Point(p.tracer, trace.ScopeCall, "gvariant."+prod.String(),
			fmt.Sprintf("%s %q at %d, flags %s", g, c, p.pos, flags), p.span)
	}

	switch prod {
	case prodScalar:
		expected, _ := scalarType(p.c.types, c)
		expected = promoted(p.c.types.Types(), c, expected, flags)
		p.pos++
		return p.consume(expected, flags)

	case prodAnyBasic, prodVariant, prodAnyTuple, prodAnyType:
		p.pos++
		return p.consume(p.c.types.PointerTypeByName("GVariant"), flags)

	case prodArray:
		p.pos++
		flags = flags.With(FlagAllowMaybe)
		name := "GVariantBuilder"
		if flags.Has(FlagDirectionOut) {
			name = "GVariantIter"
		}
		if err := p.parse(grammarType, flags.Without(FlagConsumeArgs)); err != nil {
			return err
		}
		return p.consume(p.c.types.PointerTypeByName(name), flags)

	case prodMaybe:
		p.pos++
		return p.parse(g.member(), flags.With(FlagAllowMaybe))

	case prodTuple:
		return p.tuple(g, flags)

	case prodDictEntry:
		return p.dictEntry(g, flags)

	case prodForceVariant:
		p.pos++
		return p.parse(g.inner(), flags.With(FlagForceVariant))

	case prodBorrowed:
		p.pos++
		return p.parse(g.inner(), flags.With(FlagRequireConst))

	case prodConvenience:
		return p.convenience(flags)

	case prodFallback:
		next, ok := g.fallback()
		if !ok {
			return p.literalError(diag.GVarInvalidFormatChar,
				"Expected a GVariant basic type string but saw ‘%0’.", TextArg(charText(c)))
		}
		return p.apply(next, flags)
	}
	panic("gvariant: unhandled production " + prod.String())
}

func (p *parser) tuple(g grammar, flags Flags) error {
	p.pos++
	for c := p.peek(); c != ')' && c != eof; c = p.peek() {
		if err := p.parse(g.member(), flags); err != nil {
			return err
		}
	}
	if p.peek() != ')' {
		return p.literalError(diag.GVarUnterminatedTuple,
			"Invalid GVariant "+g.member().String()+": tuple did not end with ‘)’.")
	}
	p.pos++
	return nil
}

func (p *parser) dictEntry(g grammar, flags Flags) error {
	p.pos++
	what := "Invalid GVariant " + g.member().String() + ": dict "

	if p.peek() == '}' {
		return p.literalError(diag.GVarMalformedDictEntry, what+"did not contain exactly two elements.")
	}
	if err := p.parse(g.key(), flags); err != nil {
		return err
	}

	if p.peek() == '}' {
		return p.literalError(diag.GVarMalformedDictEntry, what+"did not contain exactly two elements.")
	}
	if err := p.parse(g.member(), flags); err != nil {
		return err
	}

	switch p.peek() {
	case '}':
		p.pos++
		return nil
	case eof:
		return p.literalError(diag.GVarMalformedDictEntry, what+"did not end with ‘}’.")
	default:
		return p.literalError(diag.GVarMalformedDictEntry, what+"contains more than two elements.")
	}
}

func (p *parser) convenience(flags Flags) error {
	p.pos++
	rest := p.rest()
	for _, cv := range conveniences {
		if strings.HasPrefix(rest, cv.conv) {
			p.pos += len(cv.conv)
			return p.consume(cv.build(p.c.types.Types()), flags)
		}
	}
	return p.literalError(diag.GVarInvalidFormatChar,
		"Invalid GVariant basic format string: convenience operator ‘^’ was not followed by a recognized convenience conversion.")
}

func (p *parser) literalError(code diag.Code, tpl string, args ...Subst) *Report {
	return &Report{
		Severity: diag.SevError,
		Code:     code,
		Template: tpl,
		Anchor:   p.lit.Span,
		Args:     args,
	}
}

func charText(c rune) string {
	if c == eof {
		return ""
	}
	return string(c)
}
