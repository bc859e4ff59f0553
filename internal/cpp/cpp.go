package cpp

import (
	"fmt"
	"strings"

	"tartan/internal/diag"
	"tartan/internal/lexer"
	"tartan/internal/source"
	"tartan/internal/token"
)

// Include records an #include the preprocessor saw but did not follow.
type Include struct {
	Path   string
	System bool
	Span   source.Span
}

// Preprocessor turns the raw token stream of one file into the stream the
// parser sees: directives applied, skipped branches dropped, macros expanded.
type Preprocessor struct {
	lx       *lexer.Lexer
	macros   *Table
	reporter diag.Reporter

	frames   []*frame
	back     []token.Token // возвращённые raw-токены (lookahead за именем макроса)
	look     *token.Token
	conds    []cond
	includes []Include
	lastSpan source.Span
}

type frame struct {
	name string
	toks []token.Token
	pos  int
}

// New returns a preprocessor reading from lx and defining into macros.
func New(lx *lexer.Lexer, macros *Table, reporter diag.Reporter) *Preprocessor {
	return &Preprocessor{lx: lx, macros: macros, reporter: reporter}
}

// Macros returns the table the preprocessor defines into.
func (pp *Preprocessor) Macros() *Table {
	return pp.macros
}

// Includes returns the #include directives seen so far.
func (pp *Preprocessor) Includes() []Include {
	return pp.includes
}

// Peek возвращает следующий токен, не потребляя его.
func (pp *Preprocessor) Peek() token.Token {
	t := pp.Next()
	pp.look = &t
	return t
}

// Next returns the next fully expanded token. After EOF it keeps returning EOF.
func (pp *Preprocessor) Next() token.Token {
	if pp.look != nil {
		t := *pp.look
		pp.look = nil
		return t
	}
	for {
		tok := pp.raw()
		if tok.Kind != token.Ident {
			return tok
		}
		m, ok := pp.macros.Lookup(tok.Text)
		if !ok || pp.active(m.Name) {
			return tok
		}
		if !m.FuncLike {
			pp.push(m.Name, pp.substitute(m, nil, tok.Span))
			continue
		}
		args, span, ok := pp.collectArgs(tok, m)
		if !ok {
			return tok
		}
		if args != nil {
			pp.push(m.Name, pp.substitute(m, args, span))
		}
	}
}

// raw returns the next token before macro expansion.
func (pp *Preprocessor) raw() token.Token {
	if n := len(pp.back); n > 0 {
		t := pp.back[n-1]
		pp.back = pp.back[:n-1]
		return t
	}
	for len(pp.frames) > 0 {
		f := pp.frames[len(pp.frames)-1]
		if f.pos < len(f.toks) {
			t := f.toks[f.pos]
			f.pos++
			return t
		}
		pp.frames = pp.frames[:len(pp.frames)-1]
	}
	if pp.lx == nil {
		return token.Token{Kind: token.EOF, Span: pp.lastSpan}
	}
	for {
		tok := pp.lx.Next()
		pp.directives(tok.Leading)
		if tok.Kind == token.EOF {
			pp.finish()
			return tok
		}
		if pp.skipping() {
			continue
		}
		pp.lastSpan = tok.Span
		return tok
	}
}

func (pp *Preprocessor) unread(t token.Token) {
	pp.back = append(pp.back, t)
}

func (pp *Preprocessor) push(name string, toks []token.Token) {
	pp.frames = append(pp.frames, &frame{name: name, toks: toks})
}

// active reports whether name is being expanded; such names are not
// expanded again.
func (pp *Preprocessor) active(name string) bool {
	for _, f := range pp.frames {
		if f.name == name {
			return true
		}
	}
	return false
}

func (pp *Preprocessor) directives(trivia []token.Trivia) {
	for i := range trivia {
		if trivia[i].Kind == token.TriviaDirective && trivia[i].Directive != nil {
			pp.directive(trivia[i].Directive, trivia[i].Span)
		}
	}
}

func (pp *Preprocessor) directive(d *token.Directive, sp source.Span) {
	if pp.conditional(d, sp) {
		return
	}
	if pp.skipping() {
		return
	}
	switch d.Name {
	case "define":
		m, err := ParseDefine(d.Payload, sp)
		if err != nil {
			pp.errorf(sp, "invalid #define: %v", err)
			return
		}
		pp.macros.Define(m)
	case "undef":
		name := firstWord(d.Payload)
		if name == "" {
			pp.errorf(sp, "macro name missing in #undef")
			return
		}
		pp.macros.Undef(name)
	case "include", "include_next", "import":
		pp.include(d.Payload, sp)
	case "error":
		pp.errorf(sp, "#error %s", d.Payload)
	case "warning":
		if pp.reporter != nil {
			pp.reporter.Report(diag.LexBadDirective, diag.SevWarning, sp, "#warning "+d.Payload, nil, nil)
		}
	case "pragma", "line", "ident", "sccs", "":
		// не влияют на проверку
	default:
		if isDigits(d.Name) {
			return // "# 12 "file"" - маркер строки от cpp
		}
		pp.errorf(sp, "invalid preprocessing directive '#%s'", d.Name)
	}
}

func (pp *Preprocessor) include(payload string, sp source.Span) {
	payload = strings.TrimSpace(payload)
	inc := Include{Span: sp}
	switch {
	case strings.HasPrefix(payload, "<"):
		end := strings.IndexByte(payload, '>')
		if end < 0 {
			pp.errorf(sp, "expected '>' in #include")
			return
		}
		inc.Path, inc.System = payload[1:end], true
	case strings.HasPrefix(payload, `"`):
		end := strings.IndexByte(payload[1:], '"')
		if end < 0 {
			pp.errorf(sp, "expected '\"' in #include")
			return
		}
		inc.Path = payload[1 : end+1]
	default:
		// #include MACRO - значение не вычисляем
		inc.Path = payload
	}
	pp.includes = append(pp.includes, inc)
}

func (pp *Preprocessor) errorf(sp source.Span, format string, args ...any) {
	if pp.reporter == nil {
		return
	}
	pp.reporter.Report(diag.LexBadDirective, diag.SevError, sp, fmt.Sprintf(format, args...), nil, nil)
}

func firstWord(s string) string {
	s = strings.TrimSpace(s)
	i := 0
	for i < len(s) && isIdentByte(s[i], i == 0) {
		i++
	}
	return s[:i]
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
