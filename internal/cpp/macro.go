package cpp

import (
	"fmt"
	"sort"
	"strings"

	"tartan/internal/ctypes"
	"tartan/internal/lexer"
	"tartan/internal/source"
	"tartan/internal/token"
)

// Macro is one #define.
type Macro struct {
	Name     string
	FuncLike bool
	Params   []string
	Variadic bool // последний параметр - __VA_ARGS__ или name...
	Body     []token.Token
	Span     source.Span
	// Builtin marks predefined and command-line macros.
	Builtin bool
}

func (m *Macro) param(name string) int {
	for i, p := range m.Params {
		if p == name {
			return i
		}
	}
	return -1
}

// Table holds the macros visible to a translation unit. The prelude and
// the main file share one table.
type Table struct {
	macros map[string]*Macro
}

// NewTable returns an empty macro table.
func NewTable() *Table {
	return &Table{macros: make(map[string]*Macro)}
}

// Lookup returns the macro called name.
func (t *Table) Lookup(name string) (*Macro, bool) {
	m, ok := t.macros[name]
	return m, ok
}

// Define installs m, replacing an earlier definition of the same name.
func (t *Table) Define(m *Macro) {
	t.macros[m.Name] = m
}

// Undef removes name; unknown names are ignored.
func (t *Table) Undef(name string) {
	delete(t.macros, name)
}

// Names returns the defined macro names in sorted order.
func (t *Table) Names() []string {
	out := make([]string, 0, len(t.macros))
	for name := range t.macros {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// DefineFlag installs a command-line style definition: "NAME", "NAME=VALUE"
// or "NAME(args)=VALUE". A bare NAME expands to 1.
func (t *Table) DefineFlag(def string) error {
	name, value, found := strings.Cut(def, "=")
	if !found {
		value = "1"
	}
	m, err := ParseDefine(name+" "+value, source.Span{})
	if err != nil {
		return fmt.Errorf("-D%s: %w", def, err)
	}
	m.Builtin = true
	t.Define(m)
	return nil
}

// Predefine installs the macros a compiler for target would provide.
func (t *Table) Predefine(target ctypes.Target) {
	defs := []string{"__STDC__=1", "__STDC_VERSION__=201112L", "__TARTAN__=1"}
	switch target.Name {
	case ctypes.LP64.Name:
		defs = append(defs, "__LP64__=1", "_LP64=1")
	case ctypes.ILP32.Name:
		defs = append(defs, "__ILP32__=1")
	case ctypes.LLP64.Name:
		defs = append(defs, "_WIN32=1", "_WIN64=1")
	}
	for _, d := range defs {
		if err := t.DefineFlag(d); err != nil {
			panic(err)
		}
	}
}

// ParseDefine parses the payload of a #define directive ("NAME body" or
// "NAME(a, b) body"). span is recorded as the definition site.
func ParseDefine(payload string, span source.Span) (*Macro, error) {
	payload = strings.TrimSpace(payload)
	i := 0
	for i < len(payload) && isIdentByte(payload[i], i == 0) {
		i++
	}
	if i == 0 {
		return nil, fmt.Errorf("macro name missing")
	}
	m := &Macro{Name: payload[:i], Span: span}
	rest := payload[i:]
	if strings.HasPrefix(rest, "(") {
		m.FuncLike = true
		end := strings.IndexByte(rest, ')')
		if end < 0 {
			return nil, fmt.Errorf("missing ')' in parameter list of %s", m.Name)
		}
		if err := m.parseParams(rest[1:end]); err != nil {
			return nil, err
		}
		rest = rest[end+1:]
	} else if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return nil, fmt.Errorf("whitespace required after the name of %s", m.Name)
	}
	m.Body = lexText(strings.TrimSpace(rest), span.File)
	if isPaste(m.Body, 0) || isPaste(m.Body, len(m.Body)-2) {
		return nil, fmt.Errorf("'##' cannot appear at either end of a macro expansion")
	}
	return m, nil
}

func (m *Macro) parseParams(list string) error {
	list = strings.TrimSpace(list)
	if list == "" {
		return nil
	}
	for _, raw := range strings.Split(list, ",") {
		p := strings.TrimSpace(raw)
		if m.Variadic {
			return fmt.Errorf("'...' must be the last parameter of %s", m.Name)
		}
		switch {
		case p == "...":
			m.Variadic = true
			p = "__VA_ARGS__"
		case strings.HasSuffix(p, "..."):
			m.Variadic = true
			p = strings.TrimSpace(strings.TrimSuffix(p, "..."))
		}
		if p == "" || !isIdent(p) {
			return fmt.Errorf("invalid parameter %q in %s", raw, m.Name)
		}
		if m.param(p) >= 0 {
			return fmt.Errorf("duplicate parameter %q in %s", p, m.Name)
		}
		m.Params = append(m.Params, p)
	}
	return nil
}

// lexText tokenises text that is not part of any file (macro bodies,
// #if expressions). Spans are relative to text and get replaced on use.
func lexText(text string, file source.FileID) []token.Token {
	if text == "" {
		return nil
	}
	f := &source.File{ID: file, Content: []byte(text)}
	toks := lexer.New(f, lexer.Options{NoDirectives: true}).All()
	return toks[:len(toks)-1] // без EOF
}

func isIdentByte(b byte, first bool) bool {
	if b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') {
		return true
	}
	return !first && b >= '0' && b <= '9'
}

func isIdent(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isIdentByte(s[i], i == 0) {
			return false
		}
	}
	return s != ""
}

func isHash(toks []token.Token, i int) bool {
	return i >= 0 && i < len(toks) && toks[i].Kind == token.Hash
}

// isPaste reports whether toks[i] and toks[i+1] spell "##".
func isPaste(toks []token.Token, i int) bool {
	return isHash(toks, i) && isHash(toks, i+1) && toks[i].Span.End == toks[i+1].Span.Start
}
