package parser

import (
	"cmp"
	"fmt"
	"slices"

	"tartan/internal/cpp"
	"tartan/internal/ctypes"
	"tartan/internal/diag"
	"tartan/internal/gvariant"
	"tartan/internal/lexer"
	"tartan/internal/sema"
	"tartan/internal/source"
	"tartan/internal/symbols"
	"tartan/internal/token"
)

// TokenSource выдаёт токены после препроцессора.
type TokenSource interface {
	Next() token.Token
}

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
	// Track selects the callees whose call sites are recorded. Nil records
	// every direct call.
	Track func(name string) bool
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

// Parser - состояние парсера на одну единицу трансляции
type Parser struct {
	src      TokenSource
	buf      []token.Token // lookahead
	fs       *source.FileSet
	opts     Options
	lastSpan source.Span

	types   *ctypes.Interner
	typer   *sema.Typer
	res     *symbols.Resolver
	calls   []gvariant.Call
	direct  directRef
	prelude bool // объявления получают SymbolFlagPrelude
	// funcName is the function whose body is being parsed, for __func__.
	funcName string
}

// Unit is a parsed translation unit.
type Unit struct {
	File     source.FileID
	Types    *ctypes.Interner
	Table    *symbols.Table
	Macros   *cpp.Table
	Includes []cpp.Include
	// Calls are the recorded call sites in source order.
	Calls []gvariant.Call
}

// Typedef is an extra typedef prepended to the prelude.
type Typedef struct {
	Name string
	Type string // C spelling, e.g. "unsigned long" or "char *"
}

// Config describes how a translation unit is parsed.
type Config struct {
	Target   ctypes.Target
	Defines  []string // "NAME" or "NAME=VALUE"
	Typedefs []Typedef
	// NoPrelude skips the built-in GLib declarations.
	NoPrelude bool
	Options   Options
}

// ParseUnit parses file: first the GLib prelude, then the file itself,
// sharing one macro table and one symbol table. Problems in the source
// are reported through cfg.Options.Reporter; the returned error covers
// configuration only (bad -D flags, bad extra typedefs).
func ParseUnit(fs *source.FileSet, file source.FileID, cfg Config) (*Unit, error) {
	if cfg.Target.Name == "" {
		cfg.Target = ctypes.LP64
	}
	in := ctypes.NewInterner(cfg.Target)
	table := symbols.NewTable(in, symbols.Hints{Scopes: 64, Symbols: 512})
	macros := cpp.NewTable()
	macros.Predefine(cfg.Target)
	if err := defineTargetMacros(macros, cfg.Target); err != nil {
		return nil, err
	}
	for _, def := range cfg.Defines {
		if err := macros.DefineFlag(def); err != nil {
			return nil, err
		}
	}

	p := &Parser{
		fs:    fs,
		opts:  cfg.Options,
		types: in,
		typer: sema.New(in),
	}

	if !cfg.NoPrelude {
		if err := p.parsePrelude(cfg, table, macros); err != nil {
			return nil, err
		}
	}

	p.res = symbols.NewResolver(table, cfg.Options.Reporter)
	lx := lexer.New(fs.Get(file), lexer.Options{Reporter: cfg.Options.Reporter})
	pp := cpp.New(lx, macros, cfg.Options.Reporter)
	p.reset(pp)
	p.parseTranslationUnit()

	slices.SortStableFunc(p.calls, func(a, b gvariant.Call) int {
		return cmp.Compare(a.Span.Start, b.Span.Start)
	})
	return &Unit{
		File:     file,
		Types:    in,
		Table:    table,
		Macros:   macros,
		Includes: pp.Includes(),
		Calls:    p.calls,
	}, nil
}

func (p *Parser) parsePrelude(cfg Config, table *symbols.Table, macros *cpp.Table) error {
	text := Prelude(cfg.Typedefs)
	id := p.fs.AddVirtual(PreludeName, []byte(text))
	bag := diag.NewBag(16)
	reporter := diag.BagReporter{Bag: bag}

	saved := p.opts
	p.opts = Options{Reporter: reporter, Track: func(string) bool { return false }}
	p.res = symbols.NewResolver(table, reporter)
	p.prelude = true
	lx := lexer.New(p.fs.Get(id), lexer.Options{Reporter: reporter})
	p.reset(cpp.New(lx, macros, reporter))
	p.parseTranslationUnit()
	p.prelude = false
	p.opts = saved

	if bag.HasErrors() {
		first := bag.Items()[0]
		start, _ := p.fs.Resolve(first.Primary)
		return fmt.Errorf("prelude line %d: %s", start.Line, first.Message)
	}
	return nil
}

func (p *Parser) reset(src TokenSource) {
	p.src = src
	p.buf = p.buf[:0]
	p.lastSpan = source.Span{}
}

// parseTranslationUnit - основной цикл верхнего уровня: пока не EOF - внешнее объявление.
func (p *Parser) parseTranslationUnit() {
	for !p.at(token.EOF) {
		if p.at(token.Semicolon) {
			p.advance() // пустое объявление
			continue
		}
		if !p.parseExternalDecl() {
			p.resyncTop()
		}
	}
}

// resyncTop - восстановление после ошибки на верхнем уровне:
// прокручиваем до ';' или до лишней '}' и съедаем её.
func (p *Parser) resyncTop() {
	p.resyncUntil(token.Semicolon)
	if p.at_or(token.Semicolon, token.RBrace) {
		p.advance()
	}
}

// record stores a call site when its callee is tracked.
func (p *Parser) record(call gvariant.Call) {
	if p.opts.Track != nil && !p.opts.Track(call.Callee) {
		return
	}
	p.calls = append(p.calls, call)
}
