package symbols

import (
	"testing"

	"tartan/internal/ctypes"
	"tartan/internal/diag"
	"tartan/internal/source"
)

func newResolver(t *testing.T) (*Resolver, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag(16)
	table := NewTable(ctypes.NewInterner(ctypes.LP64), Hints{})
	return NewResolver(table, diag.BagReporter{Bag: bag}), bag
}

func span(start uint32) source.Span {
	return source.Span{File: 1, Start: start, End: start + 1}
}

func TestResolverLifecycle(t *testing.T) {
	res, bag := newResolver(t)
	types := res.Table().Types
	gint := types.RegisterTypedef("gint", types.Builtin(ctypes.KindInt))

	if _, ok := res.Declare(Symbol{Name: "gint", Kind: SymbolTypedef, Type: gint, Span: span(1)}); !ok {
		t.Fatalf("declare typedef failed")
	}
	fn := res.Enter(ScopeFunction, span(2))
	if _, ok := res.Declare(Symbol{Name: "x", Kind: SymbolParam, Type: gint, Span: span(3)}); !ok {
		t.Fatalf("declare param failed")
	}
	block := res.Enter(ScopeBlock, span(4))
	// затенение typedef-имени переменной
	if _, ok := res.Declare(Symbol{Name: "gint", Kind: SymbolVar, Type: types.Builtin(ctypes.KindLong), Span: span(5)}); !ok {
		t.Fatalf("shadowing declaration failed")
	}
	if res.IsTypedefName("gint") {
		t.Fatalf("gint must be shadowed by the variable")
	}
	if sym, ok := res.Lookup("x"); !ok || sym.Kind != SymbolParam {
		t.Fatalf("lookup through scopes failed: %v", sym)
	}
	res.Leave(block)
	if !res.IsTypedefName("gint") {
		t.Fatalf("gint must be a type again after leaving the block")
	}
	res.Leave(fn)
	if _, ok := res.Lookup("x"); ok {
		t.Fatalf("parameter leaked out of its scope")
	}
	if res.Depth() != 1 {
		t.Fatalf("expected file scope only, depth %d", res.Depth())
	}
	if qt, ok := res.Table().LookupTypedef("gint"); !ok || qt != gint {
		t.Fatalf("LookupTypedef(gint) = %v, %v", qt, ok)
	}
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	if err := res.Table().Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestRedeclarationRules(t *testing.T) {
	res, bag := newResolver(t)
	types := res.Table().Types
	intT := types.Builtin(ctypes.KindInt)
	noProto := types.Function(ctypes.FuncInfo{Result: intT, NoProto: true})
	proto := types.Function(ctypes.FuncInfo{Result: intT, Params: []ctypes.QualType{intT}})

	// неявное объявление, затем прототип, затем определение
	first, _ := res.DeclareFile(Symbol{Name: "f", Kind: SymbolFunction, Type: noProto, Flags: SymbolFlagImplicit, Span: span(1)})
	second, ok := res.Declare(Symbol{Name: "f", Kind: SymbolFunction, Type: proto, Span: span(2)})
	if !ok || first != second {
		t.Fatalf("function redeclaration must merge")
	}
	sym := res.Table().Symbol(first)
	if sym.Type != proto || sym.Flags&SymbolFlagImplicit != 0 {
		t.Fatalf("prototype must replace the implicit declaration: %+v", sym)
	}
	res.Declare(Symbol{Name: "f", Kind: SymbolFunction, Type: proto, Flags: SymbolFlagDefined, Span: span(3)})
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	if _, ok := res.Declare(Symbol{Name: "f", Kind: SymbolFunction, Type: proto, Flags: SymbolFlagDefined, Span: span(4)}); ok {
		t.Fatalf("second body must be rejected")
	}

	// typedef повторно с тем же типом - можно, с другим - нельзя
	res.Declare(Symbol{Name: "T", Kind: SymbolTypedef, Type: intT, Span: span(5)})
	if _, ok := res.Declare(Symbol{Name: "T", Kind: SymbolTypedef, Type: intT, Span: span(6)}); !ok {
		t.Fatalf("identical typedef redeclaration must be accepted")
	}
	if _, ok := res.Declare(Symbol{Name: "T", Kind: SymbolTypedef, Type: types.Builtin(ctypes.KindLong), Span: span(7)}); ok {
		t.Fatalf("conflicting typedef must be rejected")
	}

	// переменная и функция с одним именем
	if _, ok := res.Declare(Symbol{Name: "f", Kind: SymbolVar, Type: intT, Span: span(8)}); ok {
		t.Fatalf("kind conflict must be rejected")
	}

	// в блоке повторное объявление переменной - ошибка
	res.Enter(ScopeBlock, span(9))
	res.Declare(Symbol{Name: "v", Kind: SymbolVar, Type: intT, Span: span(10)})
	if _, ok := res.Declare(Symbol{Name: "v", Kind: SymbolVar, Type: intT, Span: span(11)}); ok {
		t.Fatalf("block-scope redefinition must be rejected")
	}

	codes := make([]diag.Code, 0, bag.Len())
	for _, d := range bag.Items() {
		codes = append(codes, d.Code)
	}
	if len(codes) != 4 {
		t.Fatalf("expected 4 diagnostics, got %v", bag.Items())
	}
	for _, c := range codes {
		if c != diag.SemaRedefinition {
			t.Fatalf("unexpected code %v", c)
		}
	}
	if len(bag.Items()[0].Notes) != 1 {
		t.Fatalf("redefinition must point at the previous definition")
	}
}

func TestTentativeDefinitionsAtFileScope(t *testing.T) {
	res, bag := newResolver(t)
	intT := res.Table().Types.Builtin(ctypes.KindInt)
	res.Declare(Symbol{Name: "g", Kind: SymbolVar, Type: intT, Span: span(1)})
	res.Declare(Symbol{Name: "g", Kind: SymbolVar, Type: intT, Flags: SymbolFlagDefined, Span: span(2)})
	if bag.Len() != 0 {
		t.Fatalf("tentative definitions must merge: %v", bag.Items())
	}
}

func TestTags(t *testing.T) {
	res, _ := newResolver(t)
	types := res.Table().Types
	outer := types.Record("s", false)
	res.DeclareTag("s", outer)
	// тег и обычное имя живут в разных пространствах
	res.Declare(Symbol{Name: "s", Kind: SymbolVar, Type: outer, Span: span(1)})

	block := res.Enter(ScopeBlock, span(2))
	if _, ok := res.LookupTagLocal("s"); ok {
		t.Fatalf("outer tag must not be local to the block")
	}
	inner := types.Record("s#2", false)
	res.DeclareTag("s", inner)
	if qt, _ := res.LookupTag("s"); qt != inner {
		t.Fatalf("inner tag must shadow the outer one")
	}
	res.Leave(block)
	if qt, _ := res.LookupTag("s"); qt != outer {
		t.Fatalf("outer tag must be visible again")
	}
}

func TestFunctionsInOrder(t *testing.T) {
	res, _ := newResolver(t)
	types := res.Table().Types
	fn := types.Function(ctypes.FuncInfo{Result: types.Builtin(ctypes.KindVoid)})
	for i, name := range []string{"b", "a", "c"} {
		res.Declare(Symbol{Name: name, Kind: SymbolFunction, Type: fn, Span: span(uint32(i))})
	}
	res.Declare(Symbol{Name: "v", Kind: SymbolVar, Type: types.Builtin(ctypes.KindInt)})
	got := res.Table().Functions()
	if len(got) != 3 || got[0].Name != "b" || got[1].Name != "a" || got[2].Name != "c" {
		t.Fatalf("Functions() = %v", got)
	}
}

func TestFlagsStrings(t *testing.T) {
	f := SymbolFlagPrelude | SymbolFlagDefined
	got := f.Strings()
	if len(got) != 2 || got[0] != "prelude" || got[1] != "defined" {
		t.Fatalf("Strings() = %v", got)
	}
	if SymbolFlags(0).Strings() != nil {
		t.Fatalf("empty flags must yield nil")
	}
	if SymbolEnumConst.String() != "enumerator" || ScopePrototype.String() != "prototype" {
		t.Fatalf("kind names changed")
	}
}
