package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"tartan/internal/ctypes"
	"tartan/internal/source"
)

// Hints provide optional capacity suggestions for the symbol table arenas.
type Hints struct{ Scopes, Symbols uint }

// Table aggregates the scope and symbol arenas of one translation unit.
type Table struct {
	Scopes  *Scopes
	Symbols *Symbols
	Types   *ctypes.Interner
	file    ScopeID
}

// NewTable builds a fresh table with its file scope already allocated.
func NewTable(types *ctypes.Interner, h Hints) *Table {
	scopeCap, err := safecast.Conv[uint32](h.Scopes)
	if err != nil {
		panic(fmt.Errorf("scope capacity overflow: %w", err))
	}
	symCap, err := safecast.Conv[uint32](h.Symbols)
	if err != nil {
		panic(fmt.Errorf("symbol capacity overflow: %w", err))
	}
	t := &Table{
		Scopes:  NewScopes(scopeCap),
		Symbols: NewSymbols(symCap),
		Types:   types,
	}
	t.file = t.Scopes.New(ScopeFile, NoScopeID, source.Span{})
	return t
}

// FileScope returns the translation-unit scope.
func (t *Table) FileScope() ScopeID {
	return t.file
}

// Symbol returns the symbol with the given id or nil.
func (t *Table) Symbol(id SymbolID) *Symbol {
	return t.Symbols.Get(id)
}

// LookupFile resolves name in the file scope only.
func (t *Table) LookupFile(name string) (*Symbol, bool) {
	scope := t.Scopes.Get(t.file)
	id, ok := scope.NameIndex[name]
	if !ok {
		return nil, false
	}
	return t.Symbols.Get(id), true
}

// LookupTypedef resolves a file-scope typedef by name. Block-scope
// typedefs are invisible here: library type names always refer to the
// declarations of the translation unit.
func (t *Table) LookupTypedef(name string) (ctypes.QualType, bool) {
	sym, ok := t.LookupFile(name)
	if !ok || sym.Kind != SymbolTypedef {
		return ctypes.QualType{}, false
	}
	return sym.Type, true
}

// Functions returns every function declared at file scope, in declaration order.
func (t *Table) Functions() []*Symbol {
	scope := t.Scopes.Get(t.file)
	out := make([]*Symbol, 0, len(scope.Symbols))
	for _, id := range scope.Symbols {
		if sym := t.Symbols.Get(id); sym != nil && sym.Kind == SymbolFunction {
			out = append(out, sym)
		}
	}
	return out
}
