package symbols

import (
	"fmt"

	"tartan/internal/diag"
	"tartan/internal/source"
)

// Resolver drives scope management and declaration/lookup routines.
type Resolver struct {
	table    *Table
	reporter diag.Reporter
	stack    []ScopeID
}

// NewResolver wires a resolver to table, starting in its file scope.
func NewResolver(table *Table, reporter diag.Reporter) *Resolver {
	r := &Resolver{
		table:    table,
		reporter: reporter,
		stack:    make([]ScopeID, 0, 8),
	}
	r.stack = append(r.stack, table.FileScope())
	return r
}

// Table returns the table the resolver writes to.
func (r *Resolver) Table() *Table {
	return r.table
}

// CurrentScope returns the scope at the top of the stack.
func (r *Resolver) CurrentScope() ScopeID {
	if len(r.stack) == 0 {
		return NoScopeID
	}
	return r.stack[len(r.stack)-1]
}

// Depth is the number of scopes on the stack; 1 means file scope.
func (r *Resolver) Depth() int {
	return len(r.stack)
}

// Enter creates a child scope, pushes it onto the stack, and returns its ID.
func (r *Resolver) Enter(kind ScopeKind, span source.Span) ScopeID {
	scope := r.table.Scopes.New(kind, r.CurrentScope(), span)
	r.stack = append(r.stack, scope)
	return scope
}

// Leave pops the current scope. The file scope is never popped.
func (r *Resolver) Leave(expected ScopeID) {
	if len(r.stack) <= 1 {
		return
	}
	top := r.stack[len(r.stack)-1]
	if expected.IsValid() && top != expected {
		panic(fmt.Sprintf("symbols: leaving scope %d while %d is current", expected, top))
	}
	r.stack = r.stack[:len(r.stack)-1]
}

// Declare installs sym into the current scope following the C rules for
// redeclaration. When an earlier compatible declaration exists it is
// updated and returned; conflicts are reported and yield false.
func (r *Resolver) Declare(sym Symbol) (SymbolID, bool) {
	return r.declareIn(r.CurrentScope(), sym)
}

// DeclareFile installs sym into the file scope regardless of the current
// scope, as C does for implicitly declared functions.
func (r *Resolver) DeclareFile(sym Symbol) (SymbolID, bool) {
	return r.declareIn(r.table.FileScope(), sym)
}

func (r *Resolver) declareIn(scopeID ScopeID, sym Symbol) (SymbolID, bool) {
	scope := r.table.Scopes.Get(scopeID)
	if scope == nil {
		return NoSymbolID, false
	}
	if prevID, ok := scope.NameIndex[sym.Name]; ok {
		prev := r.table.Symbols.Get(prevID)
		if r.merge(scope.Kind, prev, &sym) {
			return prevID, true
		}
		return NoSymbolID, false
	}
	sym.Scope = scopeID
	id := r.table.Symbols.New(&sym)
	scope.Symbols = append(scope.Symbols, id)
	scope.NameIndex[sym.Name] = id
	return id, true
}

// merge folds next into prev when C allows the redeclaration.
func (r *Resolver) merge(scope ScopeKind, prev, next *Symbol) bool {
	types := r.table.Types
	if prev.Kind != next.Kind {
		r.reportRedefinition(next, prev, fmt.Sprintf("redefinition of '%s' as different kind of symbol", next.Name))
		return false
	}
	switch next.Kind {
	case SymbolTypedef:
		if !types.SameType(prev.Type, next.Type) {
			r.reportRedefinition(next, prev, fmt.Sprintf("typedef redefinition with different types (%s vs %s)",
				types.Quoted(next.Type), types.Quoted(prev.Type)))
			return false
		}
		return true
	case SymbolFunction:
		if prev.Flags&SymbolFlagDefined != 0 && next.Flags&SymbolFlagDefined != 0 {
			r.reportRedefinition(next, prev, fmt.Sprintf("redefinition of '%s'", next.Name))
			return false
		}
		// прототип вытесняет неявное объявление и K&R форму
		if info, ok := types.FuncInfo(types.Desugar(prev.Type).ID); ok && (info.NoProto || prev.Flags&SymbolFlagImplicit != 0) {
			prev.Type = next.Type
			prev.Flags &^= SymbolFlagImplicit
		}
		prev.Flags |= next.Flags & SymbolFlagDefined
		if next.Flags&SymbolFlagDefined != 0 {
			prev.Span = next.Span
		}
		return true
	case SymbolVar:
		external := prev.Flags&SymbolFlagExtern != 0 || next.Flags&SymbolFlagExtern != 0
		if scope != ScopeFile && !external {
			r.reportRedefinition(next, prev, fmt.Sprintf("redefinition of '%s'", next.Name))
			return false
		}
		if prev.Flags&SymbolFlagDefined != 0 && next.Flags&SymbolFlagDefined != 0 {
			r.reportRedefinition(next, prev, fmt.Sprintf("redefinition of '%s'", next.Name))
			return false
		}
		prev.Flags |= next.Flags & SymbolFlagDefined
		return true
	default:
		r.reportRedefinition(next, prev, fmt.Sprintf("redefinition of '%s'", next.Name))
		return false
	}
}

// Lookup walks the scope chain searching for an ordinary identifier.
func (r *Resolver) Lookup(name string) (*Symbol, bool) {
	for i := len(r.stack) - 1; i >= 0; i-- {
		scope := r.table.Scopes.Get(r.stack[i])
		if id, ok := scope.NameIndex[name]; ok {
			return r.table.Symbols.Get(id), true
		}
	}
	return nil, false
}

// IsTypedefName reports whether name currently denotes a type.
func (r *Resolver) IsTypedefName(name string) bool {
	sym, ok := r.Lookup(name)
	return ok && sym.Kind == SymbolTypedef
}
