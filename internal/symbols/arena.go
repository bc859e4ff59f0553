package symbols

import (
	"fmt"
	"iter"

	"fortio.org/safecast"

	"tartan/internal/ctypes"
	"tartan/internal/source"
)

// ScopeID identifies a scope in the table; 0 means none.
type ScopeID uint32

// NoScopeID marks the absence of a scope reference.
const NoScopeID ScopeID = 0

// IsValid reports whether id refers to an allocated scope.
func (id ScopeID) IsValid() bool { return id != NoScopeID }

// SymbolID identifies a symbol in the table; 0 means none.
type SymbolID uint32

// NoSymbolID marks the absence of a symbol reference.
const NoSymbolID SymbolID = 0

// IsValid reports whether id refers to an allocated symbol.
func (id SymbolID) IsValid() bool { return id != NoSymbolID }

// arena is an append-only slice whose slot 0 is a sentinel, so the zero ID
// never names a live element.
type arena[ID ~uint32, T any] struct {
	data []T
}

func newArena[ID ~uint32, T any](capacity uint32) arena[ID, T] {
	return arena[ID, T]{data: make([]T, 1, capacity+1)}
}

func (a *arena[ID, T]) push(v T) ID {
	n, err := safecast.Conv[uint32](len(a.data))
	if err != nil {
		panic(fmt.Errorf("arena overflow: %w", err))
	}
	a.data = append(a.data, v)
	return ID(n)
}

func (a *arena[ID, T]) get(id ID) *T {
	if id == 0 || int(id) >= len(a.data) {
		return nil
	}
	return &a.data[id]
}

func (a *arena[ID, T]) len() int { return len(a.data) - 1 }

// all yields live elements in allocation order.
func (a *arena[ID, T]) all() iter.Seq2[ID, *T] {
	return func(yield func(ID, *T) bool) {
		for i := 1; i < len(a.data); i++ {
			if !yield(ID(i), &a.data[i]) { //nolint:gosec // i < len(data), which push keeps within uint32
				return
			}
		}
	}
}

// Scopes stores every scope of a table.
type Scopes struct {
	arena[ScopeID, Scope]
}

// NewScopes creates a scope arena; capacity is a hint.
func NewScopes(capacity uint32) *Scopes {
	return &Scopes{newArena[ScopeID, Scope](max(capacity, 32))}
}

// New allocates a scope under parent and links it as parent's child.
func (s *Scopes) New(kind ScopeKind, parent ScopeID, span source.Span) ScopeID {
	id := s.push(Scope{
		Kind:      kind,
		Parent:    parent,
		Span:      span,
		NameIndex: make(map[string]SymbolID),
		Tags:      make(map[string]ctypes.QualType),
	})
	if p := s.get(parent); p != nil {
		p.Children = append(p.Children, id)
	}
	return id
}

// Get returns the scope, or nil for an invalid ID.
func (s *Scopes) Get(id ScopeID) *Scope { return s.get(id) }

// Len reports the number of scopes.
func (s *Scopes) Len() int { return s.len() }

// Symbols stores every declared symbol of a table.
type Symbols struct {
	arena[SymbolID, Symbol]
}

// NewSymbols creates a symbol arena; capacity is a hint.
func NewSymbols(capacity uint32) *Symbols {
	return &Symbols{newArena[SymbolID, Symbol](max(capacity, 64))}
}

// New copies sym into the arena.
func (s *Symbols) New(sym *Symbol) SymbolID {
	if sym == nil {
		panic("symbols.New: nil symbol")
	}
	return s.push(*sym)
}

// Get returns the symbol, or nil for an invalid ID.
func (s *Symbols) Get(id SymbolID) *Symbol { return s.get(id) }

// Len reports the number of symbols.
func (s *Symbols) Len() int { return s.len() }

// Data exposes the stored symbols in allocation order.
func (s *Symbols) Data() []Symbol {
	if len(s.data) <= 1 {
		return nil
	}
	return s.data[1:]
}
