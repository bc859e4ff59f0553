package symbols

import (
	"tartan/internal/ctypes"
	"tartan/internal/source"
)

// ScopeKind enumerates C scope categories.
type ScopeKind uint8

const (
	ScopeInvalid   ScopeKind = iota
	ScopeFile                // translation unit, prelude included
	ScopeFunction            // parameters and outermost block of a body
	ScopePrototype           // parameter list of a declaration without body
	ScopeBlock               // compound statement, for-init
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeFile:
		return "file"
	case ScopeFunction:
		return "function"
	case ScopePrototype:
		return "prototype"
	case ScopeBlock:
		return "block"
	default:
		return "invalid"
	}
}

// Scope models a lexical scope. C keeps struct/union/enum tags in a
// namespace of their own, so each scope has two name indexes.
type Scope struct {
	Kind      ScopeKind
	Parent    ScopeID
	Span      source.Span
	NameIndex map[string]SymbolID
	Tags      map[string]ctypes.QualType
	Symbols   []SymbolID
	Children  []ScopeID
}
