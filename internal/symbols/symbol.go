package symbols

import (
	"tartan/internal/ctypes"
	"tartan/internal/source"
)

// SymbolKind classifies an ordinary identifier.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolVar
	SymbolParam
	SymbolFunction
	SymbolTypedef
	SymbolEnumConst
)

// SymbolFlags encode misc attributes for quick checks.
type SymbolFlags uint8

const (
	// SymbolFlagPrelude marks declarations of the built-in GLib prelude.
	SymbolFlagPrelude SymbolFlags = 1 << iota
	// SymbolFlagImplicit marks functions declared by their first call.
	SymbolFlagImplicit
	// SymbolFlagDefined marks functions with a body and initialised objects.
	SymbolFlagDefined
	SymbolFlagExtern
	SymbolFlagStatic
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolVar:
		return "variable"
	case SymbolParam:
		return "parameter"
	case SymbolFunction:
		return "function"
	case SymbolTypedef:
		return "typedef"
	case SymbolEnumConst:
		return "enumerator"
	default:
		return "invalid"
	}
}

// Strings returns a slice of textual flag labels.
func (f SymbolFlags) Strings() []string {
	if f == 0 {
		return nil
	}
	labels := make([]string, 0, 3)
	if f&SymbolFlagPrelude != 0 {
		labels = append(labels, "prelude")
	}
	if f&SymbolFlagImplicit != 0 {
		labels = append(labels, "implicit")
	}
	if f&SymbolFlagDefined != 0 {
		labels = append(labels, "defined")
	}
	if f&SymbolFlagExtern != 0 {
		labels = append(labels, "extern")
	}
	if f&SymbolFlagStatic != 0 {
		labels = append(labels, "static")
	}
	return labels
}

// Symbol is one declared ordinary identifier.
type Symbol struct {
	Name  string
	Kind  SymbolKind
	Scope ScopeID
	Span  source.Span
	Flags SymbolFlags
	Type  ctypes.QualType
	// Value holds the value of an enumerator.
	Value int64
}
