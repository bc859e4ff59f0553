// Package typemgr resolves library type names such as "gint32" or
// "GVariant" to types of a translation unit, caching the answers.
package typemgr

import (
	"sync"

	"tartan/internal/ctypes"
)

// Scope is the file-level typedef namespace of a translation unit.
type Scope interface {
	LookupTypedef(name string) (ctypes.QualType, bool)
}

// Manager memoizes typedef lookups by name. A missing name resolves to the
// null QualType and is cached as such.
type Manager struct {
	types *ctypes.Interner
	scope Scope

	mu       sync.RWMutex
	byName   map[string]ctypes.QualType
	pointers map[string]ctypes.QualType
}

// New returns a Manager answering from scope.
func New(types *ctypes.Interner, scope Scope) *Manager {
	return &Manager{
		types:    types,
		scope:    scope,
		byName:   make(map[string]ctypes.QualType),
		pointers: make(map[string]ctypes.QualType),
	}
}

// Types returns the interner the resolved types belong to.
func (m *Manager) Types() *ctypes.Interner {
	return m.types
}

// TypeByName returns the typedef type called name.
func (m *Manager) TypeByName(name string) ctypes.QualType {
	m.mu.RLock()
	qt, ok := m.byName[name]
	m.mu.RUnlock()
	if ok {
		return qt
	}

	qt, _ = m.scope.LookupTypedef(name)
	m.mu.Lock()
	m.byName[name] = qt
	m.mu.Unlock()
	return qt
}

// PointerTypeByName returns a pointer to the typedef type called name.
func (m *Manager) PointerTypeByName(name string) ctypes.QualType {
	m.mu.RLock()
	qt, ok := m.pointers[name]
	m.mu.RUnlock()
	if ok {
		return qt
	}

	base := m.TypeByName(name)
	if !base.IsNull() {
		qt = m.types.PointerTo(base)
	}
	m.mu.Lock()
	m.pointers[name] = qt
	m.mu.Unlock()
	return qt
}
