package symbols

import (
	"tartan/internal/ctypes"
)

// LookupTag walks the scope chain searching the tag namespace.
func (r *Resolver) LookupTag(name string) (ctypes.QualType, bool) {
	for i := len(r.stack) - 1; i >= 0; i-- {
		if qt, ok := r.table.Scopes.Get(r.stack[i]).Tags[name]; ok {
			return qt, true
		}
	}
	return ctypes.QualType{}, false
}

// LookupTagLocal searches the tag namespace of the current scope only.
func (r *Resolver) LookupTagLocal(name string) (ctypes.QualType, bool) {
	qt, ok := r.table.Scopes.Get(r.CurrentScope()).Tags[name]
	return qt, ok
}

// DeclareTag binds a struct, union or enum tag in the current scope.
func (r *Resolver) DeclareTag(name string, qt ctypes.QualType) {
	r.table.Scopes.Get(r.CurrentScope()).Tags[name] = qt
}
