package symbols

import (
	"errors"
	"fmt"
	"slices"
)

// Validate checks the structural invariants of the table: parent and child
// links agree, name indexes match symbol lists, and every symbol is
// reachable by name from its scope. All problems are joined into one error.
func (t *Table) Validate() error {
	var errs []error
	report := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	for id, scope := range t.Scopes.all() {
		if scope.Kind == ScopeInvalid {
			report("scope %d has invalid kind", id)
		}
		switch parent := t.Scopes.Get(scope.Parent); {
		case !scope.Parent.IsValid():
			if scope.Kind != ScopeFile {
				report("scope %d (%s) has no parent", id, scope.Kind)
			}
		case parent == nil || scope.Parent == id:
			report("scope %d has invalid parent %d", id, scope.Parent)
		case !slices.Contains(parent.Children, id):
			report("scope %d parent %d missing backlink", id, scope.Parent)
		}
		for name, sym := range scope.NameIndex {
			if !slices.Contains(scope.Symbols, sym) {
				report("scope %d name index %q references missing symbol %d", id, name, sym)
			}
		}
		if len(scope.NameIndex) != len(scope.Symbols) {
			report("scope %d indexes %d names for %d symbols", id, len(scope.NameIndex), len(scope.Symbols))
		}
	}

	for id, sym := range t.Symbols.all() {
		scope := t.Scopes.Get(sym.Scope)
		if scope == nil {
			report("symbol %d has invalid scope %d", id, sym.Scope)
			continue
		}
		if scope.NameIndex[sym.Name] != id {
			report("symbol %d (%s) is missing from scope %d", id, sym.Name, sym.Scope)
		}
	}
	return errors.Join(errs...)
}
