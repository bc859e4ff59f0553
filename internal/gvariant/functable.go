package gvariant

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Signature describes how a GVariant function takes its format string.
// Indices count from zero over the call's arguments.
type Signature struct {
	Name        string `toml:"name"`
	FormatParam int    `toml:"format_param"`
	FirstVararg int    `toml:"first_vararg"`
	UsesVaList  bool   `toml:"va_list"`
	// ArgsIn is true when the variadic arguments are values going into a
	// variant and false when they are locations the call writes to.
	ArgsIn bool `toml:"args_in"`
}

// Direction spells ArgsIn for listings.
func (s Signature) Direction() string {
	if s.ArgsIn {
		return "in"
	}
	return "out"
}

func (s Signature) validate() error {
	switch {
	case s.Name == "":
		return fmt.Errorf("function signature has no name")
	case s.FormatParam < 0:
		return fmt.Errorf("%s: format parameter index %d is negative", s.Name, s.FormatParam)
	case s.FirstVararg <= s.FormatParam:
		return fmt.Errorf("%s: first variadic index %d must come after the format parameter %d",
			s.Name, s.FirstVararg, s.FormatParam)
	}
	return nil
}

var defaultSignatures = []Signature{
	{Name: "g_variant_new", FormatParam: 0, FirstVararg: 1, ArgsIn: true},
	{Name: "g_variant_new_va", FormatParam: 0, FirstVararg: 2, UsesVaList: true, ArgsIn: true},
	{Name: "g_variant_get", FormatParam: 1, FirstVararg: 2},
	{Name: "g_variant_get_va", FormatParam: 1, FirstVararg: 3, UsesVaList: true},
	{Name: "g_variant_get_child", FormatParam: 2, FirstVararg: 3},
	{Name: "g_variant_lookup", FormatParam: 2, FirstVararg: 3},
	{Name: "g_variant_iter_next", FormatParam: 1, FirstVararg: 2},
	{Name: "g_variant_iter_loop", FormatParam: 1, FirstVararg: 2},
	{Name: "g_variant_builder_add", FormatParam: 1, FirstVararg: 2, ArgsIn: true},
}

// DefaultSignatures returns a copy of the GLib functions checked out of the box.
func DefaultSignatures() []Signature {
	out := make([]Signature, len(defaultSignatures))
	copy(out, defaultSignatures)
	return out
}

// Table is a read-only registry of checked functions.
type Table struct {
	byName map[string]Signature
	order  []string
	// lead holds the first bytes of every registered name, so most
	// callees are rejected without a map lookup.
	lead [256]bool
}

// NewTable builds a table from sigs. Names must be unique.
func NewTable(sigs ...Signature) (*Table, error) {
	t := &Table{byName: make(map[string]Signature, len(sigs))}
	for _, sig := range sigs {
		if err := sig.validate(); err != nil {
			return nil, err
		}
		if _, dup := t.byName[sig.Name]; dup {
			return nil, fmt.Errorf("function %s registered twice", sig.Name)
		}
		t.byName[sig.Name] = sig
		t.order = append(t.order, sig.Name)
		t.lead[sig.Name[0]] = true
	}
	return t, nil
}

var defaultTable = sync.OnceValue(func() *Table {
	t, err := NewTable(defaultSignatures...)
	if err != nil {
		panic(err)
	}
	return t
})

// DefaultTable returns the shared table of GLib functions.
func DefaultTable() *Table {
	return defaultTable()
}

// With returns a new table holding t's entries followed by extra.
// An extra entry may not redefine an existing one.
func (t *Table) With(extra ...Signature) (*Table, error) {
	return NewTable(append(t.All(), extra...)...)
}

// Lookup returns the signature registered under name.
func (t *Table) Lookup(name string) (Signature, bool) {
	if name == "" || !t.lead[name[0]] {
		return Signature{}, false
	}
	sig, ok := t.byName[name]
	return sig, ok
}

// Len returns the number of registered functions.
func (t *Table) Len() int {
	return len(t.order)
}

// All returns the registered signatures in registration order.
func (t *Table) All() []Signature {
	out := make([]Signature, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.byName[name])
	}
	return out
}

// Fingerprint identifies the table contents independent of registration
// order. Results computed against one table are reusable only under the
// same fingerprint.
func (t *Table) Fingerprint() string {
	names := append([]string(nil), t.order...)
	sort.Strings(names)
	var sb strings.Builder
	for _, name := range names {
		s := t.byName[name]
		fmt.Fprintf(&sb, "%s/%d/%d/%t/%t\n", s.Name, s.FormatParam, s.FirstVararg, s.UsesVaList, s.ArgsIn)
	}
	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:8])
}
