package gvariant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable(t *testing.T) {
	tab := DefaultTable()
	assert.Equal(t, 9, tab.Len())

	sig, ok := tab.Lookup("g_variant_get_child")
	require.True(t, ok)
	assert.Equal(t, Signature{Name: "g_variant_get_child", FormatParam: 2, FirstVararg: 3}, sig)
	assert.Equal(t, "out", sig.Direction())

	sig, ok = tab.Lookup("g_variant_new_va")
	require.True(t, ok)
	assert.True(t, sig.UsesVaList)
	assert.True(t, sig.ArgsIn)

	for _, name := range []string{"", "printf", "g_variant_new_tuple", "h_variant_new"} {
		_, ok := tab.Lookup(name)
		assert.False(t, ok, name)
	}
}

func TestTableRejectsBadSignatures(t *testing.T) {
	_, err := NewTable(Signature{Name: "f", FormatParam: 1, FirstVararg: 1})
	assert.Error(t, err)

	_, err = NewTable(Signature{FormatParam: 0, FirstVararg: 1})
	assert.Error(t, err)

	_, err = DefaultTable().With(Signature{Name: "g_variant_new", FormatParam: 0, FirstVararg: 1})
	assert.ErrorContains(t, err, "registered twice")
}

func TestTableWith(t *testing.T) {
	extra := Signature{Name: "my_variant_build", FormatParam: 1, FirstVararg: 2, ArgsIn: true}
	tab, err := DefaultTable().With(extra)
	require.NoError(t, err)

	sig, ok := tab.Lookup("my_variant_build")
	require.True(t, ok)
	assert.Equal(t, extra, sig)
	assert.Equal(t, 10, tab.Len())
	assert.Equal(t, "my_variant_build", tab.All()[9].Name)
	assert.Equal(t, 9, DefaultTable().Len())
	assert.NotEqual(t, DefaultTable().Fingerprint(), tab.Fingerprint())
}

func TestFingerprintIgnoresOrder(t *testing.T) {
	sigs := DefaultSignatures()
	reversed := make([]Signature, len(sigs))
	for i, s := range sigs {
		reversed[len(sigs)-1-i] = s
	}
	a, err := NewTable(sigs...)
	require.NoError(t, err)
	b, err := NewTable(reversed...)
	require.NoError(t, err)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestFlags(t *testing.T) {
	base := FlagConsumeArgs | FlagDirectionOut
	derived := base.With(FlagAllowMaybe).Without(FlagConsumeArgs)

	assert.Equal(t, "consume|out", base.String())
	assert.Equal(t, "out|maybe", derived.String())
	assert.Equal(t, "none", Flags(0).String())
	assert.True(t, base.Has(FlagConsumeArgs|FlagDirectionOut))
	assert.False(t, base.Has(FlagConsumeArgs|FlagAllowMaybe))
}

func TestRender(t *testing.T) {
	f := newFixture(t)
	r := &Report{
		Template: "%0 then %1 then %3",
		Args:     []Subst{TypeArg(f.ptr(f.named("gint32"), 1)), TextArg("‘x’")},
	}
	assert.Equal(t, "'gint32 *' (aka 'int *') then ‘x’ then %3", Render(r, f.in))
	assert.Equal(t, "<type> then ‘x’ then %3", Render(r, nil))
}
