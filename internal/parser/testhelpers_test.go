package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"tartan/internal/diag"
	"tartan/internal/gvariant"
	"tartan/internal/source"
)

func diagnosticsSummary(bag *diag.Bag) string {
	if bag == nil {
		return "<nil bag>"
	}
	diags := bag.Items()
	if len(diags) == 0 {
		return "<none>"
	}
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = fmt.Sprintf("[%s] %s", d.Code.ID(), d.Message)
	}
	return strings.Join(lines, "; ")
}

type parsed struct {
	unit *Unit
	bag  *diag.Bag
	fs   *source.FileSet
}

func parseWith(t *testing.T, src string, cfg Config) parsed {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.c", []byte(src))
	bag := diag.NewBag(64)
	cfg.Options.Reporter = diag.BagReporter{Bag: bag}
	unit, err := ParseUnit(fs, id, cfg)
	require.NoError(t, err)
	return parsed{unit: unit, bag: bag, fs: fs}
}

func parseSource(t *testing.T, src string) parsed {
	t.Helper()
	return parseWith(t, src, Config{})
}

func (r parsed) messages() []string {
	var out []string
	for _, d := range r.bag.Items() {
		out = append(out, d.Message)
	}
	return out
}

func (r parsed) requireClean(t *testing.T) {
	t.Helper()
	require.Equal(t, 0, r.bag.Len(), diagnosticsSummary(r.bag))
}

// labels renders the argument types of call as written in diagnostics.
func (r parsed) labels(call gvariant.Call) []string {
	out := make([]string, len(call.Args))
	for i, a := range call.Args {
		out[i] = r.unit.Types.Label(a.Type)
	}
	return out
}

func (r parsed) text(sp source.Span) string {
	return r.fs.Text(sp)
}
