package casefile

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `/* Template: gvariant */

/*
 * No error
 */
{
	gchar *str = NULL;
	g_variant_get (existing_variant, "s", &str);
}

/*
 * Expected a GVariant variadic argument of type 'gint32 *' (aka 'int *') but there wasn’t one.
 *         g_variant_get (existing_variant, "invalid");
 *                        ^
 */
{
	g_variant_get (existing_variant, "invalid");
}
`

func TestParseSections(t *testing.T) {
	f, err := Parse("tests/gvariant-get.c", []byte(sample))
	require.NoError(t, err)
	assert.Equal(t, "gvariant", f.Template)
	require.Len(t, f.Cases, 2)

	first := f.Cases[0]
	assert.Equal(t, "gvariant-get.c section 0", first.Name)
	assert.Equal(t, 3, first.Line)
	assert.True(t, first.NoError())
	assert.Equal(t, "/*", first.Lines[0])
	assert.Equal(t, "}", first.Lines[len(first.Lines)-2])
	assert.Equal(t, "", first.Lines[len(first.Lines)-1])

	second := f.Cases[1]
	assert.False(t, second.NoError())
	assert.Equal(t, []string{
		"Expected a GVariant variadic argument of type 'gint32 *' (aka 'int *') but there wasn’t one.",
		"        g_variant_get (existing_variant, \"invalid\");",
		"                       ^",
	}, second.Expected)
}

func TestParseWithoutHeader(t *testing.T) {
	src := "/*\n * No error\n */\n{\n}\n"
	f, err := Parse("lookup.c", []byte(src))
	require.NoError(t, err)
	assert.Equal(t, DefaultTemplate, f.Template)
	require.Len(t, f.Cases, 1)
	assert.True(t, f.Cases[0].NoError())
}

func TestParseCRLF(t *testing.T) {
	src := strings.ReplaceAll(sample, "\n", "\r\n")
	f, err := Parse("crlf.c", []byte(src))
	require.NoError(t, err)
	assert.Equal(t, "gvariant", f.Template)
	require.Len(t, f.Cases, 2)
	assert.Equal(t, "                       ^", f.Cases[1].Expected[2])
}

func TestCaseSource(t *testing.T) {
	f, err := Parse("get.c", []byte(sample))
	require.NoError(t, err)
	tpl, ok := NewRegistry().Lookup("gvariant")
	require.True(t, ok)

	src := f.Cases[0].Source(tpl)
	assert.True(t, strings.HasPrefix(src, tpl.Head))
	assert.True(t, strings.HasSuffix(src, tpl.Tail))
	assert.Contains(t, src, "GVariant *existing_variant")
	assert.Contains(t, src, "\tg_variant_get (existing_variant, \"s\", &str);\n")
	assert.Equal(t, "get.section1.c", f.Cases[1].FileName("get.c"))
}

func TestNonmatching(t *testing.T) {
	c := Case{Expected: []string{"type 'int'", "    ^"}}
	assert.Empty(t, c.Nonmatching([]string{"x.c:1:2: error: saw type 'int'.", "        ^~~"}))
	assert.Equal(t, []string{"    ^"}, c.Nonmatching([]string{"saw type 'int'", "  ^"}))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{"generic", "gvariant"}, r.Names())
	r.Add(Template{Name: "custom", Head: "int main (void) {", Tail: "}"})
	assert.Equal(t, 3, r.Len())
	got, ok := r.Lookup("custom")
	require.True(t, ok)
	assert.Equal(t, "}", got.Tail)
	_, ok = r.Lookup("missing")
	assert.False(t, ok)
}

func TestRunnerReportsTAP(t *testing.T) {
	f, err := Parse("get.c", []byte(sample))
	require.NoError(t, err)

	var names []string
	check := func(_ context.Context, name string, src []byte) ([]string, error) {
		names = append(names, name)
		if strings.Contains(string(src), `"invalid"`) {
			return []string{"get.section1.c:12:25: error: something else"}, nil
		}
		return nil, nil
	}
	var buf bytes.Buffer
	res, err := NewRunner(nil, RunnerConfig{Check: check, Output: &buf}).Run(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, RunResult{Total: 2, Passed: 1, Failed: 1}, res)
	assert.Equal(t, []string{"get.section0.c", "get.section1.c"}, names)
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "1..2\n"))
	assert.Contains(t, out, "ok 1 get.c section 0\n")
	assert.Contains(t, out, "not ok 2 get.c section 1\n")
	assert.Contains(t, out, "# Non-matching line: Expected a GVariant variadic argument")
	assert.Contains(t, out, "#     get.section1.c:12:25: error: something else\n")
}

func TestRunnerUnexpectedError(t *testing.T) {
	f, err := Parse("get.c", []byte(sample))
	require.NoError(t, err)
	check := func(context.Context, string, []byte) ([]string, error) {
		return []string{"warning: noise"}, nil
	}
	var buf bytes.Buffer
	res, err := NewRunner(nil, RunnerConfig{Check: check, Output: &buf, Filter: []int{0}}).Run(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, RunResult{Total: 2, Skipped: 1, Failed: 1}, res)
	assert.Contains(t, buf.String(), "# Error: checker error when none was expected.")
	assert.Contains(t, buf.String(), "ok 2 get.c section 1 # SKIP filtered")
}

func TestRunnerErrors(t *testing.T) {
	f := &File{Path: "x.c", Template: "nope"}
	_, err := NewRunner(nil, RunnerConfig{}).Run(context.Background(), f)
	require.Error(t, err)

	_, err = NewRunner(nil, RunnerConfig{Check: func(context.Context, string, []byte) ([]string, error) {
		return nil, nil
	}}).Run(context.Background(), f)
	require.ErrorContains(t, err, `unknown template "nope"`)

	boom := errors.New("boom")
	f, err = Parse("get.c", []byte(sample))
	require.NoError(t, err)
	_, err = NewRunner(nil, RunnerConfig{Check: func(context.Context, string, []byte) ([]string, error) {
		return nil, boom
	}}).Run(context.Background(), f)
	require.ErrorIs(t, err, boom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewRunner(nil, RunnerConfig{Check: func(context.Context, string, []byte) ([]string, error) {
		return nil, nil
	}}).Run(ctx, f)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunResultAdd(t *testing.T) {
	total := RunResult{Total: 1, Passed: 1}
	total.Add(RunResult{Total: 2, Failed: 1, Skipped: 1})
	assert.Equal(t, RunResult{Total: 3, Passed: 1, Failed: 1, Skipped: 1}, total)
}
