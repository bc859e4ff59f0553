package driver

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tartan/internal/observ"
)

func TestListFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.c", "")
	writeFile(t, dir, "a.h", "")
	writeFile(t, dir, "notes.txt", "")
	writeFile(t, dir, "sub/c.c", "")
	writeFile(t, dir, "sub/gen/d.c", "")
	writeFile(t, dir, ".git/e.c", "")

	files, err := ListFiles(dir, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.h"),
		filepath.Join(dir, "b.c"),
		filepath.Join(dir, "sub", "c.c"),
		filepath.Join(dir, "sub", "gen", "d.c"),
	}, files)

	files, err = ListFiles(dir, []string{"*.c"}, []string{"gen", "sub/c.c"})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "b.c")}, files)

	single := filepath.Join(dir, "notes.txt")
	files, err = ListFiles(single, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{single}, files)

	_, err = ListFiles(filepath.Join(dir, "nope"), nil, nil)
	require.Error(t, err)
}

func TestCheckPathsKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "z/bad.c", mismatch)
	good := writeFile(t, dir, "a/good.c", "void f (GVariant *v) { gint32 i; g_variant_get (v, \"i\", &i); }\n")

	sink := &recordingSink{}
	results, err := CheckPaths(context.Background(), []string{bad, dir}, CheckOptions{Jobs: 2, Progress: sink})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, bad, results[0].Path)
	assert.Equal(t, good, results[1].Path)
	assert.True(t, results[0].Bag.HasErrors())
	assert.Zero(t, results[1].Bag.Len())

	assert.Equal(t, StatusQueued, sink.statuses(good)[0])
	assert.Contains(t, sink.statuses(good), StatusDone)
	assert.Contains(t, sink.statuses(bad), StatusError)
	last := sink.statuses("")
	assert.Equal(t, StatusDone, last[len(last)-1])
}

func TestCheckPathsErrors(t *testing.T) {
	_, err := CheckPaths(context.Background(), []string{filepath.Join(t.TempDir(), "missing")}, CheckOptions{})
	require.Error(t, err)

	results, err := CheckFiles(context.Background(), nil, CheckOptions{})
	require.NoError(t, err)
	assert.Nil(t, results)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	path := writeFile(t, t.TempDir(), "a.c", mismatch)
	_, err = CheckFiles(ctx, []string{path}, CheckOptions{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestSummarizeTimings(t *testing.T) {
	report := func(total float64, phases ...observ.PhaseReport) *observ.Report {
		return &observ.Report{TotalMS: total, Phases: phases}
	}
	results := []*FileResult{
		{Path: "a.c", Timing: report(3, observ.PhaseReport{Name: "load", DurationMS: 1}, observ.PhaseReport{Name: "check", DurationMS: 2})},
		{Path: "b.c", Timing: report(5, observ.PhaseReport{Name: "load", DurationMS: 1}, observ.PhaseReport{Name: "parse", DurationMS: 4})},
		{Path: "cached.c", Cached: true},
		nil,
	}
	sum := SummarizeTimings(results, 1)
	assert.Equal(t, 2, sum.Files)
	assert.InDelta(t, 8.0, sum.TotalMS, 1e-9)
	assert.Equal(t, []observ.PhaseReport{
		{Name: "load", DurationMS: 2},
		{Name: "check", DurationMS: 2},
		{Name: "parse", DurationMS: 4},
	}, sum.Phases)
	assert.Equal(t, []FileTiming{{Path: "b.c", TotalMS: 5}}, sum.Slowest)

	assert.Nil(t, SummarizeTimings(results, 0).Slowest)
}
