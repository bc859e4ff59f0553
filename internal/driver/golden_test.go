package driver

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"tartan/internal/casefile"
	"tartan/internal/diagfmt"
)

func checkCase(ctx context.Context, name string, src []byte) ([]string, error) {
	res, err := CheckSource(ctx, name, src, CheckOptions{})
	if err != nil {
		return nil, err
	}
	return diagfmt.PrettyLines(res.Bag, res.FileSet, diagfmt.PrettyOpts{ShowCodes: true}), nil
}

func TestGoldenCases(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "cases", "*.c"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			f, err := casefile.Parse(path, data)
			require.NoError(t, err)
			require.NotEmpty(t, f.Cases)

			var tap bytes.Buffer
			runner := casefile.NewRunner(nil, casefile.RunnerConfig{Check: checkCase, Output: &tap})
			res, err := runner.Run(context.Background(), f)
			require.NoError(t, err)
			require.Zero(t, res.Failed, tap.String())
			require.Equal(t, len(f.Cases), res.Passed)
		})
	}
}
