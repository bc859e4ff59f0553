package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"tartan/internal/casefile"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB - ограничение для тестового корпуса
)

func addCorpusSeeds(f *testing.F) {
	addCaseSeeds(f)
	addSnippetSeeds(f)
}

// addCaseSeeds adds every section of the checker's case files, rendered
// through its template, so seeds are complete translation units.
func addCaseSeeds(f *testing.F) {
	root := filepath.Join("..", "driver", "testdata", "cases")
	if _, err := os.Stat(root); err != nil {
		return
	}
	templates := casefile.NewRegistry()
	// проходим по testdata, добавляем все секции *.c файлов
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".c" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		cf, err := casefile.Parse(path, data)
		if err != nil {
			f.Add(clampSeed(data))
			return nil
		}
		tpl, ok := templates.Lookup(cf.Template)
		if !ok {
			return nil
		}
		for i := range cf.Cases {
			f.Add(clampSeed([]byte(cf.Cases[i].Source(tpl))))
		}
		return nil
	})
	if err != nil {
		return
	}
}

func addSnippetSeeds(f *testing.F) {
	// минимальные примеры на случай пустого testdata
	f.Add([]byte{})
	f.Add([]byte("int main (void) { return 0; }\n"))
	f.Add([]byte("void f (GVariant *v) { gint32 x; g_variant_get (v, \"(i)\", &x); }\n"))
	f.Add([]byte("void f (void) { g_variant_new (\"a{sv}\", NULL); }\n"))
	f.Add([]byte("#define FMT \"(su)\"\nvoid f (GVariant *v) { gchar *s; guint u; g_variant_get (v, FMT, &s, &u); }\n"))
	f.Add([]byte("#if 0\nbroken (\n#endif\ntypedef struct { int a; } S;\n"))
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
