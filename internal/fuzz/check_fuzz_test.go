package fuzztests

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"tartan/internal/driver"
	"tartan/internal/testkit"
)

// checkTimeout is the maximum time allowed for checking a single input.
// If checking takes longer, it indicates a potential infinite loop.
const checkTimeout = 5 * time.Second

func checkWithTimeout(t *testing.T, name string, src []byte) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	type outcome struct {
		res *driver.FileResult
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := driver.CheckSource(ctx, name, src, driver.CheckOptions{MaxDiagnostics: 128})
		done <- outcome{res, err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			// отмена по таймауту тоже считается зависанием
			if ctx.Err() != nil {
				t.Fatalf("check hang detected: took longer than %v\ninput (%d bytes): %q",
					checkTimeout, len(src), truncateForLog(src, 200))
			}
			return
		}
		if err := testkit.CheckSpanInvariants(out.res.FileSet, out.res.FileID, out.res.Bag, out.res.CallSites); err != nil {
			t.Fatalf("span invariants: %v\ninput: %q", err, truncateForLog(src, 200))
		}
	case <-ctx.Done():
		t.Fatalf("check hang detected: took longer than %v\ninput (%d bytes): %q",
			checkTimeout, len(src), truncateForLog(src, 200))
	}
}

func FuzzCheckSource(f *testing.F) {
	addCorpusSeeds(f)

	// незакрытые конструкции и рекурсивные макросы
	f.Add([]byte("void f (GVariant *v) { g_variant_get (v, \"(i\", "))
	f.Add([]byte("#define A A\nint x = A;\n"))
	f.Add([]byte("#define F(x) F(x)\nvoid g (void) { F(1); }\n"))
	f.Add([]byte("struct s { struct s *next; int (*cb) (int, ...); };\n"))
	f.Add([]byte("void f (void) { ((((((((((((((((0)))))))))))))))); }\n"))

	f.Fuzz(func(t *testing.T, input []byte) {
		checkWithTimeout(t, "fuzz.c", clampInput(input))
	})
}

// FuzzFormatString keeps the C around the call fixed and fuzzes only the
// format string, so every input reaches the format checker.
func FuzzFormatString(f *testing.F) {
	for _, format := range []string{
		"", "i", "(i)", "(su)", "a{sv}", "a(sv)", "m(ii)", "@s", "&s", "^as", "^a&s",
		"^ay", "^aay", "{sv}", "r", "*", "?", "v", "(x)(y)", "((((((((((i))))))))))",
		"a{", "a{s", "{vs}", "m", "&i", "@", "(", ")", "\\0",
	} {
		f.Add(format)
	}
	f.Fuzz(func(t *testing.T, format string) {
		if len(format) > 1024 {
			format = format[:1024]
		}
		src := fmt.Sprintf(`void
fuzz (GVariant *v)
{
	gint32 i;
	gchar *s;
	GVariant *child;
	g_variant_get (v, %s, &i, &s, &child, NULL);
	g_variant_new (%s, i, s, child);
}
`, strconv.Quote(format), strconv.Quote(format))
		checkWithTimeout(t, "fuzz.c", []byte(src))
	})
}

// truncateForLog truncates input for logging purposes
func truncateForLog(input []byte, maxLen int) []byte {
	if len(input) <= maxLen {
		return input
	}
	return append(input[:maxLen:maxLen], []byte("...")...)
}
