package lexer_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"tartan/internal/diag"
	"tartan/internal/lexer"
	"tartan/internal/source"
	"tartan/internal/token"
)

// testReporter собирает все диагностики, полученные от лексера
type testReporter struct {
	diagnostics []diag.Diagnostic
}

// Report реализует интерфейс diag.Reporter
func (r *testReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note, fixes []diag.Fix) {
	r.diagnostics = append(r.diagnostics, diag.Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
		Primary:  primary,
		Notes:    notes,
		Fixes:    fixes,
	})
}

// HasErrors возвращает true, если были зарегистрированы ошибки
func (r *testReporter) HasErrors() bool {
	for _, d := range r.diagnostics {
		if d.Severity == diag.SevError {
			return true
		}
	}
	return false
}

// ErrorCount возвращает количество ошибок
func (r *testReporter) ErrorCount() int {
	count := 0
	for _, d := range r.diagnostics {
		if d.Severity == diag.SevError {
			count++
		}
	}
	return count
}

// ErrorMessages возвращает список сообщений об ошибках (для обратной совместимости с тестами)
func (r *testReporter) ErrorMessages() []string {
	messages := make([]string, 0, len(r.diagnostics))
	for _, d := range r.diagnostics {
		messages = append(messages, fmt.Sprintf("[%s] %s: %s", d.Code.ID(), d.Severity, d.Message))
	}
	return messages
}

// makeTestLexer создаёт лексер для тестовой строки
func makeTestLexer(input string) (*lexer.Lexer, *testReporter) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.c", []byte(input))
	file := fs.Get(fileID)

	reporter := &testReporter{diagnostics: make([]diag.Diagnostic, 0)}
	opts := lexer.Options{Reporter: reporter}
	lx := lexer.New(file, opts)

	return lx, reporter
}

// collectAllTokens собирает все токены до EOF
func collectAllTokens(lx *lexer.Lexer) []token.Token {
	tokens := make([]token.Token, 0)
	for {
		tok := lx.Next()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return tokens
}

// expectTokens проверяет последовательность токенов
func expectTokens(t *testing.T, input string, expected []token.Kind) {
	t.Helper()
	lx, reporter := makeTestLexer(input)
	tokens := collectAllTokens(lx)

	// убираем EOF из сравнения
	if len(tokens) > 0 && tokens[len(tokens)-1].Kind == token.EOF {
		tokens = tokens[:len(tokens)-1]
	}

	if len(tokens) != len(expected) {
		t.Fatalf("Expected %d tokens, got %d\nInput: %q\nTokens: %v\nErrors: %v",
			len(expected), len(tokens), input, tokensToString(tokens), reporter.ErrorMessages())
	}

	for i, tok := range tokens {
		if tok.Kind != expected[i] {
			t.Errorf("Token %d: expected %v, got %v (text: %q)",
				i, expected[i], tok.Kind, tok.Text)
		}
	}
}

// expectSingleToken проверяет, что вход создаёт ровно один токен
func expectSingleToken(t *testing.T, input string, expectedKind token.Kind, expectedText string) {
	t.Helper()
	lx, _ := makeTestLexer(input)
	tok := lx.Next()

	if tok.Kind != expectedKind {
		t.Errorf("Expected kind %v, got %v", expectedKind, tok.Kind)
	}
	if tok.Text != expectedText {
		t.Errorf("Expected text %q, got %q", expectedText, tok.Text)
	}
}

func tokensToString(tokens []token.Token) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = fmt.Sprintf("%v(%q)", tok.Kind, tok.Text)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ====== Тесты для scan_ident.go ======

func TestIdentifiers(t *testing.T) {
	tests := []string{"foo", "_bar", "__baz", "g_variant_new", "GVariant", "x1", "_123", "переменная", "変数"}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			expectSingleToken(t, input, token.Ident, input)
		})
	}
}

func TestKeywords(t *testing.T) {
	expectTokens(t, "const unsigned long int typedef struct _Bool", []token.Kind{
		token.KwConst, token.KwUnsigned, token.KwLong, token.KwInt,
		token.KwTypedef, token.KwStruct, token.KwBool,
	})
	// регистр важен; typedef-имена остаются идентификаторами
	expectTokens(t, "Const INT gint gchar", []token.Kind{
		token.Ident, token.Ident, token.Ident, token.Ident,
	})
}

func TestLiteralPrefixes(t *testing.T) {
	expectSingleToken(t, `L"wide"`, token.StringLit, `L"wide"`)
	expectSingleToken(t, `u8"utf"`, token.StringLit, `u8"utf"`)
	expectSingleToken(t, `U'x'`, token.CharLit, `U'x'`)
	// u8'x' не символьная константа в C11
	expectTokens(t, "u8'x'", []token.Kind{token.Ident, token.CharLit})
	// префикс без кавычки - обычный идентификатор
	expectTokens(t, "L + u", []token.Kind{token.Ident, token.Plus, token.Ident})
}

// ====== Тесты для scan_number.go ======

func TestNumbers_Integers(t *testing.T) {
	tests := []string{"0", "123", "0777", "0x1F", "0XdeadBEEF", "42u", "42U", "42l", "42ul", "42LU", "42ll", "42ULL", "42llu"}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			expectSingleToken(t, input, token.IntLit, input)
		})
	}
}

func TestNumbers_Float(t *testing.T) {
	tests := []string{"1.0", "1.", ".5", "1e10", "1E-3", "2.5e+4", "1.5f", "1.5L", "0x1p4", "0x1.8p-1"}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			expectSingleToken(t, input, token.FloatLit, input)
		})
	}
}

func TestNumbers_Invalid(t *testing.T) {
	tests := []string{"09", "1e", "12abc", "1.5u", "42lul"}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			lx, reporter := makeTestLexer(input)
			tok := lx.Next()
			if tok.Kind != token.Invalid {
				t.Fatalf("expected Invalid, got %v (%q)", tok.Kind, tok.Text)
			}
			if reporter.ErrorCount() != 1 || reporter.diagnostics[0].Code != diag.LexBadNumber {
				t.Fatalf("expected one LexBadNumber, got %v", reporter.ErrorMessages())
			}
			if next := lx.Next(); next.Kind != token.EOF {
				t.Fatalf("bad number must be consumed whole, next is %v", next.Kind)
			}
		})
	}
}

func TestNumbers_MemberAccessIsNotFloat(t *testing.T) {
	expectTokens(t, "s.x", []token.Kind{token.Ident, token.Dot, token.Ident})
	expectTokens(t, "a[0].b", []token.Kind{token.Ident, token.LBracket, token.IntLit, token.RBracket, token.Dot, token.Ident})
}

func TestParseIntSuffix(t *testing.T) {
	tests := []struct {
		in       string
		longs    int
		unsigned bool
		ok       bool
	}{
		{"", 0, false, true},
		{"u", 0, true, true},
		{"l", 1, false, true},
		{"UL", 1, true, true},
		{"lu", 1, true, true},
		{"ll", 2, false, true},
		{"ull", 2, true, true},
		{"LLU", 2, true, true},
		{"lL", 0, false, false},
		{"uu", 0, true, false},
		{"x", 0, false, false},
	}
	for _, tt := range tests {
		longs, unsigned, ok := lexer.ParseIntSuffix(tt.in)
		if ok != tt.ok {
			t.Fatalf("ParseIntSuffix(%q) ok = %v, want %v", tt.in, ok, tt.ok)
		}
		if ok && (longs != tt.longs || unsigned != tt.unsigned) {
			t.Fatalf("ParseIntSuffix(%q) = (%d, %v), want (%d, %v)", tt.in, longs, unsigned, tt.longs, tt.unsigned)
		}
	}
}

// ====== Тесты для scan_string.go ======

func TestString_Simple(t *testing.T) {
	expectSingleToken(t, `"hello"`, token.StringLit, `"hello"`)
	expectSingleToken(t, `""`, token.StringLit, `""`)
	expectSingleToken(t, `"(sv)"`, token.StringLit, `"(sv)"`)
}

func TestString_Escapes(t *testing.T) {
	expectSingleToken(t, `"a\"b"`, token.StringLit, `"a\"b"`)
	expectSingleToken(t, `"\\"`, token.StringLit, `"\\"`)
	expectSingleToken(t, `"\x41\n"`, token.StringLit, `"\x41\n"`)
}

func TestString_Unterminated(t *testing.T) {
	lx, reporter := makeTestLexer(`"abc`)
	tok := lx.Next()
	if tok.Kind != token.Invalid {
		t.Fatalf("expected Invalid, got %v", tok.Kind)
	}
	if reporter.ErrorCount() != 1 || reporter.diagnostics[0].Code != diag.LexUnterminatedString {
		t.Fatalf("expected LexUnterminatedString, got %v", reporter.ErrorMessages())
	}
}

func TestString_NewlineInString(t *testing.T) {
	lx, reporter := makeTestLexer("\"abc\ndef\"")
	tok := lx.Next()
	if tok.Kind != token.Invalid {
		t.Fatalf("expected Invalid, got %v", tok.Kind)
	}
	if !reporter.HasErrors() {
		t.Fatalf("expected an error for newline in string")
	}
}

func TestChar(t *testing.T) {
	expectSingleToken(t, `'a'`, token.CharLit, `'a'`)
	expectSingleToken(t, `'\''`, token.CharLit, `'\''`)
	expectSingleToken(t, `'\0'`, token.CharLit, `'\0'`)
	expectSingleToken(t, `L'x'`, token.CharLit, `L'x'`)

	lx, reporter := makeTestLexer(`''`)
	if tok := lx.Next(); tok.Kind != token.Invalid {
		t.Fatalf("empty char constant must be invalid, got %v", tok.Kind)
	}
	if reporter.ErrorCount() != 1 {
		t.Fatalf("expected one error, got %v", reporter.ErrorMessages())
	}

	lx, reporter = makeTestLexer(`'a`)
	if tok := lx.Next(); tok.Kind != token.Invalid {
		t.Fatalf("unterminated char constant must be invalid, got %v", tok.Kind)
	}
	if reporter.diagnostics[0].Code != diag.LexUnterminatedChar {
		t.Fatalf("expected LexUnterminatedChar, got %v", reporter.ErrorMessages())
	}
}

func TestDecodeString(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`"i"`, "i"},
		{`"(sv)"`, "(sv)"},
		{`"a\"b"`, `a"b`},
		{`"\x41\102\n"`, "AB\n"},
		{`"a\0b"`, "a\x00b"},
		{`"é"`, "é"},
		{`u8"\U0001F600"`, "😀"},
		{`L"w"`, "w"},
		{`"\?\a"`, "?\a"},
	}
	for _, tt := range tests {
		got, err := lexer.DecodeString(tt.in)
		if err != nil {
			t.Fatalf("DecodeString(%s) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("DecodeString(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{`"\q"`, `"\x"`, `"\777"`, `"\u12"`, `abc`} {
		if _, err := lexer.DecodeString(bad); err == nil {
			t.Fatalf("DecodeString(%s) must fail", bad)
		}
	}

	_, err := lexer.DecodeString(`"ab\q"`)
	var escErr *lexer.EscapeError
	if !errorsAs(err, &escErr) || escErr.Offset != 3 {
		t.Fatalf("expected EscapeError at offset 3, got %v", err)
	}
}

func TestDecodeChar(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{`'a'`, 97},
		{`'\n'`, 10},
		{`'\0'`, 0},
		{`'\377'`, -1},
		{`'ab'`, 'a'<<8 | 'b'},
		{`L'é'`, 0xe9},
	}
	for _, tt := range tests {
		got, err := lexer.DecodeChar(tt.in)
		if err != nil {
			t.Fatalf("DecodeChar(%s) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("DecodeChar(%s) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

// ====== Тесты для scan_ops.go ======

func TestOperators_Single(t *testing.T) {
	expectTokens(t, "+ - * / % = ! < > & | ^ ~ ? : ; , . ( ) { } [ ]", []token.Kind{
		token.Plus, token.Minus, token.Star, token.Slash, token.Percent, token.Assign,
		token.Bang, token.Lt, token.Gt, token.Amp, token.Pipe, token.Caret, token.Tilde,
		token.Question, token.Colon, token.Semicolon, token.Comma, token.Dot,
		token.LParen, token.RParen, token.LBrace, token.RBrace, token.LBracket, token.RBracket,
	})
}

func TestOperators_Multi(t *testing.T) {
	expectTokens(t, "-> ++ -- && || == != <= >= << >> += -= *= /= %= &= |= ^= <<= >>= ...", []token.Kind{
		token.Arrow, token.PlusPlus, token.MinusMinus, token.AndAnd, token.OrOr,
		token.EqEq, token.BangEq, token.LtEq, token.GtEq, token.Shl, token.Shr,
		token.PlusAssign, token.MinusAssign, token.StarAssign, token.SlashAssign,
		token.PercentAssign, token.AmpAssign, token.PipeAssign, token.CaretAssign,
		token.ShlAssign, token.ShrAssign, token.Ellipsis,
	})
}

func TestOperators_Greedy(t *testing.T) {
	expectTokens(t, "a+++b", []token.Kind{token.Ident, token.PlusPlus, token.Plus, token.Ident})
	expectTokens(t, "x<<=2", []token.Kind{token.Ident, token.ShlAssign, token.IntLit})
	expectTokens(t, "p->q", []token.Kind{token.Ident, token.Arrow, token.Ident})
	expectTokens(t, "..", []token.Kind{token.Dot, token.Dot})
}

func TestLexer_UnknownCharacter(t *testing.T) {
	lx, reporter := makeTestLexer("a @ b")
	tokens := collectAllTokens(lx)
	if len(tokens) != 4 || tokens[1].Kind != token.Invalid {
		t.Fatalf("expected a Invalid b EOF, got %s", tokensToString(tokens))
	}
	if reporter.ErrorCount() != 1 || reporter.diagnostics[0].Code != diag.LexUnknownChar {
		t.Fatalf("expected LexUnknownChar, got %v", reporter.ErrorMessages())
	}
}

// ====== Тесты для trivia.go ======

func TestTrivia_Spaces(t *testing.T) {
	lx, _ := makeTestLexer("  \t  foo")
	tok := lx.Next()
	if tok.Kind != token.Ident {
		t.Fatalf("Expected Ident, got %v", tok.Kind)
	}
	if len(tok.Leading) != 1 || tok.Leading[0].Kind != token.TriviaSpace {
		t.Fatalf("Expected one TriviaSpace, got %v", tok.Leading)
	}
}

func TestTrivia_Newlines(t *testing.T) {
	lx, _ := makeTestLexer("\n\n\nfoo")
	tok := lx.Next()
	if len(tok.Leading) != 1 || tok.Leading[0].Kind != token.TriviaNewline {
		t.Fatalf("Expected one coalesced TriviaNewline, got %v", tok.Leading)
	}
}

func TestTrivia_Comments(t *testing.T) {
	lx, _ := makeTestLexer("// line\n/* block\n * more */ foo")
	tok := lx.Next()
	if tok.Kind != token.Ident {
		t.Fatalf("Expected Ident, got %v", tok.Kind)
	}
	kinds := make([]token.TriviaKind, 0, len(tok.Leading))
	for _, tv := range tok.Leading {
		kinds = append(kinds, tv.Kind)
	}
	want := []token.TriviaKind{token.TriviaLineComment, token.TriviaNewline, token.TriviaBlockComment, token.TriviaSpace}
	if fmt.Sprint(kinds) != fmt.Sprint(want) {
		t.Fatalf("trivia kinds = %v, want %v", kinds, want)
	}
	if tok.Leading[2].Text != "/* block\n * more */" {
		t.Fatalf("block comment text = %q", tok.Leading[2].Text)
	}
}

func TestTrivia_BlockCommentsDoNotNest(t *testing.T) {
	// "/* /* */" закрывается первым "*/"
	expectTokens(t, "/* /* */ x */", []token.Kind{token.Ident, token.Star, token.Slash})
}

func TestTrivia_UnterminatedBlockComment(t *testing.T) {
	lx, reporter := makeTestLexer("foo /* never closed")
	tokens := collectAllTokens(lx)
	if len(tokens) != 2 {
		t.Fatalf("expected foo EOF, got %s", tokensToString(tokens))
	}
	if reporter.ErrorCount() != 1 || reporter.diagnostics[0].Code != diag.LexUnterminatedBlockComment {
		t.Fatalf("expected LexUnterminatedBlockComment, got %v", reporter.ErrorMessages())
	}
}

func TestTrivia_LineSplice(t *testing.T) {
	expectTokens(t, "a \\\n b", []token.Kind{token.Ident, token.Ident})
	// одиночный '\' - ошибка
	lx, reporter := makeTestLexer("a \\ b")
	tokens := collectAllTokens(lx)
	if len(tokens) != 4 || tokens[1].Kind != token.Invalid || !reporter.HasErrors() {
		t.Fatalf("stray backslash must be reported, got %s", tokensToString(tokens))
	}
}

// ====== Директивы препроцессора ======

func TestDirectives(t *testing.T) {
	src := "#include <glib.h>\n  #  define NULL ((void*)0) /* c */\n#define LONG a \\\n  b\nint x;\n"
	lx, reporter := makeTestLexer(src)
	tok := lx.Next()
	if tok.Kind != token.KwInt {
		t.Fatalf("expected int, got %v", tok.Kind)
	}
	dirs := tok.DirectiveLeading()
	if len(dirs) != 3 {
		t.Fatalf("expected 3 directives, got %d", len(dirs))
	}
	want := []token.Directive{
		{Name: "include", Payload: "<glib.h>"},
		{Name: "define", Payload: "NULL ((void*)0)"},
		{Name: "define", Payload: "LONG a    b"},
	}
	for i := range want {
		if *dirs[i] != want[i] {
			t.Fatalf("directive %d = %+v, want %+v", i, *dirs[i], want[i])
		}
	}
	if reporter.HasErrors() {
		t.Fatalf("unexpected errors: %v", reporter.ErrorMessages())
	}
}

func TestDirectives_HashMidLineIsToken(t *testing.T) {
	expectTokens(t, "a # b", []token.Kind{token.Ident, token.Hash, token.Ident})
}

func TestDirectives_AtEOFAttachToEOF(t *testing.T) {
	lx, _ := makeTestLexer("int x;\n#define LATE 1")
	tokens := collectAllTokens(lx)
	eof := tokens[len(tokens)-1]
	if eof.Kind != token.EOF {
		t.Fatalf("last token must be EOF")
	}
	dirs := eof.DirectiveLeading()
	if len(dirs) != 1 || dirs[0].Name != "define" || dirs[0].Payload != "LATE 1" {
		t.Fatalf("trailing directive lost: %v", dirs)
	}
}

// ====== Интеграционные ======

func TestLexer_GVariantCall(t *testing.T) {
	expectTokens(t, `GVariant *v = g_variant_new ("(si)", "x", 5);`, []token.Kind{
		token.Ident, token.Star, token.Ident, token.Assign, token.Ident, token.LParen,
		token.StringLit, token.Comma, token.StringLit, token.Comma, token.IntLit,
		token.RParen, token.Semicolon,
	})
}

func TestLexer_Spans(t *testing.T) {
	lx, _ := makeTestLexer("ab  cd")
	first := lx.Next()
	second := lx.Next()
	if first.Span.Start != 0 || first.Span.End != 2 {
		t.Fatalf("first span = %v", first.Span)
	}
	if second.Span.Start != 4 || second.Span.End != 6 {
		t.Fatalf("second span = %v", second.Span)
	}
}

func TestLexer_PeekBehavior(t *testing.T) {
	lx, _ := makeTestLexer("a b")
	p := lx.Peek()
	n := lx.Next()
	if p.Kind != n.Kind || p.Text != n.Text || p.Span != n.Span {
		t.Fatalf("Peek and Next disagree: %v vs %v", p, n)
	}
	if next := lx.Next(); next.Text != "b" {
		t.Fatalf("expected b after a, got %q", next.Text)
	}
}

func TestLexer_EOF(t *testing.T) {
	lx, _ := makeTestLexer("x")
	lx.Next()
	for i := 0; i < 3; i++ {
		if tok := lx.Next(); tok.Kind != token.EOF {
			t.Fatalf("call %d after end: expected EOF, got %v", i, tok.Kind)
		}
	}
}

func TestLexer_EmptyInput(t *testing.T) {
	lx, _ := makeTestLexer("")
	if tok := lx.Next(); tok.Kind != token.EOF {
		t.Fatalf("expected EOF, got %v", tok.Kind)
	}
}

func TestLexer_All(t *testing.T) {
	lx, _ := makeTestLexer("a;")
	all := lx.All()
	if len(all) != 3 || all[2].Kind != token.EOF {
		t.Fatalf("All() = %s", tokensToString(all))
	}
}

func errorsAs(err error, target **lexer.EscapeError) bool {
	return errors.As(err, target)
}

func TestNoDirectives(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("body.c", []byte("#x a ## b")))
	lx := lexer.New(file, lexer.Options{NoDirectives: true})
	var kinds []token.Kind
	for _, tok := range lx.All() {
		kinds = append(kinds, tok.Kind)
	}
	want := []token.Kind{token.Hash, token.Ident, token.Ident, token.Hash, token.Hash, token.Ident, token.EOF}
	if fmt.Sprint(kinds) != fmt.Sprint(want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		in   string
		want lexer.IntValue
	}{
		{"0", lexer.IntValue{Value: 0, Decimal: true}},
		{"42", lexer.IntValue{Value: 42, Decimal: true}},
		{"0777", lexer.IntValue{Value: 0o777}},
		{"0x1F", lexer.IntValue{Value: 31}},
		{"10u", lexer.IntValue{Value: 10, Unsigned: true, Decimal: true}},
		{"5LL", lexer.IntValue{Value: 5, Longs: 2, Decimal: true}},
		{"0xffffffffffffffffULL", lexer.IntValue{Value: ^uint64(0), Longs: 2, Unsigned: true}},
	}
	for _, tt := range tests {
		got, err := lexer.ParseInt(tt.in)
		if err != nil {
			t.Fatalf("ParseInt(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseInt(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
	if _, err := lexer.ParseInt("18446744073709551616"); err == nil {
		t.Fatalf("overflow must be reported")
	}
}
