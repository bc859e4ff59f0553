package token_test

import (
	"testing"

	"tartan/internal/source"
	"tartan/internal/token"
)

func tok(k token.Kind) token.Token {
	return token.Token{Kind: k, Span: source.Span{Start: 0, End: 0}}
}

func TestIsLiteral(t *testing.T) {
	lits := []token.Kind{token.IntLit, token.FloatLit, token.CharLit, token.StringLit}
	for _, k := range lits {
		if !tok(k).IsLiteral() {
			t.Fatalf("%v should be literal", k)
		}
	}
	non := []token.Kind{token.Ident, token.KwConst, token.Plus, token.LParen}
	for _, k := range non {
		if tok(k).IsLiteral() {
			t.Fatalf("%v must NOT be literal", k)
		}
	}
}

func TestIsPunctOrOp(t *testing.T) {
	ops := []token.Kind{
		token.Plus, token.Minus, token.Star, token.PlusPlus, token.MinusMinus,
		token.Assign, token.ShlAssign, token.ShrAssign, token.Tilde,
		token.Arrow, token.Question, token.Colon, token.Semicolon, token.Comma,
		token.LParen, token.RParen, token.LBrace, token.RBrace,
		token.Hash, token.Ellipsis,
	}
	for _, k := range ops {
		if !tok(k).IsPunctOrOp() {
			t.Fatalf("%v should be punct/op", k)
		}
	}
	non := []token.Kind{token.Ident, token.IntLit, token.KwBool, token.EOF, token.Invalid}
	for _, k := range non {
		if tok(k).IsPunctOrOp() {
			t.Fatalf("%v must NOT be punct/op", k)
		}
	}
}

func TestIsKeyword(t *testing.T) {
	for _, k := range []token.Kind{token.KwAuto, token.KwConst, token.KwWhile, token.KwBool} {
		if !tok(k).IsKeyword() {
			t.Fatalf("%v should be keyword", k)
		}
	}
	for _, k := range []token.Kind{token.Ident, token.StringLit, token.Plus} {
		if tok(k).IsKeyword() {
			t.Fatalf("%v must NOT be keyword", k)
		}
	}
}

func TestKindString(t *testing.T) {
	cases := map[token.Kind]string{
		token.Ident:    "Ident",
		token.KwConst:  "const",
		token.KwBool:   "_Bool",
		token.Ellipsis: "...",
		token.Arrow:    "->",
		token.Percent:  "%",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Fatalf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
	if got := token.Kind(250).String(); got != "Kind(?)" {
		t.Fatalf("out of range kind = %q", got)
	}
}

func TestDirectiveTriviaShape(t *testing.T) {
	dir := &token.Directive{Name: "define", Payload: "NULL ((void*)0)"}
	tv := token.Trivia{
		Kind:      token.TriviaDirective,
		Span:      source.Span{Start: 0, End: 24},
		Text:      "#define NULL ((void*)0)",
		Directive: dir,
	}
	tk := token.Token{
		Kind:    token.KwInt,
		Span:    source.Span{Start: 25, End: 28},
		Text:    "int",
		Leading: []token.Trivia{{Kind: token.TriviaNewline}, tv},
	}
	dirs := tk.DirectiveLeading()
	if len(dirs) != 1 || dirs[0] != dir {
		t.Fatalf("directive trivia must be present and structured, got %v", dirs)
	}
	if tv.Kind.String() != "Directive" {
		t.Fatalf("TriviaKind.String() = %q", tv.Kind.String())
	}
}
