package lexer

import (
	"strings"

	"tartan/internal/diag"
	"tartan/internal/token"
)

// scanString читает "..." начиная с текущей кавычки; start может указывать
// на префикс (L, u8, ...), уже прочитанный scanIdentOrKeyword.
// Escape-последовательности здесь только пропускаются; значение даёт DecodeString.
func (lx *Lexer) scanString(start Mark) token.Token {
	return lx.scanQuoted(start, '"', token.StringLit, diag.LexUnterminatedString, "string literal")
}

func (lx *Lexer) scanChar(start Mark) token.Token {
	tok := lx.scanQuoted(start, '\'', token.CharLit, diag.LexUnterminatedChar, "character constant")
	if tok.Kind == token.CharLit && strings.HasSuffix(tok.Text, "''") && strings.IndexByte(tok.Text, '\'') == len(tok.Text)-2 {
		lx.errLex(diag.LexBadEscape, tok.Span, "empty character constant")
		tok.Kind = token.Invalid
	}
	return tok
}

func (lx *Lexer) scanQuoted(start Mark, quote byte, kind token.Kind, code diag.Code, what string) token.Token {
	lx.cursor.Bump() // opening quote
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b == quote {
			lx.cursor.Bump()
			sp := lx.cursor.SpanFrom(start)
			return token.Token{Kind: kind, Span: sp, Text: lx.text(sp)}
		}
		if b == '\\' {
			lx.cursor.Bump()
			if lx.cursor.EOF() {
				break
			}
			lx.cursor.Bump()
			continue
		}
		if b == '\n' {
			sp := lx.cursor.SpanFrom(start)
			lx.errLex(code, sp, "missing terminating "+string(quote)+" in "+what)
			return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
		}
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(code, sp, "unterminated "+what)
	return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
}
