package lexer

import (
	"tartan/internal/diag"
	"tartan/internal/token"
)

// Поддержка: 0, 123, 0777, 0x1F, 1.0, .5, 1e-3, 0x1p4, суффиксы u/l/ll/f.
// Неверные формы - репорт, токен по возможности завершаем.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	kind := token.IntLit
	hex := false

	switch {
	case lx.cursor.Peek() == '.':
		// ".digits" - вызваны после isNumberAfterDot
		kind = token.FloatLit
		lx.cursor.Bump()
		lx.eatDigits(isDec)
	case lx.hexPrefix():
		hex = true
		lx.eatDigits(isHex)
		if lx.cursor.Peek() == '.' {
			kind = token.FloatLit
			lx.cursor.Bump()
			lx.eatDigits(isHex)
		}
	default:
		lx.eatDigits(isDec)
		if lx.cursor.Peek() == '.' {
			kind = token.FloatLit
			lx.cursor.Bump()
			lx.eatDigits(isDec)
		}
	}

	// экспонента: e/E для десятичных, p/P для шестнадцатеричных
	if e := lx.cursor.Peek(); (!hex && (e == 'e' || e == 'E')) || (hex && (e == 'p' || e == 'P')) {
		kind = token.FloatLit
		lx.cursor.Bump()
		if lx.cursor.Peek() == '+' || lx.cursor.Peek() == '-' {
			lx.cursor.Bump()
		}
		if !isDec(lx.cursor.Peek()) {
			return lx.badNumber(start, "expected digit after exponent")
		}
		lx.eatDigits(isDec)
	}

	// суффикс: всё, что похоже на продолжение идентификатора
	sufStart := lx.cursor.Off
	for isIdentContinueByte(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	suffix := string(lx.file.Content[sufStart:lx.cursor.Off])
	if !validNumberSuffix(kind, suffix) {
		return lx.badNumber(start, "invalid suffix '"+suffix+"' on numeric constant")
	}

	if kind == token.IntLit && !hex {
		sp := lx.cursor.SpanFrom(start)
		digits := lx.file.Content[sp.Start:sufStart]
		if len(digits) > 1 && digits[0] == '0' {
			for _, d := range digits[1:] {
				if !isOctal(d) {
					return lx.badNumber(start, "invalid digit in octal constant")
				}
			}
		}
	}

	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: kind, Span: sp, Text: lx.text(sp)}
}

func (lx *Lexer) hexPrefix() bool {
	c := &lx.cursor
	if c.At(0) != '0' || (c.At(1) != 'x' && c.At(1) != 'X') || !(isHex(c.At(2)) || c.At(2) == '.') {
		return false
	}
	c.Advance(2)
	return true
}

func (lx *Lexer) eatDigits(class func(byte) bool) {
	for class(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
}

func (lx *Lexer) badNumber(start Mark, msg string) token.Token {
	for isIdentContinueByte(lx.cursor.Peek()) || lx.cursor.Peek() == '.' {
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.LexBadNumber, sp, msg)
	return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
}

func validNumberSuffix(kind token.Kind, s string) bool {
	if s == "" {
		return true
	}
	if kind == token.FloatLit {
		switch s {
		case "f", "F", "l", "L":
			return true
		}
		return false
	}
	_, _, ok := ParseIntSuffix(s)
	return ok
}

// ParseIntSuffix разбирает суффикс целой константы: число 'l' (0..2) и флаг 'u'.
func ParseIntSuffix(s string) (longs int, unsigned, ok bool) {
	i := 0
	if i < len(s) && (s[i] == 'u' || s[i] == 'U') {
		unsigned = true
		i++
	}
	switch {
	case len(s)-i >= 2 && (s[i:i+2] == "ll" || s[i:i+2] == "LL"):
		longs = 2
		i += 2
	case i < len(s) && (s[i] == 'l' || s[i] == 'L'):
		longs = 1
		i++
	}
	if !unsigned && i < len(s) && (s[i] == 'u' || s[i] == 'U') {
		unsigned = true
		i++
	}
	return longs, unsigned, i == len(s)
}
