package lexer

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// EscapeError описывает неверную escape-последовательность внутри литерала.
// Offset считается от начала текста токена.
type EscapeError struct {
	Offset int
	Msg    string
}

func (e *EscapeError) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Offset, e.Msg)
}

// SplitPrefix отделяет префикс кодировки (L, u, U, u8) от кавычек.
func SplitPrefix(text string) (prefix, quoted string) {
	i := strings.IndexAny(text, "\"'")
	if i < 0 {
		return "", text
	}
	return text[:i], text[i:]
}

// DecodeString возвращает байтовое значение строкового литерала без кавычек.
// \u и \U кодируются в UTF-8, как для u8-строк.
func DecodeString(text string) (string, error) {
	prefix, quoted := SplitPrefix(text)
	if len(quoted) < 2 || quoted[0] != '"' || quoted[len(quoted)-1] != '"' {
		return "", &EscapeError{Offset: 0, Msg: "malformed string literal"}
	}
	var sb strings.Builder
	if err := decodeBody(&sb, quoted[1:len(quoted)-1], len(prefix)+1); err != nil {
		return sb.String(), err
	}
	return sb.String(), nil
}

// DecodeChar возвращает значение символьной константы. Как и в GCC,
// многосимвольные константы собираются по 8 бит, а одиночный байт без
// префикса расширяется со знаком.
func DecodeChar(text string) (int64, error) {
	prefix, quoted := SplitPrefix(text)
	if len(quoted) < 3 || quoted[0] != '\'' || quoted[len(quoted)-1] != '\'' {
		return 0, &EscapeError{Offset: 0, Msg: "malformed character constant"}
	}
	var sb strings.Builder
	if err := decodeBody(&sb, quoted[1:len(quoted)-1], len(prefix)+1); err != nil {
		return 0, err
	}
	raw := sb.String()
	if prefix != "" {
		r, _ := utf8.DecodeRuneInString(raw)
		return int64(r), nil
	}
	if len(raw) == 1 {
		return int64(int8(raw[0])), nil
	}
	var v int64
	for i := 0; i < len(raw); i++ {
		v = v<<8 | int64(raw[i])
	}
	return int64(int32(v)), nil
}

func decodeBody(sb *strings.Builder, body string, base int) error {
	for i := 0; i < len(body); {
		c := body[i]
		if c != '\\' {
			sb.WriteByte(c)
			i++
			continue
		}
		at := base + i
		i++
		if i >= len(body) {
			return &EscapeError{Offset: at, Msg: "trailing backslash"}
		}
		c = body[i]
		i++
		switch c {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case 'a':
			sb.WriteByte('\a')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'v':
			sb.WriteByte('\v')
		case 'e', 'E':
			sb.WriteByte(0x1b)
		case '\\', '\'', '"', '?':
			sb.WriteByte(c)
		case '0', '1', '2', '3', '4', '5', '6', '7':
			v := int(c - '0')
			for n := 1; n < 3 && i < len(body) && isOctal(body[i]); n++ {
				v = v*8 + int(body[i]-'0')
				i++
			}
			if v > 0xff {
				return &EscapeError{Offset: at, Msg: "octal escape sequence out of range"}
			}
			sb.WriteByte(byte(v))
		case 'x':
			if i >= len(body) || !isHex(body[i]) {
				return &EscapeError{Offset: at, Msg: "\\x used with no following hex digits"}
			}
			v := 0
			for i < len(body) && isHex(body[i]) {
				v = v*16 + hexVal(body[i])
				if v > 0xff {
					return &EscapeError{Offset: at, Msg: "hex escape sequence out of range"}
				}
				i++
			}
			sb.WriteByte(byte(v))
		case 'u', 'U':
			n := 4
			if c == 'U' {
				n = 8
			}
			if i+n > len(body) {
				return &EscapeError{Offset: at, Msg: "incomplete universal character name"}
			}
			v := 0
			for _, h := range []byte(body[i : i+n]) {
				if !isHex(h) {
					return &EscapeError{Offset: at, Msg: "incomplete universal character name"}
				}
				v = v*16 + hexVal(h)
			}
			i += n
			if !utf8.ValidRune(rune(v)) {
				return &EscapeError{Offset: at, Msg: "invalid universal character"}
			}
			sb.WriteRune(rune(v))
		default:
			return &EscapeError{Offset: at, Msg: fmt.Sprintf("unknown escape sequence '\\%c'", c)}
		}
	}
	return nil
}

func hexVal(b byte) int {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0')
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10
	default:
		return int(b-'A') + 10
	}
}
