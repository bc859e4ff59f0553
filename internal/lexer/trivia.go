package lexer

import (
	"strings"

	"tartan/internal/diag"
	"tartan/internal/token"
)

// collectLeadingTrivia собирает подряд идущие trivia перед значимым токеном.
// - ' ', '\t', '\r', '\f', '\v' и склейки строк '\\\n' коалесцируются в один TriviaSpace
// - последовательные '\n' коалесцируются в один TriviaNewline
// - //... до \n -> TriviaLineComment
// - /* ... */ -> TriviaBlockComment (без вложенности; если не закрыта - репорт и обрезаем на EOF)
// - # в начале строки -> TriviaDirective до конца логической строки
func (lx *Lexer) collectLeadingTrivia() {
	lx.hold = lx.hold[:0]
	for !lx.cursor.EOF() {
		start := lx.cursor.Mark()
		b := lx.cursor.Peek()

		if isHorizontalSpace(b) || b == '\\' {
			for isHorizontalSpace(lx.cursor.Peek()) || lx.cursor.Splice() {
				if isHorizontalSpace(lx.cursor.Peek()) {
					lx.cursor.Bump()
				}
			}
			sp := lx.cursor.SpanFrom(start)
			if sp.Empty() {
				// одиночный '\' - не trivia
				break
			}
			lx.hold = append(lx.hold, token.Trivia{Kind: token.TriviaSpace, Span: sp, Text: lx.text(sp)})
			continue
		}

		// newlines (коалесцируем подряд)
		if b == '\n' {
			for lx.cursor.Peek() == '\n' {
				lx.cursor.Bump()
			}
			sp := lx.cursor.SpanFrom(start)
			lx.hold = append(lx.hold, token.Trivia{Kind: token.TriviaNewline, Span: sp, Text: lx.text(sp)})
			lx.lineStart = true
			continue
		}

		if b == '/' {
			if lx.scanCommentIntoHold() {
				continue
			}
		}

		if b == '#' && lx.lineStart && !lx.opts.NoDirectives {
			lx.scanDirectiveIntoHold()
			continue
		}

		// нет больше trivia
		break
	}
}

// //... , /*...*/
func (lx *Lexer) scanCommentIntoHold() bool {
	start := lx.cursor.Mark()
	if !lx.cursor.Eat('/') {
		return false
	}
	switch lx.cursor.Peek() {
	case '/':
		lx.cursor.Bump()
		for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
			if !lx.cursor.Splice() {
				lx.cursor.Bump()
			}
		}
		sp := lx.cursor.SpanFrom(start)
		lx.hold = append(lx.hold, token.Trivia{Kind: token.TriviaLineComment, Span: sp, Text: lx.text(sp)})
		return true

	case '*':
		lx.cursor.Bump()
		closed := false
		for !lx.cursor.EOF() {
			if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '*' && b1 == '/' {
				lx.cursor.Bump()
				lx.cursor.Bump()
				closed = true
				break
			}
			lx.cursor.Bump()
		}
		sp := lx.cursor.SpanFrom(start)
		if !closed {
			lx.errLex(diag.LexUnterminatedBlockComment, sp, "unterminated block comment")
		}
		lx.hold = append(lx.hold, token.Trivia{Kind: token.TriviaBlockComment, Span: sp, Text: lx.text(sp)})
		return true
	default:
		// это не комментарий - вернёмся, пусть сканируется как оператор '/'
		lx.cursor.Reset(start)
		return false
	}
}

// scanDirectiveIntoHold читает препроцессорную строку целиком, включая
// продолжения через '\\\n'. Комментарии внутри директивы вырезаются из Payload.
func (lx *Lexer) scanDirectiveIntoHold() {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // '#'
	var logical strings.Builder
	for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
		if lx.cursor.Splice() {
			logical.WriteByte(' ')
			continue
		}
		if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '/' && b1 == '*' {
			lx.cursor.Bump()
			lx.cursor.Bump()
			for !lx.cursor.EOF() {
				if c0, c1, ok2 := lx.cursor.Peek2(); ok2 && c0 == '*' && c1 == '/' {
					lx.cursor.Bump()
					lx.cursor.Bump()
					break
				}
				lx.cursor.Bump()
			}
			logical.WriteByte(' ')
			continue
		}
		if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '/' && b1 == '/' {
			for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
				lx.cursor.Bump()
			}
			break
		}
		logical.WriteByte(lx.cursor.Bump())
	}
	sp := lx.cursor.SpanFrom(start)
	name, payload := splitDirective(logical.String())
	lx.hold = append(lx.hold, token.Trivia{
		Kind:      token.TriviaDirective,
		Span:      sp,
		Text:      lx.text(sp),
		Directive: &token.Directive{Name: name, Payload: payload},
	})
}

func splitDirective(line string) (name, payload string) {
	line = strings.TrimSpace(line)
	i := 0
	for i < len(line) && isIdentContinueByte(line[i]) {
		i++
	}
	return line[:i], strings.TrimSpace(line[i:])
}
