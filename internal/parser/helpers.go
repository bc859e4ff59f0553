package parser

import (
	"errors"
	"slices"

	"tartan/internal/diag"
	"tartan/internal/sema"
	"tartan/internal/source"
	"tartan/internal/token"
)

// peekN возвращает токен на n позиций вперёд, не потребляя его.
func (p *Parser) peekN(n int) token.Token {
	for len(p.buf) <= n {
		p.buf = append(p.buf, p.src.Next())
	}
	return p.buf[n]
}

func (p *Parser) peek() token.Token {
	return p.peekN(0)
}

func (p *Parser) at(k token.Kind) bool {
	return p.peek().Kind == k
}

func (p *Parser) at_or(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.peek().Kind)
}

// atIdent reports whether the next token is the identifier name.
func (p *Parser) atIdent(name string) bool {
	t := p.peek()
	return t.Kind == token.Ident && t.Text == name
}

// advance - съедает следующий токен и обновляет lastSpan
func (p *Parser) advance() token.Token {
	tok := p.peek()
	if tok.Kind == token.EOF {
		return tok
	}
	p.buf = p.buf[1:]
	if tok.Kind != token.Invalid {
		p.lastSpan = tok.Span
	}
	return tok
}

// getDiagnosticSpan - возвращает лучший span для диагностики.
// На EOF указываем сразу за последним съеденным токеном.
func (p *Parser) getDiagnosticSpan() source.Span {
	peek := p.peek()
	if peek.Kind == token.EOF && p.lastSpan.End > 0 {
		return source.Span{File: p.lastSpan.File, Start: p.lastSpan.End, End: p.lastSpan.End}
	}
	return peek.Span
}

// expect - ожидаем конкретный токен. Если нет - репортим и возвращаем (invalid,false).
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	diagSpan := p.getDiagnosticSpan()
	p.report(code, diag.SevError, diagSpan, msg)
	return token.Token{Kind: token.Invalid, Span: diagSpan, Text: p.peek().Text}, false
}

// репортует ошибку и передает текущий спан
func (p *Parser) err(code diag.Code, msg string) bool {
	return p.report(code, diag.SevError, p.getDiagnosticSpan(), msg)
}

// репортует warning и передает текущий спан
func (p *Parser) warn(code diag.Code, msg string) bool {
	return p.report(code, diag.SevWarning, p.getDiagnosticSpan(), msg)
}

func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) bool {
	if p.opts.Reporter != nil {
		if sev == diag.SevError {
			p.opts.CurrentErrors++
		}
		if !p.opts.Enough() {
			p.opts.Reporter.Report(code, sev, sp, msg, nil, nil)
			return true
		}
		return false // достигли максимального количества ошибок
	}
	return false // нет reporter - ничего не записали
}

// semaError reports an error returned by the typer at span.
func (p *Parser) semaError(err error, span source.Span) {
	if err == nil {
		return
	}
	var se *sema.Error
	if errors.As(err, &se) {
		p.report(se.Code, diag.SevError, span, se.Msg)
		return
	}
	p.report(diag.SemaInfo, diag.SevError, span, err.Error())
}

// resyncUntil прокручивает токены до одного из kinds на нулевой глубине
// скобок. Найденный токен не съедается, как и '}' закрывающий внешний блок;
// лишние ')' и ']' съедаются.
func (p *Parser) resyncUntil(kinds ...token.Kind) {
	depth := 0
	for !p.at(token.EOF) {
		k := p.peek().Kind
		if depth == 0 && slices.Contains(kinds, k) {
			return
		}
		switch k {
		case token.LBrace, token.LParen, token.LBracket:
			depth++
		case token.RBrace:
			if depth == 0 {
				return
			}
			depth--
		case token.RParen, token.RBracket:
			if depth > 0 {
				depth--
			}
		}
		p.advance()
	}
}

// resyncStatement - до ';' (съедается) или до '}', закрывающего текущий блок.
func (p *Parser) resyncStatement() {
	p.resyncUntil(token.Semicolon)
	if p.at(token.Semicolon) {
		p.advance()
	}
}
