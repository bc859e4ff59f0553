package parser

import (
	"tartan/internal/diag"
	"tartan/internal/sema"
	"tartan/internal/symbols"
	"tartan/internal/token"
)

// parseCompound разбирает блок "{ ... }" в новой области видимости.
func (p *Parser) parseCompound() {
	scope := p.res.Enter(symbols.ScopeBlock, p.peek().Span)
	defer p.res.Leave(scope)
	p.parseCompoundBody()
}

// parseCompoundBody разбирает блок в текущей области видимости и
// возвращает значение последнего выражения-оператора, если блок им
// заканчивается.
func (p *Parser) parseCompoundBody() (sema.Operand, bool) {
	p.advance()
	var last sema.Operand
	hasValue := false
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		if p.startsDeclaration() {
			hasValue = false
			if !p.parseDeclaration() {
				p.resyncStatement()
			}
			continue
		}
		last, hasValue = p.parseStatement()
	}
	p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}'")
	return last, hasValue
}

// parseStatement разбирает один оператор. Для выражения-оператора
// возвращает его значение.
func (p *Parser) parseStatement() (sema.Operand, bool) {
	tok := p.peek()
	switch tok.Kind {
	case token.LBrace:
		p.parseCompound()
	case token.Semicolon:
		p.advance()
	case token.KwIf:
		p.advance()
		if !p.parseCondition() {
			return sema.Operand{}, false
		}
		p.parseStatement()
		if p.at(token.KwElse) {
			p.advance()
			p.parseStatement()
		}
	case token.KwWhile, token.KwSwitch:
		p.advance()
		if !p.parseCondition() {
			return sema.Operand{}, false
		}
		p.parseStatement()
	case token.KwDo:
		p.parseDoWhile()
	case token.KwFor:
		p.parseFor()
	case token.KwCase:
		p.advance()
		if _, ok := p.parseConditional(); !ok {
			p.resyncStatement()
			return sema.Operand{}, false
		}
		if p.at(token.Ellipsis) {
			p.advance()
			if _, ok := p.parseConditional(); !ok {
				p.resyncStatement()
				return sema.Operand{}, false
			}
		}
		return p.parseLabeled("after 'case'")
	case token.KwDefault:
		p.advance()
		return p.parseLabeled("after 'default'")
	case token.KwReturn:
		p.advance()
		if !p.at(token.Semicolon) {
			if _, ok := p.parseExpr(); !ok {
				p.resyncStatement()
				return sema.Operand{}, false
			}
		}
		p.expectStatementEnd("expected ';' after return statement")
	case token.KwBreak, token.KwContinue:
		p.advance()
		p.expectStatementEnd("expected ';' after " + tok.Kind.String() + " statement")
	case token.KwGoto:
		p.parseGoto()
	case token.Ident:
		if p.peekN(1).Kind == token.Colon {
			p.advance()
			p.advance()
			p.skipAttributes()
			if p.at(token.RBrace) {
				return sema.Operand{}, false
			}
			return p.parseStatement()
		}
		if tok.Text == "asm" || tok.Text == "__asm__" || tok.Text == "__asm" {
			p.skipAsm()
			return sema.Operand{}, false
		}
		return p.parseExprStatement()
	default:
		return p.parseExprStatement()
	}
	return sema.Operand{}, false
}

func (p *Parser) parseExprStatement() (sema.Operand, bool) {
	x, ok := p.parseExpr()
	if !ok {
		p.resyncStatement()
		return sema.Operand{}, false
	}
	if !p.expectStatementEnd("expected ';' after expression") {
		return sema.Operand{}, false
	}
	return x, true
}

func (p *Parser) parseLabeled(where string) (sema.Operand, bool) {
	if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken, "expected ':' "+where); !ok {
		p.resyncStatement()
		return sema.Operand{}, false
	}
	if p.at(token.RBrace) {
		return sema.Operand{}, false
	}
	return p.parseStatement()
}

// expectStatementEnd съедает ';' или восстанавливается до конца оператора.
func (p *Parser) expectStatementEnd(msg string) bool {
	if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, msg); !ok {
		p.resyncStatement()
		return false
	}
	return true
}

// parseCondition разбирает "( expr )" условия if, while и switch.
func (p *Parser) parseCondition() bool {
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after '"+p.lastTokenText()+"'"); !ok {
		p.resyncStatement()
		return false
	}
	if _, ok := p.parseExpr(); !ok {
		p.resyncStatement()
		return false
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'"); !ok {
		p.resyncStatement()
		return false
	}
	return true
}

func (p *Parser) lastTokenText() string {
	if p.lastSpan.End == 0 {
		return ""
	}
	return p.fs.Text(p.lastSpan)
}

func (p *Parser) parseDoWhile() {
	p.advance()
	p.parseStatement()
	if _, ok := p.expect(token.KwWhile, diag.SynUnexpectedToken, "expected 'while' in do/while loop"); !ok {
		p.resyncStatement()
		return
	}
	if !p.parseCondition() {
		return
	}
	p.expectStatementEnd("expected ';' after do/while statement")
}

// parseFor разбирает for; объявления в заголовке видны только в теле.
func (p *Parser) parseFor() {
	p.advance()
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after 'for'"); !ok {
		p.resyncStatement()
		return
	}
	scope := p.res.Enter(symbols.ScopeBlock, p.lastSpan)
	defer p.res.Leave(scope)

	switch {
	case p.at(token.Semicolon):
		p.advance()
	case p.startsDeclaration():
		if !p.parseDeclaration() {
			p.resyncStatement()
			return
		}
	default:
		if _, ok := p.parseExpr(); !ok {
			p.resyncStatement()
			return
		}
		if !p.expectStatementEnd("expected ';' in 'for' statement specifier") {
			return
		}
	}
	if !p.at(token.Semicolon) {
		if _, ok := p.parseExpr(); !ok {
			p.resyncStatement()
			return
		}
	}
	if !p.expectStatementEnd("expected ';' in 'for' statement specifier") {
		return
	}
	if !p.at(token.RParen) {
		if _, ok := p.parseExpr(); !ok {
			p.resyncStatement()
			return
		}
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'"); !ok {
		p.resyncStatement()
		return
	}
	p.parseStatement()
}

func (p *Parser) parseGoto() {
	p.advance()
	if p.at(token.Star) {
		// вычисляемый goto (GNU)
		p.advance()
		if _, ok := p.parseExpr(); !ok {
			p.resyncStatement()
			return
		}
	} else if _, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected identifier after 'goto'"); !ok {
		p.resyncStatement()
		return
	}
	p.expectStatementEnd("expected ';' after goto statement")
}

// skipAsm пропускает GNU asm оператор целиком.
func (p *Parser) skipAsm() {
	p.advance()
	for isQualifier(p.peek().Kind) || p.at(token.KwInline) || p.at(token.KwGoto) {
		p.advance()
	}
	p.resyncStatement()
}
