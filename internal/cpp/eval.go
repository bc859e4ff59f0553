package cpp

import (
	"errors"
	"fmt"

	"tartan/internal/lexer"
	"tartan/internal/source"
	"tartan/internal/token"
)

// Eval computes the value of a #if expression. defined(X) is resolved
// before expansion; identifiers left after expansion count as 0.
func (pp *Preprocessor) Eval(expr string, sp source.Span) (int64, error) {
	raw := lexText(expr, sp.File)
	resolved := make([]token.Token, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i].Kind != token.Ident || raw[i].Text != "defined" {
			resolved = append(resolved, raw[i])
			continue
		}
		name, skip := definedOperand(raw[i+1:])
		if name == "" {
			return 0, errors.New("macro name missing after 'defined'")
		}
		i += skip
		text := "0"
		if _, ok := pp.macros.Lookup(name); ok {
			text = "1"
		}
		resolved = append(resolved, token.Token{Kind: token.IntLit, Text: text})
	}

	sub := &Preprocessor{macros: pp.macros, reporter: pp.reporter, lastSpan: sp}
	sub.push("", resolved)
	var toks []token.Token
	for {
		t := sub.Next()
		if t.Kind == token.EOF {
			break
		}
		toks = append(toks, t)
	}
	if len(toks) == 0 {
		return 0, errors.New("expression is empty")
	}
	ev := evaluator{toks: toks}
	v := ev.ternary()
	if ev.err == nil && ev.pos < len(ev.toks) {
		ev.fail("unexpected '%s'", ev.toks[ev.pos].Text)
	}
	return v, ev.err
}

// definedOperand parses "X" or "( X )" after the defined keyword.
func definedOperand(rest []token.Token) (name string, consumed int) {
	if len(rest) > 0 && rest[0].Kind == token.Ident {
		return rest[0].Text, 1
	}
	if len(rest) >= 3 && rest[0].Kind == token.LParen && rest[1].Kind == token.Ident && rest[2].Kind == token.RParen {
		return rest[1].Text, 3
	}
	return "", 0
}

type evaluator struct {
	toks []token.Token
	pos  int
	err  error
}

func (e *evaluator) fail(format string, args ...any) {
	if e.err == nil {
		e.err = fmt.Errorf(format, args...)
	}
}

func (e *evaluator) peek() token.Kind {
	if e.pos >= len(e.toks) {
		return token.EOF
	}
	return e.toks[e.pos].Kind
}

func (e *evaluator) ternary() int64 {
	c := e.binary(0)
	if e.peek() != token.Question {
		return c
	}
	e.pos++
	a := e.ternary()
	if e.peek() != token.Colon {
		e.fail("expected ':' in conditional expression")
		return 0
	}
	e.pos++
	b := e.ternary()
	if c != 0 {
		return a
	}
	return b
}

var ppPrec = map[token.Kind]int{
	token.OrOr:   1,
	token.AndAnd: 2,
	token.Pipe:   3,
	token.Caret:  4,
	token.Amp:    5,
	token.EqEq:   6, token.BangEq: 6,
	token.Lt: 7, token.LtEq: 7, token.Gt: 7, token.GtEq: 7,
	token.Shl: 8, token.Shr: 8,
	token.Plus: 9, token.Minus: 9,
	token.Star: 10, token.Slash: 10, token.Percent: 10,
}

func (e *evaluator) binary(minPrec int) int64 {
	lhs := e.unary()
	for {
		op := e.peek()
		prec, ok := ppPrec[op]
		if !ok || prec <= minPrec {
			return lhs
		}
		e.pos++
		rhs := e.binary(prec)
		lhs = e.apply(op, lhs, rhs)
	}
}

func (e *evaluator) apply(op token.Kind, a, b int64) int64 {
	switch op {
	case token.OrOr:
		return boolInt(a != 0 || b != 0)
	case token.AndAnd:
		return boolInt(a != 0 && b != 0)
	case token.Pipe:
		return a | b
	case token.Caret:
		return a ^ b
	case token.Amp:
		return a & b
	case token.EqEq:
		return boolInt(a == b)
	case token.BangEq:
		return boolInt(a != b)
	case token.Lt:
		return boolInt(a < b)
	case token.LtEq:
		return boolInt(a <= b)
	case token.Gt:
		return boolInt(a > b)
	case token.GtEq:
		return boolInt(a >= b)
	case token.Shl:
		return a << uint64(b&63)
	case token.Shr:
		return a >> uint64(b&63)
	case token.Plus:
		return a + b
	case token.Minus:
		return a - b
	case token.Star:
		return a * b
	case token.Slash, token.Percent:
		if b == 0 {
			e.fail("division by zero")
			return 0
		}
		if op == token.Slash {
			return a / b
		}
		return a % b
	}
	return 0
}

func (e *evaluator) unary() int64 {
	if e.pos >= len(e.toks) {
		e.fail("unexpected end of expression")
		return 0
	}
	t := e.toks[e.pos]
	e.pos++
	switch t.Kind {
	case token.Bang:
		return boolInt(e.unary() == 0)
	case token.Tilde:
		return ^e.unary()
	case token.Minus:
		return -e.unary()
	case token.Plus:
		return e.unary()
	case token.LParen:
		v := e.ternary()
		if e.peek() != token.RParen {
			e.fail("expected ')'")
			return 0
		}
		e.pos++
		return v
	case token.IntLit:
		iv, err := lexer.ParseInt(t.Text)
		if err != nil {
			e.fail("%v", err)
			return 0
		}
		return int64(iv.Value)
	case token.CharLit:
		v, err := lexer.DecodeChar(t.Text)
		if err != nil {
			e.fail("%v", err)
		}
		return v
	case token.Ident:
		// true/false и неопределённые имена - 0, как в cpp
		return 0
	}
	e.fail("unexpected '%s' in preprocessor expression", t.Text)
	return 0
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
