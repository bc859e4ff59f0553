package cpp

import (
	"fmt"
	"strings"

	"tartan/internal/source"
	"tartan/internal/token"
)

// collectArgs reads the parenthesised argument list of a function-like
// macro invocation. ok is false when name is not followed by '(' and the
// identifier must be left alone. A nil args slice with ok set means the
// invocation was malformed and has been dropped.
func (pp *Preprocessor) collectArgs(name token.Token, m *Macro) (args [][]token.Token, span source.Span, ok bool) {
	next := pp.raw()
	if next.Kind != token.LParen {
		pp.unread(next)
		return nil, source.Span{}, false
	}
	span = name.Span
	depth := 0
	cur := []token.Token{}
	for {
		t := pp.raw()
		switch t.Kind {
		case token.EOF:
			pp.errorf(name.Span, "unterminated argument list invoking macro '%s'", m.Name)
			pp.unread(t)
			return nil, span, true
		case token.LParen, token.LBracket, token.LBrace:
			depth++
		case token.RBracket, token.RBrace:
			depth--
		case token.RParen:
			if depth == 0 {
				span = span.Cover(t.Span)
				args = append(args, cur)
				if !pp.arity(m, &args, span) {
					return nil, span, true
				}
				return args, span, true
			}
			depth--
		case token.Comma:
			// запятые после последнего именованного параметра принадлежат __VA_ARGS__
			if depth == 0 && !(m.Variadic && len(args) == len(m.Params)-1) {
				args = append(args, cur)
				cur = []token.Token{}
				continue
			}
		}
		cur = append(cur, t)
	}
}

func (pp *Preprocessor) arity(m *Macro, args *[][]token.Token, span source.Span) bool {
	got := len(*args)
	if len(m.Params) == 0 && got == 1 && len((*args)[0]) == 0 {
		*args = [][]token.Token{}
		return true
	}
	want := len(m.Params)
	if m.Variadic && got == want-1 {
		*args = append(*args, nil) // пустой __VA_ARGS__
		return true
	}
	if got != want {
		pp.errorf(span, "macro '%s' requires %d arguments, but %d given", m.Name, want, got)
		return false
	}
	return true
}

// substitute builds the replacement list of one invocation. Every produced
// token takes the invocation span.
func (pp *Preprocessor) substitute(m *Macro, args [][]token.Token, span source.Span) []token.Token {
	body := m.Body
	out := make([]token.Token, 0, len(body))
	operand := func(t token.Token) []token.Token {
		if m.FuncLike && t.Kind == token.Ident {
			if p := m.param(t.Text); p >= 0 {
				return args[p]
			}
		}
		return []token.Token{t}
	}
	for i := 0; i < len(body); i++ {
		t := body[i]
		switch {
		case isPaste(body, i) && i+2 < len(body):
			i += 2
			right := body[i]
			if m.FuncLike && right.Kind == token.Hash && i+1 < len(body) && m.param(body[i+1].Text) >= 0 {
				i++
				out = pp.paste(out, []token.Token{stringify(args[m.param(body[i].Text)])}, span)
				continue
			}
			out = pp.paste(out, operand(right), span)
		case m.FuncLike && t.Kind == token.Hash && i+1 < len(body) && m.param(body[i+1].Text) >= 0:
			i++
			out = append(out, stringify(args[m.param(body[i].Text)]))
		default:
			out = append(out, operand(t)...)
		}
	}
	for i := range out {
		out[i].Span = span
		out[i].Leading = nil
	}
	return out
}

// paste implements "##" between the last token of out and the first of right.
func (pp *Preprocessor) paste(out, right []token.Token, span source.Span) []token.Token {
	if len(right) == 0 {
		// GNU: ", ## __VA_ARGS__" глотает запятую при пустом списке
		if n := len(out); n > 0 && out[n-1].Kind == token.Comma {
			return out[:n-1]
		}
		return out
	}
	if len(out) == 0 {
		return append(out, right...)
	}
	left := out[len(out)-1]
	if left.Kind == token.Comma {
		return append(out, right...)
	}
	text := left.Text + right[0].Text
	glued := lexText(text, span.File)
	if len(glued) != 1 {
		pp.errorf(span, "pasting formed '%s', an invalid preprocessing token", text)
		return append(out, right...)
	}
	out[len(out)-1] = glued[0]
	return append(out, right[1:]...)
}

// stringify implements the '#' operator.
func stringify(arg []token.Token) token.Token {
	var sb strings.Builder
	sb.WriteByte('"')
	for i, t := range arg {
		if i > 0 && arg[i-1].Span.End != t.Span.Start {
			sb.WriteByte(' ')
		}
		if t.Kind == token.StringLit || t.Kind == token.CharLit {
			sb.WriteString(strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(t.Text))
			continue
		}
		sb.WriteString(t.Text)
	}
	sb.WriteByte('"')
	return token.Token{Kind: token.StringLit, Text: sb.String()}
}

// String renders a macro the way it would be written after #define.
func (m *Macro) String() string {
	var sb strings.Builder
	sb.WriteString(m.Name)
	if m.FuncLike {
		params := make([]string, len(m.Params))
		copy(params, m.Params)
		if m.Variadic && params[len(params)-1] == "__VA_ARGS__" {
			params[len(params)-1] = "..."
		} else if m.Variadic {
			params[len(params)-1] += "..."
		}
		fmt.Fprintf(&sb, "(%s)", strings.Join(params, ", "))
	}
	for i, t := range m.Body {
		if i == 0 || m.Body[i-1].Span.End != t.Span.Start {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.Text)
	}
	return sb.String()
}
