package token

import (
	"tartan/internal/source"
)

// Token represents a single source token with its location and trivia.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia
}

// IsLiteral reports whether the token is a numeric, character, or string literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case IntLit, FloatLit, CharLit, StringLit:
		return true
	default:
		return false
	}
}

// IsPunctOrOp reports whether the token is a punctuation or operator.
func (t Token) IsPunctOrOp() bool {
	return t.Kind >= Plus && t.Kind <= Ellipsis
}

// IsKeyword reports whether the token is a C keyword.
func (t Token) IsKeyword() bool {
	return t.Kind >= KwAuto && t.Kind <= KwBool
}

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }

// DirectiveLeading returns the preprocessor directives attached before the token.
func (t Token) DirectiveLeading() []*Directive {
	var out []*Directive
	for i := range t.Leading {
		if t.Leading[i].Kind == TriviaDirective && t.Leading[i].Directive != nil {
			out = append(out, t.Leading[i].Directive)
		}
	}
	return out
}
