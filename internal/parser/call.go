package parser

import (
	"fmt"

	"tartan/internal/ctypes"
	"tartan/internal/diag"
	"tartan/internal/gvariant"
	"tartan/internal/sema"
	"tartan/internal/source"
	"tartan/internal/token"
)

// directRef remembers the last identifier that named a function, so a
// following call can tell a direct call from one through an expression.
type directRef struct {
	name string
	span source.Span
}

// parseCall разбирает список аргументов вызова и проверяет его по
// прототипу вызываемой функции.
func (p *Parser) parseCall(callee sema.Operand) (sema.Operand, bool) {
	name := ""
	if p.direct.name != "" && p.direct.span == callee.Span {
		name = p.direct.name
	}
	p.direct = directRef{}

	p.advance()
	var args []sema.Operand
	if !p.at(token.RParen) {
		for {
			arg, ok := p.parseAssign()
			if !ok {
				return arg, false
			}
			args = append(args, arg)
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'"); !ok {
		return sema.Operand{}, false
	}
	span := callee.Span.Cover(p.lastSpan)
	if callee.Invalid {
		return sema.Invalid(span), true
	}

	info, ok := p.signature(callee)
	if !ok {
		p.report(diag.SemaNotAFunction, diag.SevError, callee.Span,
			fmt.Sprintf("called object type %s is not a function or function pointer", p.types.Quoted(p.typer.RValue(callee).Type)))
		return sema.Invalid(span), true
	}
	result := sema.Operand{Type: info.Result.Unqualified(), Span: span}

	if !info.NoProto && !p.checkArgCount(info, len(args), span) {
		return result, true
	}
	if name == "" {
		return result, true
	}
	call := gvariant.Call{Callee: name, Span: span, Args: make([]gvariant.Arg, 0, len(args))}
	for i, a := range args {
		if a.Invalid {
			return result, true
		}
		var param *ctypes.QualType
		if !info.NoProto && i < len(info.Params) {
			param = &info.Params[i]
		}
		call.Args = append(call.Args, p.callArg(a, param))
	}
	p.record(call)
	return result, true
}

// signature returns the prototype of a function or function pointer operand.
func (p *Parser) signature(callee sema.Operand) (ctypes.FuncInfo, bool) {
	in := p.types
	qt := p.typer.RValue(callee).Type
	if fn, ok := in.Pointee(qt); ok {
		qt = fn
	}
	if in.KindOf(qt) != ctypes.KindFunction {
		return ctypes.FuncInfo{}, false
	}
	return in.FuncInfo(in.Desugar(qt).ID)
}

func (p *Parser) checkArgCount(info ctypes.FuncInfo, have int, span source.Span) bool {
	want := len(info.Params)
	switch {
	case have < want && info.Variadic:
		p.report(diag.SemaArgCount, diag.SevError, span,
			fmt.Sprintf("too few arguments to function call, expected at least %d, have %d", want, have))
	case have < want:
		p.report(diag.SemaArgCount, diag.SevError, span,
			fmt.Sprintf("too few arguments to function call, expected %d, have %d", want, have))
	case have > want && !info.Variadic:
		p.report(diag.SemaArgCount, diag.SevError, span,
			fmt.Sprintf("too many arguments to function call, expected %d, have %d", want, have))
	default:
		return true
	}
	return false
}

// callArg summarises one argument for the format checker.
func (p *Parser) callArg(a sema.Operand, param *ctypes.QualType) gvariant.Arg {
	arg := gvariant.Arg{
		Span:      a.Span,
		Type:      p.typer.ArgType(a, param),
		NullConst: p.typer.IsNullPointerConstant(a),
	}
	if c := p.typer.RValue(a).Const; c != nil {
		arg.Int = &gvariant.IntConst{Value: c.Bits, Negative: c.Negative()}
	}
	if a.Literal != nil && (a.Literal.Prefix == "" || a.Literal.Prefix == "u8") {
		arg.Literal = &gvariant.StringLiteral{Value: a.Literal.Value, Span: a.Literal.Span}
	}
	return arg
}
