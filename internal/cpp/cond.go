package cpp

import (
	"tartan/internal/source"
	"tartan/internal/token"
)

// cond is one level of #if nesting.
type cond struct {
	parentActive bool // внешний уровень не пропускается
	active       bool // текущая ветка берётся
	taken        bool // какая-то ветка уже была взята
	sawElse      bool
	span         source.Span
}

func (pp *Preprocessor) skipping() bool {
	return len(pp.conds) > 0 && !pp.conds[len(pp.conds)-1].active
}

// conditional handles #if/#ifdef/#ifndef/#elif/#else/#endif and reports
// whether d was one of them.
func (pp *Preprocessor) conditional(d *token.Directive, sp source.Span) bool {
	switch d.Name {
	case "if", "ifdef", "ifndef":
		parent := !pp.skipping()
		val := false
		if parent {
			val = pp.condValue(d, sp)
		}
		pp.conds = append(pp.conds, cond{parentActive: parent, active: val, taken: val, span: sp})
	case "elif", "elifdef", "elifndef":
		top := pp.top()
		if top == nil {
			pp.errorf(sp, "#%s without #if", d.Name)
			return true
		}
		if top.sawElse {
			pp.errorf(sp, "#%s after #else", d.Name)
		}
		if !top.parentActive || top.taken {
			top.active = false
			return true
		}
		name := "if"
		switch d.Name {
		case "elifdef":
			name = "ifdef"
		case "elifndef":
			name = "ifndef"
		}
		top.active = pp.condValue(&token.Directive{Name: name, Payload: d.Payload}, sp)
		top.taken = top.active
	case "else":
		top := pp.top()
		if top == nil {
			pp.errorf(sp, "#else without #if")
			return true
		}
		if top.sawElse {
			pp.errorf(sp, "#else after #else")
		}
		top.sawElse = true
		top.active = top.parentActive && !top.taken
		top.taken = true
	case "endif":
		if pp.top() == nil {
			pp.errorf(sp, "#endif without #if")
			return true
		}
		pp.conds = pp.conds[:len(pp.conds)-1]
	default:
		return false
	}
	return true
}

func (pp *Preprocessor) top() *cond {
	if len(pp.conds) == 0 {
		return nil
	}
	return &pp.conds[len(pp.conds)-1]
}

func (pp *Preprocessor) condValue(d *token.Directive, sp source.Span) bool {
	switch d.Name {
	case "ifdef", "ifndef":
		name := firstWord(d.Payload)
		if name == "" {
			pp.errorf(sp, "macro name missing in #%s", d.Name)
			return false
		}
		_, defined := pp.macros.Lookup(name)
		return defined == (d.Name == "ifdef")
	}
	v, err := pp.Eval(d.Payload, sp)
	if err != nil {
		pp.errorf(sp, "invalid #%s expression: %v", d.Name, err)
		return false
	}
	return v != 0
}

// finish reports conditionals left open at the end of the file.
func (pp *Preprocessor) finish() {
	for _, c := range pp.conds {
		pp.errorf(c.span, "unterminated conditional directive")
	}
	pp.conds = nil
}
