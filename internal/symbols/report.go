package symbols

import (
	"tartan/internal/diag"
)

func (r *Resolver) reportRedefinition(next, prev *Symbol, msg string) {
	if r.reporter == nil {
		return
	}
	builder := diag.ReportError(r.reporter, diag.SemaRedefinition, next.Span, msg)
	if builder == nil {
		return
	}
	if prev.Flags&SymbolFlagPrelude == 0 && prev.Span.End > 0 {
		builder.WithNote(prev.Span, "previous definition is here")
	}
	builder.Emit()
}
