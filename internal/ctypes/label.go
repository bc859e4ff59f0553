package ctypes

import (
	"fmt"
	"strings"
)

// Label spells qt the way a C compiler prints it in diagnostics, keeping
// typedef names: "const gchar **", "GVariant *", "char *const *".
func (in *Interner) Label(qt QualType) string {
	return in.spell(qt, "", 0)
}

// CanonicalLabel spells the canonical form of qt: "const char **".
func (in *Interner) CanonicalLabel(qt QualType) string {
	return in.Label(in.Canonical(qt))
}

// Quoted renders qt for a diagnostic message: 'gint64 *' (aka 'long *')
// when typedef sugar hides the underlying type, 'char *' otherwise.
func (in *Interner) Quoted(qt QualType) string {
	sugared := in.Label(qt)
	canonical := in.CanonicalLabel(qt)
	if sugared == canonical {
		return "'" + sugared + "'"
	}
	return fmt.Sprintf("'%s' (aka '%s')", sugared, canonical)
}

func (in *Interner) spell(qt QualType, inner string, depth int) string {
	if depth > 32 {
		return "..."
	}
	tt, ok := in.Lookup(qt.ID)
	if !ok {
		return joinDecl("<invalid>", inner)
	}
	switch tt.Kind {
	case KindPointer:
		ptr := "*"
		if q := qt.Quals.String(); q != "" {
			ptr += q
			if inner != "" {
				ptr += " "
			}
		}
		ptr += inner
		if in.needsParens(tt.Elem) {
			ptr = "(" + ptr + ")"
		}
		return in.spell(tt.Elem, ptr, depth+1)
	case KindArray:
		dim := "[]"
		if tt.Count != ArrayUnknownLength {
			dim = fmt.Sprintf("[%d]", tt.Count)
		}
		return in.spell(tt.Elem, inner+dim, depth+1)
	case KindFunction:
		return in.spell(tt.Elem, inner+in.paramList(in.funcs[tt.Payload], depth), depth+1)
	}
	return joinDecl(in.baseName(qt, tt), inner)
}

func (in *Interner) needsParens(elem QualType) bool {
	tt, ok := in.Lookup(elem.ID)
	return ok && (tt.Kind == KindArray || tt.Kind == KindFunction)
}

func (in *Interner) paramList(info FuncInfo, depth int) string {
	if info.NoProto {
		return "()"
	}
	parts := make([]string, 0, len(info.Params)+1)
	for _, p := range info.Params {
		parts = append(parts, in.spell(p, "", depth+1))
	}
	if info.Variadic {
		parts = append(parts, "...")
	}
	if len(parts) == 0 {
		return "(void)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (in *Interner) baseName(qt QualType, tt Type) string {
	var name string
	switch tt.Kind {
	case KindTypedef:
		name = in.typedefs[tt.Payload].Name
	case KindRecord:
		rec := in.records[tt.Payload]
		if rec.Union {
			name = "union " + rec.Tag
		} else {
			name = "struct " + rec.Tag
		}
	default:
		name = tt.Kind.String()
	}
	if q := qt.Quals.String(); q != "" {
		return q + " " + name
	}
	return name
}

func joinDecl(base, inner string) string {
	if inner == "" {
		return base
	}
	return base + " " + inner
}
