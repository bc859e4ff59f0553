package gvariant

import (
	"tartan/internal/ctypes"
	"tartan/internal/diag"
)

// consume binds the argument under the cursor to expected and advances the
// cursor past it.
func (p *parser) consume(expected ctypes.QualType, flags Flags) error {
	if !flags.Has(FlagConsumeArgs) {
		return nil
	}
	in := p.c.types.Types()

	switch {
	case flags.Has(FlagForceVariant):
		expected = p.c.types.PointerTypeByName("GVariant")
	case flags.Has(FlagForceVaList):
		expected = p.c.types.PointerTypeByName("va_list")
	}
	if expected.IsNull() {
		// The translation unit never declared the GLib type; nothing to
		// compare against.
		p.next++
		return nil
	}
	if flags.Has(FlagDirectionOut) && flags.Has(FlagRequireConst) {
		if pointee, ok := in.Pointee(expected); ok {
			expected = in.PointerTo(pointee.WithQuals(ctypes.QualConst))
		}
	}
	if flags.Has(FlagDirectionOut) && !flags.Has(FlagForceVaList) {
		expected = in.PointerTo(expected)
	}

	if p.next >= len(p.args) {
		return p.literalError(diag.GVarMissingArgument,
			"Expected a GVariant variadic argument of type %0 but there wasn’t one.",
			TypeArg(expected))
	}
	arg := &p.args[p.next]
	actual := arg.Type

	// A non-negative literal may be passed for an unsigned slot.
	if arg.Int != nil && !arg.Int.Negative && in.IsUnsignedInteger(expected) && in.IsSignedInteger(actual) {
		actual = in.CorrespondingUnsigned(actual)
	}

	switch {
	case arg.NullConst:
		if !flags.Has(FlagAllowMaybe) && in.IsPointer(expected) {
			return argError(arg, diag.GVarNullNotAllowed,
				"Expected a GVariant variadic argument of type %0 but saw NULL instead.",
				TypeArg(expected))
		}
	case archDependent(in, actual):
		return argError(arg, diag.GVarArchDependent,
			"Expected a GVariant variadic argument of type %0 but saw one of type %1. These types are not compatible on every architecture.",
			TypeArg(expected), TypeArg(actual))
	case !typesEqual(in, actual, expected, flags):
		return argError(arg, diag.GVarTypeMismatch,
			"Expected a GVariant variadic argument of type %0 but saw one of type %1.",
			TypeArg(expected), TypeArg(actual))
	}

	p.next++
	return nil
}

func argError(arg *Arg, code diag.Code, tpl string, args ...Subst) *Report {
	return &Report{
		Severity: diag.SevError,
		Code:     code,
		Template: tpl,
		Anchor:   arg.Span,
		Args:     args,
	}
}
