package ctypes

import (
	"fmt"
	"strings"
)

// Target describes the data model the analysed code is compiled for.
type Target struct {
	Name           string
	CharSigned     bool
	ShortBits      uint8
	IntBits        uint8
	LongBits       uint8
	LongLongBits   uint8
	PointerBits    uint8
	LongDoubleBits uint8
}

var (
	// LP64 is the model of 64-bit Linux, BSD and macOS.
	LP64 = Target{Name: "lp64", CharSigned: true, ShortBits: 16, IntBits: 32, LongBits: 64, LongLongBits: 64, PointerBits: 64, LongDoubleBits: 128}
	// ILP32 is the model of 32-bit Unix targets.
	ILP32 = Target{Name: "ilp32", CharSigned: true, ShortBits: 16, IntBits: 32, LongBits: 32, LongLongBits: 64, PointerBits: 32, LongDoubleBits: 96}
	// LLP64 is the model of 64-bit Windows.
	LLP64 = Target{Name: "llp64", CharSigned: true, ShortBits: 16, IntBits: 32, LongBits: 32, LongLongBits: 64, PointerBits: 64, LongDoubleBits: 64}
)

// Targets lists the supported data models.
func Targets() []Target {
	return []Target{LP64, ILP32, LLP64}
}

// ParseTarget resolves a data model by name (case-insensitive). Empty selects LP64.
func ParseTarget(name string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "lp64":
		return LP64, nil
	case "ilp32":
		return ILP32, nil
	case "llp64":
		return LLP64, nil
	}
	return Target{}, fmt.Errorf("unknown target %q (want lp64, ilp32 or llp64)", name)
}

// Int64Spelling returns the C spelling of the 64-bit integer GLib uses for
// gint64 on this target.
func (t Target) Int64Spelling() string {
	if t.LongBits == 64 {
		return "long"
	}
	return "long long"
}

// SizeSpelling returns the C spelling of the unsigned integer GLib uses for gsize.
func (t Target) SizeSpelling() string {
	if t.LongBits == t.PointerBits {
		return "unsigned long"
	}
	return "unsigned long long"
}

// bits returns the width of a builtin kind in bits (0 for void and non-builtins).
func (t Target) bits(k Kind) uint8 {
	switch k {
	case KindBool, KindChar, KindSChar, KindUChar:
		return 8
	case KindShort, KindUShort:
		return t.ShortBits
	case KindInt, KindUInt:
		return t.IntBits
	case KindLong, KindULong:
		return t.LongBits
	case KindLongLong, KindULongLong:
		return t.LongLongBits
	case KindFloat:
		return 32
	case KindDouble:
		return 64
	case KindLongDouble:
		return t.LongDoubleBits
	case KindPointer:
		return t.PointerBits
	}
	return 0
}
