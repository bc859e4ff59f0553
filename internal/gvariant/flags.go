package gvariant

import "strings"

// Flags modulate how a grammar production treats the argument it binds.
// A Flags value is passed down the recursion by value; callees derive new
// values with With and Without and never change the caller's.
type Flags uint8

const (
	// FlagConsumeArgs binds productions to variadic arguments. Without it
	// the grammar is only validated.
	FlagConsumeArgs Flags = 1 << iota
	// FlagForceVariant replaces the expected type with GVariant *.
	FlagForceVariant
	// FlagForceVaList replaces the expected type with va_list *.
	FlagForceVaList
	// FlagRequireConst makes outbound pointees const.
	FlagRequireConst
	// FlagDirectionOut marks out-parameters: every expected type gains a
	// level of indirection.
	FlagDirectionOut
	// FlagAllowMaybe lets NULL stand in for a pointer argument.
	FlagAllowMaybe
)

var flagNames = [...]string{"consume", "variant", "va_list", "const", "out", "maybe"}

// Has reports whether every flag in x is set.
func (f Flags) Has(x Flags) bool { return f&x == x }

// With returns f with x set.
func (f Flags) With(x Flags) Flags { return f | x }

// Without returns f with x cleared.
func (f Flags) Without(x Flags) Flags { return f &^ x }

func (f Flags) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	for i, name := range flagNames {
		if f&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "|")
}
