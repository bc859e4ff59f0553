package lexer

import (
	"fmt"
	"strconv"
	"strings"
)

// IntValue is the decoded form of an integer constant token.
type IntValue struct {
	Value    uint64
	Longs    int  // 0, 1 (l) или 2 (ll)
	Unsigned bool // суффикс u
	// Decimal is false for hex and octal spellings, which may pick
	// unsigned types without a suffix.
	Decimal bool
}

// ParseInt decodes the text of an IntLit token.
func ParseInt(text string) (IntValue, error) {
	digits := strings.TrimRight(text, "uUlL")
	longs, unsigned, ok := ParseIntSuffix(text[len(digits):])
	if !ok {
		return IntValue{}, fmt.Errorf("invalid suffix on integer constant %q", text)
	}
	iv := IntValue{Longs: longs, Unsigned: unsigned, Decimal: true}
	base := 10
	switch {
	case len(digits) > 2 && (digits[:2] == "0x" || digits[:2] == "0X"):
		base, digits, iv.Decimal = 16, digits[2:], false
	case len(digits) > 1 && digits[0] == '0':
		base, digits, iv.Decimal = 8, digits[1:], false
	}
	v, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return IntValue{}, fmt.Errorf("integer constant %q: %w", text, err)
	}
	iv.Value = v
	return iv, nil
}
