package parser

import (
	_ "embed"
	"fmt"
	"strings"

	"tartan/internal/cpp"
	"tartan/internal/ctypes"
)

// PreludeName is the virtual file name of the GLib prelude.
const PreludeName = "<glib-prelude>"

//go:embed prelude.h
var preludeHeader string

// Prelude returns the prelude text with the extra typedefs appended.
func Prelude(extra []Typedef) string {
	if len(extra) == 0 {
		return preludeHeader
	}
	var sb strings.Builder
	sb.WriteString(preludeHeader)
	sb.WriteString("\n/* configured typedefs */\n")
	for _, td := range extra {
		fmt.Fprintf(&sb, "typedef %s %s;\n", td.Type, td.Name)
	}
	return sb.String()
}

// defineTargetMacros installs the integer spellings the prelude builds
// gint64, gsize and gssize from.
func defineTargetMacros(macros *cpp.Table, target ctypes.Target) error {
	ssize := "long"
	if target.LongBits != target.PointerBits {
		ssize = "long long"
	}
	defs := []string{
		"__TARTAN_INT64=" + target.Int64Spelling(),
		"__TARTAN_SIZE=" + target.SizeSpelling(),
		"__TARTAN_SSIZE=" + ssize,
	}
	for _, def := range defs {
		if err := macros.DefineFlag(def); err != nil {
			return err
		}
	}
	return nil
}
