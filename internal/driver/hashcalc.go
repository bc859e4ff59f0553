package driver

import (
	"crypto/sha256"
	"strconv"
	"strings"

	"tartan/internal/version"
)

// combineDigest: H(part1 || 0 || part2 || 0 ...). Порядок частей важен.
func combineDigest(parts ...string) Digest {
	h := sha256.New()
	for _, p := range parts {
		_, _ = h.Write([]byte(p))
		_, _ = h.Write([]byte{0})
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// cacheKey covers everything that can change the diagnostics of a file:
// the checker build, the options and the decoded content.
func cacheKey(opts *CheckOptions, content []byte) Digest {
	target := opts.target()
	var typedefs strings.Builder
	for _, td := range opts.Typedefs {
		typedefs.WriteString(td.Name)
		typedefs.WriteByte('=')
		typedefs.WriteString(td.Type)
		typedefs.WriteByte(';')
	}
	return combineDigest(
		version.Version,
		strconv.Itoa(int(diskCacheSchemaVersion)),
		target.Name,
		opts.table().Fingerprint(),
		typedefs.String(),
		strings.Join(opts.Defines, "\x01"),
		strconv.Itoa(opts.MaxDepth),
		strconv.Itoa(opts.MaxDiagnostics),
		strconv.FormatBool(opts.IgnoreWarnings),
		strconv.FormatBool(opts.WarningsAsErrors),
		string(content),
	)
}
