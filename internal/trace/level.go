package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	// LevelOff disables tracing.
	LevelOff    Level = iota // no tracing
	LevelError               // nothing is streamed; the ring is dumped on a crash
	LevelPhase               // driver + pass boundaries
	LevelDetail              // per-file events
	LevelDebug               // everything including call sites
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

// deepest scope each level lets through; 0 lets nothing through
var levelScopes = [...]Scope{0, 0, ScopePass, ScopeFile, ScopeCall}

// String returns the string representation of Level.
func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel converts a flag value to a Level. Case is ignored.
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(s)
	for i, n := range levelNames {
		if n == name {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether events of scope pass at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	if int(l) >= len(levelScopes) {
		return false
	}
	return scope <= levelScopes[l]
}

// Scope indicates the granularity of an event.
// Lower numeric values represent coarser events.
type Scope uint8

const (
	// ScopeDriver covers a whole tartan invocation.
	ScopeDriver Scope = iota + 1
	// ScopePass covers one phase over one file (load, parse, check).
	ScopePass
	// ScopeFile covers everything done for one translation unit.
	ScopeFile
	// ScopeCall covers a single checked call site.
	ScopeCall
)

var scopeNames = [...]string{"unknown", "driver", "pass", "file", "call"}

// String returns the string representation of Scope.
func (s Scope) String() string {
	if int(s) < len(scopeNames) {
		return scopeNames[s]
	}
	return "unknown"
}
