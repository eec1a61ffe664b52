// Package matcher matches location names against glob or regex patterns.
// Names are normalized the same way the reconciler normalizes them before
// comparison, so "dar es salaam" and "Dar Es Salaam" match alike.
package matcher

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// PatternType represents the type of pattern matching to use.
type PatternType int

const (
	// Glob uses shell-style glob patterns (*, ?, []).
	Glob PatternType = iota
	// Regex uses regular expressions.
	Regex
	// Auto detects the pattern type from its metacharacters.
	Auto
)

// regexPrefix forces a pattern to be read as a regular expression.
const regexPrefix = "re:"

// Matcher reports whether a location name matches a pattern.
type Matcher interface {
	// Match checks if the name matches the pattern.
	Match(name string) bool
	// Pattern returns the original pattern string.
	Pattern() string
	// Type returns the pattern type being used.
	Type() PatternType
}

type matcher struct {
	pattern     string
	patternType PatternType
	glob        string
	compiled    *regexp.Regexp
}

// New compiles pattern. With Auto, a "re:" prefix or regex metacharacters
// select Regex; anything else is a glob. Matching is case-insensitive and
// regex patterns are anchored to the whole name.
func New(patternType PatternType, pattern string) (Matcher, error) {
	m := &matcher{pattern: pattern, patternType: patternType}

	expr := strings.TrimSpace(pattern)
	if patternType == Auto {
		m.patternType = detect(expr)
	}
	expr = strings.TrimPrefix(expr, regexPrefix)

	switch m.patternType {
	case Glob:
		m.glob = strings.ToLower(expr)
		if _, err := filepath.Match(m.glob, ""); err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
	case Regex:
		expr = strings.TrimSuffix(strings.TrimPrefix(expr, "^"), "$")
		compiled, err := regexp.Compile("(?i)^(?:" + expr + ")$")
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern %q: %w", pattern, err)
		}
		m.compiled = compiled
	default:
		return nil, fmt.Errorf("unsupported pattern type: %v", patternType)
	}
	return m, nil
}

// Match checks if the name matches the pattern. Surrounding and repeated
// inner whitespace in name is collapsed first.
func (m *matcher) Match(name string) bool {
	name = strings.Join(strings.Fields(name), " ")
	if m.compiled != nil {
		return m.compiled.MatchString(name)
	}
	ok, _ := filepath.Match(m.glob, strings.ToLower(name))
	return ok
}

func (m *matcher) Pattern() string   { return m.pattern }
func (m *matcher) Type() PatternType { return m.patternType }

func detect(pattern string) PatternType {
	if strings.HasPrefix(pattern, regexPrefix) {
		return Regex
	}
	for _, indicator := range []string{"^", "$", `\d`, `\w`, `\s`, "(?", "{", "}", "+", "|", "(", ")", ".*"} {
		if strings.Contains(pattern, indicator) {
			return Regex
		}
	}
	return Glob
}

// String returns a string representation of the PatternType.
func (pt PatternType) String() string {
	switch pt {
	case Glob:
		return "glob"
	case Regex:
		return "regex"
	case Auto:
		return "auto"
	default:
		return "unknown"
	}
}
