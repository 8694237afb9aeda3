package journey

import (
	"fmt"
	"strings"
)

// Matcher matches step labels against a wildcard path pattern.
// Within a pattern, "*" matches exactly one path segment and "**"
// matches one or more segments. A pattern with no wildcards compiles
// to plain string equality, which behaves identically to matching but
// skips the segment walk.
type Matcher struct {
	pattern  string
	segments []string
	literal  bool
}

// CompilePattern validates and compiles a filter pattern. It fails on
// empty patterns and on segments that mix wildcards with text (for
// example "po*st" or "***"); callers should treat the error as a bad
// client request, not a server fault.
func CompilePattern(pattern string) (*Matcher, error) {
	if pattern == "" {
		return nil, fmt.Errorf("empty step filter pattern")
	}
	if !strings.Contains(pattern, "*") {
		return &Matcher{pattern: pattern, literal: true}, nil
	}
	segments := strings.Split(pattern, "/")
	for _, seg := range segments {
		if !strings.Contains(seg, "*") {
			continue
		}
		if seg != "*" && seg != "**" {
			return nil, fmt.Errorf("malformed wildcard segment %q in pattern %q", seg, pattern)
		}
	}
	return &Matcher{pattern: pattern, segments: segments}, nil
}

// Pattern returns the source pattern the matcher was compiled from.
func (m *Matcher) Pattern() string { return m.pattern }

// Match reports whether a step label satisfies the pattern.
func (m *Matcher) Match(label string) bool {
	if m.literal {
		return label == m.pattern
	}
	return matchSegments(m.segments, strings.Split(label, "/"))
}

func matchSegments(pattern, segs []string) bool {
	if len(pattern) == 0 {
		return len(segs) == 0
	}
	switch pattern[0] {
	case "**":
		// One or more segments.
		for i := 1; i <= len(segs); i++ {
			if matchSegments(pattern[1:], segs[i:]) {
				return true
			}
		}
		return false
	case "*":
		return len(segs) > 0 && matchSegments(pattern[1:], segs[1:])
	default:
		return len(segs) > 0 && segs[0] == pattern[0] && matchSegments(pattern[1:], segs[1:])
	}
}
