package route

import (
	"errors"
	"regexp"
	"strings"
)

// ErrEmptyPattern is returned when an entry declares no path pattern.
var ErrEmptyPattern = errors.New("route pattern is empty")

// compilePattern converts a path pattern into an anchored matcher. Literal
// segments are quoted, ":name" segments match one path segment, and a "*"
// segment matches any remainder including nested segments.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, ErrEmptyPattern
	}

	var b strings.Builder
	b.WriteString("^")

	for i, seg := range strings.Split(pattern, "/") {
		if i > 0 {
			b.WriteString("/")
		}
		switch {
		case seg == "*":
			b.WriteString(".*")
		case strings.HasPrefix(seg, ":") && len(seg) > 1:
			b.WriteString("[^/]+")
		default:
			b.WriteString(regexp.QuoteMeta(seg))
		}
	}

	b.WriteString("$")
	return regexp.Compile(b.String())
}

// normalizePath strips the query-string suffix before matching. Patterns
// describe paths only.
func normalizePath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}
