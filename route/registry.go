package route

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/authrail/authrail/permission"
)

// MethodWildcard matches every HTTP method.
const MethodWildcard = "*"

// Entry is one registry record: an HTTP method (or "*"), a path pattern, and
// the access requirement governing matching requests.
type Entry struct {
	Method      string
	Pattern     string
	Requirement permission.Requirement

	matcher *regexp.Regexp
}

// Registry is the ordered allowlist of route entries. Lookup walks entries in
// declaration order and returns the first structural match; absence of a
// match means the route is not registered and the caller must deny.
//
// A Registry is immutable after construction and safe for concurrent use.
type Registry struct {
	entries []*Entry
}

// NewRegistry compiles the given entries, preserving their order.
func NewRegistry(entries ...Entry) (*Registry, error) {
	r := &Registry{entries: make([]*Entry, 0, len(entries))}
	for i := range entries {
		if err := r.add(entries[i]); err != nil {
			return nil, fmt.Errorf("entry %d (%s %s): %w", i, entries[i].Method, entries[i].Pattern, err)
		}
	}
	return r, nil
}

func (r *Registry) add(e Entry) error {
	if e.Method == "" {
		e.Method = MethodWildcard
	}

	matcher, err := compilePattern(e.Pattern)
	if err != nil {
		return err
	}
	e.matcher = matcher

	r.entries = append(r.entries, &e)
	return nil
}

// Find returns the first entry whose method and compiled pattern match the
// request. The method comparison is case-insensitive and any query-string
// suffix on path is ignored.
func (r *Registry) Find(method, path string) (*Entry, bool) {
	path = normalizePath(path)

	for _, e := range r.entries {
		if e.Method != MethodWildcard && !strings.EqualFold(e.Method, method) {
			continue
		}
		if e.matcher.MatchString(path) {
			return e, true
		}
	}

	return nil, false
}

// Len returns the number of registered entries.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Entries returns the registered entries in declaration order. The slice is
// a copy; the entries themselves are shared and must not be mutated.
func (r *Registry) Entries() []*Entry {
	out := make([]*Entry, len(r.entries))
	copy(out, r.entries)
	return out
}
