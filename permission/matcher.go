package permission

import "strings"

// Wildcard matches any permission string when held, and any single segment
// value when it appears as a segment of a held string.
const Wildcard = "*"

// Matches reports whether the held permission string satisfies the required
// one. Exact equality matches; the bare held "*" matches everything; otherwise
// both strings are split on ":" and compared segment by segment, with a "*"
// segment in held accepting any required value in that position. Differing
// segment counts never match.
func Matches(held, required string) bool {
	if held == required {
		return true
	}
	if held == Wildcard {
		return true
	}

	heldSegs := strings.Split(held, ":")
	requiredSegs := strings.Split(required, ":")
	if len(heldSegs) != len(requiredSegs) {
		return false
	}

	for i, seg := range heldSegs {
		if seg == Wildcard {
			continue
		}
		if seg != requiredSegs[i] {
			return false
		}
	}

	return true
}

// HasPermission reports whether any string in held matches required.
func HasPermission(held []string, required string) bool {
	for _, h := range held {
		if Matches(h, required) {
			return true
		}
	}
	return false
}

// HasAny reports whether held satisfies at least one entry of required.
// An empty required list denies: it means no acceptable permission was
// defined, not that everything is acceptable.
func HasAny(held []string, required []string) bool {
	if len(required) == 0 {
		return false
	}
	for _, r := range required {
		if HasPermission(held, r) {
			return true
		}
	}
	return false
}

// HasAll reports whether held satisfies every entry of required.
// An empty required list denies, same policy as [HasAny].
func HasAll(held []string, required []string) bool {
	if len(required) == 0 {
		return false
	}
	for _, r := range required {
		if !HasPermission(held, r) {
			return false
		}
	}
	return true
}
