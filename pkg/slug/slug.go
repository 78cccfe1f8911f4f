// Package slug derives attribute value slugs from user literals and
// deterministic keys, and resolves collisions with numeric suffixes.
package slug

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"unicode"
)

// Slugify converts a literal to its slug form: lowercase, alphanumerics
// preserved, every other run of characters collapsed to a single hyphen.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var result strings.Builder
	prevHyphen := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(r)
			prevHyphen = false
		} else if !prevHyphen {
			result.WriteRune('-')
			prevHyphen = true
		}
	}

	return strings.Trim(result.String(), "-")
}

// Normalize is the case-normalized form used for value lookup: a value
// submitted as "Red" matches an existing value created from "red".
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Deterministic builds the owner-scoped slug for value kinds whose identity
// is the (owner, attribute) pair rather than the literal.
func Deterministic(ownerID, attributeID string) string {
	return fmt.Sprintf("%s_%s", ownerID, attributeID)
}

// ForBoolean builds the shared slug for a boolean value of an attribute.
func ForBoolean(attributeID string, value bool) string {
	return fmt.Sprintf("%s_%t", attributeID, value)
}

// ForReference builds the owner-scoped slug for a reference to a target entity.
func ForReference(ownerID, targetID string) string {
	return fmt.Sprintf("%s_%s", ownerID, targetID)
}

// FromFileURL slugifies the filename component of a file URL or path.
func FromFileURL(fileURL string) string {
	name := fileURL
	if u, err := url.Parse(fileURL); err == nil && u.Path != "" {
		name = u.Path
	}
	name = path.Base(name)
	if ext := path.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	return Slugify(name)
}

// MakeUnique returns base if it is not taken, otherwise the first
// base-2, base-3, … not present in taken.
func MakeUnique(base string, taken map[string]bool) string {
	if !taken[base] {
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if !taken[candidate] {
			return candidate
		}
	}
}
