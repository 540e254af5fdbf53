package importer

import (
	"fmt"
	"strings"
)

// NameToID converts a display name to a stable snake_case identifier.
//
// Postcondition: result is lowercase, contains only [a-z0-9_], and is
// idempotent (NameToID(NameToID(s)) == NameToID(s)).
func NameToID(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "_")
	var b strings.Builder
	for _, r := range s {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Dedupe drops every entry whose id was already seen, keeping the first.
//
// Postcondition: the result preserves input order; one warning names each dropped entry.
func Dedupe[T any](kind string, items []T, id func(T) string) ([]T, []string) {
	seen := make(map[string]bool, len(items))
	out := make([]T, 0, len(items))
	var warnings []string
	for i, it := range items {
		key := id(it)
		if seen[key] {
			warnings = append(warnings, fmt.Sprintf("%s #%d: duplicate id %q; skipping", kind, i, key))
			continue
		}
		seen[key] = true
		out = append(out, it)
	}
	return out, warnings
}
