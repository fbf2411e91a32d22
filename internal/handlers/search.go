package handlers

import "strings"

// matchesQuery reports whether any of the candidate strings contains the
// query, case-insensitively. An empty query matches everything.
func matchesQuery(query string, candidates ...string) bool {
	if query == "" {
		return true
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return true
	}
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if strings.Contains(strings.ToLower(candidate), needle) {
			return true
		}
	}
	return false
}

func joined(items []string) string {
	return strings.Join(items, " ")
}
