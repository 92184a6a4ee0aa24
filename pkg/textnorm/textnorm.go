// Package textnorm normalizes free-text fields arriving from the registry
// before they enter the entity graph.
package textnorm

import "strings"

// Collapse trims the string and collapses internal whitespace runs to single
// spaces.
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// PostalCode strips spaces and slashes and truncates the result to five
// characters, the length of a Czech postal code.
func PostalCode(s string) string {
	replacer := strings.NewReplacer(" ", "", "/", "")
	cleaned := replacer.Replace(s)
	if len(cleaned) > 5 {
		cleaned = cleaned[:5]
	}
	return cleaned
}
