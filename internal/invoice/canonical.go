package invoice

import "strings"

// displayName maps a known legal name to its short display form. A name
// matches when it contains every token, case-insensitively.
type displayName struct {
	tokens  []string
	display string
}

// displayNames is deliberately a closed list, not an abbreviation algorithm.
var displayNames = []displayName{
	{tokens: []string{"acme", "corporation"}, display: "Acme Corp"},
}

// CanonicalCustomerName returns the display form for a known legal name, or
// name unchanged.
func CanonicalCustomerName(name string) string {
	lower := strings.ToLower(name)
	for _, dn := range displayNames {
		if containsAll(lower, dn.tokens) {
			return dn.display
		}
	}
	return name
}

func containsAll(s string, tokens []string) bool {
	for _, t := range tokens {
		if !strings.Contains(s, t) {
			return false
		}
	}
	return true
}
