package invoice

import (
	"regexp"
	"strings"
)

// labelBoundary finds where the next "Label:" starts inside a collapsed line.
// Multi-word labels come first so "Invoice Date:" is cut at "Invoice", not at
// "Date". The trailing alternative catches unknown capitalized one-word labels.
var labelBoundary = regexp.MustCompile(`(?i:\b(?:` +
	`bill\s+to|sold\s+to|ship\s+to|customer\s+name|client\s+name|` +
	`invoice\s+date|invoice\s+number|invoice\s+no\.?|due\s+date|payment\s+due|payment\s+terms|` +
	`grand\s+total|net\s+amount|total\s+amount|amount\s+due|balance\s+due|total\s+due|sub-?total|` +
	`services\s+rendered|phone\s+number|` +
	`to|from|customer|client|vendor|company|business|e-?mail|phone|tel|fax|address|` +
	`description|item|service|product|work|amount|total|balance|due|date|terms|` +
	`invoice|inv|tax|vat|qty|quantity|rate|price|notes?)\s*[:#])` +
	`|\b[A-Z][A-Za-z]+:`)

const trimValue = " \t,;:-–|"

// captureAfter returns the free-text value that follows a label ending at pos.
// The value stops at the next label, the end of the original line, or the end
// of the text, whichever comes first. A label that ends its line yields "".
func captureAfter(rt RawText, pos int) string {
	if pos >= len(rt.Flat) {
		return ""
	}
	if rt.Flat[pos] == ' ' {
		if rt.lineEnd(pos) == pos {
			return ""
		}
		pos++
	}
	end := rt.lineEnd(pos)
	value := rt.Flat[pos:end]
	return cutAtLabel(value)
}

// cutAtLabel trims s at the first label boundary. A value that is itself a
// label comes back empty.
func cutAtLabel(s string) string {
	s = strings.TrimLeft(s, trimValue)
	if loc := labelBoundary.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	return strings.TrimRight(s, trimValue)
}
