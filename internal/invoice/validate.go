package invoice

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
)

var minDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// ValidAmount accepts a positive decimal. Thousands separators are removed
// and the written precision is kept ("1,500.00" -> "1500.00").
func ValidAmount(s string) (string, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return "", false
	}
	return s, true
}

// ValidDate accepts a date later than 1900-01-01 and returns it as YYYY-MM-DD.
func ValidDate(s string) (string, bool) {
	t, ok := parseDate(s)
	if !ok || !t.After(minDate) {
		return "", false
	}
	return t.Format(time.DateOnly), true
}

var labelWords = []string{"email", "date", "amount", "invoice"}

// ValidName accepts a party name (customer or vendor).
func ValidName(s string) (string, bool) {
	s = strings.TrimSpace(s)
	n := utf8.RuneCountInString(s)
	if n < 3 || n > 99 {
		return "", false
	}
	first, _ := utf8.DecodeRuneInString(s)
	if unicode.IsDigit(first) {
		return "", false
	}
	lower := strings.ToLower(s)
	for _, w := range labelWords {
		if strings.Contains(lower, w) {
			return "", false
		}
	}
	return s, true
}

var emailRe = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9\-]+(?:\.[A-Za-z0-9\-]+)*\.[A-Za-z]{2,}$`)

// ValidEmail accepts an RFC-shaped address.
func ValidEmail(s string) (string, bool) {
	s = strings.TrimRight(strings.TrimSpace(s), ".")
	if !emailRe.MatchString(s) {
		return "", false
	}
	return s, true
}

var (
	leadingAmount     = regexp.MustCompile(`^(?:[$€£¥₹]\s*\d|(?i:usd|eur|gbp)\s*\d)`)
	descriptionBanned = []string{"amount", "total", "date"}
)

// ValidDescription accepts a free-text line item description.
func ValidDescription(s string) (string, bool) {
	s = strings.TrimSpace(s)
	n := utf8.RuneCountInString(s)
	if n < 6 || n > 199 || !strings.Contains(s, " ") {
		return "", false
	}
	if leadingAmount.MatchString(s) {
		return "", false
	}
	lower := strings.ToLower(s)
	for _, w := range descriptionBanned {
		if strings.Contains(lower, w) {
			return "", false
		}
	}
	return s, true
}

var invoiceNumberRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9\-]*$`)

// ValidInvoiceNumber accepts an alphanumeric-with-dashes token holding at
// least one digit.
func ValidInvoiceNumber(s string) (string, bool) {
	s = strings.TrimRight(strings.TrimSpace(s), "-")
	if len(s) > 64 || !invoiceNumberRe.MatchString(s) {
		return "", false
	}
	if strings.IndexFunc(s, unicode.IsDigit) < 0 {
		return "", false
	}
	return s, true
}

var (
	ordinalSuffix = regexp.MustCompile(`(?i)(\d)(?:st|nd|rd|th)\b`)
	monthDot      = regexp.MustCompile(`([A-Za-z])\.`)
	septAbbrev    = regexp.MustCompile(`(?i)\bsept\b`)
	dayMonthComma = regexp.MustCompile(`^(\d{1,2}\s+[A-Za-z]+),`)
	dashedUSDate  = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`)
	digitsOnly    = regexp.MustCompile(`^\d+$`)
)

// parseDate reads a month-first date with dateparse. Ordinals, dotted month
// abbreviations, "Sept", "15 Jan, 2025" and dashed month-day-year are
// rewritten first since dateparse does not take them. Input without a digit,
// or with nothing but digits (a year, a unix timestamp), is refused.
func parseDate(s string) (time.Time, bool) {
	s = ordinalSuffix.ReplaceAllString(strings.TrimSpace(s), "$1")
	s = monthDot.ReplaceAllString(s, "$1")
	s = septAbbrev.ReplaceAllString(s, "Sep")
	s = dayMonthComma.ReplaceAllString(s, "$1")
	s = dashedUSDate.ReplaceAllString(s, "$1/$2/$3")
	if digitsOnly.MatchString(s) || !strings.ContainsAny(s, "0123456789") {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(s, time.UTC, dateparse.PreferMonthFirst(true))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
