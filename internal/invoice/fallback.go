package invoice

import (
	"regexp"
	"strings"
)

// FallbackRule is a line-oriented second pass for a field the primary rules
// left empty.
type FallbackRule struct {
	Name string
	// Match reports whether a line carries the field's label and returns the
	// text after the label.
	Match func(line string) (rest string, ok bool)
	// Bullets lets a bare label line collect the bullet list under it.
	Bullets bool
}

var toLabel = regexp.MustCompile(`(?i)\bto\s*:`)

var customerFallback = &FallbackRule{
	Name: "to-line",
	Match: func(line string) (string, bool) {
		if strings.Contains(strings.ToLower(line), "email") {
			return "", false
		}
		loc := toLabel.FindStringIndex(line)
		if loc == nil {
			return "", false
		}
		return line[loc[1]:], true
	},
}

var descriptionLabel = regexp.MustCompile(`(?i)\b(?:description|services\s+rendered|services|item|service|product|work)\s*:`)

var descriptionFallback = &FallbackRule{
	Name:    "description-line",
	Bullets: true,
	Match: func(line string) (string, bool) {
		loc := descriptionLabel.FindStringIndex(line)
		if loc == nil {
			return "", false
		}
		return line[loc[1]:], true
	},
}

var bulletMarker = regexp.MustCompile(`^(?:[-*•·▪]|\d+[.)])\s+`)

// scan walks the lines and returns the first value the validator accepts. A
// label followed by text on the same line captures that text; a label alone
// on its line captures the bullet list below it (when enabled) or else the
// next line.
func (f *FallbackRule) scan(lines []string, validate Validator) (string, bool) {
	for i, line := range lines {
		rest, ok := f.Match(line)
		if !ok {
			continue
		}
		candidate := cutAtLabel(rest)
		if candidate == "" && strings.TrimSpace(rest) == "" && i+1 < len(lines) {
			if f.Bullets {
				candidate = bulletList(lines[i+1:])
			}
			if candidate == "" {
				candidate = cutAtLabel(lines[i+1])
			}
		}
		if candidate == "" {
			continue
		}
		if v, ok := validate(candidate); ok {
			return v, true
		}
	}
	return "", false
}

// bulletList joins the consecutive bullet lines at the top of lines.
func bulletList(lines []string) string {
	var items []string
	for _, line := range lines {
		loc := bulletMarker.FindStringIndex(line)
		if loc == nil {
			break
		}
		if item := strings.TrimSpace(line[loc[1]:]); item != "" {
			items = append(items, item)
		}
	}
	return strings.Join(items, ", ")
}

// scanFallbacks fills in fields the primary pass missed. Results are returned
// as a new slice; the input is not modified.
func scanFallbacks(rt RawText, extractors []Extractor, primary []FieldResult) []FieldResult {
	out := make([]FieldResult, len(primary))
	copy(out, primary)
	for i, x := range extractors {
		if x.Fallback == nil || out[i].Found() {
			continue
		}
		v, ok := x.Fallback.scan(rt.Lines, firstValidator(x))
		if !ok {
			continue
		}
		if x.Canonical != nil {
			v = x.Canonical(v)
		}
		out[i] = FieldResult{Field: x.Field, Value: v, Rule: x.Fallback.Name, Source: SourceFallback, Weight: x.Weight}
	}
	return out
}

func firstValidator(x Extractor) Validator {
	if len(x.Rules) == 0 {
		return func(string) (string, bool) { return "", false }
	}
	return x.Rules[0].Validate
}
