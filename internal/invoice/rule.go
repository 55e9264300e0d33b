package invoice

import (
	"iter"
	"regexp"
	"strings"
)

// Validator accepts or rejects a captured value. Accepted values come back in
// their normalized form (e.g. a date rewritten as YYYY-MM-DD).
type Validator func(string) (string, bool)

// Pattern yields candidate values from a document in text order.
type Pattern interface {
	Candidates(rt RawText) iter.Seq[string]
}

// Rule is one (pattern, validator, weight) unit for a single field.
type Rule struct {
	Name     string
	Pattern  Pattern
	Validate Validator
	Weight   int
}

// firstAccepted walks rules in priority order and returns the first candidate
// that its rule's validator accepts. Later rules are never consulted once one
// has produced an accepted value.
func firstAccepted(rules []Rule, rt RawText) (string, *Rule, bool) {
	for i := range rules {
		r := &rules[i]
		for candidate := range r.Pattern.Candidates(rt) {
			if v, ok := r.Validate(candidate); ok {
				return v, r, true
			}
		}
	}
	return "", nil, false
}

// captureRegex yields submatch 1 of every match of re over the flat text.
// When skip is set, a submatch is dropped if skip matches the text starting
// at it.
type captureRegex struct {
	re   *regexp.Regexp
	skip *regexp.Regexp
}

func (p captureRegex) Candidates(rt RawText) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, m := range p.re.FindAllStringSubmatchIndex(rt.Flat, -1) {
			if len(m) < 4 || m[2] < 0 {
				continue
			}
			if p.skip != nil && p.skip.MatchString(rt.Flat[m[2]:]) {
				continue
			}
			if !yield(strings.TrimSpace(rt.Flat[m[2]:m[3]])) {
				return
			}
		}
	}
}

// labeled yields the free text following every occurrence of a label in the
// flat text. The label expression must end at the label's colon.
type labeled struct {
	label *regexp.Regexp
}

func (p labeled) Candidates(rt RawText) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, loc := range p.label.FindAllStringIndex(rt.Flat, -1) {
			if !yield(captureAfter(rt, loc[1])) {
				return
			}
		}
	}
}

// lineLabeled yields the remainder of every line that begins with the label.
type lineLabeled struct {
	label *regexp.Regexp
}

func (p lineLabeled) Candidates(rt RawText) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, line := range rt.Lines {
			loc := p.label.FindStringIndex(line)
			if loc == nil || loc[0] != 0 {
				continue
			}
			if !yield(cutAtLabel(line[loc[1]:])) {
				return
			}
		}
	}
}

func capture(expr string) Pattern {
	return captureRegex{re: regexp.MustCompile(expr)}
}

// captureUnless is capture with candidates matching skip (anchored at the
// candidate) dropped.
func captureUnless(expr string, skip *regexp.Regexp) Pattern {
	return captureRegex{re: regexp.MustCompile(expr), skip: skip}
}

func label(expr string) Pattern {
	return labeled{label: regexp.MustCompile(expr)}
}

func lineLabel(expr string) Pattern {
	return lineLabeled{label: regexp.MustCompile(expr)}
}
