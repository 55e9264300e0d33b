package invoice

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// RawText is the normalized body of one document.
//
// Flat is the whitespace-collapsed single-line form most rules run against.
// Lines is the original line split (trimmed, blank lines dropped) used by
// line-anchored rules and the fallback scanner. breaks holds the offsets in
// Flat where an original line break was collapsed into a space.
type RawText struct {
	Flat   string
	Lines  []string
	breaks []int
}

var ligatures = strings.NewReplacer(
	"ﬁ", "fi",
	"ﬂ", "fl",
	"ﬀ", "ff",
	"ﬃ", "ffi",
	"ﬄ", "ffl",
	"ﬆ", "st",
)

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\f", "\n", "\v", "\n")

// dropFormat removes invisible format runes (zero-width space, BOM, soft
// hyphen and the like).
func dropFormat(r rune) rune {
	if unicode.Is(unicode.Cf, r) {
		return -1
	}
	return r
}

// Normalize builds a RawText from the text layer. ok is false when the input
// holds no visible characters.
func Normalize(raw string) (RawText, bool) {
	s := norm.NFC.String(ligatures.Replace(raw))
	s = strings.Map(dropFormat, lineBreaks.Replace(s))

	var rt RawText
	var flat strings.Builder
	for _, line := range strings.Split(s, "\n") {
		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}
		joined := strings.Join(words, " ")
		if flat.Len() > 0 {
			rt.breaks = append(rt.breaks, flat.Len())
			flat.WriteByte(' ')
		}
		flat.WriteString(joined)
		rt.Lines = append(rt.Lines, joined)
	}
	rt.Flat = flat.String()
	return rt, rt.Flat != ""
}

// lineEnd returns the offset of the first line break at or after pos, or
// len(Flat) when pos is on the last line.
func (rt RawText) lineEnd(pos int) int {
	i := sort.SearchInts(rt.breaks, pos)
	if i < len(rt.breaks) {
		return rt.breaks[i]
	}
	return len(rt.Flat)
}
