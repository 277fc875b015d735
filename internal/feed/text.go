package feed

import (
	"regexp"
	"strings"
)

const (
	maxDescription    = 400
	wordBoundaryFloor = 300
	ellipsis          = "..."
)

var (
	markup     = regexp.MustCompile(`<[^>]*>`)
	decodedTag = regexp.MustCompile(`<[A-Za-z/!][^<>]*>`)
	whitespace = regexp.MustCompile(`[\s\p{Zs}\x{FEFF}]+`)
)

// Applied in order, so "&amp;lt;" ends up as "<".
var entities = []struct{ from, to string }{
	{"&nbsp;", " "},
	{"&amp;", "&"},
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&quot;", `"`},
	{"&#39;", "'"},
}

// CleanText turns an HTML fragment into a single line of plain text.
// Tags revealed by entity decoding are stripped as well, while bare angle
// brackets from decoded comparisons are kept.
func CleanText(s string) string {
	s = markup.ReplaceAllString(s, "")
	for _, e := range entities {
		s = strings.ReplaceAll(s, e.from, e.to)
	}
	s = decodedTag.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Truncate limits s to 400 characters. The cut moves back to the last space
// when that space lies past character 300; an ellipsis marks any cut.
func Truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxDescription {
		return s
	}

	r = r[:maxDescription]
	if i := lastSpace(r); i > wordBoundaryFloor {
		r = r[:i]
	}
	return string(r) + ellipsis
}

func lastSpace(r []rune) int {
	for i := len(r) - 1; i >= 0; i-- {
		if r[i] == ' ' {
			return i
		}
	}
	return -1
}
