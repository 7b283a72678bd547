package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// segmentReplacer maps characters that are illegal in file names on common
// filesystems. Colons are handled separately because their replacement
// depends on the following character.
var segmentReplacer = map[rune]string{
	'\\': "+",
	'/':  "+",
	'<':  "",
	'>':  "",
	'?':  "",
	'|':  "",
	'"':  "",
	'*':  "-",
}

// SanitizeSegment turns free text (usually a tag value) into a single path
// segment. Slashes become "+", a colon followed by whitespace becomes " - "
// and a bare colon "-", asterisks become "-", and <>?|" are dropped. Runs
// of whitespace collapse to one character and the result is trimmed and
// NFC-normalized. Segments that would be empty or consist only of dots
// become "_".
func SanitizeSegment(value string) string {
	runes := []rune(norm.NFC.String(value))

	var b strings.Builder
	b.Grow(len(value))

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == ':' {
			if i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
				b.WriteString(" - ")
				i++
			} else {
				b.WriteByte('-')
			}
			continue
		}
		if repl, ok := segmentReplacer[r]; ok {
			b.WriteString(repl)
			continue
		}
		b.WriteRune(r)
	}

	out := strings.TrimSpace(collapseSpace(b.String()))
	if strings.Trim(out, ".") == "" {
		return "_"
	}
	return out
}

// collapseSpace keeps the first rune of every whitespace run.
func collapseSpace(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	last := false
	for _, r := range value {
		space := unicode.IsSpace(r)
		if space && last {
			continue
		}
		b.WriteRune(r)
		last = space
	}
	return b.String()
}
