package report

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

var bashEscapes = map[rune]string{
	' ':  `\ `,
	'"':  `\"`,
	'\'': `\'`,
	'\\': `\\`,
	'$':  `\$`,
	'`':  "\\`",
	'&':  `\&`,
	'|':  `\|`,
	';':  `\;`,
	'<':  `\<`,
	'>':  `\>`,
	'!':  `\!`,
	'(':  `\(`,
	')':  `\)`,
	'[':  `\[`,
	']':  `\]`,
	'{':  `\{`,
	'}':  `\}`,
	'*':  `\*`,
	'?':  `\?`,
	'#':  `\#`,
	'~':  `\~`,
}

// Escape backslash-escapes characters bash would interpret. The empty
// string renders as ''.
func Escape(s string) string {
	if s == "" {
		return "''"
	}
	if !utf8.ValidString(s) {
		return "<non-utf8>"
	}
	if !strings.ContainsFunc(s, func(r rune) bool { _, ok := bashEscapes[r]; return ok }) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if repl, ok := bashEscapes[r]; ok {
			b.WriteString(repl)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Path renders p for display, replacing invalid UTF-8 bytes with \u{xx}.
func Path(p string) string {
	if utf8.ValidString(p) {
		return p
	}
	var b strings.Builder
	for len(p) > 0 {
		r, size := utf8.DecodeRuneInString(p)
		if r == utf8.RuneError && size == 1 {
			fmt.Fprintf(&b, `\u{%04x}`, p[0])
		} else {
			b.WriteString(p[:size])
		}
		p = p[size:]
	}
	return b.String()
}

// Command renders an argument vector with optional placeholder
// substitutions for individual arguments.
type Command struct {
	argv         []string
	replacements map[string]string
}

// NewCommand returns a Command for argv, program first.
func NewCommand(argv []string) *Command {
	return &Command{argv: argv, replacements: make(map[string]string)}
}

// Replace prints value instead of every argument equal to arg.
func (c *Command) Replace(arg, value string) {
	c.replacements[arg] = value
}

func (c *Command) String() string {
	parts := make([]string, 0, len(c.argv))
	for _, arg := range c.argv {
		if value, ok := c.replacements[arg]; ok {
			parts = append(parts, value)
			continue
		}
		parts = append(parts, Escape(arg))
	}
	return strings.Join(parts, " ")
}
