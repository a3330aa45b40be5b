package matcher

import (
	"regexp"
	"strings"
)

// Translate converts a shell glob pattern to a regular expression fragment.
//
// `*` becomes `.*`, `?` becomes `.`, and `[...]` character classes carry over
// with `[!...]` negation. An unterminated `[` is matched literally. There is
// no way to quote meta-characters.
func Translate(pattern string) string {
	runes := []rune(pattern)
	i, n := 0, len(runes)
	var res strings.Builder

	for i < n {
		c := runes[i]
		i++
		switch c {
		case '*':
			res.WriteString(".*")
		case '?':
			res.WriteString(".")
		case '[':
			j := i
			if j < n && runes[j] == '!' {
				j++
			}
			if j < n && runes[j] == ']' {
				j++
			}
			for j < n && runes[j] != ']' {
				j++
			}
			if j >= n {
				res.WriteString(`\[`)
			} else {
				stuff := strings.ReplaceAll(string(runes[i:j]), `\`, `\\`)
				i = j + 1
				if strings.HasPrefix(stuff, "!") {
					stuff = "^" + stuff[1:]
				} else if strings.HasPrefix(stuff, "^") {
					stuff = `\` + stuff
				}
				res.WriteString("[" + stuff + "]")
			}
		default:
			res.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	return res.String()
}
