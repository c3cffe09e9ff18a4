package render

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// asciiFold strips accents and replaces anything else outside ASCII with '?'.
func asciiFold(s string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(s) {
		switch {
		case unicode.Is(unicode.Mn, r):
		case r < unicode.MaxASCII:
			b.WriteRune(r)
		default:
			b.WriteByte('?')
		}
	}
	return b.String()
}
