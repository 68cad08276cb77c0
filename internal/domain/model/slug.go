package model

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugInvalid = regexp.MustCompile(`[^\w\s-]`)
	slugDashes  = regexp.MustCompile(`[-\s]+`)
)

// 例: "Ünïcode Café!" -> "unicode-cafe"
func Slugify(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	folded = slugInvalid.ReplaceAllString(strings.ToLower(folded), "")
	folded = slugDashes.ReplaceAllString(folded, "-")
	return strings.Trim(folded, "-_")
}
