package database

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// deaccent strips combining marks so "Éloïse" slugifies to "eloise".
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify lowercases s, strips accents, and collapses every run of
// non-alphanumeric characters to a single hyphen.
func Slugify(s string) string {
	if folded, _, err := transform.String(deaccent, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	lastHyphen := true // suppress a leading hyphen
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// GenerateSlug builds a unique athlete slug from a name. On collision it
// appends a numeric suffix starting at 2: "jean-dupont", "jean-dupont-2",
// "jean-dupont-3", ...
func GenerateSlug(firstName, lastName string, exists func(slug string) (bool, error)) (string, error) {
	base := Slugify(firstName + " " + lastName)
	if base == "" {
		base = "athlete"
	}

	slug := base
	for n := 2; ; n++ {
		taken, err := exists(slug)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", slug, err)
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
}
