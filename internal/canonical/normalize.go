package canonical

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// titleCaser lower-cases each word and upper-cases its first letter,
// treating hyphens as word boundaries ("jean-PIERRE" -> "Jean-Pierre").
// language.Und keeps the casing rules locale-independent so the same
// input always normalizes identically.
var titleCaser = cases.Title(language.Und)

// NormalizeName canonicalizes an athlete name pair for storage and
// deduplication. Each part is whitespace-trimmed (inner runs collapsed to
// one space) and title-cased. The caller-provided order of first/last is
// preserved: "john"/"SMITH" and "John "/" smith" both normalize to
// ("John", "Smith"), so casing and whitespace variants of the same name
// resolve to the same athlete row.
func NormalizeName(first, last string) (string, string) {
	return normalizePart(first), normalizePart(last)
}

func normalizePart(part string) string {
	fields := strings.Fields(part)
	for i, f := range fields {
		fields[i] = titleCaser.String(f)
	}
	return strings.Join(fields, " ")
}
