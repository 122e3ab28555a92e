package liftcontrol

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// category.go parses the platform's free-text category labels, e.g.
// "Catégorie -73 Groupe A", "Catégorie +110", "-66 Groupe B", "Open".
// Category naming is inconsistent across sessions, so parsing is purely
// syntactic and falls back to documented defaults instead of failing.

// OpenWeightClass is the weight-class token used when a label carries no
// weight marker.
const OpenWeightClass = "Open"

// DefaultGroup is assumed when a label has no group marker.
const DefaultGroup = "Groupe A"

var (
	weightRe = regexp.MustCompile(`([+-])?\s*(\d+(?:[.,]\d+)?)\s*(?:kg)?\s*(\+)?`)
	rangeRe  = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*-\s*(\d+(?:[.,]\d+)?)`)
	groupRe  = regexp.MustCompile(`(?i)groupe\s+([\p{L}\d]+)`)
)

// ParsedCategory is the normalized reading of one category label.
type ParsedCategory struct {
	// WeightClass is the sign+number token ("-73", "+110") or "Open".
	WeightClass string
	// Group is the sub-group identifier, "Groupe A" when absent.
	Group string

	WeightClassMin *decimal.Decimal
	WeightClassMax *decimal.Decimal
}

// ParseCategoryLabel extracts the weight class and sub-group from a label.
// A leading minus or a bare number reads as an upper bound ("-73" means up
// to 73 kg); a plus on either side reads as a lower bound ("+110" and
// "110+" both mean 110 kg and above); a number pair ("73-79") reads as
// both bounds. Labels without a number, or containing "open", parse as
// the Open class with no bounds.
func ParseCategoryLabel(label string) ParsedCategory {
	parsed := ParsedCategory{
		WeightClass: OpenWeightClass,
		Group:       DefaultGroup,
	}

	if m := groupRe.FindStringSubmatch(label); m != nil {
		parsed.Group = "Groupe " + strings.ToUpper(m[1][:1]) + m[1][1:]
	}

	if strings.Contains(strings.ToLower(label), "open") {
		return parsed
	}

	// Range form ("73-79") carries both bounds. It must be tried before
	// the single-token form, which would read it as "-73".
	if m := rangeRe.FindStringSubmatch(label); m != nil {
		min, errMin := decimal.NewFromString(strings.ReplaceAll(m[1], ",", "."))
		max, errMax := decimal.NewFromString(strings.ReplaceAll(m[2], ",", "."))
		if errMin == nil && errMax == nil {
			parsed.WeightClass = m[1] + "-" + m[2]
			parsed.WeightClassMin = &min
			parsed.WeightClassMax = &max
			return parsed
		}
	}

	m := weightRe.FindStringSubmatch(label)
	if m == nil {
		return parsed
	}

	value, err := decimal.NewFromString(strings.ReplaceAll(m[2], ",", "."))
	if err != nil {
		return parsed
	}

	if m[1] == "+" || m[3] == "+" {
		parsed.WeightClass = "+" + m[2]
		parsed.WeightClassMin = &value
	} else {
		parsed.WeightClass = "-" + m[2]
		parsed.WeightClassMax = &value
	}
	return parsed
}

// MapGender normalizes the platform's gender words to "M"/"F". Unknown
// words default to "M", matching how the platform labels mixed sessions.
func MapGender(genre string) string {
	switch strings.ToLower(strings.TrimSpace(genre)) {
	case "homme", "hommes", "men", "man", "male", "m":
		return "M"
	case "femme", "femmes", "women", "woman", "female", "f":
		return "F"
	default:
		return "M"
	}
}
