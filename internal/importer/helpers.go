package importer

import (
	"github.com/shopspring/decimal"

	"github.com/OpenStreetlifting/openstreetlifting-backend/internal/canonical"
)

// bestSuccessfulWeight returns the heaviest successful attempt of a lift,
// or nil when every attempt failed.
func bestSuccessfulWeight(attempts []canonical.Attempt) *decimal.Decimal {
	var best *decimal.Decimal
	for i := range attempts {
		a := &attempts[i]
		if !a.IsSuccessful {
			continue
		}
		if best == nil || a.Weight.GreaterThan(*best) {
			best = &a.Weight
		}
	}
	return best
}

// competitionTotal sums the best successful weight of every lift. It is
// nil for disqualified athletes and for athletes without a single
// successful attempt.
func competitionTotal(athlete canonical.Athlete) *decimal.Decimal {
	if athlete.IsDisqualified != nil && *athlete.IsDisqualified {
		return nil
	}

	total := decimal.Zero
	found := false
	for _, lift := range athlete.Lifts {
		if best := bestSuccessfulWeight(lift.Attempts); best != nil {
			total = total.Add(*best)
			found = true
		}
	}
	if !found {
		return nil
	}
	return &total
}

// equipmentSetting picks the athlete's recorded equipment adjustment for
// movements that have one (dip bar width, squat bar height).
func equipmentSetting(athlete canonical.Athlete, movement string) *string {
	if athlete.LiftControlMetadata == nil {
		return nil
	}
	switch movement {
	case canonical.MovementDips:
		return nonEmpty(athlete.LiftControlMetadata.ReglageDips)
	case canonical.MovementSquat:
		return nonEmpty(athlete.LiftControlMetadata.ReglageSquat)
	default:
		return nil
	}
}

// nonEmpty converts an optional string field to the nullable form the
// store expects.
func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
