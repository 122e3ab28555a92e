package liftcontrol

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/OpenStreetlifting/openstreetlifting-backend/internal/canonical"
)

// Exporter transforms a session payload into a canonical document using
// the registry metadata for the fields the platform does not carry. The
// same transformation backs both the export-to-file path and the direct
// database import path, so results are identical regardless of path.
type Exporter struct {
	cfg    CompetitionConfig
	mapper MovementMapper
}

// NewExporter builds an exporter for one registry competition.
func NewExporter(cfg CompetitionConfig) *Exporter {
	return &Exporter{cfg: cfg, mapper: Mapper{}}
}

// ToCanonical converts one session payload. It fails with
// *UnknownMovementError if any movement label is not in the mapper's
// vocabulary: importing a mis-categorized lift is worse than failing.
func (e *Exporter) ToCanonical(resp *Response) (*canonical.Document, error) {
	movements, err := e.buildMovements(resp.Results.Movements)
	if err != nil {
		return nil, err
	}

	categories, err := e.buildCategories(&resp.Results)
	if err != nil {
		return nil, err
	}

	meta := e.cfg.Metadata
	country := meta.Country
	if country == "" {
		country = "Unknown"
	}

	return &canonical.Document{
		FormatVersion: canonical.FormatVersion,
		Source: canonical.SourceMetadata{
			Type:        canonical.SourceLiftControl,
			URL:         fmt.Sprintf("%s/evenements-liftcontrol/%s", DefaultBaseURL, resp.Contest.Slug),
			ExtractedAt: time.Now().UTC(),
			Extractor:   "liftcontrol-api-v1",
		},
		Competition: canonical.Competition{
			Name: meta.Name,
			Slug: e.cfg.BaseSlug,
			Federation: canonical.Federation{
				Name:         meta.Federation.Name,
				Abbreviation: meta.Federation.Abbreviation,
				Country:      meta.Federation.Country,
			},
			StartDate:      canonical.Date{Time: meta.StartDate},
			EndDate:        canonical.Date{Time: meta.EndDate},
			Venue:          meta.Venue,
			City:           meta.City,
			Country:        country,
			NumberOfJudges: meta.NumberOfJudges,
			Status:         "completed",
		},
		Movements:           movements,
		Categories:          categories,
		LiftControlMetadata: &canonical.LiftControlMetadata{ContestID: resp.Contest.ID},
	}, nil
}

func (e *Exporter) buildMovements(movements map[string]Movement) ([]canonical.Movement, error) {
	required := true
	out := make([]canonical.Movement, 0, len(movements))
	for _, m := range movements {
		name, ok := e.mapper.Map(m.Name)
		if !ok {
			return nil, &UnknownMovementError{RawName: m.Name}
		}
		out = append(out, canonical.Movement{
			Name:       name,
			Order:      int16(m.Order),
			IsRequired: &required,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

// buildCategories merges the platform's per-session categories into
// canonical ones keyed by (weight class, gender): one competition may
// split a weight class into several startgroups that are one category in
// the canonical model.
func (e *Exporter) buildCategories(results *Results) ([]canonical.Category, error) {
	merged := make(map[string]*canonical.Category)

	categoryIDs := sortedKeys(results.Categories)
	for _, catID := range categoryIDs {
		info := results.Categories[catID]
		parsed := ParseCategoryLabel(info.Name)
		gender := MapGender(info.Genre)

		key := parsed.WeightClass + "|" + gender
		cat, ok := merged[key]
		if !ok {
			cat = &canonical.Category{
				Name:           parsed.WeightClass,
				Gender:         gender,
				WeightClassMin: parsed.WeightClassMin,
				WeightClassMax: parsed.WeightClassMax,
			}
			merged[key] = cat
		}

		athleteIDs := sortedKeys(results.Results[catID])
		for _, athleteID := range athleteIDs {
			athlete, err := e.buildAthlete(results.Results[catID][athleteID], results.Movements)
			if err != nil {
				return nil, err
			}
			cat.Athletes = append(cat.Athletes, athlete)
		}
	}

	out := make([]canonical.Category, 0, len(merged))
	for _, cat := range merged {
		out = append(out, *cat)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Gender != out[j].Gender {
			return out[i].Gender < out[j].Gender
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (e *Exporter) buildAthlete(result AthleteResult, movements map[string]Movement) (canonical.Athlete, error) {
	info := result.AthleteInfo

	var bodyweight *decimal.Decimal
	if info.Pesee != nil && *info.Pesee > 0 {
		bw := decimal.NewFromFloat(*info.Pesee)
		bodyweight = &bw
	}

	ordered := make([]Movement, 0, len(movements))
	for _, m := range movements {
		ordered = append(ordered, m)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })

	var lifts []canonical.Lift
	for _, m := range ordered {
		movementResult, ok := result.Results[fmt.Sprintf("%d", m.ID)]
		if !ok {
			continue
		}
		lift, err := e.buildLift(m, movementResult)
		if err != nil {
			return canonical.Athlete{}, err
		}
		lifts = append(lifts, lift)
	}

	first, last := canonical.NormalizeName(info.FirstName, info.LastName)

	isOut := info.IsOut
	return canonical.Athlete{
		FirstName:          first,
		LastName:           last,
		Country:            e.cfg.Metadata.DefaultAthleteCountry,
		Nationality:        e.cfg.Metadata.DefaultAthleteNationality,
		Bodyweight:         bodyweight,
		IsDisqualified:     &isOut,
		DisqualifiedReason: info.ReasonOut,
		Rank:               result.Rank.Position,
		Lifts:              lifts,
		LiftControlMetadata: &canonical.LiftControlAthleteMetadata{
			AthleteID:    info.ID,
			ReglageDips:  info.ReglageDips,
			ReglageSquat: info.ReglageSquat,
		},
	}, nil
}

func (e *Exporter) buildLift(m Movement, result MovementResult) (canonical.Lift, error) {
	name, ok := e.mapper.Map(m.Name)
	if !ok {
		return canonical.Lift{}, &UnknownMovementError{RawName: m.Name}
	}

	var attempts []canonical.Attempt
	for n := 1; n <= 3; n++ {
		attempt := result.Results[fmt.Sprintf("%d", n)]
		if attempt == nil {
			continue
		}
		attempts = append(attempts, buildAttempt(attempt))
	}

	return canonical.Lift{Movement: name, Attempts: attempts}, nil
}

func buildAttempt(a *Attempt) canonical.Attempt {
	out := canonical.Attempt{
		AttemptNumber: int16(a.NoEssai),
		Weight:        decimal.NewFromFloat(a.Charge),
		IsSuccessful:  a.DecisionRep.IsSuccessful(),
		NoRepReason:   a.JustificationNoRep,
	}
	if judges, ok := a.DecisionRep.PassingJudges(); ok {
		out.PassingJudges = &judges
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
