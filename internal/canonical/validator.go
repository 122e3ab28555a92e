package canonical

// validator.go performs the structural and semantic validation pass that
// gates every import. All problems in a document are collected into one
// report so a payload can be fixed in a single pass; errors block the
// import, warnings are only logged by the caller.

import (
	"fmt"
	"log/slog"
	"strings"
)

// Report is the outcome of validating one canonical document.
type Report struct {
	Errors   []string
	Warnings []string
}

// Valid reports whether the document may be imported.
func (r Report) Valid() bool { return len(r.Errors) == 0 }

// Err returns a ValidationError carrying the full error list, or nil when
// the document is valid.
func (r Report) Err() error {
	if r.Valid() {
		return nil
	}
	return &ValidationError{Errors: r.Errors}
}

// LogWarnings emits every non-blocking finding at warn level.
func (r Report) LogWarnings(logger *slog.Logger) {
	for _, w := range r.Warnings {
		logger.Warn("validation warning", "detail", w)
	}
}

// ValidationError aggregates every blocking problem found in a document.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s): %s",
		len(e.Errors), strings.Join(e.Errors, "; "))
}

// Validate checks a canonical document against the format contract.
// It never stops at the first problem: a document with N independent
// errors yields a report containing all N.
func Validate(doc *Document) Report {
	var r Report

	if doc.FormatVersion != FormatVersion {
		r.Errors = append(r.Errors, fmt.Sprintf(
			"unsupported format version: %s, expected %s", doc.FormatVersion, FormatVersion))
	}

	validateCompetition(&doc.Competition, &r)

	movementNames := validateMovements(doc.Movements, &r)

	if len(doc.Categories) == 0 {
		r.Errors = append(r.Errors, "at least one category is required")
	}
	for i := range doc.Categories {
		validateCategory(&doc.Categories[i], movementNames, &r)
	}

	return r
}

func validateCompetition(c *Competition, r *Report) {
	if c.Name == "" {
		r.Errors = append(r.Errors, "competition name is required")
	}
	if c.Slug == "" {
		r.Errors = append(r.Errors, "competition slug is required")
	}
	if c.Country == "" {
		r.Errors = append(r.Errors, "competition country is required")
	}
	if c.EndDate.Before(c.StartDate) {
		r.Errors = append(r.Errors, "competition end_date must be >= start_date")
	}
	if c.Federation.Name == "" {
		r.Errors = append(r.Errors, "federation name is required")
	}

	if c.Venue == "" {
		r.Warnings = append(r.Warnings, "competition venue is not specified")
	}
	if c.City == "" {
		r.Warnings = append(r.Warnings, "competition city is not specified")
	}
	if c.NumberOfJudges == nil {
		r.Warnings = append(r.Warnings, "number of judges is not specified")
	}
}

func validateMovements(movements []Movement, r *Report) map[string]bool {
	if len(movements) == 0 {
		r.Errors = append(r.Errors, "at least one movement is required")
	}

	names := make(map[string]bool, len(movements))
	for _, m := range movements {
		if m.Name == "" {
			r.Errors = append(r.Errors, "movement name cannot be empty")
		}
		if m.Order < 1 {
			r.Errors = append(r.Errors, fmt.Sprintf(
				"movement %q has invalid order %d, order must be >= 1", m.Name, m.Order))
		}
		if names[m.Name] {
			r.Errors = append(r.Errors, fmt.Sprintf("duplicate movement name: %q", m.Name))
		}
		names[m.Name] = true
	}
	return names
}

func validateCategory(cat *Category, movementNames map[string]bool, r *Report) {
	if cat.Name == "" {
		r.Errors = append(r.Errors, "category name cannot be empty")
	}
	if cat.Gender != "M" && cat.Gender != "F" {
		r.Errors = append(r.Errors, fmt.Sprintf(
			"invalid gender in category %q: %q, must be \"M\" or \"F\"", cat.Name, cat.Gender))
	}
	if len(cat.Athletes) == 0 {
		r.Warnings = append(r.Warnings, fmt.Sprintf("category %q has no athletes", cat.Name))
	}

	for i := range cat.Athletes {
		validateAthlete(&cat.Athletes[i], i, cat, movementNames, r)
	}
}

func validateAthlete(a *Athlete, idx int, cat *Category, movementNames map[string]bool, r *Report) {
	label := fmt.Sprintf("%d. %s %s", idx+1, a.FirstName, a.LastName)

	if a.FirstName == "" {
		r.Errors = append(r.Errors, fmt.Sprintf(
			"athlete in category %q has empty first_name", cat.Name))
	}
	if a.LastName == "" {
		r.Errors = append(r.Errors, fmt.Sprintf(
			"athlete in category %q has empty last_name", cat.Name))
	}
	if a.Country == "" {
		r.Errors = append(r.Errors, fmt.Sprintf("athlete %q has empty country", label))
	}

	if a.Bodyweight == nil {
		r.Warnings = append(r.Warnings, fmt.Sprintf("athlete %q is missing bodyweight", label))
	}
	if len(a.Lifts) == 0 {
		r.Warnings = append(r.Warnings, fmt.Sprintf("athlete %q has no lifts", label))
	}

	for _, lift := range a.Lifts {
		if !movementNames[lift.Movement] {
			r.Errors = append(r.Errors, fmt.Sprintf(
				"athlete %q has lift for unknown movement: %q", label, lift.Movement))
		}
		if len(lift.Attempts) == 0 {
			r.Errors = append(r.Errors, fmt.Sprintf(
				"athlete %q has lift %q with no attempts", label, lift.Movement))
		}
		for _, att := range lift.Attempts {
			if att.AttemptNumber < 1 || att.AttemptNumber > 3 {
				r.Errors = append(r.Errors, fmt.Sprintf(
					"athlete %q, movement %q: invalid attempt_number %d, must be 1-3",
					label, lift.Movement, att.AttemptNumber))
			}
			if att.Weight.IsNegative() {
				r.Errors = append(r.Errors, fmt.Sprintf(
					"athlete %q, movement %q, attempt %d: negative weight",
					label, lift.Movement, att.AttemptNumber))
			}
		}
	}
}
