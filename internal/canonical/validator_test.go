package canonical

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func boolPtr(b bool) *bool          { return &b }
func int16Ptr(v int16) *int16       { return &v }
func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// validDocument returns a document that passes validation, for tests to
// break one piece at a time.
func validDocument() *Document {
	return &Document{
		FormatVersion: FormatVersion,
		Source: SourceMetadata{
			Type:      SourceLiftControl,
			Extractor: "liftcontrol-api-v1",
		},
		Competition: Competition{
			Name:           "Annecy 4 Lift 2025",
			Slug:           "annecy-4-lift-2025",
			Federation:     Federation{Name: "LiftControl", Abbreviation: "LC", Country: "FR"},
			StartDate:      NewDate(2025, 6, 1),
			EndDate:        NewDate(2025, 6, 1),
			Venue:          "Gymnase des Fins",
			City:           "Annecy",
			Country:        "FR",
			NumberOfJudges: int16Ptr(3),
			Status:         "completed",
		},
		Movements: []Movement{
			{Name: MovementMuscleUp, Order: 1},
			{Name: MovementPullUp, Order: 2},
			{Name: MovementDips, Order: 3},
			{Name: MovementSquat, Order: 4},
		},
		Categories: []Category{
			{
				Name:           "-73",
				Gender:         "M",
				WeightClassMax: decPtr("73"),
				Athletes: []Athlete{
					{
						FirstName:  "John",
						LastName:   "Smith",
						Country:    "FR",
						Bodyweight: decPtr("71.5"),
						Lifts: []Lift{
							{
								Movement: MovementSquat,
								Attempts: []Attempt{
									{AttemptNumber: 1, Weight: decimal.RequireFromString("100"), IsSuccessful: true},
									{AttemptNumber: 2, Weight: decimal.RequireFromString("110"), IsSuccessful: true},
									{AttemptNumber: 3, Weight: decimal.RequireFromString("120"), IsSuccessful: true},
								},
							},
						},
					},
				},
			},
		},
	}
}

func TestValidate_ValidDocument(t *testing.T) {
	r := Validate(validDocument())
	if !r.Valid() {
		t.Fatalf("expected valid document, got errors: %v", r.Errors)
	}
	if r.Err() != nil {
		t.Errorf("Err() = %v, want nil", r.Err())
	}
}

func TestValidate_WrongFormatVersion(t *testing.T) {
	doc := validDocument()
	doc.FormatVersion = "0.9.0"

	r := Validate(doc)
	if r.Valid() {
		t.Fatal("expected invalid document")
	}
	if !containsSubstring(r.Errors, "format version") {
		t.Errorf("missing format version error, got %v", r.Errors)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	doc := validDocument()
	doc.Competition.Name = ""
	doc.Competition.Slug = ""
	doc.Competition.Country = ""
	doc.Competition.Federation.Name = ""
	doc.Categories[0].Gender = "X"

	r := Validate(doc)
	if len(r.Errors) != 5 {
		t.Errorf("expected 5 errors, got %d: %v", len(r.Errors), r.Errors)
	}
}

func TestValidate_EndDateBeforeStartDate(t *testing.T) {
	doc := validDocument()
	doc.Competition.StartDate = NewDate(2025, 6, 2)
	doc.Competition.EndDate = NewDate(2025, 6, 1)

	r := Validate(doc)
	if !containsSubstring(r.Errors, "end_date") {
		t.Errorf("missing end_date error, got %v", r.Errors)
	}
}

func TestValidate_UnknownLiftMovement(t *testing.T) {
	doc := validDocument()
	doc.Categories[0].Athletes[0].Lifts[0].Movement = "Bench Press"

	r := Validate(doc)
	if r.Valid() {
		t.Fatal("expected invalid document")
	}
	if !containsSubstring(r.Errors, "unknown movement") {
		t.Errorf("missing unknown movement error, got %v", r.Errors)
	}
	if !containsSubstring(r.Errors, "Bench Press") {
		t.Errorf("error should name the offending movement, got %v", r.Errors)
	}
}

func TestValidate_DuplicateMovement(t *testing.T) {
	doc := validDocument()
	doc.Movements = append(doc.Movements, Movement{Name: MovementSquat, Order: 5})

	r := Validate(doc)
	if !containsSubstring(r.Errors, "duplicate movement") {
		t.Errorf("missing duplicate movement error, got %v", r.Errors)
	}
}

func TestValidate_MovementOrder(t *testing.T) {
	doc := validDocument()
	doc.Movements[0].Order = 0

	r := Validate(doc)
	if !containsSubstring(r.Errors, "invalid order") {
		t.Errorf("missing order error, got %v", r.Errors)
	}
}

func TestValidate_LiftWithoutAttempts(t *testing.T) {
	doc := validDocument()
	doc.Categories[0].Athletes[0].Lifts[0].Attempts = nil

	r := Validate(doc)
	if !containsSubstring(r.Errors, "no attempts") {
		t.Errorf("missing no-attempts error, got %v", r.Errors)
	}
}

func TestValidate_AttemptBounds(t *testing.T) {
	doc := validDocument()
	attempts := doc.Categories[0].Athletes[0].Lifts[0].Attempts
	attempts[0].AttemptNumber = 0
	attempts[1].AttemptNumber = 4
	attempts[2].Weight = decimal.RequireFromString("-5")

	r := Validate(doc)
	if got := countSubstring(r.Errors, "invalid attempt_number"); got != 2 {
		t.Errorf("expected 2 attempt_number errors, got %d: %v", got, r.Errors)
	}
	if !containsSubstring(r.Errors, "negative weight") {
		t.Errorf("missing negative weight error, got %v", r.Errors)
	}
}

func TestValidate_MissingBodyweightIsWarning(t *testing.T) {
	doc := validDocument()
	doc.Categories[0].Athletes[0].Bodyweight = nil

	r := Validate(doc)
	if !r.Valid() {
		t.Fatalf("missing bodyweight must not block import, got errors: %v", r.Errors)
	}
	if !containsSubstring(r.Warnings, "missing bodyweight") {
		t.Errorf("missing bodyweight warning, got %v", r.Warnings)
	}
}

func TestValidate_MissingLiftsIsWarning(t *testing.T) {
	doc := validDocument()
	doc.Categories[0].Athletes[0].Lifts = nil

	r := Validate(doc)
	if !r.Valid() {
		t.Fatalf("athlete without lifts must not block import, got errors: %v", r.Errors)
	}
	if !containsSubstring(r.Warnings, "has no lifts") {
		t.Errorf("missing no-lifts warning, got %v", r.Warnings)
	}
}

func TestValidationError_Message(t *testing.T) {
	doc := validDocument()
	doc.Competition.Name = ""
	doc.Competition.Slug = ""

	err := Validate(doc).Err()
	if err == nil {
		t.Fatal("expected error")
	}
	var verr *ValidationError
	if !asValidationError(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(verr.Errors) != 2 {
		t.Errorf("expected 2 errors in ValidationError, got %d", len(verr.Errors))
	}
	if !strings.Contains(err.Error(), "2 error(s)") {
		t.Errorf("Error() = %q, want error count", err.Error())
	}
}

func asValidationError(err error, target **ValidationError) bool {
	v, ok := err.(*ValidationError)
	if ok {
		*target = v
	}
	return ok
}

func containsSubstring(list []string, sub string) bool {
	return countSubstring(list, sub) > 0
}

func countSubstring(list []string, sub string) int {
	n := 0
	for _, s := range list {
		if strings.Contains(s, sub) {
			n++
		}
	}
	return n
}
