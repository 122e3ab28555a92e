package canonical

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// A trimmed canonical payload as an external producer (e.g. the LLM
// extraction tooling) would emit it.
const sampleDocument = `{
  "format_version": "1.0.0",
  "source": {
    "type": "liftcontrol",
    "url": "https://liftcontrol.fr/evenements-liftcontrol/annecy-4-lift-2025",
    "extracted_at": "2025-06-02T10:30:00Z",
    "extractor": "liftcontrol-api-v1"
  },
  "competition": {
    "name": "Annecy 4 Lift 2025",
    "slug": "annecy-4-lift-2025",
    "federation": {"name": "LiftControl", "abbreviation": "LC", "country": "FR"},
    "start_date": "2025-06-01",
    "end_date": "2025-06-01",
    "city": "Annecy",
    "country": "FR",
    "number_of_judges": 3,
    "status": "completed"
  },
  "movements": [
    {"name": "Squat", "order": 1, "is_required": true}
  ],
  "categories": [
    {
      "name": "-73",
      "gender": "M",
      "weight_class_max": "73",
      "athletes": [
        {
          "first_name": "John",
          "last_name": "Smith",
          "country": "FR",
          "bodyweight": "71.5",
          "lifts": [
            {
              "movement": "Squat",
              "attempts": [
                {"attempt_number": 1, "weight": "100", "is_successful": true},
                {"attempt_number": 2, "weight": "110", "is_successful": false, "no_rep_reason": "depth"}
              ]
            }
          ]
        }
      ]
    }
  ],
  "liftcontrol_metadata": {"contest_id": 42}
}`

func TestDocument_UnmarshalContract(t *testing.T) {
	var doc Document
	if err := json.Unmarshal([]byte(sampleDocument), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if doc.FormatVersion != FormatVersion {
		t.Errorf("FormatVersion = %q, want %q", doc.FormatVersion, FormatVersion)
	}
	if doc.Source.Type != SourceLiftControl {
		t.Errorf("Source.Type = %q, want %q", doc.Source.Type, SourceLiftControl)
	}
	if got := doc.Competition.StartDate.Format("2006-01-02"); got != "2025-06-01" {
		t.Errorf("StartDate = %q, want 2025-06-01", got)
	}
	if doc.Competition.NumberOfJudges == nil || *doc.Competition.NumberOfJudges != 3 {
		t.Errorf("NumberOfJudges = %v, want 3", doc.Competition.NumberOfJudges)
	}
	if len(doc.Categories) != 1 || len(doc.Categories[0].Athletes) != 1 {
		t.Fatalf("unexpected category/athlete shape: %+v", doc.Categories)
	}

	athlete := doc.Categories[0].Athletes[0]
	if athlete.Bodyweight == nil || !athlete.Bodyweight.Equal(dec("71.5")) {
		t.Errorf("Bodyweight = %v, want 71.5", athlete.Bodyweight)
	}
	attempts := athlete.Lifts[0].Attempts
	if len(attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(attempts))
	}
	if !attempts[0].IsSuccessful || attempts[1].IsSuccessful {
		t.Errorf("attempt success flags = %v/%v, want true/false",
			attempts[0].IsSuccessful, attempts[1].IsSuccessful)
	}
	if attempts[1].NoRepReason != "depth" {
		t.Errorf("NoRepReason = %q, want %q", attempts[1].NoRepReason, "depth")
	}
	if doc.LiftControlMetadata == nil || doc.LiftControlMetadata.ContestID != 42 {
		t.Errorf("LiftControlMetadata = %+v, want contest_id 42", doc.LiftControlMetadata)
	}

	// Round-trip: dates keep the date-only encoding.
	out, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var again Document
	if err := json.Unmarshal(out, &again); err != nil {
		t.Fatalf("re-unmarshal: %v", err)
	}
	if !again.Competition.StartDate.Equal(doc.Competition.StartDate.Time) {
		t.Errorf("start_date changed across round-trip: %v != %v",
			again.Competition.StartDate, doc.Competition.StartDate)
	}
}
