// Package canonical defines the federation-agnostic competition result
// format that every import source is normalized into, together with the
// name normalizer and the structural validator that gate imports.
//
// The format is a versioned, self-describing JSON document carrying one
// competition, its movement list, and a flat list of categories, each
// containing its athletes with their lifts and attempts. Optional
// source-specific metadata blocks preserve platform details (internal
// IDs, equipment settings) that the relational schema persists.
package canonical

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FormatVersion is the canonical document version this code reads and writes.
const FormatVersion = "1.0.0"

// Canonical movement vocabulary. Lift movement names in a document must
// match one of the document's declared movements, which in turn are
// produced by a source-specific MovementMapper from these values.
const (
	MovementMuscleUp = "Muscle-up"
	MovementPullUp   = "Pull-up"
	MovementDips     = "Dips"
	MovementSquat    = "Squat"
)

// Source type enum for SourceMetadata.Type.
const (
	SourceLiftControl = "liftcontrol"
	SourcePDF         = "pdf"
	SourceHTML        = "html"
	SourceCSV         = "csv"
	SourceManual      = "manual"
)

// Date is a calendar date serialized as "2006-01-02" in canonical JSON.
type Date struct {
	time.Time
}

// NewDate builds a Date from year, month, day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(time.DateOnly))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// Before reports whether d falls strictly before other.
func (d Date) Before(other Date) bool { return d.Time.Before(other.Time) }

// Document is one complete canonical competition result payload.
type Document struct {
	FormatVersion string         `json:"format_version"`
	Source        SourceMetadata `json:"source"`
	Competition   Competition    `json:"competition"`
	Movements     []Movement     `json:"movements"`
	Categories    []Category     `json:"categories"`

	// Source-specific metadata blocks, present only for their source type.
	LiftControlMetadata *LiftControlMetadata `json:"liftcontrol_metadata,omitempty"`
	PDFMetadata         *PDFMetadata         `json:"pdf_metadata,omitempty"`
}

// SourceMetadata records where and how a document was extracted.
type SourceMetadata struct {
	Type             string    `json:"type"`
	URL              string    `json:"url,omitempty"`
	ExtractedAt      time.Time `json:"extracted_at"`
	Extractor        string    `json:"extractor"`
	OriginalFilename string    `json:"original_filename,omitempty"`
}

// Competition identifies the event and its federation. The slug is the
// competition's stable identity: re-imports update the mutable fields but
// never the slug.
type Competition struct {
	Name           string     `json:"name"`
	Slug           string     `json:"slug"`
	Federation     Federation `json:"federation"`
	StartDate      Date       `json:"start_date"`
	EndDate        Date       `json:"end_date"`
	Venue          string     `json:"venue,omitempty"`
	City           string     `json:"city,omitempty"`
	Country        string     `json:"country"`
	NumberOfJudges *int16     `json:"number_of_judges,omitempty"`
	Status         string     `json:"status,omitempty"`
}

// Federation is created on first reference and deduplicated by name.
type Federation struct {
	Name         string `json:"name"`
	Slug         string `json:"slug,omitempty"`
	Abbreviation string `json:"abbreviation,omitempty"`
	Country      string `json:"country,omitempty"`
}

// Movement declares one movement contested at the competition.
type Movement struct {
	Name       string `json:"name"`
	Order      int16  `json:"order"`
	IsRequired *bool  `json:"is_required,omitempty"`
}

// Category groups athletes by weight class and gender. Gender is "M" or "F".
type Category struct {
	Name           string           `json:"name"`
	Gender         string           `json:"gender"`
	WeightClassMin *decimal.Decimal `json:"weight_class_min,omitempty"`
	WeightClassMax *decimal.Decimal `json:"weight_class_max,omitempty"`
	Athletes       []Athlete        `json:"athletes"`
}

// Athlete is one competitor within a category. Gender defaults to the
// category's gender when absent.
type Athlete struct {
	FirstName          string           `json:"first_name"`
	LastName           string           `json:"last_name"`
	Gender             string           `json:"gender,omitempty"`
	Country            string           `json:"country"`
	Nationality        string           `json:"nationality,omitempty"`
	Bodyweight         *decimal.Decimal `json:"bodyweight,omitempty"`
	IsDisqualified     *bool            `json:"is_disqualified,omitempty"`
	DisqualifiedReason string           `json:"disqualified_reason,omitempty"`
	Rank               *int             `json:"rank,omitempty"`
	Lifts              []Lift           `json:"lifts"`

	LiftControlMetadata *LiftControlAthleteMetadata `json:"liftcontrol_athlete_metadata,omitempty"`
}

// Lift is one athlete's attempts at one movement. The movement name must
// appear in the document's movement list.
type Lift struct {
	Movement string    `json:"movement"`
	Attempts []Attempt `json:"attempts"`
}

// Attempt is a single judged attempt, numbered 1-3.
type Attempt struct {
	AttemptNumber int16           `json:"attempt_number"`
	Weight        decimal.Decimal `json:"weight"`
	IsSuccessful  bool            `json:"is_successful"`
	PassingJudges *int16          `json:"passing_judges,omitempty"`
	NoRepReason   string          `json:"no_rep_reason,omitempty"`
}

// LiftControlMetadata preserves the remote platform's contest identity.
type LiftControlMetadata struct {
	ContestID int `json:"contest_id"`
}

// LiftControlAthleteMetadata preserves per-athlete platform details,
// including equipment settings for Dips and Squat.
type LiftControlAthleteMetadata struct {
	AthleteID    int    `json:"athlete_id"`
	ReglageDips  string `json:"reglage_dips,omitempty"`
	ReglageSquat string `json:"reglage_squat,omitempty"`
}

// PDFMetadata carries extraction diagnostics from PDF-sourced documents.
type PDFMetadata struct {
	ExtractionConfidence *float64 `json:"extraction_confidence,omitempty"`
	PagesProcessed       []int    `json:"pages_processed,omitempty"`
	Warnings             []string `json:"warnings,omitempty"`
}
