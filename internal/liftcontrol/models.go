// Package liftcontrol talks to the LiftControl scoring platform: a typed
// HTTP client for per-session result payloads, the platform-specific JSON
// models, and the mapping layer (movements, categories, judge decisions)
// that turns those payloads into canonical documents.
package liftcontrol

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Response is the payload returned for one session slug.
type Response struct {
	Contest          Contest  `json:"contest"`
	Results          Results  `json:"results"`
	RunningAttemptID *int     `json:"runningAttemptId"`
}

// Contest is the platform's view of the session.
type Contest struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Status string `json:"status"`
}

// Results nests the category dictionary, the per-category-per-athlete
// results map, and the movement dictionary. All maps are keyed by the
// platform's stringified numeric IDs.
type Results struct {
	Categories map[string]CategoryInfo             `json:"categories"`
	Results    map[string]map[string]AthleteResult `json:"results"`
	Movements  map[string]Movement                 `json:"movements"`
}

// CategoryInfo is a free-text category label plus a gender word
// ("Homme", "Femme", ...).
type CategoryInfo struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Genre string `json:"genre"`
}

// AthleteResult is one athlete's full session outcome.
type AthleteResult struct {
	AthleteInfo AthleteInfo               `json:"athleteInfo"`
	Results     map[string]MovementResult `json:"results"`
	Total       float64                   `json:"total"`
	RIS         float64                   `json:"RIS"`
	Rank        Rank                      `json:"rank"`
}

// AthleteInfo carries identity, weigh-in and equipment settings.
// Pesee is the weigh-in bodyweight in kg; zero or absent means not weighed.
type AthleteInfo struct {
	ID           int      `json:"id"`
	FirstName    string   `json:"firstName"`
	LastName     string   `json:"lastName"`
	Pesee        *float64 `json:"pesee"`
	IsOut        bool     `json:"isOut"`
	ReasonOut    string   `json:"reasonOut"`
	ReglageDips  string   `json:"reglageDips"`
	ReglageSquat string   `json:"reglageSquat"`
}

// MovementResult holds the attempts for one movement, keyed by attempt
// number ("1".."3"); entries may be JSON null for attempts not yet taken.
type MovementResult struct {
	Results map[string]*Attempt `json:"results"`
	Max     float64             `json:"max"`
}

// Attempt is one judged attempt as the platform records it.
type Attempt struct {
	ID                 int           `json:"id"`
	NoEssai            int           `json:"noEssai"`
	Charge             float64       `json:"charge"`
	DecisionRep        JudgeDecision `json:"decisionRep"`
	JustificationNoRep string        `json:"justificationNoRep"`
}

// Movement is an entry of the session's movement dictionary.
type Movement struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// JudgeDecision is the judge vote code attached to an attempt. The
// platform emits it either as a number (111) or a string ("111"); both
// forms decode to the same value. Each digit is one judge's vote, 1 for
// good, 0 for no-rep.
//
// An attempt counts as successful when a majority of judges voted good
// (at least two 1-digits), or when the platform sent the literal
// "valide"/"validé" marker seen in older payloads.
type JudgeDecision string

func (d *JudgeDecision) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*d = JudgeDecision(s)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*d = JudgeDecision(fmt.Sprintf("%d", n))
		return nil
	}
	return fmt.Errorf("judge decision must be a string or number, got %s", data)
}

// PassingJudges returns the number of judges who voted good, or false
// when the code is not a bit string of votes.
func (d JudgeDecision) PassingJudges() (int16, bool) {
	s := strings.TrimSpace(string(d))
	if s == "" {
		return 0, false
	}
	var ones int16
	for _, r := range s {
		switch r {
		case '1':
			ones++
		case '0':
		default:
			return 0, false
		}
	}
	return ones, true
}

// IsSuccessful reports whether the decision counts the attempt as good.
func (d JudgeDecision) IsSuccessful() bool {
	if n, ok := d.PassingJudges(); ok {
		return n >= 2
	}
	switch strings.ToLower(strings.TrimSpace(string(d))) {
	case "valide", "validé":
		return true
	}
	return false
}

// Rank is either a numeric position or a disqualification label.
type Rank struct {
	Position           *int
	DisqualifiedReason string
}

func (r *Rank) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		r.Position = &n
		r.DisqualifiedReason = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.Position = nil
		r.DisqualifiedReason = s
		return nil
	}
	return fmt.Errorf("rank must be a number or string, got %s", data)
}

func (r Rank) MarshalJSON() ([]byte, error) {
	if r.Position != nil {
		return json.Marshal(*r.Position)
	}
	return json.Marshal(r.DisqualifiedReason)
}
