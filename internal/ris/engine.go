package ris

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/OpenStreetlifting/openstreetlifting-backend/internal/database"
)

// Engine scores participants against the formula catalogue. It runs on a
// database.Querier, so it works equally inside an import transaction and
// against the bare pool for recomputes.
type Engine struct {
	q      database.Querier
	store  *database.Store
	logger *slog.Logger
}

// NewEngine builds a scoring engine on q.
func NewEngine(q database.Querier, logger *slog.Logger) *Engine {
	return &Engine{q: q, store: database.NewStore(q), logger: logger}
}

// ScoreCompetition computes and stores the score of every participant of
// one competition, using the formula effective on the competition date.
// Participants without a bodyweight or total keep a NULL score.
func (e *Engine) ScoreCompetition(ctx context.Context, competitionID uuid.UUID, date time.Time) error {
	participants, err := e.store.CompetitionParticipants(ctx, competitionID)
	if err != nil {
		return err
	}
	scored, err := e.scoreAll(ctx, participants, e.dateLookup())
	if err != nil {
		return err
	}
	e.logger.Info("competition scored",
		"competition_id", competitionID, "participants", len(participants), "scored", scored)
	return nil
}

// RecomputeAll rescores every participant in the database. With an empty
// version each participant is scored against the formula effective on
// their competition date; with a version set, everyone is scored against
// that formula, which backfills history after a new version is published.
// Returns how many participants received a score.
func (e *Engine) RecomputeAll(ctx context.Context, version string) (int, error) {
	lookup := e.dateLookup()
	if version != "" {
		lookup = e.versionLookup(version)
	}

	participants, err := e.store.AllParticipants(ctx)
	if err != nil {
		return 0, err
	}
	scored, err := e.scoreAll(ctx, participants, lookup)
	if err != nil {
		return 0, err
	}
	e.logger.Info("full recompute finished",
		"participants", len(participants), "scored", scored, "version", version)
	return scored, nil
}

// formulaLookup resolves the formula to score one participant with.
type formulaLookup func(ctx context.Context, gender string, date time.Time) (FormulaVersion, error)

// dateLookup caches by (gender, date): competitions share a date, so the
// same pair repeats constantly.
func (e *Engine) dateLookup() formulaLookup {
	cache := make(map[string]FormulaVersion)
	return func(ctx context.Context, gender string, date time.Time) (FormulaVersion, error) {
		key := fmt.Sprintf("%s|%s", gender, date.Format("2006-01-02"))
		if f, ok := cache[key]; ok {
			return f, nil
		}
		f, err := FormulaForDate(ctx, e.q, gender, date)
		if err != nil {
			return FormulaVersion{}, err
		}
		cache[key] = f
		return f, nil
	}
}

// versionLookup pins every participant to one named version, cached per
// gender. The competition date is ignored.
func (e *Engine) versionLookup(version string) formulaLookup {
	cache := make(map[string]FormulaVersion)
	return func(ctx context.Context, gender string, _ time.Time) (FormulaVersion, error) {
		if f, ok := cache[gender]; ok {
			return f, nil
		}
		f, err := FormulaByVersion(ctx, e.q, version, gender)
		if err != nil {
			return FormulaVersion{}, err
		}
		cache[gender] = f
		return f, nil
	}
}

func (e *Engine) scoreAll(ctx context.Context, participants []database.ParticipantScore, lookup formulaLookup) (int, error) {
	scored := 0
	for _, p := range participants {
		if p.Bodyweight == nil || p.Total == nil || p.Total.IsZero() {
			if err := e.store.SetParticipantScore(ctx, p.ID, nil); err != nil {
				return scored, err
			}
			continue
		}

		formula, err := lookup(ctx, p.Gender, p.CompetitionStart)
		if err != nil {
			return scored, err
		}

		score := Compute(*p.Total, *p.Bodyweight, formula.Constants)
		if err := e.store.SetParticipantScore(ctx, p.ID, &score); err != nil {
			return scored, err
		}
		if err := e.store.RecordScoreHistory(ctx, p.ID, formula.ID, score, *p.Bodyweight, *p.Total); err != nil {
			return scored, err
		}
		scored++
	}
	return scored, nil
}
