// Package importer drives the pipeline from canonical documents into the
// database. One document imports in one transaction: either the whole
// competition lands, including its scores, or nothing does.
package importer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/OpenStreetlifting/openstreetlifting-backend/internal/canonical"
	"github.com/OpenStreetlifting/openstreetlifting-backend/internal/config"
	"github.com/OpenStreetlifting/openstreetlifting-backend/internal/database"
	"github.com/OpenStreetlifting/openstreetlifting-backend/internal/ris"
)

// Service imports canonical documents.
type Service struct {
	pool   *pgxpool.Pool
	cfg    config.ImportConfig
	logger *slog.Logger
}

// NewService builds an import service on a connection pool.
func NewService(pool *pgxpool.Pool, cfg config.ImportConfig, logger *slog.Logger) *Service {
	return &Service{pool: pool, cfg: cfg, logger: logger}
}

// Result summarizes one imported document.
type Result struct {
	CompetitionID uuid.UUID
	Athletes      int
	Lifts         int
	Attempts      int
	Warnings      []string
}

// Import validates a document and writes it to the database in a single
// transaction. Validation errors abort before anything is written; any
// write error rolls the whole competition back.
func (s *Service) Import(ctx context.Context, doc *canonical.Document) (*Result, error) {
	report := canonical.Validate(doc)
	if !report.Valid() {
		return nil, report.Err()
	}
	report.LogWarnings(s.logger)

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin import transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := s.importTx(ctx, database.NewStore(tx), doc)
	if err != nil {
		return nil, err
	}

	// Score inside the same transaction so a competition never becomes
	// visible without its scores.
	engine := ris.NewEngine(tx, s.logger)
	if err := engine.ScoreCompetition(ctx, result.CompetitionID, doc.Competition.StartDate.Time); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	result.Warnings = report.Warnings
	s.logger.Info("document imported",
		"competition", doc.Competition.Slug,
		"athletes", result.Athletes,
		"lifts", result.Lifts,
		"attempts", result.Attempts,
	)
	return result, nil
}

func (s *Service) importTx(ctx context.Context, store *database.Store, doc *canonical.Document) (*Result, error) {
	fed := doc.Competition.Federation
	fedID, err := store.UpsertFederation(ctx, fed.Name, fed.Abbreviation, fed.Country)
	if err != nil {
		return nil, err
	}

	comp := doc.Competition
	if comp.Status == "" {
		comp.Status = "completed"
	}
	competitionID, err := store.UpsertCompetition(ctx, database.CompetitionRow{
		Name:           comp.Name,
		Slug:           comp.Slug,
		FederationID:   fedID,
		StartDate:      comp.StartDate.Time,
		EndDate:        comp.EndDate.Time,
		Venue:          comp.Venue,
		City:           comp.City,
		Country:        comp.Country,
		NumberOfJudges: comp.NumberOfJudges,
		Status:         comp.Status,
		SourceType:     doc.Source.Type,
		SourceURL:      doc.Source.URL,
		ExtractedAt:    doc.Source.ExtractedAt,
	})
	if err != nil {
		return nil, err
	}

	for _, m := range doc.Movements {
		required := m.IsRequired == nil || *m.IsRequired
		if err := store.UpsertCompetitionMovement(ctx, competitionID, m.Name, m.Order, required); err != nil {
			return nil, err
		}
	}

	result := &Result{CompetitionID: competitionID}
	for _, category := range doc.Categories {
		categoryID, err := store.UpsertCategory(ctx, category.Name, category.Gender,
			category.WeightClassMin, category.WeightClassMax)
		if err != nil {
			return nil, err
		}

		for _, athlete := range category.Athletes {
			if err := s.importAthlete(ctx, store, competitionID, categoryID, category.Gender, athlete, result); err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}

func (s *Service) importAthlete(ctx context.Context, store *database.Store, competitionID, categoryID uuid.UUID, categoryGender string, athlete canonical.Athlete, result *Result) error {
	gender := athlete.Gender
	if gender == "" {
		gender = categoryGender
	}

	var sourceID *int64
	if athlete.LiftControlMetadata != nil {
		id := int64(athlete.LiftControlMetadata.AthleteID)
		sourceID = &id
	}

	// Documents from other extractors may carry raw casing and stray
	// whitespace; the database row is always the normalized form, so
	// variants of the same name merge into one athlete.
	firstName, lastName := canonical.NormalizeName(athlete.FirstName, athlete.LastName)

	athleteID, err := store.UpsertAthlete(ctx, database.AthleteRow{
		FirstName:       firstName,
		LastName:        lastName,
		Gender:          gender,
		Country:         athlete.Country,
		Nationality:     athlete.Nationality,
		SourceAthleteID: sourceID,
	})
	if err != nil {
		return err
	}

	disqualified := athlete.IsDisqualified != nil && *athlete.IsDisqualified
	participantID, err := store.UpsertParticipant(ctx, database.ParticipantRow{
		CompetitionID:      competitionID,
		CategoryID:         categoryID,
		AthleteID:          athleteID,
		Bodyweight:         athlete.Bodyweight,
		Total:              competitionTotal(athlete),
		Rank:               athlete.Rank,
		IsDisqualified:     disqualified,
		DisqualifiedReason: nonEmpty(athlete.DisqualifiedReason),
	})
	if err != nil {
		return err
	}
	result.Athletes++

	for _, lift := range athlete.Lifts {
		liftID, err := store.UpsertLift(ctx, participantID, lift.Movement,
			bestSuccessfulWeight(lift.Attempts), equipmentSetting(athlete, lift.Movement))
		if err != nil {
			return err
		}
		result.Lifts++

		for _, attempt := range lift.Attempts {
			err := store.UpsertAttempt(ctx, database.AttemptRow{
				LiftID:        liftID,
				AttemptNumber: attempt.AttemptNumber,
				Weight:        attempt.Weight,
				IsSuccessful:  attempt.IsSuccessful,
				PassingJudges: attempt.PassingJudges,
				NoRepReason:   nonEmpty(attempt.NoRepReason),
				CreatedBy:     s.cfg.CreatedBy,
			})
			if err != nil {
				return err
			}
			result.Attempts++
		}
	}
	return nil
}
