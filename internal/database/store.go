package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/OpenStreetlifting/openstreetlifting-backend/internal/canonical"
)

// Store runs the SQL behind the import pipeline. Every write is an upsert
// keyed on the table's natural identity, and conflicts merge: an incoming
// NULL never overwrites data a previous import already established.
type Store struct {
	q Querier
}

// NewStore wraps a Querier. Pass a pgx.Tx to scope all writes to one
// transaction, or a *pgxpool.Pool for standalone reads.
func NewStore(q Querier) *Store {
	return &Store{q: q}
}

// UpsertFederation inserts or merges a federation by name.
func (s *Store) UpsertFederation(ctx context.Context, name, abbreviation, country string) (uuid.UUID, error) {
	const query = `
		INSERT INTO federations (name, abbreviation, country)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''))
		ON CONFLICT (name) DO UPDATE SET
			abbreviation = COALESCE(EXCLUDED.abbreviation, federations.abbreviation),
			country      = COALESCE(EXCLUDED.country, federations.country),
			updated_at   = now()
		RETURNING id`

	var id uuid.UUID
	if err := s.q.QueryRow(ctx, query, name, abbreviation, country).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("upsert federation %q: %w", name, wrapError(err))
	}
	return id, nil
}

// CompetitionRow carries one competition write.
type CompetitionRow struct {
	Name           string
	Slug           string
	FederationID   uuid.UUID
	StartDate      time.Time
	EndDate        time.Time
	Venue          string
	City           string
	Country        string
	NumberOfJudges *int16
	Status         string
	SourceType     string
	SourceURL      string
	ExtractedAt    time.Time
}

// UpsertCompetition inserts or merges a competition by slug.
func (s *Store) UpsertCompetition(ctx context.Context, row CompetitionRow) (uuid.UUID, error) {
	const query = `
		INSERT INTO competitions
			(name, slug, federation_id, start_date, end_date, venue, city, country,
			 number_of_judges, status, source_type, source_url, extracted_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8,
			$9, $10, NULLIF($11, ''), NULLIF($12, ''), $13)
		ON CONFLICT (slug) DO UPDATE SET
			name             = EXCLUDED.name,
			federation_id    = EXCLUDED.federation_id,
			start_date       = EXCLUDED.start_date,
			end_date         = EXCLUDED.end_date,
			venue            = COALESCE(EXCLUDED.venue, competitions.venue),
			city             = COALESCE(EXCLUDED.city, competitions.city),
			country          = EXCLUDED.country,
			number_of_judges = COALESCE(EXCLUDED.number_of_judges, competitions.number_of_judges),
			status           = EXCLUDED.status,
			source_type      = COALESCE(EXCLUDED.source_type, competitions.source_type),
			source_url       = COALESCE(EXCLUDED.source_url, competitions.source_url),
			extracted_at     = EXCLUDED.extracted_at,
			updated_at       = now()
		RETURNING id`

	var id uuid.UUID
	err := s.q.QueryRow(ctx, query,
		row.Name, row.Slug, row.FederationID, row.StartDate, row.EndDate,
		row.Venue, row.City, row.Country, row.NumberOfJudges, row.Status,
		row.SourceType, row.SourceURL, row.ExtractedAt,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("upsert competition %q: %w", row.Slug, wrapError(err))
	}
	return id, nil
}

// UpsertCompetitionMovement records one movement contested at a competition.
func (s *Store) UpsertCompetitionMovement(ctx context.Context, competitionID uuid.UUID, movementName string, displayOrder int16, isRequired bool) error {
	const query = `
		INSERT INTO competition_movements (competition_id, movement_name, display_order, is_required)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (competition_id, movement_name) DO UPDATE SET
			display_order = EXCLUDED.display_order,
			is_required   = EXCLUDED.is_required`

	if _, err := s.q.Exec(ctx, query, competitionID, movementName, displayOrder, isRequired); err != nil {
		return fmt.Errorf("upsert movement %q: %w", movementName, wrapError(err))
	}
	return nil
}

// UpsertCategory inserts or merges a category by (name, gender).
func (s *Store) UpsertCategory(ctx context.Context, name, gender string, weightMin, weightMax *decimal.Decimal) (uuid.UUID, error) {
	const query = `
		INSERT INTO categories (name, gender, weight_class_min, weight_class_max)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name, gender) DO UPDATE SET
			weight_class_min = COALESCE(EXCLUDED.weight_class_min, categories.weight_class_min),
			weight_class_max = COALESCE(EXCLUDED.weight_class_max, categories.weight_class_max)
		RETURNING id`

	var id uuid.UUID
	if err := s.q.QueryRow(ctx, query, name, gender, weightMin, weightMax).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("upsert category %s/%s: %w", gender, name, wrapError(err))
	}
	return id, nil
}

// AthleteRow carries one athlete write. Identity is the full tuple
// (first name, last name, gender, country).
type AthleteRow struct {
	FirstName       string
	LastName        string
	Gender          string
	Country         string
	Nationality     string
	SourceAthleteID *int64
}

// UpsertAthlete inserts or merges an athlete. New athletes get a unique
// slug derived from their name; existing athletes keep theirs.
func (s *Store) UpsertAthlete(ctx context.Context, row AthleteRow) (uuid.UUID, error) {
	const selectQuery = `
		SELECT id FROM athletes
		WHERE first_name = $1 AND last_name = $2 AND gender = $3 AND country = $4`

	var id uuid.UUID
	err := s.q.QueryRow(ctx, selectQuery, row.FirstName, row.LastName, row.Gender, row.Country).Scan(&id)
	switch {
	case err == nil:
		const updateQuery = `
			UPDATE athletes SET
				nationality       = COALESCE(NULLIF($2, ''), nationality),
				source_athlete_id = COALESCE($3, source_athlete_id),
				updated_at        = now()
			WHERE id = $1`
		if _, err := s.q.Exec(ctx, updateQuery, id, row.Nationality, row.SourceAthleteID); err != nil {
			return uuid.Nil, fmt.Errorf("merge athlete %s %s: %w", row.FirstName, row.LastName, wrapError(err))
		}
		return id, nil

	case !errors.Is(err, pgx.ErrNoRows):
		return uuid.Nil, fmt.Errorf("lookup athlete %s %s: %w", row.FirstName, row.LastName, wrapError(err))
	}

	slug, err := GenerateSlug(row.FirstName, row.LastName, func(candidate string) (bool, error) {
		var taken bool
		err := s.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM athletes WHERE slug = $1)`, candidate).Scan(&taken)
		return taken, err
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("athlete slug: %w", err)
	}

	const insertQuery = `
		INSERT INTO athletes (first_name, last_name, gender, country, nationality, slug, source_athlete_id)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)
		RETURNING id`
	err = s.q.QueryRow(ctx, insertQuery,
		row.FirstName, row.LastName, row.Gender, row.Country, row.Nationality, slug, row.SourceAthleteID,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert athlete %s %s: %w", row.FirstName, row.LastName, wrapError(err))
	}
	return id, nil
}

// ParticipantRow carries one competition entry write.
type ParticipantRow struct {
	CompetitionID      uuid.UUID
	CategoryID         uuid.UUID
	AthleteID          uuid.UUID
	Bodyweight         *decimal.Decimal
	Total              *decimal.Decimal
	Rank               *int
	IsDisqualified     bool
	DisqualifiedReason *string
}

// UpsertParticipant inserts or merges an athlete's entry in one
// competition category.
func (s *Store) UpsertParticipant(ctx context.Context, row ParticipantRow) (uuid.UUID, error) {
	const query = `
		INSERT INTO competition_participants
			(competition_id, category_id, athlete_id, bodyweight, total, rank, is_disqualified, disqualified_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (competition_id, category_id, athlete_id) DO UPDATE SET
			bodyweight          = COALESCE(EXCLUDED.bodyweight, competition_participants.bodyweight),
			total               = EXCLUDED.total,
			rank                = COALESCE(EXCLUDED.rank, competition_participants.rank),
			is_disqualified     = EXCLUDED.is_disqualified,
			disqualified_reason = EXCLUDED.disqualified_reason,
			updated_at          = now()
		RETURNING id`

	var id uuid.UUID
	err := s.q.QueryRow(ctx, query,
		row.CompetitionID, row.CategoryID, row.AthleteID,
		row.Bodyweight, row.Total, row.Rank, row.IsDisqualified, row.DisqualifiedReason,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("upsert participant: %w", wrapError(err))
	}
	return id, nil
}

// UpsertLift inserts or merges one movement's result for a participant.
func (s *Store) UpsertLift(ctx context.Context, participantID uuid.UUID, movementName string, bestWeight *decimal.Decimal, equipmentSetting *string) (uuid.UUID, error) {
	const query = `
		INSERT INTO lifts (participant_id, movement_name, best_weight, equipment_setting)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (participant_id, movement_name) DO UPDATE SET
			best_weight       = EXCLUDED.best_weight,
			equipment_setting = COALESCE(EXCLUDED.equipment_setting, lifts.equipment_setting)
		RETURNING id`

	var id uuid.UUID
	if err := s.q.QueryRow(ctx, query, participantID, movementName, bestWeight, equipmentSetting).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("upsert lift %q: %w", movementName, wrapError(err))
	}
	return id, nil
}

// AttemptRow carries one attempt write.
type AttemptRow struct {
	LiftID        uuid.UUID
	AttemptNumber int16
	Weight        decimal.Decimal
	IsSuccessful  bool
	PassingJudges *int16
	NoRepReason   *string
	CreatedBy     string
}

// UpsertAttempt inserts or replaces one attempt of a lift.
func (s *Store) UpsertAttempt(ctx context.Context, row AttemptRow) error {
	const query = `
		INSERT INTO attempts (lift_id, attempt_number, weight, is_successful, passing_judges, no_rep_reason, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (lift_id, attempt_number) DO UPDATE SET
			weight         = EXCLUDED.weight,
			is_successful  = EXCLUDED.is_successful,
			passing_judges = EXCLUDED.passing_judges,
			no_rep_reason  = EXCLUDED.no_rep_reason`

	_, err := s.q.Exec(ctx, query,
		row.LiftID, row.AttemptNumber, row.Weight, row.IsSuccessful,
		row.PassingJudges, row.NoRepReason, row.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("upsert attempt %d: %w", row.AttemptNumber, wrapError(err))
	}
	return nil
}

// ParticipantScore is the slice of a participant the scoring engine needs.
type ParticipantScore struct {
	ID               uuid.UUID
	Gender           string
	Bodyweight       *decimal.Decimal
	Total            *decimal.Decimal
	CompetitionStart time.Time
}

const participantScoreColumns = `
	SELECT p.id, a.gender, p.bodyweight, p.total, c.start_date
	FROM competition_participants p
	JOIN athletes a ON a.id = p.athlete_id
	JOIN competitions c ON c.id = p.competition_id`

// CompetitionParticipants lists the scoring inputs for one competition.
func (s *Store) CompetitionParticipants(ctx context.Context, competitionID uuid.UUID) ([]ParticipantScore, error) {
	rows, err := s.q.Query(ctx, participantScoreColumns+` WHERE p.competition_id = $1`, competitionID)
	if err != nil {
		return nil, fmt.Errorf("list competition participants: %w", wrapError(err))
	}
	return scanParticipantScores(rows)
}

// AllParticipants lists scoring inputs across every competition, for full
// recomputation after a formula change.
func (s *Store) AllParticipants(ctx context.Context) ([]ParticipantScore, error) {
	rows, err := s.q.Query(ctx, participantScoreColumns)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", wrapError(err))
	}
	return scanParticipantScores(rows)
}

func scanParticipantScores(rows pgx.Rows) ([]ParticipantScore, error) {
	defer rows.Close()

	var out []ParticipantScore
	for rows.Next() {
		var p ParticipantScore
		if err := rows.Scan(&p.ID, &p.Gender, &p.Bodyweight, &p.Total, &p.CompetitionStart); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participants: %w", err)
	}
	return out, nil
}

// SetParticipantScore writes (or clears) a participant's relative score.
func (s *Store) SetParticipantScore(ctx context.Context, participantID uuid.UUID, score *decimal.Decimal) error {
	const query = `UPDATE competition_participants SET ris_score = $2, updated_at = now() WHERE id = $1`
	if _, err := s.q.Exec(ctx, query, participantID, score); err != nil {
		return fmt.Errorf("set participant score: %w", wrapError(err))
	}
	return nil
}

// RecordScoreHistory keeps the score a participant earned under a specific
// formula version, together with the bodyweight and total it was computed
// from, so old rankings stay reproducible after recomputes.
func (s *Store) RecordScoreHistory(ctx context.Context, participantID, formulaID uuid.UUID, score, bodyweight, total decimal.Decimal) error {
	const query = `
		INSERT INTO ris_scores_history (participant_id, formula_id, score, bodyweight, total_weight)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (participant_id, formula_id) DO UPDATE SET
			score        = EXCLUDED.score,
			bodyweight   = EXCLUDED.bodyweight,
			total_weight = EXCLUDED.total_weight,
			computed_at  = now()`
	if _, err := s.q.Exec(ctx, query, participantID, formulaID, score, bodyweight, total); err != nil {
		return fmt.Errorf("record score history: %w", wrapError(err))
	}
	return nil
}

// Athlete is the stored athlete record.
type Athlete struct {
	ID          uuid.UUID
	FirstName   string
	LastName    string
	Gender      string
	Country     string
	Nationality *string
	Slug        string
	SlugHistory []string
}

// AthleteBySlug finds an athlete by current slug, falling back to retired
// slugs so old links keep resolving after a rename.
func (s *Store) AthleteBySlug(ctx context.Context, slug string) (Athlete, error) {
	const query = `
		SELECT id, first_name, last_name, gender, country, nationality, slug, slug_history
		FROM athletes
		WHERE slug = $1 OR slug_history ? $1
		ORDER BY (slug = $1) DESC
		LIMIT 1`

	var (
		a       Athlete
		history []byte
	)
	err := s.q.QueryRow(ctx, query, slug).Scan(
		&a.ID, &a.FirstName, &a.LastName, &a.Gender, &a.Country, &a.Nationality, &a.Slug, &history,
	)
	if err != nil {
		return Athlete{}, fmt.Errorf("athlete by slug %q: %w", slug, wrapError(err))
	}
	if err := json.Unmarshal(history, &a.SlugHistory); err != nil {
		return Athlete{}, fmt.Errorf("decode slug history: %w", err)
	}
	return a, nil
}

// RenameAthlete updates an athlete's name, issues a fresh slug, and
// retires the old slug into slug_history. Returns the new slug. The new
// name is normalized the same way imports normalize, so a rename never
// breaks dedup against future imports.
func (s *Store) RenameAthlete(ctx context.Context, athleteID uuid.UUID, firstName, lastName string) (string, error) {
	firstName, lastName = canonical.NormalizeName(firstName, lastName)

	var oldSlug string
	err := s.q.QueryRow(ctx, `SELECT slug FROM athletes WHERE id = $1`, athleteID).Scan(&oldSlug)
	if err != nil {
		return "", fmt.Errorf("lookup athlete %s: %w", athleteID, wrapError(err))
	}

	newSlug, err := GenerateSlug(firstName, lastName, func(candidate string) (bool, error) {
		var taken bool
		err := s.q.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM athletes WHERE slug = $1 AND id <> $2)`,
			candidate, athleteID,
		).Scan(&taken)
		return taken, err
	})
	if err != nil {
		return "", fmt.Errorf("athlete slug: %w", err)
	}

	const query = `
		UPDATE athletes SET
			first_name   = $2,
			last_name    = $3,
			slug         = $4,
			slug_history = slug_history || to_jsonb($5::text),
			updated_at   = now()
		WHERE id = $1`
	if _, err := s.q.Exec(ctx, query, athleteID, firstName, lastName, newSlug, oldSlug); err != nil {
		return "", fmt.Errorf("rename athlete: %w", wrapError(err))
	}
	return newSlug, nil
}
