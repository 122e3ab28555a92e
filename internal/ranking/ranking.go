// Package ranking builds the global athlete ranking: every competition
// entry with at least one lift, ranked by a movement's best weight, score,
// or total (the default), filterable by gender, country, federation,
// weight class, and year. Queries are assembled from whitelisted fragments; user
// input only ever travels as bind parameters.
package ranking

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/OpenStreetlifting/openstreetlifting-backend/internal/database"
)

// WhereBuilder accumulates WHERE conditions with positional args.
type WhereBuilder struct {
	conditions []string
	args       []any
	argIndex   int
}

// NewWhereBuilder creates an empty builder. Arg numbering starts at $1.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{argIndex: 1}
}

// Add appends an equality condition. Empty values are skipped so optional
// filters can be passed through unconditionally.
func (b *WhereBuilder) Add(column, value string) {
	if value == "" {
		return
	}
	b.conditions = append(b.conditions, fmt.Sprintf("%s = $%d", column, b.argIndex))
	b.args = append(b.args, value)
	b.argIndex++
}

// AddYear appends a calendar-year condition on a date column. Zero is
// skipped.
func (b *WhereBuilder) AddYear(column string, year int) {
	if year == 0 {
		return
	}
	b.conditions = append(b.conditions, fmt.Sprintf("EXTRACT(YEAR FROM %s) = $%d", column, b.argIndex))
	b.args = append(b.args, year)
	b.argIndex++
}

// AddExpr appends a literal condition that takes no arguments.
func (b *WhereBuilder) AddExpr(expr string) {
	b.conditions = append(b.conditions, expr)
}

// NextArgIndex returns the placeholder number the next added arg will get.
// Use it to continue numbering in LIMIT/OFFSET clauses.
func (b *WhereBuilder) NextArgIndex() int {
	return b.argIndex
}

// Build returns the assembled clause (with a leading " WHERE") and its
// args, or ("", nil) when nothing was added.
func (b *WhereBuilder) Build() (string, []any) {
	if len(b.conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(b.conditions, " AND "), b.args
}

// SortKey names a whitelisted ranking sort column.
type SortKey string

const (
	SortByScore      SortKey = "ris_score"
	SortByTotal      SortKey = "total"
	SortByBodyweight SortKey = "bodyweight"
	SortByMuscleUp   SortKey = "best_muscle_up"
	SortByPullUp     SortKey = "best_pull_up"
	SortByDips       SortKey = "best_dips"
	SortBySquat      SortKey = "best_squat"
)

// ParseSortKey validates a user-supplied sort name. Empty input defaults
// to total; anything outside the whitelist is an error, never SQL.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "total":
		return SortByTotal, nil
	case "ris", "score", "ris_score":
		return SortByScore, nil
	case "bodyweight":
		return SortByBodyweight, nil
	case "muscleup", "muscle-up", "muscle_up":
		return SortByMuscleUp, nil
	case "pullup", "pull-up", "pull_up":
		return SortByPullUp, nil
	case "dips":
		return SortByDips, nil
	case "squat":
		return SortBySquat, nil
	default:
		return "", fmt.Errorf("unknown sort key %q", s)
	}
}

// Filter narrows the ranking. Zero values mean "no filter".
type Filter struct {
	Gender      string
	Country     string
	Federation  string
	WeightClass string
	Year        int
}

// Page is 1-based pagination.
type Page struct {
	Number int
	Size   int
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Normalize clamps a page to sane bounds.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	switch {
	case p.Size < 1:
		p.Size = defaultPageSize
	case p.Size > maxPageSize:
		p.Size = maxPageSize
	}
	return p
}

func (p Page) offset() int { return (p.Number - 1) * p.Size }

// Entry is one ranked competition result.
type Entry struct {
	Rank            int64
	AthleteID       uuid.UUID
	FirstName       string
	LastName        string
	Slug            string
	Gender          string
	Country         string
	CompetitionName string
	CompetitionSlug string
	CompetitionDate time.Time
	Category        string
	Bodyweight      *decimal.Decimal
	Total           *decimal.Decimal
	Score           *decimal.Decimal
	BestMuscleUp    *decimal.Decimal
	BestPullUp      *decimal.Decimal
	BestDips        *decimal.Decimal
	BestSquat       *decimal.Decimal
}

const rankingFrom = `
	FROM competition_participants p
	JOIN athletes a ON a.id = p.athlete_id
	JOIN competitions c ON c.id = p.competition_id
	JOIN federations f ON f.id = c.federation_id
	JOIN categories cat ON cat.id = p.category_id`

func filterWhere(f Filter) (string, []any) {
	wb := NewWhereBuilder()
	wb.AddExpr("NOT p.is_disqualified")
	wb.Add("a.gender", f.Gender)
	wb.Add("a.country", f.Country)
	wb.Add("f.name", f.Federation)
	wb.Add("cat.name", f.WeightClass)
	wb.AddYear("c.start_date", f.Year)
	return wb.Build()
}

// buildRankingQuery assembles the page query. The sort column pivots into
// ORDER BY via the SortKey whitelist, never from raw input.
func buildRankingQuery(f Filter, sort SortKey, page Page) (string, []any) {
	where, args := filterWhere(f)

	query := fmt.Sprintf(`
		WITH entries AS (
			SELECT
				a.id AS athlete_id, a.first_name, a.last_name, a.slug, a.gender, a.country,
				c.name AS competition_name, c.slug AS competition_slug, c.start_date,
				cat.name AS category_name,
				p.bodyweight, p.total, p.ris_score,
				COALESCE(MAX(CASE WHEN l.movement_name = 'Muscle-up' THEN l.best_weight END), 0) AS best_muscle_up,
				COALESCE(MAX(CASE WHEN l.movement_name = 'Pull-up' THEN l.best_weight END), 0) AS best_pull_up,
				COALESCE(MAX(CASE WHEN l.movement_name = 'Dips' THEN l.best_weight END), 0) AS best_dips,
				COALESCE(MAX(CASE WHEN l.movement_name = 'Squat' THEN l.best_weight END), 0) AS best_squat
			%s
			JOIN lifts l ON l.participant_id = p.id
			%s
			GROUP BY p.id, a.id, c.id, cat.id
		)
		SELECT
			ROW_NUMBER() OVER (ORDER BY %s DESC NULLS LAST, last_name, first_name) AS rank,
			athlete_id, first_name, last_name, slug, gender, country,
			competition_name, competition_slug, start_date, category_name,
			bodyweight, total, ris_score,
			best_muscle_up, best_pull_up, best_dips, best_squat
		FROM entries
		ORDER BY rank
		LIMIT $%d OFFSET $%d`,
		rankingFrom, where, sort, len(args)+1, len(args)+2)

	args = append(args, page.Size, page.offset())
	return query, args
}

func buildCountQuery(f Filter) (string, []any) {
	where, args := filterWhere(f)
	where += " AND EXISTS (SELECT 1 FROM lifts l WHERE l.participant_id = p.id)"
	return `SELECT COUNT(*)` + rankingFrom + where, args
}

// Engine runs ranking queries.
type Engine struct {
	q      database.Querier
	logger *slog.Logger
}

// NewEngine builds a ranking engine on q.
func NewEngine(q database.Querier, logger *slog.Logger) *Engine {
	return &Engine{q: q, logger: logger}
}

// GlobalRanking returns one page of the ranking plus the total number of
// matching entries.
func (e *Engine) GlobalRanking(ctx context.Context, f Filter, sort SortKey, page Page) ([]Entry, int, error) {
	page = page.Normalize()
	if sort == "" {
		sort = SortByTotal
	}

	countQuery, countArgs := buildCountQuery(f)
	var total int
	if err := e.q.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count ranking entries: %w", err)
	}

	query, args := buildRankingQuery(f, sort, page)
	rows, err := e.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query ranking: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		err := rows.Scan(
			&entry.Rank,
			&entry.AthleteID, &entry.FirstName, &entry.LastName, &entry.Slug, &entry.Gender, &entry.Country,
			&entry.CompetitionName, &entry.CompetitionSlug, &entry.CompetitionDate, &entry.Category,
			&entry.Bodyweight, &entry.Total, &entry.Score,
			&entry.BestMuscleUp, &entry.BestPullUp, &entry.BestDips, &entry.BestSquat,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan ranking entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate ranking: %w", err)
	}

	e.logger.Debug("ranking page built", "entries", len(entries), "total", total, "page", page.Number)
	return entries, total, nil
}
