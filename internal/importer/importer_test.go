package importer

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/OpenStreetlifting/openstreetlifting-backend/internal/canonical"
	"github.com/OpenStreetlifting/openstreetlifting-backend/internal/database"
)

type sqlCall struct {
	sql  string
	args []any
}

// recordingQuerier satisfies database.Querier, answering the import
// statements with canned IDs and recording every call for inspection.
type recordingQuerier struct {
	calls []sqlCall
}

func (q *recordingQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.calls = append(q.calls, sqlCall{sql: sql, args: args})
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (q *recordingQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.calls = append(q.calls, sqlCall{sql: sql, args: args})
	return nil, fmt.Errorf("unexpected Query: %s", sql)
}

func (q *recordingQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.calls = append(q.calls, sqlCall{sql: sql, args: args})
	switch {
	case strings.Contains(sql, "SELECT id FROM athletes"):
		// No athlete on file yet: the importer must take the insert path.
		return fakeRow{err: pgx.ErrNoRows}
	case strings.Contains(sql, "SELECT EXISTS"):
		return fakeRow{values: []any{false}}
	default:
		return fakeRow{values: []any{uuid.New()}}
	}
}

func (q *recordingQuerier) find(t *testing.T, fragment string) sqlCall {
	t.Helper()
	for _, c := range q.calls {
		if strings.Contains(c.sql, fragment) {
			return c
		}
	}
	t.Fatalf("no statement containing %q was issued", fragment)
	return sqlCall{}
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch v := d.(type) {
		case *uuid.UUID:
			*v = r.values[i].(uuid.UUID)
		case *bool:
			*v = r.values[i].(bool)
		default:
			return fmt.Errorf("unsupported scan target %T", d)
		}
	}
	return nil
}

func rawNameDocument() *canonical.Document {
	required := true
	rank := 1
	bodyweight := decimal.RequireFromString("71.5")
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	return &canonical.Document{
		FormatVersion: canonical.FormatVersion,
		Source: canonical.SourceMetadata{
			Type:        "manual",
			ExtractedAt: day,
			Extractor:   "manual-entry",
		},
		Competition: canonical.Competition{
			Name:       "Test Cup 2025",
			Slug:       "test-cup-2025",
			Federation: canonical.Federation{Name: "FSF"},
			StartDate:  canonical.Date{Time: day},
			EndDate:    canonical.Date{Time: day},
			Country:    "France",
		},
		Movements: []canonical.Movement{
			{Name: canonical.MovementSquat, Order: 1, IsRequired: &required},
		},
		Categories: []canonical.Category{{
			Name:   "-73",
			Gender: "M",
			Athletes: []canonical.Athlete{{
				FirstName:  "JOHN",
				LastName:   "  smith ",
				Country:    "France",
				Bodyweight: &bodyweight,
				Rank:       &rank,
				Lifts: []canonical.Lift{{
					Movement: canonical.MovementSquat,
					Attempts: []canonical.Attempt{
						{AttemptNumber: 1, Weight: decimal.NewFromInt(100), IsSuccessful: true},
					},
				}},
			}},
		}},
	}
}

func TestImportTx_NormalizesAthleteNames(t *testing.T) {
	q := &recordingQuerier{}
	svc := testService(t)

	if _, err := svc.importTx(context.Background(), database.NewStore(q), rawNameDocument()); err != nil {
		t.Fatalf("importTx: %v", err)
	}

	insert := q.find(t, "INSERT INTO athletes")
	if got, want := insert.args[0], "John"; got != want {
		t.Errorf("first_name = %q, want %q", got, want)
	}
	if got, want := insert.args[1], "Smith"; got != want {
		t.Errorf("last_name = %q, want %q", got, want)
	}
	if got, want := insert.args[5], "john-smith"; got != want {
		t.Errorf("slug = %q, want %q", got, want)
	}

	// The select that decides insert-vs-merge must use the same
	// normalized names, or casing variants would duplicate athletes.
	lookup := q.find(t, "SELECT id FROM athletes")
	if got, want := lookup.args[0], "John"; got != want {
		t.Errorf("lookup first_name = %q, want %q", got, want)
	}
	if got, want := lookup.args[1], "Smith"; got != want {
		t.Errorf("lookup last_name = %q, want %q", got, want)
	}
}

func TestImportTx_PersistsParticipantRank(t *testing.T) {
	q := &recordingQuerier{}
	svc := testService(t)

	if _, err := svc.importTx(context.Background(), database.NewStore(q), rawNameDocument()); err != nil {
		t.Fatalf("importTx: %v", err)
	}

	insert := q.find(t, "INSERT INTO competition_participants")
	rank, ok := insert.args[5].(*int)
	if !ok || rank == nil {
		t.Fatalf("rank arg = %#v, want *int", insert.args[5])
	}
	if *rank != 1 {
		t.Errorf("rank = %d, want 1", *rank)
	}
}
