package ris

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/OpenStreetlifting/openstreetlifting-backend/internal/database"
)

// FormulaVersion is one dated, per-gender set of scoring constants.
type FormulaVersion struct {
	ID             uuid.UUID
	Version        string
	Description    *string
	Gender         string
	Constants      Constants
	EffectiveFrom  time.Time
	EffectiveUntil *time.Time
	IsCurrent      bool
}

// NoFormulaAvailableError reports that no formula version covers a
// competition date for a gender. Scoring must fail loudly rather than
// silently fall back to a formula from the wrong era.
type NoFormulaAvailableError struct {
	Gender string
	Date   time.Time
}

func (e *NoFormulaAvailableError) Error() string {
	return fmt.Sprintf("no scoring formula for gender %s effective on %s", e.Gender, e.Date.Format("2006-01-02"))
}

const formulaColumns = `
	SELECT id, version, description, gender, const_a, const_k, const_b, const_v, const_q,
	       effective_from, effective_until, is_current
	FROM ris_formula_versions`

func scanFormula(row interface{ Scan(...any) error }) (FormulaVersion, error) {
	var f FormulaVersion
	err := row.Scan(
		&f.ID, &f.Version, &f.Description, &f.Gender,
		&f.Constants.A, &f.Constants.K, &f.Constants.B, &f.Constants.V, &f.Constants.Q,
		&f.EffectiveFrom, &f.EffectiveUntil, &f.IsCurrent,
	)
	return f, err
}

// FormulaForDate picks the formula in effect on a date: the latest version
// whose validity window [effective_from, effective_until) contains it.
func FormulaForDate(ctx context.Context, q database.Querier, gender string, date time.Time) (FormulaVersion, error) {
	const query = formulaColumns + `
		WHERE gender = $1
		  AND effective_from <= $2
		  AND (effective_until IS NULL OR effective_until > $2)
		ORDER BY effective_from DESC
		LIMIT 1`

	f, err := scanFormula(q.QueryRow(ctx, query, gender, date))
	if err != nil {
		if isNoRows(err) {
			return FormulaVersion{}, &NoFormulaAvailableError{Gender: gender, Date: date}
		}
		return FormulaVersion{}, fmt.Errorf("formula for date: %w", err)
	}
	return f, nil
}

// CurrentFormula returns the formula flagged current for a gender.
func CurrentFormula(ctx context.Context, q database.Querier, gender string) (FormulaVersion, error) {
	f, err := scanFormula(q.QueryRow(ctx, formulaColumns+` WHERE gender = $1 AND is_current`, gender))
	if err != nil {
		if isNoRows(err) {
			return FormulaVersion{}, &NoFormulaAvailableError{Gender: gender, Date: time.Now().UTC()}
		}
		return FormulaVersion{}, fmt.Errorf("current formula: %w", err)
	}
	return f, nil
}

// FormulaByVersion looks up one version for a gender.
func FormulaByVersion(ctx context.Context, q database.Querier, version, gender string) (FormulaVersion, error) {
	f, err := scanFormula(q.QueryRow(ctx, formulaColumns+` WHERE version = $1 AND gender = $2`, version, gender))
	if err != nil {
		if isNoRows(err) {
			return FormulaVersion{}, fmt.Errorf("formula version %q for gender %s: %w", version, gender, database.ErrNotFound)
		}
		return FormulaVersion{}, fmt.Errorf("formula by version: %w", err)
	}
	return f, nil
}

// ListFormulas returns every formula version, oldest first.
func ListFormulas(ctx context.Context, q database.Querier) ([]FormulaVersion, error) {
	rows, err := q.Query(ctx, formulaColumns+` ORDER BY effective_from, gender`)
	if err != nil {
		return nil, fmt.Errorf("list formulas: %w", err)
	}
	defer rows.Close()

	var out []FormulaVersion
	for rows.Next() {
		f, err := scanFormula(rows)
		if err != nil {
			return nil, fmt.Errorf("scan formula: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate formulas: %w", err)
	}
	return out, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
