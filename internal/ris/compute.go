// Package ris computes the Relative Intensity Score: a bodyweight-adjusted
// points value that makes totals comparable across weight classes. The
// score divides an athlete's total by a logistic estimate of what a strong
// lifter at that bodyweight can reach.
package ris

import (
	"math"

	"github.com/shopspring/decimal"
)

// Constants parameterize the logistic reference curve for one gender.
type Constants struct {
	A decimal.Decimal // lower asymptote
	K decimal.Decimal // upper asymptote
	B decimal.Decimal // growth rate
	V decimal.Decimal // curve midpoint bodyweight
	Q decimal.Decimal // horizontal shift
}

// Compute returns the score for a total at a bodyweight:
//
//	RIS = total * 100 / (A + (K-A) / (1 + Q*exp(-B*(bodyweight-V))))
//
// rounded to two decimal places. The exponential runs in float64; only the
// final value is converted back to decimal.
func Compute(total, bodyweight decimal.Decimal, c Constants) decimal.Decimal {
	a, _ := c.A.Float64()
	k, _ := c.K.Float64()
	b, _ := c.B.Float64()
	v, _ := c.V.Float64()
	q, _ := c.Q.Float64()
	bw, _ := bodyweight.Float64()
	t, _ := total.Float64()

	reference := a + (k-a)/(1+q*math.Exp(-b*(bw-v)))
	return decimal.NewFromFloat(t * 100 / reference).Round(2)
}
