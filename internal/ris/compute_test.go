package ris

import (
	"testing"

	"github.com/shopspring/decimal"
)

func menConstants() Constants {
	return Constants{
		A: decimal.NewFromInt(120),
		K: decimal.NewFromInt(480),
		B: decimal.RequireFromString("0.05"),
		V: decimal.NewFromInt(85),
		Q: decimal.NewFromInt(1),
	}
}

func womenConstants() Constants {
	return Constants{
		A: decimal.NewFromInt(60),
		K: decimal.NewFromInt(300),
		B: decimal.RequireFromString("0.06"),
		V: decimal.NewFromInt(65),
		Q: decimal.NewFromInt(1),
	}
}

func TestCompute_KnownValue(t *testing.T) {
	got := Compute(decimal.NewFromInt(130), decimal.RequireFromString("71.5"), menConstants())

	// Hand-computed: 130*100 / (120 + 360/(1+exp(0.675))) ~ 53.84
	want := decimal.RequireFromString("53.84")
	if got.Sub(want).Abs().GreaterThan(decimal.RequireFromString("0.01")) {
		t.Errorf("Compute = %s, want ~%s", got, want)
	}
}

func TestCompute_RoundsToTwoDecimals(t *testing.T) {
	got := Compute(decimal.RequireFromString("137.5"), decimal.RequireFromString("83.3"), menConstants())
	if got.Exponent() < -2 {
		t.Errorf("Compute = %s, want at most 2 decimal places", got)
	}
}

func TestCompute_MonotonicInTotal(t *testing.T) {
	bw := decimal.RequireFromString("80")
	c := menConstants()

	prev := Compute(decimal.NewFromInt(50), bw, c)
	for total := int64(60); total <= 300; total += 10 {
		cur := Compute(decimal.NewFromInt(total), bw, c)
		if !cur.GreaterThan(prev) {
			t.Fatalf("Compute(total=%d) = %s, not greater than %s", total, cur, prev)
		}
		prev = cur
	}
}

func TestCompute_HeavierBodyweightScoresLowerForSameTotal(t *testing.T) {
	total := decimal.NewFromInt(150)
	c := menConstants()

	light := Compute(total, decimal.NewFromInt(60), c)
	heavy := Compute(total, decimal.NewFromInt(110), c)
	if !light.GreaterThan(heavy) {
		t.Errorf("light = %s, heavy = %s; same total should score higher at lower bodyweight", light, heavy)
	}
}

func TestCompute_GenderConstantsDiffer(t *testing.T) {
	total := decimal.NewFromInt(100)
	bw := decimal.NewFromInt(70)

	men := Compute(total, bw, menConstants())
	women := Compute(total, bw, womenConstants())
	if men.Equal(women) {
		t.Error("men and women constants should produce different scores for the same lift")
	}
	if !women.GreaterThan(men) {
		t.Errorf("women = %s, men = %s; lower reference curve should score higher", women, men)
	}
}

func TestCompute_ZeroTotal(t *testing.T) {
	got := Compute(decimal.Zero, decimal.NewFromInt(80), menConstants())
	if !got.IsZero() {
		t.Errorf("Compute(0) = %s, want 0", got)
	}
}
