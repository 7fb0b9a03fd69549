package engine

import "github.com/shopspring/decimal"

var (
	one = decimal.NewFromInt(1)

	// centThreshold is the smallest amount treated as chargeable. Totals
	// with a smaller absolute value behave as zero throughout the engine.
	centThreshold = decimal.RequireFromString("0.01")
)

// round2 rounds to cent precision, half away from zero. The upstream store
// rounds at specific points of the fee computation and the audit must round
// at exactly the same ones.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// negligible reports whether the amount is indistinguishable from zero at
// cent precision.
func negligible(d decimal.Decimal) bool {
	return d.Abs().LessThan(centThreshold)
}
