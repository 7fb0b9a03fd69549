package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Payment-processor rates are constants of the deployment's Stripe account,
// not per-event configuration.
var (
	processorRate  = decimal.RequireFromString("0.029")
	processorFixed = decimal.RequireFromString("0.30")
)

// ProcessingFees is the solved fee split for an order.
type ProcessingFees struct {
	// Revenue is the platform's share of the total processing fee. It is
	// derived by subtraction and deliberately not re-rounded, so it can
	// carry a sub-cent residue from the two upstream roundings.
	Revenue decimal.Decimal
	// Deduction is the processor's own cut, recomputed directly off the
	// charged total.
	Deduction decimal.Decimal
	// OrderValue is the amount actually charged to the customer.
	OrderValue decimal.Decimal
}

// SolveProcessingFees untangles the circular definition between the charged
// total, the processor deduction and the platform fee revenue. Three regimes,
// checked in order:
//
//  1. Zero-value order: nothing is ever charged on a zero order.
//  2. Waived processing fee: the charged total is not grossed up; the
//     processor still deducts its cut from what is charged.
//  3. General case: solved in closed form. The circular system
//
//	PF  = combinedFixed + OrderValue×combinedPct
//	OV  = (finalAmount + customFees + PF) grossed up to cover PF
//
//     reduces to base = (finalAmount + combinedFixed + customFees) / (1 − combinedPct),
//     with donations grossed up separately at the processor rate alone.
//
// The rounding points (donation fee, total processing fee, and the percentage
// part of the deduction before its fixed part) mirror the upstream store
// exactly; moving any of them shifts results by up to a cent.
func SolveProcessingFees(finalAmount, donationTotal, customFeeTotal decimal.Decimal, s Schedule) (ProcessingFees, error) {
	if negligible(finalAmount.Add(donationTotal)) {
		return ProcessingFees{
			Revenue:    decimal.Zero,
			Deduction:  decimal.Zero,
			OrderValue: decimal.Zero,
		}, nil
	}

	if s.NoProcessingFee {
		orderValue := finalAmount.Add(donationTotal).Add(customFeeTotal)
		return ProcessingFees{
			Revenue:    decimal.Zero,
			Deduction:  orderValue.Mul(processorRate).Add(processorFixed),
			OrderValue: orderValue,
		}, nil
	}

	donationFee := round2(donationTotal.Div(one.Sub(processorRate)).Mul(processorRate))

	combinedPct := processorRate.Add(s.FeeFraction)
	combinedFixed := processorFixed.Add(s.FeeFixed)
	denominator := one.Sub(combinedPct)
	if denominator.LessThanOrEqual(decimal.Zero) {
		return ProcessingFees{}, fmt.Errorf("%w: combined percentage %s", ErrFeePercentTooHigh, combinedPct)
	}

	base := finalAmount.Add(combinedFixed).Add(customFeeTotal).Div(denominator)
	totalProcessingFee := round2(base.Mul(combinedPct).Add(combinedFixed).Add(donationFee))

	orderValue := finalAmount.Add(customFeeTotal).Add(totalProcessingFee).Add(donationTotal)
	deduction := round2(orderValue.Mul(processorRate)).Add(processorFixed)

	return ProcessingFees{
		Revenue:    totalProcessingFee.Sub(deduction),
		Deduction:  deduction,
		OrderValue: orderValue,
	}, nil
}
