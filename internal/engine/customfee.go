package engine

import (
	"github.com/shopspring/decimal"

	"github.com/gatehouse/orderaudit/internal/entity"
)

// AllocateCustomFees spreads the configured custom fees across the ticket
// lines. It runs after the discount pass because both eligibility and the
// percentage base are the line's post-discount final price.
//
// Two passes per the allocation rules: first count the eligible lines (final
// price at least a cent in absolute value), then allocate. Fixed fees split
// evenly across the eligible lines; a fixed fee with no eligible line is
// dropped. Percentage fees apply per eligible line on its final price.
func AllocateCustomFees(finalPrices []decimal.Decimal, fees []entity.CustomFeeType) decimal.Decimal {
	total := decimal.Zero
	if len(fees) == 0 || len(finalPrices) == 0 {
		return total
	}

	eligible := int64(0)
	for _, fp := range finalPrices {
		if !negligible(fp) {
			eligible++
		}
	}
	if eligible == 0 {
		return total
	}

	for _, fee := range fees {
		var share decimal.Decimal
		if fee.Kind == entity.CustomFeeFixed {
			share = fee.Amount.Div(decimal.NewFromInt(eligible))
		}
		for _, fp := range finalPrices {
			if negligible(fp) {
				continue
			}
			switch fee.Kind {
			case entity.CustomFeePercentage:
				total = total.Add(fp.Mul(fee.Amount.Decimal))
			case entity.CustomFeeFixed:
				total = total.Add(share)
			}
		}
	}
	return total
}
