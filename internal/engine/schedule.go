package engine

import (
	"github.com/shopspring/decimal"

	"github.com/gatehouse/orderaudit/internal/entity"
)

// defaultServiceFee is charged per ticket when the ticket type does not carry
// an explicit fee. The upstream store treats an explicit zero the same as
// unset, so the engine does too.
var defaultServiceFee = decimal.NewFromInt(2)

// Schedule is the resolved fee configuration for one order: the event-level
// processing-fee settings plus the custom fee types configured on the order.
type Schedule struct {
	NoProcessingFee bool
	FeeFixed        decimal.Decimal
	FeeFraction     decimal.Decimal
	CustomFees      []entity.CustomFeeType
}

// ResolveSchedule extracts the fee configuration from the loaded records,
// applying zero defaults for absent event-level fields.
func ResolveSchedule(detail entity.EventDetail, feeTypes map[string]entity.CustomFeeType) Schedule {
	s := Schedule{
		NoProcessingFee: detail.NoProcessingFee.Bool(),
		FeeFixed:        detail.FeeFixed.Decimal,
		FeeFraction:     detail.FeeFraction.Decimal,
	}
	for _, ft := range feeTypes {
		s.CustomFees = append(s.CustomFees, ft)
	}
	return s
}

// ServiceFee resolves the per-ticket service fee for a ticket type: free
// tickets never carry one, priced tickets default to 2.00.
func ServiceFee(t entity.TicketType) decimal.Decimal {
	if t.Price.IsZero() {
		return decimal.Zero
	}
	if t.ServiceFee.IsZero() {
		return defaultServiceFee
	}
	return t.ServiceFee.Decimal
}
