// Package engine recomputes the authoritative financial breakdown of a
// single ticket sales order from already-loaded records. It is a pure
// computation: no I/O, no clock, no mutation of its inputs, and therefore
// reproducible to the cent from the same inputs.
package engine

import (
	"github.com/shopspring/decimal"

	"github.com/gatehouse/orderaudit/internal/entity"
)

// Input bundles the fully resolved record graph for one order. The loader
// must have materialized every referenced ticket type; legacy order-fee
// records are carried for the audit report only and never read here.
type Input struct {
	Order          entity.Order
	AddOns         []entity.AddOn
	Promotion      *entity.Promotion
	TicketTypes    map[string]entity.TicketType
	EventDetail    entity.EventDetail
	CustomFeeTypes map[string]entity.CustomFeeType
	OrderFees      []entity.OrderFee
}

// Breakdown is the computed financial summary of an order. All monetary
// fields are decimal currency values meaningful to two decimal places.
type Breakdown struct {
	TicketCount          int64           `json:"ticketCount"`
	GrossAmount          decimal.Decimal `json:"grossAmount"`
	TotalServiceFee      decimal.Decimal `json:"totalServiceFee"`
	DonationTotal        decimal.Decimal `json:"donationTotal"`
	TotalCustomFees      decimal.Decimal `json:"totalCustomFees"`
	DiscountTotal        decimal.Decimal `json:"discountTotal"`
	ProcessingFeeRevenue decimal.Decimal `json:"processingFeeRevenue"`
	StripeDeduction      decimal.Decimal `json:"stripeDeduction"`
	TotalOrderValue      decimal.Decimal `json:"totalOrderValue"`
}

// Calculate runs the full pipeline: classify lines, resolve discounts,
// allocate custom fees, solve the processing-fee system, and aggregate.
func Calculate(in Input) (Breakdown, error) {
	schedule := ResolveSchedule(in.EventDetail, in.CustomFeeTypes)

	lines, donationTotal, err := Classify(in.AddOns, in.TicketTypes)
	if err != nil {
		return Breakdown{}, err
	}

	totals := ApplyDiscounts(lines, in.Promotion)
	customFees := AllocateCustomFees(totals.FinalPrices, schedule.CustomFees)

	fees, err := SolveProcessingFees(totals.FinalAmount, donationTotal, customFees, schedule)
	if err != nil {
		return Breakdown{}, err
	}

	return Breakdown{
		TicketCount:          totals.TicketCount,
		GrossAmount:          totals.GrossAmount,
		TotalServiceFee:      totals.ServiceFeeTotal,
		DonationTotal:        donationTotal,
		TotalCustomFees:      customFees,
		DiscountTotal:        totals.DiscountTotal,
		ProcessingFeeRevenue: fees.Revenue,
		StripeDeduction:      fees.Deduction,
		TotalOrderValue:      fees.OrderValue,
	}, nil
}
