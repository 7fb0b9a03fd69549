package engine

import (
	"github.com/shopspring/decimal"

	"github.com/gatehouse/orderaudit/internal/entity"
)

// TicketTotals accumulates the per-line results of the discount pass.
// FinalPrices holds each line's final price (ticket subtotal + service fee −
// discount) in input order; the custom-fee allocator keys off it.
type TicketTotals struct {
	TicketCount     int64
	GrossAmount     decimal.Decimal
	ServiceFeeTotal decimal.Decimal
	DiscountTotal   decimal.Decimal
	FinalAmount     decimal.Decimal
	FinalPrices     []decimal.Decimal
}

// ApplyDiscounts walks the ticket lines in order, resolving the discount for
// each one. A fixed-amount promotion contributes at most once per order; the
// applied flag is carried through the fold so every later eligible line sees
// a zero discount. Percentage promotions apply to every eligible line on its
// pre-discount ticket subtotal.
func ApplyDiscounts(lines []TicketLine, promo *entity.Promotion) TicketTotals {
	t := TicketTotals{
		GrossAmount:     decimal.Zero,
		ServiceFeeTotal: decimal.Zero,
		DiscountTotal:   decimal.Zero,
		FinalAmount:     decimal.Zero,
		FinalPrices:     make([]decimal.Decimal, 0, len(lines)),
	}
	amountApplied := false
	for _, line := range lines {
		qty := decimal.NewFromInt(line.AddOn.Quantity)
		ticketSubtotal := line.TicketType.Price.Mul(qty)
		serviceFee := ServiceFee(line.TicketType).Mul(qty)

		var discount decimal.Decimal
		discount, amountApplied = lineDiscount(line, promo, ticketSubtotal, amountApplied)

		finalPrice := ticketSubtotal.Add(serviceFee).Sub(discount)

		t.TicketCount += line.AddOn.Quantity
		t.GrossAmount = t.GrossAmount.Add(ticketSubtotal)
		t.ServiceFeeTotal = t.ServiceFeeTotal.Add(serviceFee)
		t.DiscountTotal = t.DiscountTotal.Add(discount)
		t.FinalAmount = t.FinalAmount.Add(finalPrice)
		t.FinalPrices = append(t.FinalPrices, finalPrice)
	}
	return t
}

func lineDiscount(line TicketLine, promo *entity.Promotion, ticketSubtotal decimal.Decimal, amountApplied bool) (decimal.Decimal, bool) {
	if promo == nil || !line.TicketType.EligibleFor(promo.ID) {
		return decimal.Zero, amountApplied
	}
	switch promo.Kind {
	case entity.PromotionAmount:
		if amountApplied {
			return decimal.Zero, true
		}
		return promo.Amount.Decimal, true
	case entity.PromotionPercentage:
		return ticketSubtotal.Mul(promo.Fraction.Decimal), amountApplied
	}
	return decimal.Zero, amountApplied
}
