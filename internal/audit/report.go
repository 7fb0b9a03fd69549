package audit

import (
	"github.com/shopspring/decimal"

	"github.com/gatehouse/orderaudit/internal/engine"
	"github.com/gatehouse/orderaudit/internal/entity"
)

// tolerance absorbs the half-cent drift float arithmetic left in persisted
// records. Two money values agree when they differ by strictly less than it.
var tolerance = decimal.RequireFromString("0.005")

// Check is one field of the persisted order compared against the recomputed
// breakdown. Stored is nil when the field was never written upstream.
type Check struct {
	Field    string           `json:"field"`
	Stored   *decimal.Decimal `json:"stored,omitempty"`
	Computed decimal.Decimal  `json:"computed"`
	Match    bool             `json:"match"`
	Note     string           `json:"note,omitempty"`
}

// Report is the full audit verdict for one order.
type Report struct {
	Checks []Check `json:"checks"`
	Pass   bool    `json:"pass"`
}

// Compare evaluates the persisted order fields against the recomputed
// breakdown. Ticket counts must match exactly, money fields within the
// tolerance. When the order still carries legacy order-fee records, their
// sum is cross-checked against the recomputed custom-fee total.
func Compare(order entity.Order, b engine.Breakdown, orderFees []entity.OrderFee) Report {
	var checks []Check

	checks = append(checks, countCheck(order.TicketCount, b.TicketCount))
	checks = append(checks, moneyCheck("gross_amount", order.GrossAmount, b.GrossAmount))
	checks = append(checks, discountCheck(order, b.DiscountTotal))
	checks = append(checks, moneyCheck("processing_fee_revenue", order.FeeRevenue, b.ProcessingFeeRevenue))
	checks = append(checks, moneyCheck("processing_fee_deduction", order.FeeDeduction, b.StripeDeduction))
	checks = append(checks, moneyCheck("total_order_value", order.TotalValue, b.TotalOrderValue))

	if len(orderFees) > 0 {
		sum := decimal.Zero
		for _, fee := range orderFees {
			sum = sum.Add(fee.Amount.Decimal)
		}
		c := Check{Field: "custom_fees", Stored: &sum, Computed: b.TotalCustomFees}
		c.Match = agree(sum, b.TotalCustomFees)
		if !c.Match {
			c.Note = "persisted fee records disagree with recomputed custom fees"
		}
		checks = append(checks, c)
	}

	pass := true
	for _, c := range checks {
		if !c.Match {
			pass = false
			break
		}
	}
	return Report{Checks: checks, Pass: pass}
}

func countCheck(stored *int64, computed int64) Check {
	c := Check{Field: "ticket_count", Computed: decimal.NewFromInt(computed)}
	if stored == nil {
		c.Note = "never persisted"
		return c
	}
	d := decimal.NewFromInt(*stored)
	c.Stored = &d
	c.Match = *stored == computed
	return c
}

func moneyCheck(field string, stored *entity.Amount, computed decimal.Decimal) Check {
	c := Check{Field: field, Computed: computed}
	if stored == nil {
		c.Note = "never persisted"
		return c
	}
	v := stored.Decimal
	c.Stored = &v
	c.Match = agree(v, computed)
	return c
}

// discountCheck applies the promotion rule: an order without a promotion
// must audit to a zero discount regardless of what was persisted.
func discountCheck(order entity.Order, computed decimal.Decimal) Check {
	if order.PromotionID == "" {
		c := Check{Field: "discount_amount", Computed: computed}
		if order.DiscountAmount != nil {
			v := order.DiscountAmount.Decimal
			c.Stored = &v
		}
		c.Match = computed.IsZero() && (order.DiscountAmount == nil || order.DiscountAmount.IsZero())
		if !c.Match {
			c.Note = "nonzero discount on an order without a promotion"
		}
		return c
	}
	return moneyCheck("discount_amount", order.DiscountAmount, computed)
}

func agree(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(tolerance)
}
