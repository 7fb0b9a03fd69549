// Package entity defines the upstream order-management records consumed by
// the audit engine. Field tags follow the Bubble Data API names verbatim so
// records decode straight off the wire.
package entity

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
)

// AddOnType tags an order line item.
type AddOnType string

const (
	AddOnTicket   AddOnType = "Ticket"
	AddOnDonation AddOnType = "Donation"
)

// PromotionKind distinguishes fixed-amount from percentage promotions.
type PromotionKind string

const (
	PromotionAmount     PromotionKind = "Discount Amount"
	PromotionPercentage PromotionKind = "Discount Percentage"
)

// CustomFeeKind distinguishes fixed from percentage custom fees.
type CustomFeeKind string

const (
	CustomFeeFixed      CustomFeeKind = "Fixed"
	CustomFeePercentage CustomFeeKind = "Percentage"
)

// Order is the sales order under audit. The pointer fields are the values the
// upstream store persisted when the order was placed; the audit report
// compares the recomputed breakdown against them. Absent and zero are
// distinct for those fields, hence the pointers.
type Order struct {
	ID             string   `json:"_id"`
	EventID        string   `json:"Event"`
	PromotionID    string   `json:"GP_Promotion"`
	AddOnIDs       []string `json:"Add Ons"`
	CustomFeeIDs   []string `json:"Custom Fee Types"`
	OrderFeeIDs    []string `json:"Order Fees"`
	TicketCount    *int64   `json:"Ticket Count"`
	GrossAmount    *Amount  `json:"Gross Amount"`
	DiscountAmount *Amount  `json:"Discount Amount"`
	FeeRevenue     *Amount  `json:"Processing Fee Revenue"`
	FeeDeduction   *Amount  `json:"Processing Fee Deduction"`
	TotalValue     *Amount  `json:"Total Order Value"`
}

// Amount is a decimal that also tolerates the empty strings Bubble leaves
// behind for never-set number fields.
type Amount struct {
	decimal.Decimal
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte(`""`)) || bytes.Equal(data, []byte("null")) {
		a.Decimal = decimal.Zero
		return nil
	}
	return a.Decimal.UnmarshalJSON(data)
}

// AddOn is a single order line: a ticket purchase, a donation, or another
// line kind the financial engine ignores.
type AddOn struct {
	ID           string    `json:"_id"`
	Type         AddOnType `json:"OS AddOnType"`
	Quantity     int64     `json:"Quantity"`
	TicketTypeID string    `json:"GP_TicketType"`
	GrossPrice   Amount    `json:"Gross Price"`
	FinalPrice   Amount    `json:"Final Price"`
}

// DonationAmount returns the monetary value of a Donation line. The upstream
// store writes it to Gross Price, older records carry it in Final Price.
func (a AddOn) DonationAmount() decimal.Decimal {
	if !a.GrossPrice.IsZero() {
		return a.GrossPrice.Decimal
	}
	return a.FinalPrice.Decimal
}

// TicketType carries the unit price and fee configuration of a ticket class.
type TicketType struct {
	ID           string   `json:"_id"`
	Price        Amount   `json:"Price"`
	ServiceFee   Amount   `json:"Service Fee"`
	PromotionIDs []string `json:"GP_Promotions"`
}

// EligibleFor reports whether the ticket type participates in the promotion.
func (t TicketType) EligibleFor(promotionID string) bool {
	for _, id := range t.PromotionIDs {
		if id == promotionID {
			return true
		}
	}
	return false
}

// Promotion is an order-level discount rule.
type Promotion struct {
	ID       string        `json:"_id"`
	Kind     PromotionKind `json:"OS GP Promotion Type"`
	Amount   Amount        `json:"DiscountAmt"`
	Fraction Amount        `json:"DiscountPct"`
}

// Event links an event record to its fee configuration.
type Event struct {
	ID            string `json:"_id"`
	EventDetailID string `json:"GP_EventDetail"`
}

// EventDetail holds the per-event processing-fee configuration.
type EventDetail struct {
	ID              string   `json:"_id"`
	NoProcessingFee FlexBool `json:"No Processing Fee"`
	FeeFixed        Amount   `json:"Processing Fee $"`
	FeeFraction     Amount   `json:"Processing Fee %"`
}

// CustomFeeType configures an organizer-defined fee spread over ticket lines.
type CustomFeeType struct {
	ID     string        `json:"_id"`
	Kind   CustomFeeKind `json:"Type"`
	Amount Amount        `json:"Fee Amount"`
}

// OrderFee is a legacy persisted per-line fee record. It is only read back to
// cross-check the recomputed custom-fee total; deleted records are legal.
type OrderFee struct {
	ID     string `json:"_id"`
	Amount Amount `json:"Amount"`
}

// FlexBool decodes upstream flags that are stored either as JSON booleans or
// as the option-set strings "Yes"/"No".
type FlexBool bool

// UnmarshalJSON implements json.Unmarshaler.
func (b *FlexBool) UnmarshalJSON(data []byte) error {
	switch {
	case bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte(`"Yes"`)), bytes.Equal(data, []byte(`"yes"`)):
		*b = true
	case bytes.Equal(data, []byte("false")), bytes.Equal(data, []byte("null")), bytes.Equal(data, []byte(`"No"`)), bytes.Equal(data, []byte(`"no"`)), bytes.Equal(data, []byte(`""`)):
		*b = false
	default:
		return fmt.Errorf("entity: cannot decode %q as flag", data)
	}
	return nil
}

// Bool returns the plain boolean value.
func (b FlexBool) Bool() bool {
	return bool(b)
}
