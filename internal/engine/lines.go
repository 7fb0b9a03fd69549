package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/gatehouse/orderaudit/internal/entity"
)

// TicketLine pairs a Ticket add-on with its resolved ticket type.
type TicketLine struct {
	AddOn      entity.AddOn
	TicketType entity.TicketType
}

// Classify partitions the order's add-ons. Donation lines are summed and
// excluded from all ticket math; lines of any other non-ticket kind are
// dropped entirely. A Ticket line whose type is missing from the supplied
// map aborts the computation.
func Classify(addOns []entity.AddOn, ticketTypes map[string]entity.TicketType) ([]TicketLine, decimal.Decimal, error) {
	var lines []TicketLine
	donationTotal := decimal.Zero
	for _, a := range addOns {
		switch a.Type {
		case entity.AddOnDonation:
			donationTotal = donationTotal.Add(a.DonationAmount())
		case entity.AddOnTicket:
			tt, ok := ticketTypes[a.TicketTypeID]
			if !ok {
				return nil, decimal.Zero, fmt.Errorf("%w: add-on %s references %s", ErrTicketTypeNotLoaded, a.ID, a.TicketTypeID)
			}
			lines = append(lines, TicketLine{AddOn: a, TicketType: tt})
		}
	}
	return lines, donationTotal, nil
}
