package engine

import "errors"

var (
	// ErrTicketTypeNotLoaded is returned when a Ticket line references a
	// ticket type the caller did not supply. The loader is expected to
	// resolve every reference before invoking the engine.
	ErrTicketTypeNotLoaded = errors.New("ticket type not loaded")
	// ErrFeePercentTooHigh is returned when the configured processing-fee
	// percentage pushes the gross-up denominator to zero or below.
	ErrFeePercentTooHigh = errors.New("processing fee percentage too high")
)
