// Package audit loads an order's record graph from the upstream store, runs
// the financial engine over it, and compares the recomputed breakdown
// against the values persisted when the order was placed.
package audit

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gatehouse/orderaudit/internal/bubble"
	"github.com/gatehouse/orderaudit/internal/engine"
	"github.com/gatehouse/orderaudit/internal/entity"
	"github.com/gatehouse/orderaudit/internal/obs"
)

// Service materializes engine inputs from the upstream store and runs audits.
type Service struct {
	Bubble *bubble.Client
	// FetchConcurrency caps the parallel record fetches per phase.
	FetchConcurrency int
}

// Result is one completed audit run.
type Result struct {
	RunID     string           `json:"runId"`
	OrderID   string           `json:"orderId"`
	Breakdown engine.Breakdown `json:"breakdown"`
	Report    Report           `json:"report"`
}

// Load fetches the order and every record it references, returning the fully
// resolved engine input. Related records are fetched concurrently and in two
// phases, since the set of ticket types is only known once the add-ons are in
// hand. A missing legacy order-fee record is treated as deleted and skipped;
// any other missing reference is an error.
func (s *Service) Load(ctx context.Context, orderID string) (engine.Input, error) {
	var order entity.Order
	if err := s.Bubble.Fetch(ctx, bubble.ThingOrder, orderID, &order); err != nil {
		return engine.Input{}, err
	}

	in := engine.Input{
		Order:          order,
		AddOns:         make([]entity.AddOn, len(order.AddOnIDs)),
		TicketTypes:    map[string]entity.TicketType{},
		CustomFeeTypes: map[string]entity.CustomFeeType{},
	}
	customFees := make([]entity.CustomFeeType, len(order.CustomFeeIDs))
	orderFees := make([]*entity.OrderFee, len(order.OrderFeeIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit())

	for i, id := range order.AddOnIDs {
		g.Go(func() error {
			return s.Bubble.Fetch(gctx, bubble.ThingAddOn, id, &in.AddOns[i])
		})
	}
	for i, id := range order.CustomFeeIDs {
		g.Go(func() error {
			return s.Bubble.Fetch(gctx, bubble.ThingCustomFeeType, id, &customFees[i])
		})
	}
	for i, id := range order.OrderFeeIDs {
		g.Go(func() error {
			var fee entity.OrderFee
			err := s.Bubble.Fetch(gctx, bubble.ThingOrderFee, id, &fee)
			if errors.Is(err, bubble.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			orderFees[i] = &fee
			return nil
		})
	}
	if order.PromotionID != "" {
		g.Go(func() error {
			var promo entity.Promotion
			if err := s.Bubble.Fetch(gctx, bubble.ThingPromotion, order.PromotionID, &promo); err != nil {
				return err
			}
			in.Promotion = &promo
			return nil
		})
	}
	g.Go(func() error {
		var event entity.Event
		if err := s.Bubble.Fetch(gctx, bubble.ThingEvent, order.EventID, &event); err != nil {
			return err
		}
		return s.Bubble.Fetch(gctx, bubble.ThingEventDetail, event.EventDetailID, &in.EventDetail)
	})
	if err := g.Wait(); err != nil {
		return engine.Input{}, fmt.Errorf("load order %s: %w", orderID, err)
	}

	for _, fee := range customFees {
		in.CustomFeeTypes[fee.ID] = fee
	}
	for _, fee := range orderFees {
		if fee != nil {
			in.OrderFees = append(in.OrderFees, *fee)
		}
	}

	// Second phase: ticket types referenced by the ticket lines, deduplicated.
	ticketTypeIDs := map[string]bool{}
	for _, a := range in.AddOns {
		if a.Type == entity.AddOnTicket && a.TicketTypeID != "" {
			ticketTypeIDs[a.TicketTypeID] = true
		}
	}
	resolved := make([]entity.TicketType, len(ticketTypeIDs))
	tg, tctx := errgroup.WithContext(ctx)
	tg.SetLimit(s.limit())
	i := 0
	for id := range ticketTypeIDs {
		slot := &resolved[i]
		i++
		tg.Go(func() error {
			return s.Bubble.Fetch(tctx, bubble.ThingTicketType, id, slot)
		})
	}
	if err := tg.Wait(); err != nil {
		return engine.Input{}, fmt.Errorf("load order %s: %w", orderID, err)
	}
	for _, tt := range resolved {
		in.TicketTypes[tt.ID] = tt
	}

	return in, nil
}

// Audit loads the order, recomputes its breakdown and compares it against
// the persisted values.
func (s *Service) Audit(ctx context.Context, orderID string) (Result, error) {
	in, err := s.Load(ctx, orderID)
	if err != nil {
		s.countVerdict("error")
		return Result{}, err
	}
	breakdown, err := engine.Calculate(in)
	if err != nil {
		s.countVerdict("error")
		return Result{}, err
	}
	report := Compare(in.Order, breakdown, in.OrderFees)

	verdict := "pass"
	if !report.Pass {
		verdict = "fail"
	}
	s.countVerdict(verdict)
	for _, check := range report.Checks {
		if !check.Match && obs.AuditFieldMismatch != nil {
			obs.AuditFieldMismatch.WithLabelValues(check.Field).Inc()
		}
	}

	return Result{
		RunID:     uuid.NewString(),
		OrderID:   orderID,
		Breakdown: breakdown,
		Report:    report,
	}, nil
}

func (s *Service) limit() int {
	if s.FetchConcurrency > 0 {
		return s.FetchConcurrency
	}
	return 8
}

func (s *Service) countVerdict(verdict string) {
	if obs.AuditTotal != nil {
		obs.AuditTotal.WithLabelValues(verdict).Inc()
	}
}
