package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/gatehouse/orderaudit/internal/engine"
)

// TaskAuditOrder is the queue kind for background order audits.
const TaskAuditOrder = "audit:order"

type auditPayload struct {
	OrderID string `json:"order_id"`
}

// NewAuditTask builds the queue task that audits one order in the background.
func NewAuditTask(orderID string) (*asynq.Task, error) {
	payload, err := json.Marshal(auditPayload{OrderID: orderID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditOrder, payload), nil
}

// TaskHandler processes background audit tasks.
type TaskHandler struct {
	Svc    *Service
	Logger zerolog.Logger
}

// ProcessTask implements asynq.Handler. Transient upstream failures are
// returned for retry; a malformed payload or an unsolvable fee configuration
// will not improve on retry and skips straight to the archive.
func (h TaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload auditPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode %s payload: %v: %w", TaskAuditOrder, err, asynq.SkipRetry)
	}
	if payload.OrderID == "" {
		return fmt.Errorf("%s: empty order id: %w", TaskAuditOrder, asynq.SkipRetry)
	}

	result, err := h.Svc.Audit(ctx, payload.OrderID)
	if err != nil {
		if errors.Is(err, engine.ErrFeePercentTooHigh) || errors.Is(err, engine.ErrTicketTypeNotLoaded) {
			h.Logger.Error().Err(err).Str("order_id", payload.OrderID).Msg("audit not computable")
			return fmt.Errorf("audit order %s: %v: %w", payload.OrderID, err, asynq.SkipRetry)
		}
		return fmt.Errorf("audit order %s: %w", payload.OrderID, err)
	}

	event := h.Logger.Info()
	if !result.Report.Pass {
		event = h.Logger.Warn()
	}
	event.
		Str("order_id", payload.OrderID).
		Str("run_id", result.RunID).
		Bool("pass", result.Report.Pass).
		Str("total_order_value", result.Breakdown.TotalOrderValue.StringFixed(2)).
		Msg("order audit completed")
	return nil
}
