package audit

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"

	"github.com/gatehouse/orderaudit/internal/bubble"
	"github.com/gatehouse/orderaudit/internal/common"
	"github.com/gatehouse/orderaudit/internal/engine"
	"github.com/gatehouse/orderaudit/internal/resilience"
)

// Handler exposes the audit endpoints. Queue is optional; without it the
// enqueue endpoint reports the feature as disabled.
type Handler struct {
	Svc   *Service
	Queue *asynq.Client
}

// Routes mounts the order audit endpoints on the router.
func (h Handler) Routes(r chi.Router) {
	r.Get("/orders/{orderID}/breakdown", h.Breakdown)
	r.Post("/orders/{orderID}/audit", h.Audit)
	r.Post("/orders/{orderID}/audit/enqueue", h.Enqueue)
}

// Breakdown recomputes and returns the financial breakdown of an order
// without comparing it against the persisted values.
func (h Handler) Breakdown(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	if orderID == "" {
		common.JSONError(w, http.StatusBadRequest, "ORDER_ID_REQUIRED", "order id is required", nil)
		return
	}
	in, err := h.Svc.Load(r.Context(), orderID)
	if err != nil {
		writeAuditError(w, err)
		return
	}
	breakdown, err := engine.Calculate(in)
	if err != nil {
		writeAuditError(w, err)
		return
	}
	common.Data(w, http.StatusOK, breakdown)
}

// Audit runs a full synchronous audit of the order.
func (h Handler) Audit(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	if orderID == "" {
		common.JSONError(w, http.StatusBadRequest, "ORDER_ID_REQUIRED", "order id is required", nil)
		return
	}
	result, err := h.Svc.Audit(r.Context(), orderID)
	if err != nil {
		writeAuditError(w, err)
		return
	}
	common.Data(w, http.StatusOK, result)
}

// Enqueue schedules a background audit of the order and returns immediately.
func (h Handler) Enqueue(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	if orderID == "" {
		common.JSONError(w, http.StatusBadRequest, "ORDER_ID_REQUIRED", "order id is required", nil)
		return
	}
	if h.Queue == nil {
		common.JSONError(w, http.StatusServiceUnavailable, "QUEUE_DISABLED", "background audits are not configured", nil)
		return
	}
	task, err := NewAuditTask(orderID)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "ENQUEUE_FAILED", "unable to build audit task", nil)
		return
	}
	info, err := h.Queue.EnqueueContext(r.Context(), task)
	if err != nil {
		common.JSONError(w, http.StatusServiceUnavailable, "ENQUEUE_FAILED", "unable to enqueue audit task", nil)
		return
	}
	common.Data(w, http.StatusAccepted, map[string]string{
		"taskId":  info.ID,
		"queue":   info.Queue,
		"orderId": orderID,
	})
}

func writeAuditError(w http.ResponseWriter, err error) {
	common.Render(w, asAppError(err))
}

// asAppError maps loader and engine failures onto the canonical error shape.
func asAppError(err error) *common.AppError {
	switch {
	case errors.Is(err, bubble.ErrNotFound):
		return common.NewAppError("RECORD_NOT_FOUND", "a record referenced by the order does not exist", http.StatusNotFound, err)
	case errors.Is(err, engine.ErrTicketTypeNotLoaded):
		return common.NewAppError("TICKET_TYPE_MISSING", "an add-on references a ticket type that could not be resolved", http.StatusUnprocessableEntity, err)
	case errors.Is(err, engine.ErrFeePercentTooHigh):
		return common.NewAppError("FEE_CONFIG_INVALID", "the configured processing fee percentage is not solvable", http.StatusUnprocessableEntity, err)
	case errors.Is(err, resilience.ErrOpenCircuit):
		return common.NewAppError("UPSTREAM_UNAVAILABLE", "the upstream data store is temporarily unavailable", http.StatusServiceUnavailable, err)
	default:
		return common.NewAppError("UPSTREAM_ERROR", "unable to load order records", http.StatusBadGateway, err)
	}
}
