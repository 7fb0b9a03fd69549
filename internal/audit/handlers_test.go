package audit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, records map[string]string) *chi.Mux {
	t.Helper()
	h := Handler{Svc: &Service{Bubble: fixtureUpstream(t, records)}}
	r := chi.NewRouter()
	r.Route("/api/v1", h.Routes)
	return r
}

func TestBreakdownEndpoint(t *testing.T) {
	router := newTestRouter(t, graphRecords())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders/o1/breakdown", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			TicketCount     int64  `json:"ticketCount"`
			TotalOrderValue string `json:"totalOrderValue"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, int64(2), body.Data.TicketCount)
	require.Equal(t, "107.42", body.Data.TotalOrderValue)
}

func TestBreakdownUnknownOrder(t *testing.T) {
	router := newTestRouter(t, graphRecords())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders/missing/breakdown", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "RECORD_NOT_FOUND")
}

func TestBreakdownUnsolvableFeeConfig(t *testing.T) {
	records := graphRecords()
	records["GP_EventDetail/d1"] = `{"_id":"d1","Processing Fee %":0.98}`
	router := newTestRouter(t, records)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders/o1/breakdown", nil))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "FEE_CONFIG_INVALID")
}

func TestAuditEndpoint(t *testing.T) {
	router := newTestRouter(t, graphRecords())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/orders/o1/audit", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "o1", body.Data.OrderID)
	require.NotEmpty(t, body.Data.RunID)
	require.NotEmpty(t, body.Data.Report.Checks)
}

func TestEnqueueWithoutQueue(t *testing.T) {
	router := newTestRouter(t, graphRecords())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/orders/o1/audit/enqueue", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), "QUEUE_DISABLED")
}
