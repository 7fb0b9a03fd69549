package audit

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gatehouse/orderaudit/internal/bubble"
	"github.com/gatehouse/orderaudit/internal/resilience"
)

// fixtureUpstream serves canned records keyed by "Thing/id" in the data
// API's response envelope and 404s everything else.
func fixtureUpstream(t *testing.T, records map[string]string) *bubble.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := records[r.URL.Path[1:]]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, `{"response":%s}`, body)
	}))
	t.Cleanup(srv.Close)
	return &bubble.Client{
		BaseURL: srv.URL,
		Token:   "test-token",
		HTTP:    resilience.HTTPClient{Client: srv.Client(), MaxAttempts: 1},
	}
}

// graphRecords is a two-ticket order at the default fee schedule: one ticket
// line of quantity two at unit price 50, one legacy fee record whose twin
// has been deleted, and no promotion or custom fees.
func graphRecords() map[string]string {
	return map[string]string{
		"GP_Order/o1": `{
			"_id": "o1",
			"Event": "e1",
			"Add Ons": ["a1", "a2"],
			"Order Fees": ["of1", "of-deleted"],
			"Ticket Count": 2,
			"Gross Amount": 100,
			"Discount Amount": 0,
			"Processing Fee Revenue": 0,
			"Processing Fee Deduction": 3.42,
			"Total Order Value": 107.42
		}`,
		"GP_AddOn/a1":       `{"_id":"a1","OS AddOnType":"Ticket","Quantity":2,"GP_TicketType":"tt1"}`,
		"GP_AddOn/a2":       `{"_id":"a2","OS AddOnType":"Merch","Quantity":1}`,
		"GP_TicketType/tt1": `{"_id":"tt1","Price":50}`,
		"event/e1":          `{"_id":"e1","GP_EventDetail":"d1"}`,
		"GP_EventDetail/d1": `{"_id":"d1","No Processing Fee":"No"}`,
		"GP_OrderFee/of1":   `{"_id":"of1","Amount":5}`,
	}
}

func TestLoadResolvesRecordGraph(t *testing.T) {
	svc := &Service{Bubble: fixtureUpstream(t, graphRecords())}

	in, err := svc.Load(context.Background(), "o1")
	require.NoError(t, err)

	require.Equal(t, "o1", in.Order.ID)
	require.Len(t, in.AddOns, 2)
	require.Equal(t, "a1", in.AddOns[0].ID)
	require.Nil(t, in.Promotion)
	require.Contains(t, in.TicketTypes, "tt1")
	require.True(t, in.TicketTypes["tt1"].Price.Equal(dec("50")))
	require.False(t, in.EventDetail.NoProcessingFee.Bool())

	// the deleted legacy fee record is skipped, not an error
	require.Len(t, in.OrderFees, 1)
	require.Equal(t, "of1", in.OrderFees[0].ID)
}

func TestLoadMissingAddOnFails(t *testing.T) {
	records := graphRecords()
	delete(records, "GP_AddOn/a1")
	svc := &Service{Bubble: fixtureUpstream(t, records)}

	_, err := svc.Load(context.Background(), "o1")
	require.ErrorIs(t, err, bubble.ErrNotFound)
}

func TestLoadUnknownOrder(t *testing.T) {
	svc := &Service{Bubble: fixtureUpstream(t, graphRecords())}

	_, err := svc.Load(context.Background(), "nope")
	require.ErrorIs(t, err, bubble.ErrNotFound)
}

func TestLoadResolvesPromotionAndCustomFees(t *testing.T) {
	records := graphRecords()
	records["GP_Order/o1"] = `{
		"_id": "o1",
		"Event": "e1",
		"GP_Promotion": "p1",
		"Add Ons": ["a1"],
		"Custom Fee Types": ["cf1"]
	}`
	records["GP_Promotion/p1"] = `{"_id":"p1","OS GP Promotion Type":"Discount Amount","DiscountAmt":10}`
	records["GP_CustomFeeType/cf1"] = `{"_id":"cf1","Type":"Fixed","Fee Amount":4}`
	svc := &Service{Bubble: fixtureUpstream(t, records)}

	in, err := svc.Load(context.Background(), "o1")
	require.NoError(t, err)
	require.NotNil(t, in.Promotion)
	require.True(t, in.Promotion.Amount.Equal(dec("10")))
	require.Contains(t, in.CustomFeeTypes, "cf1")
	require.Empty(t, in.OrderFees)
}

func TestAuditMatchingOrderPasses(t *testing.T) {
	records := graphRecords()
	// drop the legacy fee records so the fee cross-check stays out of scope
	records["GP_Order/o1"] = `{
		"_id": "o1",
		"Event": "e1",
		"Add Ons": ["a1", "a2"],
		"Ticket Count": 2,
		"Gross Amount": 100,
		"Discount Amount": 0,
		"Processing Fee Revenue": 0,
		"Processing Fee Deduction": 3.42,
		"Total Order Value": 107.42
	}`
	svc := &Service{Bubble: fixtureUpstream(t, records)}

	result, err := svc.Audit(context.Background(), "o1")
	require.NoError(t, err)
	require.NotEmpty(t, result.RunID)
	require.Equal(t, "o1", result.OrderID)
	require.True(t, result.Report.Pass, "report: %+v", result.Report)
	require.Equal(t, int64(2), result.Breakdown.TicketCount)
	require.True(t, result.Breakdown.TotalOrderValue.Equal(dec("107.42")),
		"total order value %s", result.Breakdown.TotalOrderValue)
}

func TestAuditFlagsDriftedTotal(t *testing.T) {
	svc := &Service{Bubble: fixtureUpstream(t, graphRecords())}

	result, err := svc.Audit(context.Background(), "o1")
	require.NoError(t, err)
	// the surviving legacy fee record claims 5.00 in custom fees while the
	// recomputation finds none
	require.False(t, result.Report.Pass)
	found := false
	for _, c := range result.Report.Checks {
		if c.Field == "custom_fees" {
			found = true
			require.False(t, c.Match)
		}
	}
	require.True(t, found)
}
