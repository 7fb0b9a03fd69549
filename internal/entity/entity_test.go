package entity

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Bubble returns "" for number fields that were never written. Every numeric
// field must decode that to zero instead of failing the whole record.
func TestDecodeNeverSetNumberFields(t *testing.T) {
	var tt TicketType
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"tt1","Price":50,"Service Fee":""}`), &tt))
	require.True(t, tt.Price.Equal(decimal.NewFromInt(50)))
	require.True(t, tt.ServiceFee.IsZero())

	var a AddOn
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"a1","OS AddOnType":"Donation","Gross Price":"","Final Price":""}`), &a))
	require.True(t, a.DonationAmount().IsZero())

	var d EventDetail
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"d1","Processing Fee $":"","Processing Fee %":null}`), &d))
	require.True(t, d.FeeFixed.IsZero())
	require.True(t, d.FeeFraction.IsZero())

	var p Promotion
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"p1","OS GP Promotion Type":"Discount Amount","DiscountAmt":"","DiscountPct":""}`), &p))
	require.True(t, p.Amount.IsZero())
	require.True(t, p.Fraction.IsZero())

	var ft CustomFeeType
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"f1","Type":"Fixed","Fee Amount":""}`), &ft))
	require.True(t, ft.Amount.IsZero())

	var of OrderFee
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"of1","Amount":null}`), &of))
	require.True(t, of.Amount.IsZero())
}

func TestDecodeAmountValues(t *testing.T) {
	var tt TicketType
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"tt1","Price":"49.99","Service Fee":3.5}`), &tt))
	require.True(t, tt.Price.Equal(decimal.RequireFromString("49.99")))
	require.True(t, tt.ServiceFee.Equal(decimal.RequireFromString("3.5")))
}

func TestFlexBoolDecoding(t *testing.T) {
	cases := []struct {
		raw  string
		want bool
	}{
		{`true`, true},
		{`"Yes"`, true},
		{`false`, false},
		{`"No"`, false},
		{`null`, false},
		{`""`, false},
	}
	for _, tc := range cases {
		var b FlexBool
		require.NoError(t, json.Unmarshal([]byte(tc.raw), &b), "raw %s", tc.raw)
		require.Equal(t, tc.want, b.Bool(), "raw %s", tc.raw)
	}

	var b FlexBool
	require.Error(t, json.Unmarshal([]byte(`42`), &b))
}
