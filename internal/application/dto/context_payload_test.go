package dto_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/application/dto"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/model"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/valueobject"
)

var receivedAt = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func TestToContext_EmptyPayloadDefaults(t *testing.T) {
	tc, err := dto.CheckoutContextPayload{}.ToContext(receivedAt)

	require.NoError(t, err)
	assert.Equal(t, "USD", tc.Currency().Code())
	assert.True(t, tc.CartTotal().Amount().IsZero())
	assert.Equal(t, valueobject.LoyaltyNone, tc.Customer().LoyaltyTier)
	assert.Equal(t, "medium", tc.Customer().Preferences.AnnualFeeTolerance)
	assert.Equal(t, receivedAt, tc.Timestamp())
	assert.Nil(t, tc.TransactionID())
}

func TestToContext_DecodesJSON(t *testing.T) {
	raw := `{
		"transaction_id": "00000000-0000-0000-0000-000000000042",
		"timestamp": "2026-01-02T03:04:05Z",
		"cart": {"currency": "eur", "items": [
			{"item": "book", "unit_price": "12.50", "qty": 2, "mcc": "5942"},
			{"item": "pen", "unit_price": "1.00"}
		]},
		"merchant": {"name": "Bookshop", "mcc": "5942", "network_preferences": ["Visa"]},
		"customer": {"id": "c1", "loyalty_tier": "gold", "chargebacks_12m": 1,
			"preferences": {"reward_type": "Cashback", "preferred_issuers": ["Chase"]}},
		"device": {"ip": "203.0.113.5", "location": {"city": "Paris", "country": "FR"}},
		"geo": {"city": "Berlin", "region": "BE", "country": "DE"}
	}`

	var p dto.CheckoutContextPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	tc, err := p.ToContext(receivedAt)

	require.NoError(t, err)
	assert.Equal(t, "00000000-0000-0000-0000-000000000042", tc.TransactionID().String())
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), tc.Timestamp())
	assert.Equal(t, "EUR", tc.Currency().Code())
	assert.Equal(t, "26.00 EUR", tc.CartTotal().String())
	assert.Equal(t, 1, tc.Items()[1].Quantity)
	assert.Equal(t, valueobject.LoyaltyGold, tc.Customer().LoyaltyTier)
	assert.Equal(t, []string{"visa"}, tc.Merchant().NetworkPreferences)
	assert.Equal(t, "cashback", tc.Customer().Preferences.RewardType)
	assert.Equal(t, []string{"chase"}, tc.Customer().Preferences.PreferredIssuers)
	assert.True(t, tc.LocationMismatch())
	assert.Equal(t, "5942", tc.MCC())
}

func TestToContext_RejectsInvalid(t *testing.T) {
	qty := 0
	tests := []struct {
		name    string
		payload dto.CheckoutContextPayload
	}{
		{"bad currency", dto.CheckoutContextPayload{Cart: &dto.CartPayload{Currency: "dollars"}}},
		{"zero quantity", dto.CheckoutContextPayload{Cart: &dto.CartPayload{
			Items: []dto.CartItemPayload{{Item: "x", Quantity: &qty}},
		}}},
		{"unknown tier", dto.CheckoutContextPayload{Customer: &dto.CustomerPayload{LoyaltyTier: "DIAMOND"}}},
		{"negative velocity", dto.CheckoutContextPayload{Customer: &dto.CustomerPayload{Velocity24h: -1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.payload.ToContext(receivedAt)
			assert.ErrorIs(t, err, model.ErrInvalidContext)
		})
	}
}
