package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/model"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/valueobject"
)

// Fixed values for deterministic testing
var (
	TestTransactionID = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	TestTimestamp     = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
)

// ContextOption mutates the parameters used by NewContext.
type ContextOption func(*model.TransactionContextParams)

// NewContext builds a clean, low-risk context: a single 50.00 USD line at a
// grocery merchant, NONE tier, matching device and geo locations.
func NewContext(t testing.TB, opts ...ContextOption) *model.TransactionContext {
	t.Helper()

	id := TestTransactionID
	p := model.TransactionContextParams{
		TransactionID: &id,
		Timestamp:     TestTimestamp,
		Currency:      "USD",
		Items: []model.CartItem{
			{Item: "groceries", UnitPrice: decimal.RequireFromString("50.00"), Quantity: 1},
		},
		Merchant: model.Merchant{Name: "Corner Grocer", MCC: "5411"},
		Customer: model.Customer{ID: "cust-1", LoyaltyTier: valueobject.LoyaltyNone},
		Device: model.Device{
			IP:       "192.0.2.10",
			Location: &model.Location{City: "New York", Country: "US"},
		},
		Geo: model.Geo{City: "New York", Region: "NY", Country: "US"},
	}
	for _, opt := range opts {
		opt(&p)
	}

	tc, err := model.NewTransactionContext(p)
	if err != nil {
		t.Fatalf("building test context: %v", err)
	}
	return tc
}

// WithCartTotal replaces the cart with a single line of the given amount.
func WithCartTotal(amount string) ContextOption {
	return func(p *model.TransactionContextParams) {
		p.Items = []model.CartItem{{Item: "item", UnitPrice: decimal.RequireFromString(amount), Quantity: 1}}
	}
}

func WithCurrency(code string) ContextOption {
	return func(p *model.TransactionContextParams) { p.Currency = code }
}

// WithEmptyCart removes every line.
func WithEmptyCart() ContextOption {
	return func(p *model.TransactionContextParams) { p.Items = nil }
}

func WithLoyalty(tier valueobject.LoyaltyTier) ContextOption {
	return func(p *model.TransactionContextParams) { p.Customer.LoyaltyTier = tier }
}

func WithChargebacks(n int) ContextOption {
	return func(p *model.TransactionContextParams) { p.Customer.Chargebacks12m = n }
}

func WithVelocity(h24, d7 int) ContextOption {
	return func(p *model.TransactionContextParams) {
		p.Customer.Velocity24h = h24
		p.Customer.Velocity7d = d7
	}
}

// WithLocationMismatch moves the device to another city and country.
func WithLocationMismatch() ContextOption {
	return func(p *model.TransactionContextParams) {
		p.Device.Location = &model.Location{City: "Lagos", Country: "NG"}
	}
}

// WithoutLocation drops the device location and the geo city.
func WithoutLocation() ContextOption {
	return func(p *model.TransactionContextParams) {
		p.Device.Location = nil
		p.Geo.City = ""
	}
}

func WithMerchant(name, mcc string, networkPreferences ...string) ContextOption {
	return func(p *model.TransactionContextParams) {
		p.Merchant.Name = name
		p.Merchant.MCC = mcc
		p.Merchant.NetworkPreferences = networkPreferences
	}
}

func WithPreferences(prefs model.UserPreferences) ContextOption {
	return func(p *model.TransactionContextParams) { p.Customer.Preferences = prefs }
}

func WithTimestamp(ts time.Time) ContextOption {
	return func(p *model.TransactionContextParams) { p.Timestamp = ts }
}

// SampleCards is a small catalog covering cashback/points, annual fee and
// foreign fee variations.
func SampleCards() []model.Card {
	return []model.Card{
		{
			ID: "chase_freedom_unlimited", Name: "Chase Freedom Unlimited", Issuer: "chase",
			Network: "visa", RewardType: "cashback", BaseRewardRate: 0.015,
			CategoryBonus: map[string]float64{"5812": 3.0, "dining": 3.0}, SignupBonus: 200,
			ForeignTransactionFee: 0.03,
		},
		{
			ID: "amex_gold", Name: "American Express Gold", Issuer: "amex",
			Network: "amex", RewardType: "points", AnnualFee: 250, BaseRewardRate: 0.01,
			SignupBonus: 600, CategoryBonus: map[string]float64{"5411": 4.0, "groceries": 4.0, "5812": 4.0},
			TravelBenefits: []string{"airline_credit"},
		},
		{
			ID: "citi_double_cash", Name: "Citi Double Cash", Issuer: "citi",
			Network: "mastercard", RewardType: "cashback", BaseRewardRate: 0.02,
			ForeignTransactionFee: 0.03,
		},
	}
}
