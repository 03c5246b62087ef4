package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/valueobject"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/pkg/money"
)

// HighVelocityThreshold is the 24h transaction count above which a customer is
// considered high velocity.
const HighVelocityThreshold = 10

// Location is a coarse city/country pair.
type Location struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// CartItem is a single line in the cart.
type CartItem struct {
	Item      string          `json:"item"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	MCC       string          `json:"mcc,omitempty"`
	Category  string          `json:"category,omitempty"`
}

// Merchant describes where the checkout happens.
type Merchant struct {
	ID                 string    `json:"id,omitempty"`
	Name               string    `json:"name"`
	MCC                string    `json:"mcc"`
	NetworkPreferences []string  `json:"network_preferences"`
	Location           *Location `json:"location,omitempty"`
}

// UserPreferences are the customer's stated card preferences.
type UserPreferences struct {
	RewardType          string   `json:"reward_type,omitempty"`
	PreferredIssuers    []string `json:"preferred_issuers,omitempty"`
	AnnualFeeTolerance  string   `json:"annual_fee_tolerance"`
	ForeignFeeSensitive bool     `json:"foreign_fee_sensitive"`
}

// Customer carries loyalty and behavioural history.
type Customer struct {
	ID             string                  `json:"id"`
	LoyaltyTier    valueobject.LoyaltyTier `json:"loyalty_tier"`
	Velocity24h    int                     `json:"historical_velocity_24h"`
	Velocity7d     int                     `json:"historical_velocity_7d"`
	Chargebacks12m int                     `json:"chargebacks_12m"`
	Preferences    UserPreferences         `json:"preferences"`
}

// Device is the customer's device at checkout.
type Device struct {
	IP              string    `json:"ip"`
	DeviceID        string    `json:"device_id,omitempty"`
	Location        *Location `json:"location,omitempty"`
	DistanceToGeoKM *float64  `json:"distance_to_geo_km,omitempty"`
}

// Geo is the resolved geolocation of the transaction.
type Geo struct {
	City    string   `json:"city"`
	Region  string   `json:"region"`
	Country string   `json:"country"`
	Lat     *float64 `json:"lat,omitempty"`
	Lon     *float64 `json:"lon,omitempty"`
}

// TransactionContextParams is the raw input to NewTransactionContext.
type TransactionContextParams struct {
	TransactionID *uuid.UUID
	Timestamp     time.Time
	Currency      string
	Items         []CartItem
	Merchant      Merchant
	Customer      Customer
	Device        Device
	Geo           Geo
}

// TransactionContext is the immutable description of a checkout attempt.
// Derived flags are computed once at construction.
type TransactionContext struct {
	transactionID    *uuid.UUID
	timestamp        time.Time
	currency         money.Currency
	items            []CartItem
	cartTotal        money.Money
	merchant         Merchant
	customer         Customer
	device           Device
	geo              Geo
	locationMismatch bool
	highVelocity     bool
	crossBorder      bool
}

// NewTransactionContext validates and normalizes params. Every rejected field is
// reported; the returned error matches ErrInvalidContext.
func NewTransactionContext(p TransactionContextParams) (*TransactionContext, error) {
	var errs []error

	currency, err := money.ParseCurrency(p.Currency)
	if err != nil {
		errs = append(errs, contextError("cart.currency", "must be a 3-letter ISO code, got %q", p.Currency))
	}

	items := make([]CartItem, 0, len(p.Items))
	lines := make([]money.Money, 0, len(p.Items))
	for i, it := range p.Items {
		if it.UnitPrice.IsNegative() {
			errs = append(errs, contextError(fmt.Sprintf("cart.items[%d].unit_price", i), "must not be negative"))
		}
		if it.Quantity < 1 {
			errs = append(errs, contextError(fmt.Sprintf("cart.items[%d].quantity", i), "must be at least 1, got %d", it.Quantity))
		}
		it.MCC = strings.TrimSpace(it.MCC)
		items = append(items, it)
		lines = append(lines, money.New(it.UnitPrice, currency).Times(it.Quantity))
	}

	tier, err := valueobject.NewLoyaltyTier(string(p.Customer.LoyaltyTier))
	if err != nil {
		errs = append(errs, contextError("customer.loyalty_tier", "%v", err))
	}
	if p.Customer.Velocity24h < 0 {
		errs = append(errs, contextError("customer.historical_velocity_24h", "must not be negative"))
	}
	if p.Customer.Velocity7d < 0 {
		errs = append(errs, contextError("customer.historical_velocity_7d", "must not be negative"))
	}
	if p.Customer.Chargebacks12m < 0 {
		errs = append(errs, contextError("customer.chargebacks_12m", "must not be negative"))
	}
	if d := p.Device.DistanceToGeoKM; d != nil && *d < 0 {
		errs = append(errs, contextError("device.distance_to_geo_km", "must not be negative"))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	total, err := money.Sum(currency, lines...)
	if err != nil {
		return nil, contextError("cart", "%v", err)
	}

	merchant := p.Merchant
	merchant.MCC = strings.TrimSpace(merchant.MCC)
	merchant.NetworkPreferences = normalizeTokens(merchant.NetworkPreferences)
	merchant.Location = copyLocation(merchant.Location)

	customer := p.Customer
	customer.LoyaltyTier = tier
	customer.Preferences.RewardType = strings.ToLower(strings.TrimSpace(customer.Preferences.RewardType))
	customer.Preferences.PreferredIssuers = normalizeTokens(customer.Preferences.PreferredIssuers)
	customer.Preferences.AnnualFeeTolerance = strings.ToLower(strings.TrimSpace(customer.Preferences.AnnualFeeTolerance))
	if customer.Preferences.AnnualFeeTolerance == "" {
		customer.Preferences.AnnualFeeTolerance = "medium"
	}

	device := p.Device
	device.Location = copyLocation(device.Location)

	tc := &TransactionContext{
		transactionID: p.TransactionID,
		timestamp:     p.Timestamp.UTC(),
		currency:      currency,
		items:         items,
		cartTotal:     total,
		merchant:      merchant,
		customer:      customer,
		device:        device,
		geo:           p.Geo,
	}
	tc.locationMismatch = detectLocationMismatch(device.Location, p.Geo)
	tc.highVelocity = customer.Velocity24h > HighVelocityThreshold
	tc.crossBorder = merchant.Location != nil &&
		merchant.Location.Country != "" && p.Geo.Country != "" &&
		!strings.EqualFold(merchant.Location.Country, p.Geo.Country)

	return tc, nil
}

func detectLocationMismatch(device *Location, geo Geo) bool {
	if device == nil {
		return false
	}
	differs := func(a, b string) bool {
		a, b = strings.TrimSpace(a), strings.TrimSpace(b)
		return a != "" && b != "" && !strings.EqualFold(a, b)
	}
	return differs(device.City, geo.City) || differs(device.Country, geo.Country)
}

func normalizeTokens(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func copyLocation(l *Location) *Location {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}

// --- Accessors ---

func (c *TransactionContext) TransactionID() *uuid.UUID { return c.transactionID }
func (c *TransactionContext) Timestamp() time.Time      { return c.timestamp }
func (c *TransactionContext) Currency() money.Currency  { return c.currency }
func (c *TransactionContext) CartTotal() money.Money    { return c.cartTotal }
func (c *TransactionContext) Geo() Geo                  { return c.geo }
func (c *TransactionContext) LocationMismatch() bool    { return c.locationMismatch }
func (c *TransactionContext) HighVelocity() bool        { return c.highVelocity }
func (c *TransactionContext) CrossBorder() bool         { return c.crossBorder }

// Items returns a copy of the cart lines.
func (c *TransactionContext) Items() []CartItem {
	return slices.Clone(c.items)
}

// Merchant returns a copy of the merchant section.
func (c *TransactionContext) Merchant() Merchant {
	m := c.merchant
	m.NetworkPreferences = slices.Clone(c.merchant.NetworkPreferences)
	m.Location = copyLocation(c.merchant.Location)
	return m
}

// Customer returns a copy of the customer section.
func (c *TransactionContext) Customer() Customer {
	cu := c.customer
	cu.Preferences.PreferredIssuers = slices.Clone(c.customer.Preferences.PreferredIssuers)
	return cu
}

// Device returns a copy of the device section.
func (c *TransactionContext) Device() Device {
	d := c.device
	d.Location = copyLocation(c.device.Location)
	return d
}

// MCC returns the merchant category code, falling back to the first cart line
// that carries one.
func (c *TransactionContext) MCC() string {
	if c.merchant.MCC != "" {
		return c.merchant.MCC
	}
	for _, it := range c.items {
		if it.MCC != "" {
			return it.MCC
		}
	}
	return ""
}

// HasLocationData reports whether both the device location and the geo city and
// country are known.
func (c *TransactionContext) HasLocationData() bool {
	return c.device.Location != nil && c.geo.City != "" && c.geo.Country != ""
}
