package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/model"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/valueobject"
)

// Defaults applied to absent payload fields.
const (
	DefaultCurrency           = "USD"
	DefaultQuantity           = 1
	DefaultAnnualFeeTolerance = "medium"
)

// CheckoutContextPayload is the JSON shape of a checkout context. Every section
// and scalar is optional.
type CheckoutContextPayload struct {
	TransactionID *uuid.UUID       `json:"transaction_id,omitempty"`
	Timestamp     *time.Time       `json:"timestamp,omitempty"`
	Cart          *CartPayload     `json:"cart,omitempty"`
	Merchant      *MerchantPayload `json:"merchant,omitempty"`
	Customer      *CustomerPayload `json:"customer,omitempty"`
	Device        *DevicePayload   `json:"device,omitempty"`
	Geo           *GeoPayload      `json:"geo,omitempty"`
}

type CartPayload struct {
	Items    []CartItemPayload `json:"items"`
	Currency string            `json:"currency"`
}

type CartItemPayload struct {
	Item      string          `json:"item"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  *int            `json:"qty,omitempty"`
	MCC       string          `json:"mcc,omitempty"`
	Category  string          `json:"category,omitempty"`
}

type LocationPayload struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

type MerchantPayload struct {
	ID                 string           `json:"id,omitempty"`
	Name               string           `json:"name"`
	MCC                string           `json:"mcc"`
	NetworkPreferences []string         `json:"network_preferences,omitempty"`
	Location           *LocationPayload `json:"location,omitempty"`
}

type PreferencesPayload struct {
	RewardType          string   `json:"reward_type,omitempty"`
	PreferredIssuers    []string `json:"preferred_issuers,omitempty"`
	AnnualFeeTolerance  string   `json:"annual_fee_tolerance,omitempty"`
	ForeignFeeSensitive bool     `json:"foreign_fee_sensitive,omitempty"`
}

type CustomerPayload struct {
	ID             string              `json:"id"`
	LoyaltyTier    string              `json:"loyalty_tier,omitempty"`
	Velocity24h    int                 `json:"historical_velocity_24h,omitempty"`
	Velocity7d     int                 `json:"historical_velocity_7d,omitempty"`
	Chargebacks12m int                 `json:"chargebacks_12m,omitempty"`
	Preferences    *PreferencesPayload `json:"preferences,omitempty"`
}

type DevicePayload struct {
	IP              string           `json:"ip"`
	DeviceID        string           `json:"device_id,omitempty"`
	Location        *LocationPayload `json:"location,omitempty"`
	DistanceToGeoKM *float64         `json:"ip_distance_km,omitempty"`
}

type GeoPayload struct {
	City    string   `json:"city"`
	Region  string   `json:"region"`
	Country string   `json:"country"`
	Lat     *float64 `json:"lat,omitempty"`
	Lon     *float64 `json:"lon,omitempty"`
}

// ToContext applies defaults and builds the validated domain context. now is
// the receive time used when the payload has no timestamp.
func (p CheckoutContextPayload) ToContext(now time.Time) (*model.TransactionContext, error) {
	params := model.TransactionContextParams{
		TransactionID: p.TransactionID,
		Timestamp:     now,
		Currency:      DefaultCurrency,
		Customer: model.Customer{
			LoyaltyTier: valueobject.LoyaltyNone,
			Preferences: model.UserPreferences{AnnualFeeTolerance: DefaultAnnualFeeTolerance},
		},
	}
	if p.Timestamp != nil {
		params.Timestamp = *p.Timestamp
	}

	if c := p.Cart; c != nil {
		if c.Currency != "" {
			params.Currency = c.Currency
		}
		for _, it := range c.Items {
			qty := DefaultQuantity
			if it.Quantity != nil {
				qty = *it.Quantity
			}
			params.Items = append(params.Items, model.CartItem{
				Item: it.Item, UnitPrice: it.UnitPrice, Quantity: qty, MCC: it.MCC, Category: it.Category,
			})
		}
	}

	if m := p.Merchant; m != nil {
		params.Merchant = model.Merchant{
			ID:                 m.ID,
			Name:               m.Name,
			MCC:                m.MCC,
			NetworkPreferences: m.NetworkPreferences,
			Location:           m.Location.toModel(),
		}
	}

	if c := p.Customer; c != nil {
		params.Customer.ID = c.ID
		if c.LoyaltyTier != "" {
			params.Customer.LoyaltyTier = valueobject.LoyaltyTier(c.LoyaltyTier)
		}
		params.Customer.Velocity24h = c.Velocity24h
		params.Customer.Velocity7d = c.Velocity7d
		params.Customer.Chargebacks12m = c.Chargebacks12m
		if pr := c.Preferences; pr != nil {
			params.Customer.Preferences.RewardType = pr.RewardType
			params.Customer.Preferences.PreferredIssuers = pr.PreferredIssuers
			params.Customer.Preferences.ForeignFeeSensitive = pr.ForeignFeeSensitive
			if pr.AnnualFeeTolerance != "" {
				params.Customer.Preferences.AnnualFeeTolerance = pr.AnnualFeeTolerance
			}
		}
	}

	if d := p.Device; d != nil {
		params.Device = model.Device{
			IP:              d.IP,
			DeviceID:        d.DeviceID,
			Location:        d.Location.toModel(),
			DistanceToGeoKM: d.DistanceToGeoKM,
		}
	}

	if g := p.Geo; g != nil {
		params.Geo = model.Geo{City: g.City, Region: g.Region, Country: g.Country, Lat: g.Lat, Lon: g.Lon}
	}

	return model.NewTransactionContext(params)
}

func (l *LocationPayload) toModel() *model.Location {
	if l == nil {
		return nil
	}
	return &model.Location{City: l.City, Country: l.Country}
}
