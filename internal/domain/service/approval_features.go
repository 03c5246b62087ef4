package service

import (
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/model"
)

// Feature names, in the order the rules layer evaluates them.
const (
	FeatureMCC              = "mcc"
	FeatureAmount           = "amount"
	FeatureIssuerFamily     = "issuer_family"
	FeatureCrossBorder      = "cross_border"
	FeatureLocationMismatch = "location_mismatch"
	FeatureVelocity24h      = "velocity_24h"
	FeatureVelocity7d       = "velocity_7d"
	FeatureChargebacks12m   = "chargebacks_12m"
	FeatureMerchantRiskTier = "merchant_risk_tier"
	FeatureLoyaltyTier      = "loyalty_tier"
)

// UnknownMismatchDistanceKM stands in for the distance when a location
// mismatch is flagged but the device reported no distance.
const UnknownMismatchDistanceKM = 500.0

// ApprovalFeatures is the flat input of the rules layer. The zero value is a
// valid "empty context": every field falls back to its table default.
type ApprovalFeatures struct {
	MCC                      string  `json:"mcc"`
	Amount                   float64 `json:"amount"`
	IssuerFamily             string  `json:"issuer_family"`
	CrossBorder              bool    `json:"cross_border"`
	LocationMismatchDistance float64 `json:"location_mismatch_distance"`
	Velocity24h              int     `json:"velocity_24h"`
	Velocity7d               int     `json:"velocity_7d"`
	Chargebacks12m           int     `json:"chargebacks_12m"`
	MerchantRiskTier         string  `json:"merchant_risk_tier"`
	LoyaltyTier              string  `json:"loyalty_tier"`
}

var merchantRiskTiers = map[string]string{
	"4829": "high", // money transfer
	"5967": "high", // direct marketing, inbound teleservices
	"6051": "high", // quasi-cash
	"7995": "high", // gambling
	"5411": "low",
	"5541": "low",
	"5912": "low",
}

// MerchantRiskTier classifies an MCC as low/medium/high risk. Empty MCCs are unknown.
func MerchantRiskTier(mcc string) string {
	if mcc == "" {
		return KeyUnknown
	}
	if tier, ok := merchantRiskTiers[mcc]; ok {
		return tier
	}
	return "medium"
}

// ApprovalFeaturesFromContext derives the rules-layer features for one
// candidate card. card may be nil, in which case the issuer family is unknown.
func ApprovalFeaturesFromContext(tc *model.TransactionContext, card *model.Card) ApprovalFeatures {
	customer := tc.Customer()
	device := tc.Device()

	distance := 0.0
	switch {
	case device.DistanceToGeoKM != nil:
		distance = *device.DistanceToGeoKM
	case tc.LocationMismatch():
		distance = UnknownMismatchDistanceKM
	}

	issuer := KeyUnknown
	if card != nil {
		if n := card.NetworkName(); n != "" {
			issuer = n
		}
	}

	mcc := tc.MCC()
	return ApprovalFeatures{
		MCC:                      mcc,
		Amount:                   tc.CartTotal().Float64(),
		IssuerFamily:             issuer,
		CrossBorder:              tc.CrossBorder(),
		LocationMismatchDistance: distance,
		Velocity24h:              customer.Velocity24h,
		Velocity7d:               customer.Velocity7d,
		Chargebacks12m:           customer.Chargebacks12m,
		MerchantRiskTier:         MerchantRiskTier(mcc),
		LoyaltyTier:              customer.LoyaltyTier.String(),
	}
}
