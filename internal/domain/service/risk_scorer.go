package service

import (
	"github.com/shopspring/decimal"

	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/model"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/valueobject"
)

// Scoring constants. Scores start at BaseScore and move down with risk and up
// with loyalty; the final score is bounded to [0, MaxScore].
const (
	BaseScore = 100
	MaxScore  = 120

	LocationMismatchPenalty = 30
	VelocityPenalty         = 20
	ChargebackPenalty       = 25
	HighTicketPenalty       = 10
)

// HighTicketThreshold is the cart total at or above which a transaction is high
// ticket. It is a plain amount compared in the cart's own currency, not converted.
var HighTicketThreshold = decimal.NewFromInt(500)

var loyaltyBoosts = map[valueobject.LoyaltyTier]int{
	valueobject.LoyaltyNone:     0,
	valueobject.LoyaltySilver:   5,
	valueobject.LoyaltyGold:     10,
	valueobject.LoyaltyPlatinum: 15,
}

// mccNetworks maps merchant category codes to the network that routes them best.
var mccNetworks = map[string]string{
	"4511": valueobject.NetworkAmex,
	"4722": valueobject.NetworkAmex,
	"5411": valueobject.NetworkVisa,
	"5541": valueobject.NetworkVisa,
	"5812": valueobject.NetworkMastercard,
	"5814": valueobject.NetworkMastercard,
	"5999": valueobject.NetworkVisa,
	"7011": valueobject.NetworkAmex,
}

// LoyaltyBoost returns the fixed score boost for a tier.
func LoyaltyBoost(tier valueobject.LoyaltyTier) int {
	return loyaltyBoosts[tier]
}

// NetworkForMCC returns the MCC routing table entry, if any.
func NetworkForMCC(mcc string) (string, bool) {
	n, ok := mccNetworks[mcc]
	return n, ok
}

// ScoreResult is the output of RiskScorer. Signals are kept for audit only.
type ScoreResult struct {
	RiskScore    int            `json:"risk_score"`
	LoyaltyBoost int            `json:"loyalty_boost"`
	FinalScore   int            `json:"final_score"`
	RoutingHint  string         `json:"routing_hint"`
	Signals      map[string]any `json:"signals"`
}

// RiskScorer is a deterministic additive scorer over a TransactionContext.
type RiskScorer struct{}

// NewRiskScorer creates a new RiskScorer instance.
func NewRiskScorer() *RiskScorer {
	return &RiskScorer{}
}

// Score evaluates the context. Each rule adds a fixed penalty; the loyalty tier
// adds a fixed boost.
func (s *RiskScorer) Score(tc *model.TransactionContext) ScoreResult {
	risk := 0
	signals := make(map[string]any)

	// Rule: device location disagrees with geolocation.
	signals["location_mismatch"] = tc.LocationMismatch()
	if tc.LocationMismatch() {
		risk += LocationMismatchPenalty
	}

	// Rule: too many transactions in the last 24h.
	customer := tc.Customer()
	signals["velocity_24h"] = customer.Velocity24h
	signals["velocity_flag"] = tc.HighVelocity()
	if tc.HighVelocity() {
		risk += VelocityPenalty
	}

	// Rule: any chargeback in the last 12 months.
	signals["chargebacks_12m"] = customer.Chargebacks12m
	signals["chargebacks_present"] = customer.Chargebacks12m > 0
	if customer.Chargebacks12m > 0 {
		risk += ChargebackPenalty
	}

	// Rule: high-ticket cart.
	total := tc.CartTotal()
	highTicket := total.AtLeast(HighTicketThreshold)
	signals["cart_total"] = total.Amount().StringFixed(2)
	signals["high_ticket"] = highTicket
	if highTicket {
		risk += HighTicketPenalty
	}

	boost := LoyaltyBoost(customer.LoyaltyTier)
	signals["loyalty_tier"] = customer.LoyaltyTier.String()
	signals["loyalty_boost"] = boost

	final := max(0, BaseScore-risk) + boost
	final = min(max(final, 0), MaxScore)

	hint, source := routingHint(tc.Merchant(), tc.MCC())
	signals["routing_source"] = source

	return ScoreResult{
		RiskScore:    risk,
		LoyaltyBoost: boost,
		FinalScore:   final,
		RoutingHint:  hint,
		Signals:      signals,
	}
}

// routingHint resolves merchant preference first, then the MCC table, then "any".
func routingHint(m model.Merchant, mcc string) (hint, source string) {
	if len(m.NetworkPreferences) > 0 {
		switch first := m.NetworkPreferences[0]; first {
		case valueobject.NetworkVisa, valueobject.NetworkMastercard:
			return first, "merchant_preference"
		}
	}
	if n, ok := NetworkForMCC(mcc); ok {
		return n, "mcc"
	}
	return valueobject.NetworkAny, "default"
}
