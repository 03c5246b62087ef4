package service

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/model"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/valueobject"
)

// EngineVersion is reported in every decision's metadata.
const EngineVersion = "1.0.0"

// SurchargeScoreThreshold is the final score below which a surcharge is suggested.
const SurchargeScoreThreshold = 30

// Business rule ids.
const (
	RuleLocationMismatch  = "LOCATION_MISMATCH"
	RuleHighVelocity      = "HIGH_VELOCITY"
	RuleChargebackHistory = "CHARGEBACK_HISTORY"
	RuleHighTicket        = "HIGH_TICKET"
	RuleLoyaltyBoost      = "LOYALTY_BOOST"
	RuleNetworkRouting    = "NETWORK_ROUTING"
)

// BusinessRule is a condition that fired while deciding.
type BusinessRule struct {
	RuleID      string                 `json:"rule_id"`
	ActionType  valueobject.ActionType `json:"action_type"`
	Description string                 `json:"description"`
	Parameters  map[string]any         `json:"parameters"`
	ImpactScore *int                   `json:"impact_score,omitempty"`
}

// DecisionReason explains one contributing feature.
type DecisionReason struct {
	FeatureName string   `json:"feature_name"`
	Value       any      `json:"value"`
	Threshold   *float64 `json:"threshold,omitempty"`
	Weight      float64  `json:"weight"`
	Description string   `json:"description"`
}

// RoutingHint tells the payment layer where and how to route.
type RoutingHint struct {
	PreferredNetwork   string                         `json:"preferred_network"`
	PreferredAcquirer  *string                        `json:"preferred_acquirer,omitempty"`
	PenaltyOrIncentive valueobject.PenaltyOrIncentive `json:"penalty_or_incentive"`
	ApprovalOdds       *float64                       `json:"approval_odds,omitempty"`
	NetworkPreferences []string                       `json:"network_preferences"`
	MCCBasedHint       *string                        `json:"mcc_based_hint,omitempty"`
	Confidence         float64                        `json:"confidence"`
}

// DecisionContract is the complete, immutable decision output.
type DecisionContract struct {
	Decision      valueobject.Decision `json:"decision"`
	Actions       []BusinessRule       `json:"actions"`
	Reasons       []DecisionReason     `json:"reasons"`
	RoutingHint   RoutingHint          `json:"routing_hint"`
	TransactionID *uuid.UUID           `json:"transaction_id,omitempty"`
	Score         ScoreResult          `json:"score_result"`
	Confidence    float64              `json:"confidence"`
	Metadata      map[string]any       `json:"metadata"`
}

// DecisionEngine turns a ScoreResult into a DecisionContract. It holds no state.
type DecisionEngine struct{}

// NewDecisionEngine creates a new DecisionEngine.
func NewDecisionEngine() *DecisionEngine {
	return &DecisionEngine{}
}

// Decide builds the contract. The decision itself depends only on the final score.
func (e *DecisionEngine) Decide(tc *model.TransactionContext, score ScoreResult) DecisionContract {
	decision := valueobject.DecisionFromScore(score.FinalScore)
	rules, reasons := e.explain(tc, score, decision)

	return DecisionContract{
		Decision:      decision,
		Actions:       rules,
		Reasons:       reasons,
		RoutingHint:   e.routing(tc, score),
		TransactionID: tc.TransactionID(),
		Score:         score,
		Confidence:    e.confidence(tc, score.FinalScore),
		Metadata: map[string]any{
			"engine_version":    EngineVersion,
			"approve_threshold": valueobject.ApproveThreshold,
			"review_threshold":  valueobject.ReviewThreshold,
			"signal_count":      len(score.Signals),
		},
	}
}

func impact(v int) *int { return &v }

func threshold(v float64) *float64 { return &v }

func (e *DecisionEngine) explain(tc *model.TransactionContext, score ScoreResult, decision valueobject.Decision) ([]BusinessRule, []DecisionReason) {
	var rules []BusinessRule
	var reasons []DecisionReason
	customer := tc.Customer()

	if tc.LocationMismatch() {
		device, geo := tc.Device(), tc.Geo()
		params := map[string]any{"geo_city": geo.City, "geo_country": geo.Country}
		if device.Location != nil {
			params["device_city"] = device.Location.City
			params["device_country"] = device.Location.Country
		}
		rules = append(rules, BusinessRule{
			RuleID:      RuleLocationMismatch,
			ActionType:  valueobject.ActionFraudScreen,
			Description: "Device location does not match transaction geolocation",
			Parameters:  params,
			ImpactScore: impact(-LocationMismatchPenalty),
		})
		reasons = append(reasons, DecisionReason{
			FeatureName: "location_mismatch",
			Value:       true,
			Weight:      -float64(LocationMismatchPenalty) / 100,
			Description: "Device and geolocation disagree",
		})
	}

	if tc.HighVelocity() {
		rules = append(rules, BusinessRule{
			RuleID:      RuleHighVelocity,
			ActionType:  valueobject.ActionVelocityCheck,
			Description: fmt.Sprintf("More than %d transactions in the last 24 hours", model.HighVelocityThreshold),
			Parameters: map[string]any{
				"velocity_24h": customer.Velocity24h,
				"threshold":    model.HighVelocityThreshold,
			},
			ImpactScore: impact(-VelocityPenalty),
		})
		reasons = append(reasons, DecisionReason{
			FeatureName: "velocity_24h",
			Value:       customer.Velocity24h,
			Threshold:   threshold(model.HighVelocityThreshold),
			Weight:      -float64(VelocityPenalty) / 100,
			Description: "High 24h transaction velocity",
		})
	}

	if customer.Chargebacks12m > 0 {
		rules = append(rules, BusinessRule{
			RuleID:      RuleChargebackHistory,
			ActionType:  valueobject.ActionRiskReview,
			Description: "Customer has chargebacks in the last 12 months",
			Parameters:  map[string]any{"chargebacks_12m": customer.Chargebacks12m},
			ImpactScore: impact(-ChargebackPenalty),
		})
		reasons = append(reasons, DecisionReason{
			FeatureName: "chargebacks_12m",
			Value:       customer.Chargebacks12m,
			Threshold:   threshold(0),
			Weight:      -float64(ChargebackPenalty) / 100,
			Description: "Chargeback history present",
		})
	}

	total := tc.CartTotal()
	if total.AtLeast(HighTicketThreshold) {
		rules = append(rules, BusinessRule{
			RuleID:      RuleHighTicket,
			ActionType:  valueobject.ActionHighTicketReview,
			Description: "Cart total at or above the high-ticket threshold",
			Parameters: map[string]any{
				"cart_total": total.Amount().StringFixed(2),
				"currency":   total.Currency().Code(),
				"threshold":  HighTicketThreshold.StringFixed(2),
			},
			ImpactScore: impact(-HighTicketPenalty),
		})
		reasons = append(reasons, DecisionReason{
			FeatureName: "cart_total",
			Value:       total.Amount().StringFixed(2),
			Threshold:   threshold(HighTicketThreshold.InexactFloat64()),
			Weight:      -float64(HighTicketPenalty) / 100,
			Description: "High-ticket transaction",
		})
	}

	if score.LoyaltyBoost > 0 {
		rules = append(rules, BusinessRule{
			RuleID:      RuleLoyaltyBoost,
			ActionType:  valueobject.ActionLoyaltyBoost,
			Description: fmt.Sprintf("Loyalty tier %s boosts the score", customer.LoyaltyTier),
			Parameters: map[string]any{
				"loyalty_tier":  customer.LoyaltyTier.String(),
				"loyalty_boost": score.LoyaltyBoost,
			},
			ImpactScore: impact(score.LoyaltyBoost),
		})
		reasons = append(reasons, DecisionReason{
			FeatureName: "loyalty_tier",
			Value:       customer.LoyaltyTier.String(),
			Weight:      float64(score.LoyaltyBoost) / 100,
			Description: "Loyalty boost applied",
		})
	}

	if score.RoutingHint != valueobject.NetworkAny {
		rules = append(rules, BusinessRule{
			RuleID:      RuleNetworkRouting,
			ActionType:  valueobject.ActionNetworkRouting,
			Description: fmt.Sprintf("Route via %s", score.RoutingHint),
			Parameters: map[string]any{
				"preferred_network": score.RoutingHint,
				"mcc":               tc.MCC(),
			},
		})
	}

	decisive := float64(valueobject.ReviewThreshold)
	if decision.Equal(valueobject.DecisionApprove) {
		decisive = float64(valueobject.ApproveThreshold)
	}
	reasons = append(reasons, DecisionReason{
		FeatureName: "final_score",
		Value:       score.FinalScore,
		Threshold:   threshold(decisive),
		Weight:      1.0,
		Description: fmt.Sprintf("Final score %d yields %s", score.FinalScore, decision),
	})

	return rules, reasons
}

func (e *DecisionEngine) routing(tc *model.TransactionContext, score ScoreResult) RoutingHint {
	merchant := tc.Merchant()
	customer := tc.Customer()

	pi := valueobject.PenaltyNone
	switch {
	case score.FinalScore < SurchargeScoreThreshold || tc.CartTotal().AtLeast(HighTicketThreshold):
		pi = valueobject.PenaltySurcharge
	case customer.LoyaltyTier.IsPremium():
		pi = valueobject.PenaltySuppression
	}

	odds := ApprovalOdds(score.FinalScore)
	hint := RoutingHint{
		PreferredNetwork:   score.RoutingHint,
		PenaltyOrIncentive: pi,
		ApprovalOdds:       &odds,
		NetworkPreferences: merchant.NetworkPreferences,
	}
	if hint.NetworkPreferences == nil {
		hint.NetworkPreferences = []string{}
	}

	confidence := 0.8
	if len(merchant.NetworkPreferences) > 0 {
		confidence += 0.15
	}
	if n, ok := NetworkForMCC(tc.MCC()); ok {
		hint.MCCBasedHint = &n
		if n == score.RoutingHint {
			confidence += 0.1
		}
	}
	if score.FinalScore < 20 || score.FinalScore > 100 {
		confidence -= 0.1
	}
	hint.Confidence = clamp(confidence, 0, 1)
	return hint
}

// confidence rewards decisive scores and penalises near-threshold scores and
// missing location data.
func (e *DecisionEngine) confidence(tc *model.TransactionContext, final int) float64 {
	c := 0.75
	if final >= 100 || final <= 20 {
		c += 0.15
	}
	if nearThreshold(final, valueobject.ApproveThreshold) || nearThreshold(final, valueobject.ReviewThreshold) {
		c -= 0.15
	}
	if !tc.HasLocationData() {
		c -= 0.1
	}
	return clamp(c, 0, 1)
}

func nearThreshold(score, threshold int) bool {
	return int(math.Abs(float64(score-threshold))) <= 5
}

// oddsSegments are the knots of the piecewise-linear approval odds curve.
var oddsSegments = []struct{ score, odds float64 }{
	{0, 0}, {20, 0.10}, {40, 0.30}, {70, 0.70}, {100, 0.95}, {120, 1.0},
}

// ApprovalOdds maps a final score in [0, 120] to [0, 1] by linear
// interpolation between fixed knots.
func ApprovalOdds(finalScore int) float64 {
	s := clamp(float64(finalScore), 0, MaxScore)
	for i := 1; i < len(oddsSegments); i++ {
		lo, hi := oddsSegments[i-1], oddsSegments[i]
		if s <= hi.score {
			return lo.odds + (s-lo.score)*(hi.odds-lo.odds)/(hi.score-lo.score)
		}
	}
	return 1.0
}
