package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/service"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/valueobject"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/pkg/testutil"
)

func ruleIDs(rules []service.BusinessRule) []string {
	ids := make([]string, len(rules))
	for i, r := range rules {
		ids[i] = r.RuleID
	}
	return ids
}

func reasonFeatures(reasons []service.DecisionReason) []string {
	names := make([]string, len(reasons))
	for i, r := range reasons {
		names[i] = r.FeatureName
	}
	return names
}

func TestDecisionEngine_GoldCustomerApproved(t *testing.T) {
	tc := testutil.NewContext(t,
		testutil.WithLoyalty(valueobject.LoyaltyGold),
		testutil.WithVelocity(2, 5),
		testutil.WithCartTotal("50.00"),
	)
	score := service.NewRiskScorer().Score(tc)

	contract := service.NewDecisionEngine().Decide(tc, score)

	assert.Equal(t, valueobject.DecisionApprove, contract.Decision)
	assert.Equal(t, 110, contract.Score.FinalScore)
	assert.Equal(t, []string{service.RuleLoyaltyBoost, service.RuleNetworkRouting}, ruleIDs(contract.Actions))
	require.NotNil(t, contract.Actions[0].ImpactScore)
	assert.Equal(t, 10, *contract.Actions[0].ImpactScore)
	assert.Nil(t, contract.Actions[1].ImpactScore)

	assert.Equal(t, []string{"loyalty_tier", "final_score"}, reasonFeatures(contract.Reasons))
	final := contract.Reasons[len(contract.Reasons)-1]
	require.NotNil(t, final.Threshold)
	assert.Equal(t, 70.0, *final.Threshold)

	hint := contract.RoutingHint
	assert.Equal(t, "visa", hint.PreferredNetwork)
	assert.Equal(t, valueobject.PenaltySuppression, hint.PenaltyOrIncentive)
	require.NotNil(t, hint.ApprovalOdds)
	assert.InDelta(t, 0.975, *hint.ApprovalOdds, 1e-12)
	require.NotNil(t, hint.MCCBasedHint)
	assert.Equal(t, "visa", *hint.MCCBasedHint)
	// 0.8 + 0.1 mcc match - 0.1 extreme score
	assert.InDelta(t, 0.8, hint.Confidence, 1e-9)
	assert.Empty(t, hint.NetworkPreferences)

	assert.InDelta(t, 0.9, contract.Confidence, 1e-9)
	assert.Equal(t, &testutil.TestTransactionID, contract.TransactionID)
}

func TestDecisionEngine_HighRiskDeclined(t *testing.T) {
	tc := testutil.NewContext(t,
		testutil.WithChargebacks(1),
		testutil.WithCartTotal("600.00"),
		testutil.WithLocationMismatch(),
		testutil.WithVelocity(15, 20),
	)
	score := service.NewRiskScorer().Score(tc)

	contract := service.NewDecisionEngine().Decide(tc, score)

	assert.Equal(t, valueobject.DecisionDecline, contract.Decision)
	assert.Equal(t, 85, contract.Score.RiskScore)
	assert.Equal(t, 15, contract.Score.FinalScore)
	assert.Equal(t, []string{
		service.RuleLocationMismatch,
		service.RuleHighVelocity,
		service.RuleChargebackHistory,
		service.RuleHighTicket,
		service.RuleNetworkRouting,
	}, ruleIDs(contract.Actions))
	assert.Equal(t, valueobject.ActionFraudScreen, contract.Actions[0].ActionType)
	assert.Equal(t, -30, *contract.Actions[0].ImpactScore)
	assert.Equal(t, "Lagos", contract.Actions[0].Parameters["device_city"])
	assert.Equal(t, "600.00", contract.Actions[3].Parameters["cart_total"])

	assert.Equal(t, []string{"location_mismatch", "velocity_24h", "chargebacks_12m", "cart_total", "final_score"},
		reasonFeatures(contract.Reasons))
	assert.Equal(t, 40.0, *contract.Reasons[4].Threshold)
	assert.InDelta(t, -0.25, contract.Reasons[2].Weight, 1e-12)

	assert.Equal(t, valueobject.PenaltySurcharge, contract.RoutingHint.PenaltyOrIncentive)
	assert.InDelta(t, 0.075, *contract.RoutingHint.ApprovalOdds, 1e-12)
	assert.InDelta(t, 0.9, contract.Confidence, 1e-9)
}

func TestDecisionEngine_DecisionIsPureFunctionOfScore(t *testing.T) {
	engine := service.NewDecisionEngine()
	tc := testutil.NewContext(t)

	for final := 0; final <= service.MaxScore; final++ {
		contract := engine.Decide(tc, service.ScoreResult{FinalScore: final, RoutingHint: "any"})
		assert.Equal(t, valueobject.DecisionFromScore(final), contract.Decision, "final=%d", final)
		testutil.AssertBetween(t, contract.Confidence, 0, 1)
		testutil.AssertBetween(t, contract.RoutingHint.Confidence, 0, 1)
	}
}

func TestDecisionEngine_NearThresholdConfidence(t *testing.T) {
	engine := service.NewDecisionEngine()
	tc := testutil.NewContext(t)

	approve := engine.Decide(tc, service.ScoreResult{FinalScore: 72, RoutingHint: "any"})
	assert.Equal(t, valueobject.DecisionApprove, approve.Decision)
	assert.InDelta(t, 0.6, approve.Confidence, 1e-9)
	assert.Empty(t, approve.Actions, "no rule fires on a clean context routed to any")

	review := engine.Decide(tc, service.ScoreResult{FinalScore: 45, RoutingHint: "any"})
	assert.Equal(t, valueobject.DecisionReview, review.Decision)
	assert.InDelta(t, 0.6, review.Confidence, 1e-9)
	assert.Equal(t, 40.0, *review.Reasons[0].Threshold)

	middle := engine.Decide(tc, service.ScoreResult{FinalScore: 55, RoutingHint: "any"})
	assert.InDelta(t, 0.75, middle.Confidence, 1e-9)
}

func TestDecisionEngine_MissingLocationLowersConfidence(t *testing.T) {
	tc := testutil.NewContext(t, testutil.WithoutLocation())

	contract := service.NewDecisionEngine().Decide(tc, service.ScoreResult{FinalScore: 80, RoutingHint: "any"})

	assert.InDelta(t, 0.65, contract.Confidence, 1e-9)
}

func TestDecisionEngine_SurchargeOnLowScore(t *testing.T) {
	tc := testutil.NewContext(t, testutil.WithLoyalty(valueobject.LoyaltyPlatinum))

	low := service.NewDecisionEngine().Decide(tc, service.ScoreResult{FinalScore: 25, RoutingHint: "any"})
	assert.Equal(t, valueobject.PenaltySurcharge, low.RoutingHint.PenaltyOrIncentive, "surcharge outranks suppression")

	plain := testutil.NewContext(t)
	none := service.NewDecisionEngine().Decide(plain, service.ScoreResult{FinalScore: 80, RoutingHint: "any"})
	assert.Equal(t, valueobject.PenaltyNone, none.RoutingHint.PenaltyOrIncentive)
}

func TestDecisionEngine_RoutingConfidenceWithMerchantPreference(t *testing.T) {
	tc := testutil.NewContext(t, testutil.WithMerchant("Corner Grocer", "5411", "visa", "mastercard"))
	score := service.NewRiskScorer().Score(tc)

	contract := service.NewDecisionEngine().Decide(tc, score)

	assert.Equal(t, "visa", contract.RoutingHint.PreferredNetwork)
	assert.Equal(t, []string{"visa", "mastercard"}, contract.RoutingHint.NetworkPreferences)
	assert.Equal(t, 1.0, contract.RoutingHint.Confidence)
}

func TestDecisionEngine_Metadata(t *testing.T) {
	tc := testutil.NewContext(t)
	score := service.NewRiskScorer().Score(tc)

	contract := service.NewDecisionEngine().Decide(tc, score)

	assert.Equal(t, service.EngineVersion, contract.Metadata["engine_version"])
	assert.Equal(t, 70, contract.Metadata["approve_threshold"])
	assert.Equal(t, 40, contract.Metadata["review_threshold"])
	assert.Equal(t, len(score.Signals), contract.Metadata["signal_count"])
}

func TestDecisionEngine_Idempotent(t *testing.T) {
	engine := service.NewDecisionEngine()
	tc := testutil.NewContext(t, testutil.WithChargebacks(3))
	score := service.NewRiskScorer().Score(tc)

	assert.Equal(t, engine.Decide(tc, score), engine.Decide(tc, score))
}

func TestApprovalOdds(t *testing.T) {
	tests := []struct {
		score int
		want  float64
	}{
		{0, 0}, {10, 0.05}, {20, 0.10}, {30, 0.20}, {40, 0.30}, {55, 0.50},
		{70, 0.70}, {82, 0.80}, {100, 0.95}, {110, 0.975}, {120, 1.0}, {150, 1.0}, {-5, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, service.ApprovalOdds(tt.score), 1e-12, "score %d", tt.score)
	}

	prev := -1.0
	for s := 0; s <= service.MaxScore; s++ {
		odds := service.ApprovalOdds(s)
		assert.GreaterOrEqual(t, odds, prev)
		prev = odds
	}
}
