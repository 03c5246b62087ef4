package service_test

import (
	"bytes"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/service"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/infrastructure/config"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/pkg/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newCalibrator(t *testing.T) *service.ApprovalCalibrator {
	t.Helper()
	return service.NewApprovalCalibrator(config.DefaultApprovalConfig(), discardLogger())
}

func TestApprovalCalibrator_EmptyFeatures(t *testing.T) {
	calibrator := newCalibrator(t)

	first := calibrator.Calibrate(service.ApprovalFeatures{})
	second := calibrator.Calibrate(service.ApprovalFeatures{})

	// base 2.0 + amount 0.2 + velocity_24h 0.1 + velocity_7d 0.05
	assert.InDelta(t, 2.35, first.RawScore, 1e-12)
	assert.InDelta(t, 1/(1+math.Exp(-1.85)), first.PApproval, 1e-12)
	assert.Equal(t, first, second)
	testutil.AssertBetween(t, first.PApproval, 0.01, 0.99)
	assert.Equal(t, "logistic", first.Calibration.Method)
	assert.Equal(t, 1.0, first.Calibration.Params["scale"])
	assert.Equal(t, -0.5, first.Calibration.Params["bias"])
}

func TestApprovalCalibrator_AdditiveAttributions(t *testing.T) {
	calibrator := newCalibrator(t)

	result := calibrator.Calibrate(service.ApprovalFeatures{
		MCC:                      "7995",
		Amount:                   1200,
		IssuerFamily:             "amex",
		CrossBorder:              true,
		LocationMismatchDistance: 800,
		Velocity24h:              14,
		Velocity7d:               40,
		Chargebacks12m:           2,
		MerchantRiskTier:         "high",
		LoyaltyTier:              "GOLD",
	})

	add := result.AdditiveAttributions
	assert.Equal(t, 2.0, add.Baseline)
	assert.InDelta(t, result.RawScore, add.Sum, 1e-10)

	sum := add.Baseline
	for _, c := range add.Contributions {
		assert.Greater(t, math.Abs(c.Value), 1e-10, "zero contributions are dropped")
		sum += c.Value
		typed, ok := result.Attributions.Get(c.Feature)
		require.True(t, ok, c.Feature)
		assert.Equal(t, typed, c.Value)
	}
	assert.InDelta(t, result.RawScore, sum, 1e-10)

	assert.Equal(t, -1.2, result.Attributions.MCC)
	assert.Equal(t, -0.5, result.Attributions.Amount)
	assert.Equal(t, -0.4, result.Attributions.CrossBorder)
	assert.Equal(t, -1.1, result.Attributions.Chargebacks12m)
	assert.Equal(t, 0.2, result.Attributions.LoyaltyTier)
}

func TestRulesLayer_ScoreStandsAlone(t *testing.T) {
	rules := newCalibrator(t).Rules()
	features := service.ApprovalFeatures{MCC: "5411", Amount: 42, Chargebacks12m: 1}

	out := rules.Score(features)

	// base 2.0 + mcc 0.3 + amount 0.1 + velocity_24h 0.1 + velocity_7d 0.05 + chargebacks -0.6
	assert.InDelta(t, 1.95, out.RawScore, 1e-12)
	assert.InDelta(t, out.RawScore, out.Additive.Sum, 1e-12)
	assert.Equal(t, "5411", out.Keys[service.FeatureMCC])
	assert.Equal(t, "25-100", out.Keys[service.FeatureAmount])
	assert.Equal(t, "1", out.Keys[service.FeatureChargebacks12m])
	assert.Equal(t, "false", out.Keys[service.FeatureCrossBorder])
	assert.Equal(t, "unknown", out.Keys[service.FeatureIssuerFamily])
	assert.Len(t, out.Keys, 10)
}

func TestCalibrationLayer_ProbabilityStandsAlone(t *testing.T) {
	calibration := newCalibrator(t).Calibration()

	assert.InDelta(t, 0.5, calibration.Probability(0.5), 1e-12, "bias -0.5 centres the curve at 0.5")
	assert.Equal(t, 0.99, calibration.Probability(100))
	assert.Equal(t, 0.01, calibration.Probability(-100))
	assert.Equal(t, "logistic", calibration.Info().Method)
}

func TestApprovalCalibrator_ComposesStages(t *testing.T) {
	calibrator := newCalibrator(t)
	features := service.ApprovalFeatures{MCC: "7995", Amount: 1200, CrossBorder: true, Velocity24h: 12}

	raw := calibrator.Rules().Score(features)
	result := calibrator.Calibrate(features)

	assert.Equal(t, raw.RawScore, result.RawScore)
	assert.Equal(t, calibrator.Calibration().Probability(raw.RawScore), result.PApproval)
	assert.Equal(t, raw.Keys, result.MatchedKeys)
	assert.Equal(t, "1000-5000", result.MatchedKeys[service.FeatureAmount])
}

func TestApprovalCalibrator_NoWarningWhenConsistent(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	calibrator := service.NewApprovalCalibrator(config.DefaultApprovalConfig(), logger)

	calibrator.Calibrate(service.ApprovalFeatures{Amount: 75, Velocity24h: 4})

	assert.Empty(t, buf.String())
}

func TestApprovalCalibrator_ChargebacksNeverRaiseApproval(t *testing.T) {
	calibrator := newCalibrator(t)
	base := service.ApprovalFeatures{MCC: "5812", Amount: 80, IssuerFamily: "visa", Velocity24h: 2}

	prev := math.Inf(1)
	for cb := 0; cb <= 10; cb++ {
		f := base
		f.Chargebacks12m = cb
		p := calibrator.Calibrate(f).PApproval
		assert.LessOrEqual(t, p, prev, "chargebacks=%d", cb)
		prev = p
	}
}

func TestApprovalCalibrator_ClampsOutput(t *testing.T) {
	cfg := config.DefaultApprovalConfig()
	cfg.Rules.BaseScore = 50
	high := service.NewApprovalCalibrator(cfg, discardLogger()).Calibrate(service.ApprovalFeatures{})
	assert.Equal(t, 0.99, high.PApproval)

	cfg.Rules.BaseScore = -50
	low := service.NewApprovalCalibrator(cfg, discardLogger()).Calibrate(service.ApprovalFeatures{})
	assert.Equal(t, 0.01, low.PApproval)
}

func TestApprovalCalibrator_IsotonicMatchesLogistic(t *testing.T) {
	cfg := config.DefaultApprovalConfig()
	features := service.ApprovalFeatures{MCC: "5411", Amount: 42, Chargebacks12m: 1}

	logistic := service.NewApprovalCalibrator(cfg, discardLogger()).Calibrate(features)
	cfg.Calibration.Method = service.MethodIsotonic
	isotonic := service.NewApprovalCalibrator(cfg, discardLogger()).Calibrate(features)

	assert.Equal(t, "isotonic", isotonic.Calibration.Method)
	assert.Equal(t, logistic.PApproval, isotonic.PApproval)
}

func TestApprovalCalibrator_UnknownMethodFallsBackToLogistic(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.DefaultApprovalConfig()
	cfg.Calibration.Method = "neural"

	calibrator := service.NewApprovalCalibrator(cfg, slog.New(slog.NewTextHandler(&buf, nil)))
	result := calibrator.Calibrate(service.ApprovalFeatures{})

	assert.Equal(t, "logistic", result.Calibration.Method)
	assert.Contains(t, buf.String(), "falling back to logistic calibration")
}

func TestNewCalibrator(t *testing.T) {
	c, err := service.NewCalibrator(service.CalibrationConfig{Method: "logistic"}, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.5, c.Probability(0), "missing scale defaults to 1 and bias to 0")

	_, err = service.NewCalibrator(service.CalibrationConfig{Method: "platt"}, 0)
	assert.Error(t, err)
}

func TestApprovalFeaturesFromContext(t *testing.T) {
	amex := testutil.SampleCards()[1]

	t.Run("clean context", func(t *testing.T) {
		f := service.ApprovalFeaturesFromContext(testutil.NewContext(t), &amex)

		assert.Equal(t, "5411", f.MCC)
		assert.Equal(t, 50.0, f.Amount)
		assert.Equal(t, "amex", f.IssuerFamily)
		assert.Equal(t, 0.0, f.LocationMismatchDistance)
		assert.Equal(t, "low", f.MerchantRiskTier)
		assert.Equal(t, "NONE", f.LoyaltyTier)
	})

	t.Run("mismatch without distance", func(t *testing.T) {
		f := service.ApprovalFeaturesFromContext(testutil.NewContext(t, testutil.WithLocationMismatch()), nil)

		assert.Equal(t, service.UnknownMismatchDistanceKM, f.LocationMismatchDistance)
		assert.Equal(t, "unknown", f.IssuerFamily)
	})

	t.Run("merchant risk tiers", func(t *testing.T) {
		assert.Equal(t, "high", service.MerchantRiskTier("7995"))
		assert.Equal(t, "medium", service.MerchantRiskTier("5812"))
		assert.Equal(t, "unknown", service.MerchantRiskTier(""))
	})
}
