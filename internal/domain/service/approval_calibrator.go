package service

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
)

// AttributionEpsilon is the tolerance for dropping zero contributions and for
// the additive self-check.
const AttributionEpsilon = 1e-10

// ApprovalRules holds the rules-layer weight tables.
type ApprovalRules struct {
	BaseScore        float64
	MCC              CategoryTable
	Amount           RangeTable
	IssuerFamily     CategoryTable
	CrossBorder      CategoryTable
	LocationMismatch RangeTable
	Velocity24h      RangeTable
	Velocity7d       RangeTable
	Chargebacks12m   RangeTable
	MerchantRiskTier CategoryTable
	LoyaltyTier      CategoryTable
}

// CalibrationConfig selects and parameterises the calibration strategy.
type CalibrationConfig struct {
	Method string
	Params map[string]float64
}

// ApprovalConfig is the full, parsed approval.yaml.
type ApprovalConfig struct {
	Version        string
	Rules          ApprovalRules
	Calibration    CalibrationConfig
	MinProbability float64
	MaxProbability float64
	RandomSeed     int64
}

// FeatureContribution is one non-zero additive term.
type FeatureContribution struct {
	Feature string  `json:"feature"`
	Value   float64 `json:"value"`
}

// AdditiveAttributions decomposes the raw score: Sum == Baseline + Σ Values.
type AdditiveAttributions struct {
	Baseline      float64               `json:"baseline"`
	Contributions []FeatureContribution `json:"attributions"`
	Sum           float64               `json:"sum"`
}

// FeatureAttributions carries one weight per named rules-layer feature.
type FeatureAttributions struct {
	MCC              float64 `json:"mcc"`
	Amount           float64 `json:"amount"`
	IssuerFamily     float64 `json:"issuer_family"`
	CrossBorder      float64 `json:"cross_border"`
	LocationMismatch float64 `json:"location_mismatch"`
	Velocity24h      float64 `json:"velocity_24h"`
	Velocity7d       float64 `json:"velocity_7d"`
	Chargebacks12m   float64 `json:"chargebacks_12m"`
	MerchantRiskTier float64 `json:"merchant_risk_tier"`
	LoyaltyTier      float64 `json:"loyalty_tier"`
}

// Get returns the attribution for a feature name.
func (f FeatureAttributions) Get(feature string) (float64, bool) {
	switch feature {
	case FeatureMCC:
		return f.MCC, true
	case FeatureAmount:
		return f.Amount, true
	case FeatureIssuerFamily:
		return f.IssuerFamily, true
	case FeatureCrossBorder:
		return f.CrossBorder, true
	case FeatureLocationMismatch:
		return f.LocationMismatch, true
	case FeatureVelocity24h:
		return f.Velocity24h, true
	case FeatureVelocity7d:
		return f.Velocity7d, true
	case FeatureChargebacks12m:
		return f.Chargebacks12m, true
	case FeatureMerchantRiskTier:
		return f.MerchantRiskTier, true
	case FeatureLoyaltyTier:
		return f.LoyaltyTier, true
	default:
		return 0, false
	}
}

// RulesOutput is the rules-layer result.
type RulesOutput struct {
	RawScore     float64
	Attributions FeatureAttributions
	Additive     AdditiveAttributions
	// Keys records which table entry each feature resolved to.
	Keys map[string]string
}

// RulesLayer turns features into an unbounded log-odds score.
type RulesLayer struct {
	rules  ApprovalRules
	logger *slog.Logger
}

// NewRulesLayer creates the rules layer.
func NewRulesLayer(rules ApprovalRules, logger *slog.Logger) *RulesLayer {
	return &RulesLayer{rules: rules, logger: logger}
}

// Score looks up every feature, sums the weights with the base score and
// emits attributions. A mismatch between the additive sum and the raw score
// is logged, never returned.
func (l *RulesLayer) Score(f ApprovalFeatures) RulesOutput {
	r := l.rules
	tier := f.LoyaltyTier
	if tier == "" {
		tier = "NONE"
	}

	type term struct {
		feature string
		weight  float64
		key     string
	}
	lookupCat := func(name string, t CategoryTable, k string) term {
		w, key := t.Lookup(k)
		return term{name, w, key}
	}
	lookupRange := func(name string, t RangeTable, v float64) term {
		w, key := t.Lookup(v)
		return term{name, w, key}
	}

	terms := []term{
		lookupCat(FeatureMCC, r.MCC, f.MCC),
		lookupRange(FeatureAmount, r.Amount, f.Amount),
		lookupCat(FeatureIssuerFamily, r.IssuerFamily, f.IssuerFamily),
		lookupCat(FeatureCrossBorder, r.CrossBorder, strconv.FormatBool(f.CrossBorder)),
		lookupRange(FeatureLocationMismatch, r.LocationMismatch, f.LocationMismatchDistance),
		lookupRange(FeatureVelocity24h, r.Velocity24h, float64(f.Velocity24h)),
		lookupRange(FeatureVelocity7d, r.Velocity7d, float64(f.Velocity7d)),
		lookupRange(FeatureChargebacks12m, r.Chargebacks12m, float64(f.Chargebacks12m)),
		lookupCat(FeatureMerchantRiskTier, r.MerchantRiskTier, f.MerchantRiskTier),
		lookupCat(FeatureLoyaltyTier, r.LoyaltyTier, tier),
	}

	out := RulesOutput{
		RawScore: r.BaseScore,
		Keys:     make(map[string]string, len(terms)),
		Additive: AdditiveAttributions{
			Baseline:      r.BaseScore,
			Contributions: make([]FeatureContribution, 0, len(terms)),
		},
	}
	attr := &out.Attributions
	for _, t := range terms {
		out.RawScore += t.weight
		out.Keys[t.feature] = t.key
		if math.Abs(t.weight) > AttributionEpsilon {
			out.Additive.Contributions = append(out.Additive.Contributions, FeatureContribution{Feature: t.feature, Value: t.weight})
		}
		switch t.feature {
		case FeatureMCC:
			attr.MCC = t.weight
		case FeatureAmount:
			attr.Amount = t.weight
		case FeatureIssuerFamily:
			attr.IssuerFamily = t.weight
		case FeatureCrossBorder:
			attr.CrossBorder = t.weight
		case FeatureLocationMismatch:
			attr.LocationMismatch = t.weight
		case FeatureVelocity24h:
			attr.Velocity24h = t.weight
		case FeatureVelocity7d:
			attr.Velocity7d = t.weight
		case FeatureChargebacks12m:
			attr.Chargebacks12m = t.weight
		case FeatureMerchantRiskTier:
			attr.MerchantRiskTier = t.weight
		case FeatureLoyaltyTier:
			attr.LoyaltyTier = t.weight
		}
	}

	sum := out.Additive.Baseline
	for _, c := range out.Additive.Contributions {
		sum += c.Value
	}
	out.Additive.Sum = sum

	if diff := math.Abs(sum - out.RawScore); diff > AttributionEpsilon {
		l.logger.Warn("additive attributions do not reproduce raw score",
			slog.Float64("raw_score", out.RawScore),
			slog.Float64("attribution_sum", sum),
			slog.Float64("difference", diff),
		)
	}

	return out
}

// Calibrator maps an unbounded raw score to a probability.
type Calibrator interface {
	Name() string
	Params() map[string]float64
	Probability(raw float64) float64
}

// Calibration method names accepted in approval.yaml.
const (
	MethodLogistic = "logistic"
	MethodIsotonic = "isotonic"
)

// LogisticCalibrator computes 1 / (1 + e^-(scale*raw + bias)).
type LogisticCalibrator struct {
	Scale float64
	Bias  float64
}

func (c LogisticCalibrator) Name() string { return MethodLogistic }

func (c LogisticCalibrator) Params() map[string]float64 {
	return map[string]float64{"scale": c.Scale, "bias": c.Bias}
}

func (c LogisticCalibrator) Probability(raw float64) float64 {
	return 1.0 / (1.0 + math.Exp(-(c.Scale*raw + c.Bias)))
}

// IsotonicCalibrator is accepted so configs may name it, but it has no fitted
// step function yet and computes exactly the logistic curve. Seed is carried
// from config and not used.
type IsotonicCalibrator struct {
	LogisticCalibrator
	Seed int64
}

func (c IsotonicCalibrator) Name() string { return MethodIsotonic }

// NewCalibrator builds the named strategy. Missing scale defaults to 1.
func NewCalibrator(cfg CalibrationConfig, seed int64) (Calibrator, error) {
	scale, ok := cfg.Params["scale"]
	if !ok {
		scale = 1.0
	}
	logistic := LogisticCalibrator{Scale: scale, Bias: cfg.Params["bias"]}

	switch cfg.Method {
	case MethodLogistic, "":
		return logistic, nil
	case MethodIsotonic:
		return IsotonicCalibrator{LogisticCalibrator: logistic, Seed: seed}, nil
	default:
		return logistic, fmt.Errorf("unknown calibration method %q", cfg.Method)
	}
}

// CalibrationLayer applies a Calibrator and clamps the output.
type CalibrationLayer struct {
	calibrator Calibrator
	min, max   float64
}

// NewCalibrationLayer creates a calibration layer with output bounds.
func NewCalibrationLayer(c Calibrator, minProbability, maxProbability float64) *CalibrationLayer {
	return &CalibrationLayer{calibrator: c, min: minProbability, max: maxProbability}
}

// Probability calibrates and clamps raw.
func (l *CalibrationLayer) Probability(raw float64) float64 {
	return clamp(l.calibrator.Probability(raw), l.min, l.max)
}

// Info describes the active strategy.
func (l *CalibrationLayer) Info() CalibrationInfo {
	return CalibrationInfo{Method: l.calibrator.Name(), Params: l.calibrator.Params()}
}

// CalibrationInfo describes the strategy that produced a probability.
type CalibrationInfo struct {
	Method string             `json:"method"`
	Params map[string]float64 `json:"params"`
}

// ApprovalResult is the calibrated approval estimate with explanations.
type ApprovalResult struct {
	PApproval            float64              `json:"p_approval"`
	RawScore             float64              `json:"raw_score"`
	Calibration          CalibrationInfo      `json:"calibration"`
	Attributions         FeatureAttributions  `json:"attributions"`
	AdditiveAttributions AdditiveAttributions `json:"additive_attributions"`
	// MatchedKeys maps each feature to the table entry it resolved to.
	MatchedKeys map[string]string `json:"matched_keys"`
}

// ApprovalCalibrator composes the rules and calibration layers.
type ApprovalCalibrator struct {
	rules       *RulesLayer
	calibration *CalibrationLayer
	version     string
}

// NewApprovalCalibrator wires both layers from config. An unknown calibration
// method falls back to logistic with a warning.
func NewApprovalCalibrator(cfg ApprovalConfig, logger *slog.Logger) *ApprovalCalibrator {
	if logger == nil {
		logger = slog.Default()
	}
	c, err := NewCalibrator(cfg.Calibration, cfg.RandomSeed)
	if err != nil {
		logger.Warn("falling back to logistic calibration", slog.String("error", err.Error()))
	}
	return &ApprovalCalibrator{
		rules:       NewRulesLayer(cfg.Rules, logger),
		calibration: NewCalibrationLayer(c, cfg.MinProbability, cfg.MaxProbability),
		version:     cfg.Version,
	}
}

// Rules exposes the rules layer.
func (a *ApprovalCalibrator) Rules() *RulesLayer { return a.rules }

// Calibration exposes the calibration layer.
func (a *ApprovalCalibrator) Calibration() *CalibrationLayer { return a.calibration }

// Version is the configuration version the calibrator was built from.
func (a *ApprovalCalibrator) Version() string { return a.version }

// Calibrate runs both layers. It never fails.
func (a *ApprovalCalibrator) Calibrate(f ApprovalFeatures) ApprovalResult {
	rules := a.rules.Score(f)
	return ApprovalResult{
		PApproval:            a.calibration.Probability(rules.RawScore),
		RawScore:             rules.RawScore,
		Calibration:          a.calibration.Info(),
		Attributions:         rules.Attributions,
		AdditiveAttributions: rules.Additive,
		MatchedKeys:          rules.Keys,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
