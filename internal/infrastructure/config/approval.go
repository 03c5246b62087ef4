package config

import (
	"fmt"

	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/service"
)

// Output bounds used when approval.yaml leaves them out.
const (
	DefaultMinProbability = 0.01
	DefaultMaxProbability = 0.99
)

type approvalFile struct {
	Version    string `yaml:"version"`
	RulesLayer struct {
		BaseScore                *float64           `yaml:"base_score"`
		MCCWeights               map[string]float64 `yaml:"mcc_weights"`
		AmountBuckets            map[string]float64 `yaml:"amount_buckets"`
		IssuerFamily             map[string]float64 `yaml:"issuer_family"`
		CrossBorder              map[string]float64 `yaml:"cross_border"`
		LocationMismatchDistance map[string]float64 `yaml:"location_mismatch_distance"`
		Velocity24h              map[string]float64 `yaml:"velocity_24h"`
		Velocity7d               map[string]float64 `yaml:"velocity_7d"`
		Chargebacks12m           map[string]float64 `yaml:"chargebacks_12m"`
		MerchantRiskTier         map[string]float64 `yaml:"merchant_risk_tier"`
		LoyaltyTier              map[string]float64 `yaml:"loyalty_tier"`
	} `yaml:"rules_layer"`
	CalibrationLayer struct {
		Method string             `yaml:"method"`
		Params map[string]float64 `yaml:"params"`
	} `yaml:"calibration_layer"`
	Output struct {
		MinProbability *float64 `yaml:"min_probability"`
		MaxProbability *float64 `yaml:"max_probability"`
		RandomSeed     int64    `yaml:"random_seed"`
	} `yaml:"output"`
}

func parseApproval(data []byte) (service.ApprovalConfig, error) {
	var f approvalFile
	if err := decodeYAML(data, &f); err != nil {
		return service.ApprovalConfig{}, err
	}
	r := f.RulesLayer
	if r.BaseScore == nil {
		return service.ApprovalConfig{}, fmt.Errorf("rules_layer.base_score is required")
	}

	categories := map[string]map[string]float64{
		"mcc_weights":        r.MCCWeights,
		"issuer_family":      r.IssuerFamily,
		"cross_border":       r.CrossBorder,
		"merchant_risk_tier": r.MerchantRiskTier,
		"loyalty_tier":       r.LoyaltyTier,
	}
	for name, t := range categories {
		if t == nil {
			return service.ApprovalConfig{}, fmt.Errorf("rules_layer.%s is required", name)
		}
	}

	ranges := make(map[string]service.RangeTable, 5)
	for name, raw := range map[string]map[string]float64{
		"amount_buckets":             r.AmountBuckets,
		"location_mismatch_distance": r.LocationMismatchDistance,
		"velocity_24h":               r.Velocity24h,
		"velocity_7d":                r.Velocity7d,
		"chargebacks_12m":            r.Chargebacks12m,
	} {
		if raw == nil {
			return service.ApprovalConfig{}, fmt.Errorf("rules_layer.%s is required", name)
		}
		t, err := service.ParseRangeTable(raw)
		if err != nil {
			return service.ApprovalConfig{}, fmt.Errorf("rules_layer.%s: %w", name, err)
		}
		ranges[name] = t
	}

	minP, maxP := DefaultMinProbability, DefaultMaxProbability
	if f.Output.MinProbability != nil {
		minP = *f.Output.MinProbability
	}
	if f.Output.MaxProbability != nil {
		maxP = *f.Output.MaxProbability
	}
	if minP < 0 || maxP > 1 {
		return service.ApprovalConfig{}, fmt.Errorf("output probabilities must lie in [0, 1]")
	}
	if err := checkBounds("output probability", minP, maxP); err != nil {
		return service.ApprovalConfig{}, err
	}

	return service.ApprovalConfig{
		Version: f.Version,
		Rules: service.ApprovalRules{
			BaseScore:        *r.BaseScore,
			MCC:              service.NewCategoryTable(r.MCCWeights),
			Amount:           ranges["amount_buckets"],
			IssuerFamily:     service.NewCategoryTable(r.IssuerFamily),
			CrossBorder:      service.NewCategoryTable(r.CrossBorder),
			LocationMismatch: ranges["location_mismatch_distance"],
			Velocity24h:      ranges["velocity_24h"],
			Velocity7d:       ranges["velocity_7d"],
			Chargebacks12m:   ranges["chargebacks_12m"],
			MerchantRiskTier: service.NewCategoryTable(r.MerchantRiskTier),
			LoyaltyTier:      service.NewCategoryTable(r.LoyaltyTier),
		},
		Calibration: service.CalibrationConfig{
			Method: f.CalibrationLayer.Method,
			Params: f.CalibrationLayer.Params,
		},
		MinProbability: minP,
		MaxProbability: maxP,
		RandomSeed:     f.Output.RandomSeed,
	}, nil
}
