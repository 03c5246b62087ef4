package config

import (
	"fmt"
	"strings"

	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/service"
)

type merchantPenaltiesFile struct {
	Version   string `yaml:"version"`
	Merchants []struct {
		Name           string             `yaml:"name"`
		Variants       []string           `yaml:"variants"`
		DefaultPenalty *float64           `yaml:"default_penalty"`
		MCCPenalties   map[string]float64 `yaml:"mcc_penalties"`
	} `yaml:"merchants"`
	MCCFamilies      map[string]float64 `yaml:"mcc_families"`
	NetworkPenalties struct {
		DebitPreference float64 `yaml:"debit_preference"`
		PreferredMatch  float64 `yaml:"preferred_match"`
		NetworkMismatch float64 `yaml:"network_mismatch"`
		Exclusion       float64 `yaml:"exclusion"`
	} `yaml:"network_penalties"`
	FuzzyMatching struct {
		SimilarityThreshold *float64 `yaml:"similarity_threshold"`
	} `yaml:"fuzzy_matching"`
	Calculation struct {
		Weights struct {
			Merchant float64 `yaml:"merchant"`
			MCC      float64 `yaml:"mcc"`
			Network  float64 `yaml:"network"`
		} `yaml:"weights"`
		BasePenalty *float64 `yaml:"base_penalty"`
		MinPenalty  *float64 `yaml:"min_penalty"`
		MaxPenalty  *float64 `yaml:"max_penalty"`
	} `yaml:"calculation"`
}

func parseMerchantPenalties(data []byte) (service.MerchantPenaltyConfig, error) {
	var f merchantPenaltiesFile
	if err := decodeYAML(data, &f); err != nil {
		return service.MerchantPenaltyConfig{}, err
	}

	merchants := make([]service.MerchantEntry, 0, len(f.Merchants))
	for i, m := range f.Merchants {
		if strings.TrimSpace(m.Name) == "" {
			return service.MerchantPenaltyConfig{}, fmt.Errorf("merchants[%d].name is required", i)
		}
		merchants = append(merchants, service.MerchantEntry{
			Name:           m.Name,
			Variants:       m.Variants,
			DefaultPenalty: valueOr(m.DefaultPenalty, 1.0),
			MCCPenalties:   m.MCCPenalties,
		})
	}

	np := f.NetworkPenalties
	if np.DebitPreference == 0 || np.PreferredMatch == 0 || np.NetworkMismatch == 0 || np.Exclusion == 0 {
		return service.MerchantPenaltyConfig{}, fmt.Errorf("network_penalties must set every penalty")
	}

	calc := f.Calculation
	cfg := service.MerchantPenaltyConfig{
		Version:     f.Version,
		Merchants:   merchants,
		MCCFamilies: lowerKeys(f.MCCFamilies),
		Network: service.NetworkPenalties{
			DebitPreference: np.DebitPreference,
			PreferredMatch:  np.PreferredMatch,
			NetworkMismatch: np.NetworkMismatch,
			Exclusion:       np.Exclusion,
		},
		SimilarityThreshold: valueOr(f.FuzzyMatching.SimilarityThreshold, 0.8),
		Weights: service.PenaltyWeights{
			Merchant: calc.Weights.Merchant,
			MCC:      calc.Weights.MCC,
			Network:  calc.Weights.Network,
		},
		BasePenalty: valueOr(calc.BasePenalty, 1.0),
		MinPenalty:  valueOr(calc.MinPenalty, 0.8),
		MaxPenalty:  valueOr(calc.MaxPenalty, 1.0),
	}
	if cfg.Weights == (service.PenaltyWeights{}) {
		return service.MerchantPenaltyConfig{}, fmt.Errorf("calculation.weights is required")
	}
	if err := checkBounds("calculation penalty", cfg.MinPenalty, cfg.MaxPenalty); err != nil {
		return service.MerchantPenaltyConfig{}, err
	}
	return cfg, nil
}

func lowerKeys(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
