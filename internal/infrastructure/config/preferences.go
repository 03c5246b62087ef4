package config

import (
	"fmt"
	"strings"

	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/service"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/valueobject"
)

type preferencesFile struct {
	Version         string `yaml:"version"`
	UserPreferences struct {
		RewardAlignment        float64            `yaml:"reward_alignment"`
		IssuerAffinity         map[string]float64 `yaml:"issuer_affinity"`
		PreferredIssuerBonus   float64            `yaml:"preferred_issuer_bonus"`
		AnnualFeeTolerance     map[string]float64 `yaml:"annual_fee_tolerance"`
		NoFeeLowToleranceBonus float64            `yaml:"no_fee_low_tolerance_bonus"`
		ForeignFeePenalty      float64            `yaml:"foreign_fee_penalty"`
	} `yaml:"user_preferences"`
	LoyaltyTiers   map[string]float64 `yaml:"loyalty_tiers"`
	CategoryBoosts struct {
		MCCCategories  map[string]string  `yaml:"mcc_categories"`
		Multipliers    map[string]float64 `yaml:"multipliers"`
		CardBonusMatch *float64           `yaml:"card_bonus_match"`
	} `yaml:"category_boosts"`
	Promotions struct {
		SignupBonus    float64 `yaml:"signup_bonus"`
		TravelBenefits float64 `yaml:"travel_benefits"`
	} `yaml:"promotions"`
	SeasonalPromotions []struct {
		Name       string   `yaml:"name"`
		Start      string   `yaml:"start"`
		End        string   `yaml:"end"`
		Multiplier float64  `yaml:"multiplier"`
		Categories []string `yaml:"categories"`
	} `yaml:"seasonal_promotions"`
	Calculation struct {
		Weights struct {
			User      float64 `yaml:"user"`
			Loyalty   float64 `yaml:"loyalty"`
			Category  float64 `yaml:"category"`
			Promotion float64 `yaml:"promotion"`
			Base      float64 `yaml:"base"`
		} `yaml:"weights"`
		BaseWeight *float64 `yaml:"base_weight"`
		MinWeight  *float64 `yaml:"min_weight"`
		MaxWeight  *float64 `yaml:"max_weight"`
	} `yaml:"calculation"`
}

func parsePreferences(data []byte) (service.PreferenceConfig, error) {
	var f preferencesFile
	if err := decodeYAML(data, &f); err != nil {
		return service.PreferenceConfig{}, err
	}
	if f.LoyaltyTiers == nil {
		return service.PreferenceConfig{}, fmt.Errorf("loyalty_tiers is required")
	}

	tiers := make(map[valueobject.LoyaltyTier]float64, len(f.LoyaltyTiers))
	for k, v := range f.LoyaltyTiers {
		tier, err := valueobject.NewLoyaltyTier(k)
		if err != nil {
			return service.PreferenceConfig{}, fmt.Errorf("loyalty_tiers: %w", err)
		}
		tiers[tier] = v
	}

	var promos []service.SeasonalPromotion
	for i, p := range f.SeasonalPromotions {
		start, err := service.ParseMonthDay(p.Start)
		if err != nil {
			return service.PreferenceConfig{}, fmt.Errorf("seasonal_promotions[%d].start: %w", i, err)
		}
		end, err := service.ParseMonthDay(p.End)
		if err != nil {
			return service.PreferenceConfig{}, fmt.Errorf("seasonal_promotions[%d].end: %w", i, err)
		}
		if p.Multiplier <= 0 {
			return service.PreferenceConfig{}, fmt.Errorf("seasonal_promotions[%d].multiplier must be positive", i)
		}
		promos = append(promos, service.SeasonalPromotion{
			Name: p.Name, Start: start, End: end, Multiplier: p.Multiplier, Categories: p.Categories,
		})
	}

	calc := f.Calculation
	cfg := service.PreferenceConfig{
		Version:                f.Version,
		RewardAlignment:        f.UserPreferences.RewardAlignment,
		IssuerAffinity:         lowerKeys(f.UserPreferences.IssuerAffinity),
		PreferredIssuerBonus:   f.UserPreferences.PreferredIssuerBonus,
		FeeTolerance:           lowerKeys(f.UserPreferences.AnnualFeeTolerance),
		NoFeeLowToleranceBonus: f.UserPreferences.NoFeeLowToleranceBonus,
		ForeignFeePenalty:      f.UserPreferences.ForeignFeePenalty,
		LoyaltyTiers:           tiers,
		MCCCategories:          lowerValues(f.CategoryBoosts.MCCCategories),
		CategoryMultipliers:    lowerKeys(f.CategoryBoosts.Multipliers),
		CategoryBonusMatch:     valueOr(f.CategoryBoosts.CardBonusMatch, 1.05),
		SignupBonusBoost:       f.Promotions.SignupBonus,
		TravelBenefitBoost:     f.Promotions.TravelBenefits,
		SeasonalPromotions:     promos,
		Weights: service.BlendWeights{
			User:      calc.Weights.User,
			Loyalty:   calc.Weights.Loyalty,
			Category:  calc.Weights.Category,
			Promotion: calc.Weights.Promotion,
			Base:      calc.Weights.Base,
		},
		BaseWeight: valueOr(calc.BaseWeight, 1.0),
		MinWeight:  valueOr(calc.MinWeight, 0.5),
		MaxWeight:  valueOr(calc.MaxWeight, 1.5),
	}
	if cfg.Weights == (service.BlendWeights{}) {
		return service.PreferenceConfig{}, fmt.Errorf("calculation.weights is required")
	}
	if err := checkBounds("calculation weight", cfg.MinWeight, cfg.MaxWeight); err != nil {
		return service.PreferenceConfig{}, err
	}
	return cfg, nil
}

func lowerValues(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[strings.TrimSpace(k)] = strings.ToLower(strings.TrimSpace(v))
	}
	return out
}
