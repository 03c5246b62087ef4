package service

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/model"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/valueobject"
)

// MonthDay is a calendar day without a year, as used by seasonal promotions.
type MonthDay struct {
	Month time.Month
	Day   int
}

// ParseMonthDay parses "MM-DD".
func ParseMonthDay(s string) (MonthDay, error) {
	t, err := time.Parse("01-02", strings.TrimSpace(s))
	if err != nil {
		return MonthDay{}, fmt.Errorf("invalid month-day %q: %w", s, err)
	}
	return MonthDay{Month: t.Month(), Day: t.Day()}, nil
}

func (md MonthDay) ordinal() int { return int(md.Month)*100 + md.Day }

// SeasonalPromotion multiplies the promotion weight between Start and End
// inclusive. A range with Start after End wraps across the new year.
type SeasonalPromotion struct {
	Name       string
	Start      MonthDay
	End        MonthDay
	Multiplier float64
	Categories []string
}

// ActiveOn reports whether the promotion covers t.
func (p SeasonalPromotion) ActiveOn(t time.Time) bool {
	day := MonthDay{Month: t.Month(), Day: t.Day()}.ordinal()
	start, end := p.Start.ordinal(), p.End.ordinal()
	if start <= end {
		return day >= start && day <= end
	}
	return day >= start || day <= end
}

// AppliesTo reports whether the promotion covers category. No categories means all.
func (p SeasonalPromotion) AppliesTo(category string) bool {
	if len(p.Categories) == 0 {
		return true
	}
	for _, c := range p.Categories {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}

// BlendWeights are the coefficients of the final preference blend.
type BlendWeights struct {
	User      float64
	Loyalty   float64
	Category  float64
	Promotion float64
	Base      float64
}

// PreferenceConfig is the parsed preferences.yaml.
type PreferenceConfig struct {
	Version string

	RewardAlignment        float64
	IssuerAffinity         map[string]float64
	PreferredIssuerBonus   float64
	FeeTolerance           map[string]float64
	NoFeeLowToleranceBonus float64
	ForeignFeePenalty      float64

	LoyaltyTiers map[valueobject.LoyaltyTier]float64

	MCCCategories       map[string]string
	CategoryMultipliers map[string]float64
	CategoryBonusMatch  float64

	SignupBonusBoost   float64
	TravelBenefitBoost float64
	SeasonalPromotions []SeasonalPromotion

	Weights    BlendWeights
	BaseWeight float64
	MinWeight  float64
	MaxWeight  float64
}

// PreferenceBreakdown is the result of PreferenceWeighter.Compute.
type PreferenceBreakdown struct {
	UserWeight       float64  `json:"user_weight"`
	LoyaltyWeight    float64  `json:"loyalty_weight"`
	CategoryWeight   float64  `json:"category_weight"`
	PromotionWeight  float64  `json:"promotion_weight"`
	Category         string   `json:"category"`
	ActivePromotions []string `json:"active_promotions,omitempty"`
	Weight           float64  `json:"weight"`
}

var errNilContext = errors.New("transaction context is nil")

// PreferenceWeighter blends user, loyalty, category and promotion factors into
// a bounded multiplicative weight for one candidate card.
type PreferenceWeighter struct {
	cfg    PreferenceConfig
	logger *slog.Logger
}

// NewPreferenceWeighter creates a weighter over an immutable config.
func NewPreferenceWeighter(cfg PreferenceConfig, logger *slog.Logger) *PreferenceWeighter {
	if logger == nil {
		logger = slog.Default()
	}
	return &PreferenceWeighter{cfg: cfg, logger: logger}
}

// Bounds returns the configured [min, max] weight.
func (w *PreferenceWeighter) Bounds() (float64, float64) {
	return w.cfg.MinWeight, w.cfg.MaxWeight
}

// BaseWeight is the neutral weight returned when Compute fails.
func (w *PreferenceWeighter) BaseWeight() float64 {
	return w.cfg.BaseWeight
}

// Compute returns the full breakdown or an error for unusable input.
func (w *PreferenceWeighter) Compute(tc *model.TransactionContext, card model.Card) (PreferenceBreakdown, error) {
	if tc == nil {
		return PreferenceBreakdown{}, errNilContext
	}
	if err := card.Validate(); err != nil {
		return PreferenceBreakdown{}, fmt.Errorf("preference weight: %w", err)
	}

	customer := tc.Customer()
	category := w.category(tc.MCC())

	b := PreferenceBreakdown{
		UserWeight:     w.userWeight(customer.Preferences, card),
		LoyaltyWeight:  w.loyaltyWeight(customer.LoyaltyTier),
		CategoryWeight: w.categoryWeight(category, tc.MCC(), card),
		Category:       category,
	}
	b.PromotionWeight, b.ActivePromotions = w.promotionWeight(card, category, tc.Timestamp())

	bw := w.cfg.Weights
	raw := bw.User*b.UserWeight +
		bw.Loyalty*b.LoyaltyWeight +
		bw.Category*b.CategoryWeight +
		bw.Promotion*b.PromotionWeight +
		bw.Base*w.cfg.BaseWeight
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return PreferenceBreakdown{}, fmt.Errorf("preference weight for card %s is not finite", card.ID)
	}
	b.Weight = clamp(raw, w.cfg.MinWeight, w.cfg.MaxWeight)
	return b, nil
}

// Weight is Compute with the base weight as the recovery value.
func (w *PreferenceWeighter) Weight(tc *model.TransactionContext, card model.Card) float64 {
	b, err := w.Compute(tc, card)
	if err != nil {
		w.logger.Warn("preference weight falling back to base weight",
			slog.String("card_id", card.ID),
			slog.String("error", err.Error()),
		)
		return w.cfg.BaseWeight
	}
	return b.Weight
}

func (w *PreferenceWeighter) userWeight(prefs model.UserPreferences, card model.Card) float64 {
	weight := 1.0

	if prefs.RewardType != "" && card.RewardType != "" {
		if strings.EqualFold(prefs.RewardType, card.RewardType) {
			weight += w.cfg.RewardAlignment
		} else {
			weight -= w.cfg.RewardAlignment
		}
	}

	issuer := strings.ToLower(strings.TrimSpace(card.Issuer))
	weight += w.cfg.IssuerAffinity[issuer]
	if issuer != "" && slices.Contains(prefs.PreferredIssuers, issuer) {
		weight += w.cfg.PreferredIssuerBonus
	}

	switch {
	case card.AnnualFee > 0:
		weight += w.cfg.FeeTolerance[prefs.AnnualFeeTolerance]
	case prefs.AnnualFeeTolerance == "low":
		weight += w.cfg.NoFeeLowToleranceBonus
	}

	if prefs.ForeignFeeSensitive && card.ForeignTransactionFee > 0 {
		weight -= w.cfg.ForeignFeePenalty
	}
	return weight
}

func (w *PreferenceWeighter) loyaltyWeight(tier valueobject.LoyaltyTier) float64 {
	if m, ok := w.cfg.LoyaltyTiers[tier]; ok {
		return m
	}
	return 1.0
}

func (w *PreferenceWeighter) category(mcc string) string {
	if c, ok := w.cfg.MCCCategories[mcc]; ok {
		return c
	}
	return KeyDefault
}

func (w *PreferenceWeighter) categoryWeight(category, mcc string, card model.Card) float64 {
	weight, ok := w.cfg.CategoryMultipliers[category]
	if !ok {
		weight, ok = w.cfg.CategoryMultipliers[KeyDefault]
	}
	if !ok {
		weight = 1.0
	}
	if card.HasCategoryBonus(mcc) || (category != KeyDefault && card.HasCategoryBonus(category)) {
		weight *= w.cfg.CategoryBonusMatch
	}
	return weight
}

func (w *PreferenceWeighter) promotionWeight(card model.Card, category string, at time.Time) (float64, []string) {
	weight := 1.0
	if card.SignupBonus > 0 {
		weight += w.cfg.SignupBonusBoost
	}
	if len(card.TravelBenefits) > 0 {
		weight += w.cfg.TravelBenefitBoost
	}

	var active []string
	for _, p := range w.cfg.SeasonalPromotions {
		if p.ActiveOn(at) && p.AppliesTo(category) {
			weight *= p.Multiplier
			active = append(active, p.Name)
		}
	}
	return weight, active
}
