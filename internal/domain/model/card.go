package model

import (
	"maps"
	"slices"
	"strings"
)

// Card is read-only metadata for a candidate payment card, as supplied by the
// card catalog.
type Card struct {
	ID                    string             `json:"card_id" yaml:"card_id"`
	Name                  string             `json:"name" yaml:"name"`
	Issuer                string             `json:"issuer" yaml:"issuer"`
	Network               string             `json:"network" yaml:"network"`
	RewardType            string             `json:"reward_type" yaml:"reward_type"`
	AnnualFee             float64            `json:"annual_fee" yaml:"annual_fee"`
	BaseRewardRate        float64            `json:"base_reward_rate" yaml:"base_reward_rate"`
	CategoryBonus         map[string]float64 `json:"category_bonus" yaml:"category_bonus"`
	SignupBonus           float64            `json:"signup_bonus" yaml:"signup_bonus"`
	ForeignTransactionFee float64            `json:"foreign_transaction_fee" yaml:"foreign_transaction_fee"`
	TravelBenefits        []string           `json:"travel_benefits" yaml:"travel_benefits"`
}

// Validate rejects cards whose numbers cannot be used in scoring.
func (c Card) Validate() error {
	switch {
	case strings.TrimSpace(c.ID) == "":
		return cardError("card_id", "is required")
	case c.AnnualFee < 0:
		return cardError("annual_fee", "must not be negative")
	case c.BaseRewardRate < 0:
		return cardError("base_reward_rate", "must not be negative")
	case c.SignupBonus < 0:
		return cardError("signup_bonus", "must not be negative")
	case c.ForeignTransactionFee < 0:
		return cardError("foreign_transaction_fee", "must not be negative")
	}
	for k, v := range c.CategoryBonus {
		if v <= 0 {
			return cardError("category_bonus."+k, "must be positive")
		}
	}
	return nil
}

// Clone returns a deep copy so catalog entries are never shared mutably.
func (c Card) Clone() Card {
	out := c
	out.CategoryBonus = maps.Clone(c.CategoryBonus)
	out.TravelBenefits = slices.Clone(c.TravelBenefits)
	return out
}

// NetworkName returns the lowercase network, inferring it from the issuer for
// the closed-loop networks when not set.
func (c Card) NetworkName() string {
	if n := strings.ToLower(strings.TrimSpace(c.Network)); n != "" {
		return n
	}
	switch issuer := strings.ToLower(c.Issuer); {
	case strings.Contains(issuer, "amex"), strings.Contains(issuer, "american express"):
		return "amex"
	case strings.Contains(issuer, "discover"):
		return "discover"
	default:
		return ""
	}
}

// HasCategoryBonus reports whether the card lists a bonus under key, case-insensitively.
func (c Card) HasCategoryBonus(key string) bool {
	if key == "" {
		return false
	}
	for k := range c.CategoryBonus {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}
