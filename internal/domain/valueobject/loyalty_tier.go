package valueobject

import (
	"fmt"
	"strings"
)

// LoyaltyTier is the customer's loyalty programme tier.
type LoyaltyTier string

const (
	LoyaltyNone     LoyaltyTier = "NONE"
	LoyaltySilver   LoyaltyTier = "SILVER"
	LoyaltyGold     LoyaltyTier = "GOLD"
	LoyaltyPlatinum LoyaltyTier = "PLATINUM"
)

// LoyaltyTiers lists every tier in ascending order.
var LoyaltyTiers = []LoyaltyTier{LoyaltyNone, LoyaltySilver, LoyaltyGold, LoyaltyPlatinum}

// NewLoyaltyTier parses a tier case-insensitively. The empty string is NONE.
func NewLoyaltyTier(s string) (LoyaltyTier, error) {
	switch t := LoyaltyTier(strings.ToUpper(strings.TrimSpace(s))); t {
	case "":
		return LoyaltyNone, nil
	case LoyaltyNone, LoyaltySilver, LoyaltyGold, LoyaltyPlatinum:
		return t, nil
	default:
		return "", fmt.Errorf("invalid loyalty tier: %q, must be one of NONE, SILVER, GOLD, PLATINUM", s)
	}
}

// String returns the string representation of the tier.
func (t LoyaltyTier) String() string {
	return string(t)
}

// Rank orders tiers from 0 (NONE) to 3 (PLATINUM).
func (t LoyaltyTier) Rank() int {
	switch t {
	case LoyaltySilver:
		return 1
	case LoyaltyGold:
		return 2
	case LoyaltyPlatinum:
		return 3
	default:
		return 0
	}
}

// IsPremium returns true for GOLD and PLATINUM.
func (t LoyaltyTier) IsPremium() bool {
	return t == LoyaltyGold || t == LoyaltyPlatinum
}
