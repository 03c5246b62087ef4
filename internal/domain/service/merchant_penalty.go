package service

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"unicode"

	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/model"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/valueobject"
)

// nameSuffixes are stripped from merchant names, longest first.
var nameSuffixes = []string{".co.uk", ".store", ".shop", ".com", ".net", ".org", ".co", ".io"}

// NormalizeMerchantName lowercases, strips a trailing domain-like suffix and
// punctuation, and collapses whitespace.
func NormalizeMerchantName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	for _, suffix := range nameSuffixes {
		if strings.HasSuffix(s, suffix) {
			s = strings.TrimSuffix(s, suffix)
			break
		}
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// MerchantEntry is one known merchant in merchant_penalties.yaml.
type MerchantEntry struct {
	Name           string
	Variants       []string
	DefaultPenalty float64
	MCCPenalties   map[string]float64
}

// penaltyFor picks the MCC-specific penalty, then the entry default.
func (e MerchantEntry) penaltyFor(mcc string) float64 {
	if p, ok := e.MCCPenalties[mcc]; ok {
		return p
	}
	return e.DefaultPenalty
}

// NetworkPenalties are the network-preference sub-penalties.
type NetworkPenalties struct {
	DebitPreference float64
	PreferredMatch  float64
	NetworkMismatch float64
	Exclusion       float64
}

// PenaltyWeights are the blend coefficients of the three sub-penalties.
type PenaltyWeights struct {
	Merchant float64
	MCC      float64
	Network  float64
}

// MerchantPenaltyConfig is the parsed merchant_penalties.yaml.
type MerchantPenaltyConfig struct {
	Version             string
	Merchants           []MerchantEntry
	MCCFamilies         map[string]float64
	Network             NetworkPenalties
	SimilarityThreshold float64
	Weights             PenaltyWeights
	BasePenalty         float64
	MinPenalty          float64
	MaxPenalty          float64
}

// MerchantPenaltyBreakdown is the result of MerchantPenaltyCalculator.Compute.
type MerchantPenaltyBreakdown struct {
	MerchantPenalty float64 `json:"merchant_penalty"`
	MerchantSource  string  `json:"merchant_source"`
	MatchedMerchant string  `json:"matched_merchant,omitempty"`
	Similarity      float64 `json:"similarity,omitempty"`
	MCCPenalty      float64 `json:"mcc_penalty"`
	NetworkPenalty  float64 `json:"network_penalty"`
	NetworkSource   string  `json:"network_source"`
	Penalty         float64 `json:"penalty"`
}

// Merchant penalty sources.
const (
	SourceExact     = "exact"
	SourceFuzzy     = "fuzzy"
	SourceMCCFamily = "mcc_family"
	SourceBase      = "base"
)

type indexedMerchant struct {
	entry MerchantEntry
	names []string
}

// MerchantPenaltyCalculator blends merchant, MCC family and network penalties.
type MerchantPenaltyCalculator struct {
	cfg     MerchantPenaltyConfig
	byName  map[string]int
	index   []indexedMerchant
	matcher StringMatcher
	logger  *slog.Logger
}

// NewMerchantPenaltyCalculator indexes the known merchants by normalized name.
// A nil matcher uses LevenshteinMatcher.
func NewMerchantPenaltyCalculator(cfg MerchantPenaltyConfig, matcher StringMatcher, logger *slog.Logger) *MerchantPenaltyCalculator {
	if matcher == nil {
		matcher = LevenshteinMatcher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &MerchantPenaltyCalculator{
		cfg:     cfg,
		byName:  make(map[string]int, len(cfg.Merchants)),
		matcher: matcher,
		logger:  logger,
	}
	for i, m := range cfg.Merchants {
		canonical := NormalizeMerchantName(m.Name)
		if _, dup := c.byName[canonical]; !dup {
			c.byName[canonical] = i
		}
		names := []string{canonical}
		for _, v := range m.Variants {
			if n := NormalizeMerchantName(v); n != "" && !slices.Contains(names, n) {
				names = append(names, n)
			}
		}
		c.index = append(c.index, indexedMerchant{entry: m, names: names})
	}
	return c
}

// Bounds returns the configured [min, max] penalty.
func (c *MerchantPenaltyCalculator) Bounds() (float64, float64) {
	return c.cfg.MinPenalty, c.cfg.MaxPenalty
}

// BasePenalty is the neutral penalty returned when Compute fails.
func (c *MerchantPenaltyCalculator) BasePenalty() float64 {
	return c.cfg.BasePenalty
}

// Compute returns the full breakdown for one card at the context's merchant.
func (c *MerchantPenaltyCalculator) Compute(tc *model.TransactionContext, card model.Card) (MerchantPenaltyBreakdown, error) {
	if tc == nil {
		return MerchantPenaltyBreakdown{}, errNilContext
	}
	merchant := tc.Merchant()
	mcc := tc.MCC()

	var b MerchantPenaltyBreakdown
	b.MerchantPenalty, b.MerchantSource, b.MatchedMerchant, b.Similarity = c.merchantPenalty(merchant.Name, mcc)
	b.MCCPenalty = c.mccFamilyPenalty(mcc)
	b.NetworkPenalty, b.NetworkSource = c.networkPenalty(merchant.NetworkPreferences, card.NetworkName())

	w := c.cfg.Weights
	raw := w.Merchant*b.MerchantPenalty + w.MCC*b.MCCPenalty + w.Network*b.NetworkPenalty
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return MerchantPenaltyBreakdown{}, fmt.Errorf("merchant penalty for card %s is not finite", card.ID)
	}
	b.Penalty = clamp(raw, c.cfg.MinPenalty, c.cfg.MaxPenalty)
	return b, nil
}

// Penalty is Compute with the base penalty as the recovery value.
func (c *MerchantPenaltyCalculator) Penalty(tc *model.TransactionContext, card model.Card) float64 {
	b, err := c.Compute(tc, card)
	if err != nil {
		c.logger.Warn("merchant penalty falling back to base penalty",
			slog.String("card_id", card.ID),
			slog.String("error", err.Error()),
		)
		return c.cfg.BasePenalty
	}
	return b.Penalty
}

// merchantPenalty resolves exact name, then fuzzy name, then MCC family, then base.
func (c *MerchantPenaltyCalculator) merchantPenalty(name, mcc string) (penalty float64, source, matched string, similarity float64) {
	normalized := NormalizeMerchantName(name)
	if normalized != "" {
		if i, ok := c.byName[normalized]; ok {
			e := c.index[i].entry
			return e.penaltyFor(mcc), SourceExact, e.Name, 1.0
		}

		best, bestScore := -1, 0.0
		for i, m := range c.index {
			for _, candidate := range m.names {
				if s := c.matcher.Similarity(normalized, candidate); s > bestScore {
					best, bestScore = i, s
				}
			}
		}
		if best >= 0 && bestScore >= c.cfg.SimilarityThreshold {
			e := c.index[best].entry
			return e.penaltyFor(mcc), SourceFuzzy, e.Name, bestScore
		}
	}

	if p, ok := c.mccFamilyEntry(mcc); ok {
		return p, SourceMCCFamily, "", 0
	}
	return c.cfg.BasePenalty, SourceBase, "", 0
}

func (c *MerchantPenaltyCalculator) mccFamilyEntry(mcc string) (float64, bool) {
	if mcc == "" {
		return 0, false
	}
	if p, ok := c.cfg.MCCFamilies[mcc]; ok {
		return p, true
	}
	if len(mcc) >= 2 {
		if p, ok := c.cfg.MCCFamilies[mcc[:2]]; ok {
			return p, true
		}
	}
	return 0, false
}

func (c *MerchantPenaltyCalculator) mccFamilyPenalty(mcc string) float64 {
	if p, ok := c.mccFamilyEntry(mcc); ok {
		return p
	}
	if p, ok := c.cfg.MCCFamilies[KeyDefault]; ok {
		return p
	}
	return 1.0
}

var explicitNetworks = []string{
	valueobject.NetworkVisa, valueobject.NetworkMastercard,
	valueobject.NetworkAmex, valueobject.NetworkDiscover,
}

// networkPenalty checks debit preference, then explicit network preference,
// then "no_<network>" exclusions.
func (c *MerchantPenaltyCalculator) networkPenalty(prefs []string, network string) (float64, string) {
	if slices.Contains(prefs, "debit") {
		return c.cfg.Network.DebitPreference, "debit_preference"
	}
	if slices.ContainsFunc(prefs, func(p string) bool { return slices.Contains(explicitNetworks, p) }) {
		if network != "" && slices.Contains(prefs, network) {
			return c.cfg.Network.PreferredMatch, "preferred_match"
		}
		return c.cfg.Network.NetworkMismatch, "network_mismatch"
	}
	if network != "" && slices.Contains(prefs, "no_"+network) {
		return c.cfg.Network.Exclusion, "exclusion"
	}
	return 1.0, "none"
}
