package service

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/model"
)

// MaxExpectedRewards caps the expected reward rate of a single card.
const MaxExpectedRewards = 0.10

// ApprovalForScore is the coarse step mapping from final score to approval
// probability used for ranking.
func ApprovalForScore(finalScore int) float64 {
	switch {
	case finalScore >= 90:
		return 0.95
	case finalScore >= 75:
		return 0.85
	case finalScore >= 60:
		return 0.70
	case finalScore >= 40:
		return 0.50
	default:
		return 0.25
	}
}

// UtilityComponents are the four factors multiplied into a utility score.
type UtilityComponents struct {
	PApproval        float64 `json:"p_approval"`
	ExpectedRewards  float64 `json:"expected_rewards"`
	PreferenceWeight float64 `json:"preference_weight"`
	MerchantPenalty  float64 `json:"merchant_penalty"`
}

// UtilityBreakdown is one ranked card. Error is set only on degraded entries.
type UtilityBreakdown struct {
	CardID         string            `json:"card_id"`
	CardName       string            `json:"card_name"`
	UtilityScore   float64           `json:"utility_score"`
	Components     UtilityComponents `json:"components"`
	Rank           int               `json:"rank"`
	RankPercentage float64           `json:"rank_percentage"`
	Error          string            `json:"error,omitempty"`
}

// Degraded reports whether the card could not be scored.
func (u UtilityBreakdown) Degraded() bool {
	return u.Error != ""
}

// CompositeUtilityRanker ranks candidate cards by
// p_approval × expected_rewards × preference_weight × merchant_penalty.
type CompositeUtilityRanker struct {
	preferences *PreferenceWeighter
	penalties   *MerchantPenaltyCalculator
	logger      *slog.Logger
}

// NewCompositeUtilityRanker creates a ranker.
func NewCompositeUtilityRanker(preferences *PreferenceWeighter, penalties *MerchantPenaltyCalculator, logger *slog.Logger) *CompositeUtilityRanker {
	if logger == nil {
		logger = slog.Default()
	}
	return &CompositeUtilityRanker{preferences: preferences, penalties: penalties, logger: logger}
}

// Rank scores every card and sorts them by utility, highest first. Ties keep
// input order. A card that fails is kept with a zero utility and its error.
func (r *CompositeUtilityRanker) Rank(tc *model.TransactionContext, score ScoreResult, cards []model.Card) []UtilityBreakdown {
	out := make([]UtilityBreakdown, 0, len(cards))
	for _, card := range cards {
		u, err := r.Evaluate(tc, score, card)
		if err != nil {
			r.logger.Warn("card degraded in ranking",
				slog.String("card_id", card.ID),
				slog.String("error", err.Error()),
			)
			u = degraded(card, err)
		}
		out = append(out, u)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UtilityScore > out[j].UtilityScore
	})
	n := len(out)
	for i := range out {
		out[i].Rank = i + 1
		out[i].RankPercentage = float64(n-i) / float64(n)
	}
	return out
}

// Evaluate computes one card's unranked utility.
func (r *CompositeUtilityRanker) Evaluate(tc *model.TransactionContext, score ScoreResult, card model.Card) (UtilityBreakdown, error) {
	if tc == nil {
		return UtilityBreakdown{}, errNilContext
	}
	if err := card.Validate(); err != nil {
		return UtilityBreakdown{}, err
	}

	pref, err := r.preferences.Compute(tc, card)
	if err != nil {
		return UtilityBreakdown{}, err
	}
	penalty, err := r.penalties.Compute(tc, card)
	if err != nil {
		return UtilityBreakdown{}, err
	}

	c := UtilityComponents{
		PApproval:        ApprovalForScore(score.FinalScore),
		ExpectedRewards:  ExpectedRewards(card, tc.MCC(), tc.CartTotal().Float64()),
		PreferenceWeight: pref.Weight,
		MerchantPenalty:  penalty.Penalty,
	}
	utility := c.PApproval * c.ExpectedRewards * c.PreferenceWeight * c.MerchantPenalty
	if math.IsNaN(utility) || math.IsInf(utility, 0) {
		return UtilityBreakdown{}, errors.New("utility is not finite")
	}

	return UtilityBreakdown{
		CardID:       card.ID,
		CardName:     card.Name,
		UtilityScore: utility,
		Components:   c,
	}, nil
}

func degraded(card model.Card, err error) UtilityBreakdown {
	return UtilityBreakdown{
		CardID:   card.ID,
		CardName: card.Name,
		Components: UtilityComponents{
			PreferenceWeight: 1.0,
			MerchantPenalty:  1.0,
		},
		Error: fmt.Sprintf("card %s could not be scored: %v", card.ID, err),
	}
}

// ExpectedRewards is the reward rate of the card on this purchase, including
// the signup bonus amortised over the amount, capped at MaxExpectedRewards.
func ExpectedRewards(card model.Card, mcc string, amount float64) float64 {
	bonus := CategoryBonusFor(card, mcc)
	if amount <= 0 {
		return math.Min(MaxExpectedRewards, card.BaseRewardRate*bonus)
	}
	return math.Min(MaxExpectedRewards, (card.BaseRewardRate*amount*bonus+card.SignupBonus)/amount)
}

// CategoryBonusFor resolves the exact MCC bonus, then the bonus of the lowest
// 4-digit MCC key in the same 2-digit family, then 1.0.
func CategoryBonusFor(card model.Card, mcc string) float64 {
	if mcc == "" {
		return 1.0
	}
	if b, ok := card.CategoryBonus[mcc]; ok {
		return b
	}
	if len(mcc) < 2 {
		return 1.0
	}
	family := mcc[:2]
	var keys []string
	for k := range card.CategoryBonus {
		if isMCC(k) && strings.HasPrefix(k, family) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return 1.0
	}
	return card.CategoryBonus[slices.Min(keys)]
}

func isMCC(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
