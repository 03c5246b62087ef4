package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/model"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/service"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/valueobject"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/infrastructure/config"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/pkg/testutil"
)

func newWeighter() *service.PreferenceWeighter {
	return service.NewPreferenceWeighter(config.DefaultPreferenceConfig(), discardLogger())
}

func TestPreferenceWeighter_Compute(t *testing.T) {
	weighter := newWeighter()
	cards := testutil.SampleCards()
	tc := testutil.NewContext(t)

	t.Run("no-fee cashback card", func(t *testing.T) {
		b, err := weighter.Compute(tc, cards[2])
		require.NoError(t, err)

		assert.InDelta(t, 1.02, b.UserWeight, 1e-9)
		assert.InDelta(t, 1.0, b.LoyaltyWeight, 1e-9)
		assert.InDelta(t, 1.1, b.CategoryWeight, 1e-9)
		assert.InDelta(t, 1.0, b.PromotionWeight, 1e-9)
		assert.Equal(t, "groceries", b.Category)
		assert.InDelta(t, 1.031, b.Weight, 1e-9)
	})

	t.Run("annual fee points card with grocery bonus", func(t *testing.T) {
		b, err := weighter.Compute(tc, cards[1])
		require.NoError(t, err)

		assert.InDelta(t, 0.98, b.UserWeight, 1e-9)
		assert.InDelta(t, 1.155, b.CategoryWeight, 1e-9)
		assert.InDelta(t, 1.15, b.PromotionWeight, 1e-9)
		assert.InDelta(t, 1.05525, b.Weight, 1e-9)
	})
}

func TestPreferenceWeighter_UserPreferences(t *testing.T) {
	weighter := newWeighter()
	cards := testutil.SampleCards()
	citi, amex := cards[2], cards[1]

	cashbackFan := testutil.NewContext(t, testutil.WithPreferences(model.UserPreferences{
		RewardType:          "cashback",
		PreferredIssuers:    []string{"citi"},
		AnnualFeeTolerance:  "low",
		ForeignFeeSensitive: true,
	}))

	b, err := weighter.Compute(cashbackFan, citi)
	require.NoError(t, err)
	// 1.0 + 0.1 alignment + 0.02 affinity + 0.05 preferred + 0.05 no fee - 0.1 foreign fee
	assert.InDelta(t, 1.12, b.UserWeight, 1e-9)

	b, err = weighter.Compute(cashbackFan, amex)
	require.NoError(t, err)
	// 1.0 - 0.1 misaligned + 0.03 affinity - 0.15 low tolerance
	assert.InDelta(t, 0.78, b.UserWeight, 1e-9)
}

func TestPreferenceWeighter_WithinBounds(t *testing.T) {
	weighter := newWeighter()
	lo, hi := weighter.Bounds()

	prefs := []model.UserPreferences{
		{},
		{RewardType: "points", AnnualFeeTolerance: "high"},
		{RewardType: "cashback", AnnualFeeTolerance: "low", ForeignFeeSensitive: true},
	}
	for _, tier := range valueobject.LoyaltyTiers {
		for _, p := range prefs {
			tc := testutil.NewContext(t, testutil.WithLoyalty(tier), testutil.WithPreferences(p))
			for _, card := range testutil.SampleCards() {
				testutil.AssertBetween(t, weighter.Weight(tc, card), lo, hi, card.ID)
			}
		}
	}
}

func TestPreferenceWeighter_ClampsToConfiguredRange(t *testing.T) {
	cfg := config.DefaultPreferenceConfig()
	cfg.MaxWeight = 1.0
	weighter := service.NewPreferenceWeighter(cfg, discardLogger())

	tc := testutil.NewContext(t, testutil.WithLoyalty(valueobject.LoyaltyPlatinum))
	assert.Equal(t, 1.0, weighter.Weight(tc, testutil.SampleCards()[1]))
}

func TestPreferenceWeighter_LoyaltyNeverDecreasesWeight(t *testing.T) {
	weighter := newWeighter()

	for _, card := range testutil.SampleCards() {
		prev := 0.0
		for _, tier := range valueobject.LoyaltyTiers {
			w := weighter.Weight(testutil.NewContext(t, testutil.WithLoyalty(tier)), card)
			assert.GreaterOrEqual(t, w, prev, "%s at %s", card.ID, tier)
			prev = w
		}
	}
}

func TestPreferenceWeighter_SeasonalPromotionWrapsYearEnd(t *testing.T) {
	weighter := newWeighter()
	citi := testutil.SampleCards()[2]

	tests := []struct {
		date   time.Time
		active bool
	}{
		{time.Date(2026, 11, 14, 12, 0, 0, 0, time.UTC), false},
		{time.Date(2026, 11, 15, 0, 0, 0, 0, time.UTC), true},
		{time.Date(2026, 12, 31, 23, 0, 0, 0, time.UTC), true},
		{time.Date(2027, 1, 5, 9, 0, 0, 0, time.UTC), true},
		{time.Date(2027, 1, 6, 9, 0, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		tc := testutil.NewContext(t, testutil.WithMerchant("Book Nook", "5942"), testutil.WithTimestamp(tt.date))

		b, err := weighter.Compute(tc, citi)
		require.NoError(t, err)
		if tt.active {
			assert.Equal(t, []string{"holiday_shopping"}, b.ActivePromotions, tt.date.String())
			assert.InDelta(t, 1.1, b.PromotionWeight, 1e-9)
		} else {
			assert.Empty(t, b.ActivePromotions, tt.date.String())
			assert.InDelta(t, 1.0, b.PromotionWeight, 1e-9)
		}
	}
}

func TestSeasonalPromotion_ActiveOn(t *testing.T) {
	start, err := service.ParseMonthDay("06-01")
	require.NoError(t, err)
	end, err := service.ParseMonthDay("08-31")
	require.NoError(t, err)
	summer := service.SeasonalPromotion{Start: start, End: end, Categories: []string{"travel"}}

	assert.True(t, summer.ActiveOn(time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC)))
	assert.False(t, summer.ActiveOn(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, summer.AppliesTo("Travel"))
	assert.False(t, summer.AppliesTo("dining"))

	_, err = service.ParseMonthDay("02-30x")
	assert.Error(t, err)
	_, err = service.ParseMonthDay("00-10")
	assert.Error(t, err)
}

func TestPreferenceWeighter_RecoversToBaseWeight(t *testing.T) {
	weighter := newWeighter()
	broken := model.Card{Name: "no id"}

	_, err := weighter.Compute(testutil.NewContext(t), broken)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidCard)

	assert.Equal(t, weighter.BaseWeight(), weighter.Weight(testutil.NewContext(t), broken))
	assert.Equal(t, weighter.BaseWeight(), weighter.Weight(nil, testutil.SampleCards()[0]))
}

func TestPreferenceWeighter_Idempotent(t *testing.T) {
	weighter := newWeighter()
	tc := testutil.NewContext(t, testutil.WithLoyalty(valueobject.LoyaltyGold))
	card := testutil.SampleCards()[0]

	first, err := weighter.Compute(tc, card)
	require.NoError(t, err)
	second, err := weighter.Compute(tc, card)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
