package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/service"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/infrastructure/config"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/pkg/testutil"
)

func newPenaltyCalculator() *service.MerchantPenaltyCalculator {
	return service.NewMerchantPenaltyCalculator(config.DefaultMerchantPenaltyConfig(), nil, discardLogger())
}

type zeroMatcher struct{}

func (zeroMatcher) Similarity(_, _ string) float64 { return 0 }

func TestNormalizeMerchantName(t *testing.T) {
	tests := map[string]string{
		"Amazon.com":                "amazon",
		"  Wal-Mart   Supercenter ": "walmart supercenter",
		"Tesco.co.uk":               "tesco",
		"Joe's Cafe!":               "joes cafe",
		"etsy.shop":                 "etsy",
		"":                          "",
	}
	for in, want := range tests {
		assert.Equal(t, want, service.NormalizeMerchantName(in), in)
	}
}

func TestLevenshteinMatcher(t *testing.T) {
	m := service.LevenshteinMatcher{}

	assert.Equal(t, 1.0, m.Similarity("", ""))
	assert.Equal(t, 1.0, m.Similarity("amazon", "amazon"))
	assert.InDelta(t, 1-3.0/7.0, m.Similarity("kitten", "sitting"), 1e-12)
	assert.Equal(t, 0.0, m.Similarity("abc", "xyz"))
}

func TestMerchantPenalty_KnownMerchantWithMCC(t *testing.T) {
	calc := newPenaltyCalculator()
	tc := testutil.NewContext(t, testutil.WithMerchant("amazon", "5999"))

	b, err := calc.Compute(tc, testutil.SampleCards()[2])
	require.NoError(t, err)

	assert.Equal(t, 0.92, b.MerchantPenalty, "amazon.com entry penalty for 5999")
	assert.NotEqual(t, calc.BasePenalty(), b.MerchantPenalty)
	assert.Equal(t, "amazon.com", b.MatchedMerchant)
	assert.Equal(t, 0.96, b.MCCPenalty)
	assert.Equal(t, 1.0, b.NetworkPenalty)
	assert.InDelta(t, 0.4*0.92+0.3*0.96+0.3*1.0, b.Penalty, 1e-12)
}

func TestMerchantPenalty_FuzzyMatch(t *testing.T) {
	calc := newPenaltyCalculator()
	tc := testutil.NewContext(t, testutil.WithMerchant("Amazn Marketplace", "5942"))

	b, err := calc.Compute(tc, testutil.SampleCards()[0])
	require.NoError(t, err)

	assert.Equal(t, service.SourceFuzzy, b.MerchantSource)
	assert.Equal(t, "amazon.com", b.MatchedMerchant)
	assert.GreaterOrEqual(t, b.Similarity, 0.8)
	assert.Equal(t, 0.94, b.MerchantPenalty)
}

func TestMerchantPenalty_MatcherIsSwappable(t *testing.T) {
	calc := service.NewMerchantPenaltyCalculator(config.DefaultMerchantPenaltyConfig(), zeroMatcher{}, discardLogger())
	tc := testutil.NewContext(t, testutil.WithMerchant("Amazn Marketplace", "5942"))

	b, err := calc.Compute(tc, testutil.SampleCards()[0])
	require.NoError(t, err)

	assert.Equal(t, service.SourceMCCFamily, b.MerchantSource)
	assert.Equal(t, 0.98, b.MerchantPenalty, "5942 falls back to the 59 family")
}

func TestMerchantPenalty_UnknownMerchantFallbacks(t *testing.T) {
	calc := newPenaltyCalculator()
	visa := testutil.SampleCards()[0]

	t.Run("mcc family", func(t *testing.T) {
		b, err := calc.Compute(testutil.NewContext(t, testutil.WithMerchant("Lucky Spins Casino", "7995")), visa)
		require.NoError(t, err)

		assert.Equal(t, service.SourceMCCFamily, b.MerchantSource)
		assert.Equal(t, 0.85, b.MerchantPenalty)
		assert.Equal(t, 0.85, b.MCCPenalty)
		assert.InDelta(t, 0.895, b.Penalty, 1e-12)
	})

	t.Run("base penalty", func(t *testing.T) {
		b, err := calc.Compute(testutil.NewContext(t, testutil.WithMerchant("Corner Grocer", "1234")), visa)
		require.NoError(t, err)

		assert.Equal(t, service.SourceBase, b.MerchantSource)
		assert.Equal(t, 1.0, b.MerchantPenalty)
		assert.Equal(t, 1.0, b.MCCPenalty)
		assert.Equal(t, 1.0, b.Penalty)
	})
}

func TestMerchantPenalty_NetworkPreferences(t *testing.T) {
	calc := newPenaltyCalculator()
	cards := testutil.SampleCards()

	tests := []struct {
		name   string
		prefs  []string
		card   int // index into SampleCards
		want   float64
		source string
	}{
		{"debit wins", []string{"visa", "debit"}, 0, 0.9, "debit_preference"},
		{"preferred network", []string{"visa"}, 0, 1.0, "preferred_match"},
		{"other network preferred", []string{"visa"}, 2, 0.95, "network_mismatch"},
		{"excluded network", []string{"no_amex"}, 1, 0.8, "exclusion"},
		{"exclusion for another network", []string{"no_amex"}, 0, 1.0, "none"},
		{"no preferences", nil, 1, 1.0, "none"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := testutil.NewContext(t, testutil.WithMerchant("Corner Grocer", "1234", tt.prefs...))

			b, err := calc.Compute(tc, cards[tt.card])
			require.NoError(t, err)
			assert.Equal(t, tt.want, b.NetworkPenalty)
			assert.Equal(t, tt.source, b.NetworkSource)
		})
	}
}

func TestMerchantPenalty_WithinBounds(t *testing.T) {
	calc := newPenaltyCalculator()
	lo, hi := calc.Bounds()

	merchants := []struct{ name, mcc string }{
		{"amazon", "5999"}, {"Lucky Spins Casino", "7995"}, {"walmart", "5411"}, {"", ""}, {"x", "4829"},
	}
	prefs := [][]string{nil, {"debit"}, {"visa"}, {"no_amex"}, {"no_visa", "no_mastercard"}}
	for _, m := range merchants {
		for _, p := range prefs {
			tc := testutil.NewContext(t, testutil.WithMerchant(m.name, m.mcc, p...))
			for _, card := range testutil.SampleCards() {
				testutil.AssertBetween(t, calc.Penalty(tc, card), lo, hi, m.name)
			}
		}
	}
}

func TestMerchantPenalty_ClampsToConfiguredMinimum(t *testing.T) {
	cfg := config.DefaultMerchantPenaltyConfig()
	cfg.MinPenalty = 0.9
	calc := service.NewMerchantPenaltyCalculator(cfg, nil, discardLogger())

	tc := testutil.NewContext(t, testutil.WithMerchant("Lucky Spins Casino", "7995", "no_amex"))
	assert.Equal(t, 0.9, calc.Penalty(tc, testutil.SampleCards()[1]))
}

func TestMerchantPenalty_RecoversToBasePenalty(t *testing.T) {
	calc := newPenaltyCalculator()

	_, err := calc.Compute(nil, testutil.SampleCards()[0])
	assert.Error(t, err)
	assert.Equal(t, 1.0, calc.Penalty(nil, testutil.SampleCards()[0]))
}
