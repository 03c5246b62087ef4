package catalog_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/port"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/infrastructure/catalog"
)

func TestDefault_ListsEmbeddedCards(t *testing.T) {
	c := catalog.Default()

	cards, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, cards, 6)
	assert.Equal(t, "chase_sapphire_preferred", cards[0].ID)
	assert.Equal(t, "1.0.0", c.Version())
}

func TestGet_PreservesRequestOrder(t *testing.T) {
	c := catalog.Default()

	cards, err := c.Get(context.Background(), "citi_double_cash", "amex_gold")
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "citi_double_cash", cards[0].ID)
	assert.Equal(t, "amex_gold", cards[1].ID)
}

func TestGet_UnknownCard(t *testing.T) {
	_, err := catalog.Default().Get(context.Background(), "amex_gold", "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, port.ErrCardNotFound)
	assert.Contains(t, err.Error(), "nope")
}

func TestList_ReturnsCopies(t *testing.T) {
	c := catalog.Default()
	ctx := context.Background()

	cards, err := c.List(ctx)
	require.NoError(t, err)
	cards[2].CategoryBonus["5411"] = 100

	again, err := c.Get(ctx, "amex_gold")
	require.NoError(t, err)
	assert.Equal(t, 4.0, again[0].CategoryBonus["5411"])
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", "cards: []"},
		{"missing id", "cards:\n  - name: x\n"},
		{"negative fee", "cards:\n  - card_id: a\n    annual_fee: -1\n"},
		{"duplicate id", "cards:\n  - card_id: a\n  - card_id: a\n"},
		{"not yaml", "cards: [oops"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad_FallsBackToEmbedded(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()

	missing := catalog.Load(filepath.Join(dir, "cards.yaml"), logger)
	cards, _ := missing.List(context.Background())
	assert.Len(t, cards, 6)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("cards: [oops"), 0o600))
	cards, _ = catalog.Load(bad, logger).List(context.Background())
	assert.Len(t, cards, 6)
}

func TestLoad_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
version: "9"
cards:
  - card_id: only_card
    name: Only Card
    network: visa
    base_reward_rate: 0.02
`), 0o600))

	c := catalog.Load(path, slog.New(slog.NewTextHandler(io.Discard, nil)))

	cards, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "only_card", cards[0].ID)
	assert.Equal(t, "9", c.Version())
}
