// Package catalog provides the read-only card metadata lookup.
package catalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/model"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/port"
)

//go:embed cards.yaml
var defaultCards []byte

type catalogFile struct {
	Version string       `yaml:"version"`
	Cards   []model.Card `yaml:"cards"`
}

// YAMLCatalog is an in-memory CardCatalog loaded once from YAML.
type YAMLCatalog struct {
	version string
	cards   []model.Card
	byID    map[string]int
}

var _ port.CardCatalog = (*YAMLCatalog)(nil)

// Parse builds a catalog from YAML. Every card must validate and ids must be unique.
func Parse(data []byte) (*YAMLCatalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing card catalog: %w", err)
	}
	if len(f.Cards) == 0 {
		return nil, errors.New("card catalog is empty")
	}

	c := &YAMLCatalog{version: f.Version, byID: make(map[string]int, len(f.Cards))}
	for i, card := range f.Cards {
		if err := card.Validate(); err != nil {
			return nil, fmt.Errorf("cards[%d]: %w", i, err)
		}
		if _, dup := c.byID[card.ID]; dup {
			return nil, fmt.Errorf("cards[%d]: duplicate card_id %q", i, card.ID)
		}
		c.byID[card.ID] = len(c.cards)
		c.cards = append(c.cards, card.Clone())
	}
	return c, nil
}

// Default returns the embedded catalog.
func Default() *YAMLCatalog {
	c, err := Parse(defaultCards)
	if err != nil {
		panic(fmt.Sprintf("embedded card catalog: %v", err))
	}
	return c
}

// Load reads the catalog at path. An empty or missing path yields the embedded
// catalog; an unreadable or invalid file yields it with a warning.
func Load(path string, logger *slog.Logger) *YAMLCatalog {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Info("card catalog not found, using embedded catalog", slog.String("path", path))
		return Default()
	}
	if err == nil {
		var c *YAMLCatalog
		if c, err = Parse(data); err == nil {
			logger.Info("loaded card catalog", slog.String("path", path), slog.Int("cards", len(c.cards)))
			return c
		}
	}
	logger.Warn("invalid card catalog, using embedded catalog",
		slog.String("path", path),
		slog.String("error", err.Error()),
	)
	return Default()
}

// Version is the catalog file version.
func (c *YAMLCatalog) Version() string { return c.version }

// List returns copies of every card in file order.
func (c *YAMLCatalog) List(_ context.Context) ([]model.Card, error) {
	out := make([]model.Card, len(c.cards))
	for i, card := range c.cards {
		out[i] = card.Clone()
	}
	return out, nil
}

// Get returns copies of the requested cards in request order.
func (c *YAMLCatalog) Get(_ context.Context, ids ...string) ([]model.Card, error) {
	out := make([]model.Card, 0, len(ids))
	for _, id := range ids {
		i, ok := c.byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", port.ErrCardNotFound, id)
		}
		out = append(out, c.cards[i].Clone())
	}
	return out, nil
}
