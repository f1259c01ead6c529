// Package valuation prices items for sale and checks bulk-sale requests.
package valuation

import (
	"math"

	"github.com/xtding233/progression-engine/internal/gameerr"
	"github.com/xtding233/progression-engine/internal/item"
)

// Config holds sale prices and bulk-sale limits.
type Config struct {
	BasePrices     map[item.Grade]int64 `yaml:"base_prices" json:"base_prices"`
	LevelBonusRate float64              `yaml:"level_bonus_rate" json:"level_bonus_rate"` // share of base price per enhancement level

	MaxItems           int        `yaml:"max_items" json:"max_items"`                       // hard ceiling unless SelectAll
	HighValueThreshold int64      `yaml:"high_value_threshold" json:"high_value_threshold"` // warn at or above this total
	WarnGrade          item.Grade `yaml:"warn_grade" json:"warn_grade"`                     // warn when selling this grade or above
}

// DefaultConfig mirrors config/balance/default.yaml.
func DefaultConfig() Config {
	return Config{
		BasePrices: map[item.Grade]int64{
			item.Common:    100,
			item.Rare:      300,
			item.Epic:      1000,
			item.Legendary: 3000,
			item.Mythic:    10000,
		},
		LevelBonusRate:     0.05,
		MaxItems:           50,
		HighValueThreshold: 10000,
		WarnGrade:          item.Rare,
	}
}

// Engine prices items against a Config. It is read-only and safe to share.
type Engine struct {
	cfg Config
}

func New(cfg Config) *Engine { return &Engine{cfg: cfg} }

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }

// BasePrice is the level-0 price of grade g.
func (e *Engine) BasePrice(g item.Grade) int64 { return e.cfg.BasePrices[g] }

// SalePrice is basePrice + floor(basePrice * rate * level).
func (e *Engine) SalePrice(it item.Item) (int64, error) {
	if err := it.Validate(); err != nil {
		return 0, err
	}
	base, ok := e.cfg.BasePrices[it.Grade]
	if !ok {
		return 0, gameerr.WithMetadata(gameerr.CodeInvalidItemState,
			"no sale price for grade "+it.Grade.String(), map[string]string{"item_id": it.ID})
	}
	bonus := int64(math.Floor(float64(base)*e.cfg.LevelBonusRate*float64(it.Level) + 1e-9))
	return base + bonus, nil
}

// BatchTotal sums SalePrice over items.
func (e *Engine) BatchTotal(items []item.Item) (int64, error) {
	var total int64
	for _, it := range items {
		p, err := e.SalePrice(it)
		if err != nil {
			return 0, err
		}
		total += p
	}
	return total, nil
}

// CanSell reports whether it may be sold: well formed and not equipped.
func (e *Engine) CanSell(it item.Item) bool {
	return !it.Equipped && it.Validate() == nil
}
