package loot

import (
	"fmt"
	"math"
	"strconv"

	"github.com/xtding233/progression-engine/internal/gameerr"
	"github.com/xtding233/progression-engine/internal/item"
	"github.com/xtding233/progression-engine/internal/random"
	"github.com/xtding233/progression-engine/internal/stage"
)

// Price defines how many credits box openings cost.
type Price struct {
	Single int64 `yaml:"single" json:"single"` // credits per open
	Ten    int64 `yaml:"ten" json:"ten"`       // optional bundle price for ten opens; 0 means 10*Single
}

// For returns the credits required for n opens, using the ten-open bundle
// price for every full ten. The result saturates at math.MaxInt64.
func (p Price) For(n int) int64 {
	if n <= 0 {
		return 0
	}
	if p.Ten > 0 {
		tens, rem := int64(n/10), int64(n%10)
		return addSat(mulSat(tens, p.Ten), mulSat(rem, p.Single))
	}
	return mulSat(int64(n), p.Single)
}

// mulSat and addSat assume non-negative operands.
func mulSat(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	if a > math.MaxInt64/b {
		return math.MaxInt64
	}
	return a * b
}

func addSat(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

// Featured makes one slot the box's featured slot. An epic+ result lands
// on it unless an off roll fails it; after MaxOff consecutive misses the
// next epic+ result is forced onto it.
type Featured struct {
	Slot     item.Slot `yaml:"slot" json:"slot"`
	OffProbs []float64 `yaml:"off_probs" json:"off_probs"` // per-streak off chance; last value repeats
	MaxOff   int       `yaml:"max_off" json:"max_off"`     // 0 means len(OffProbs)
}

// offProb returns the off chance at the current streak, kept inside (0,1).
func (f *Featured) offProb(streak int) float64 {
	if len(f.OffProbs) == 0 {
		return 0.5
	}
	p := f.OffProbs[min(max(streak, 0), len(f.OffProbs)-1)]
	if !(p > 0 && p < 1) {
		return 0.5
	}
	return p
}

func (f *Featured) maxOff() int {
	if f.MaxOff > 0 {
		return f.MaxOff
	}
	return max(1, len(f.OffProbs))
}

// BoxConfig is a credit-priced loot box. Each open is a guaranteed drop
// at the player's tier whose grade roll is split into epic+ or not, so
// pity can apply.
type BoxConfig struct {
	Price    Price      `yaml:"price" json:"price"`
	MaxOpens int        `yaml:"max_opens" json:"max_opens"` // per call; 0 means DefaultMaxOpens
	Pity     PityConfig `yaml:"pity" json:"pity"`
	Featured *Featured  `yaml:"featured,omitempty" json:"featured,omitempty"`
}

// DefaultMaxOpens bounds one Open call when the config leaves it unset.
const DefaultMaxOpens = 100

func (c BoxConfig) maxOpens() int {
	if c.MaxOpens > 0 {
		return c.MaxOpens
	}
	return DefaultMaxOpens
}

// DefaultBoxConfig mirrors config/balance/default.yaml.
func DefaultBoxConfig() BoxConfig {
	return BoxConfig{
		Price:    Price{Single: 500, Ten: 4500},
		MaxOpens: DefaultMaxOpens,
		Pity:     PityConfig{Hard: 50, SoftStart: 35, SoftTarget: 0.5, Easing: EaseLinear},
	}
}

// Opening is the result of opening a box n times.
type Opening struct {
	Items []item.Item `json:"items"`
	Cost  int64       `json:"cost"`
	Pity  PityState   `json:"pity"`
}

// Box opens loot boxes through an Engine.
type Box struct {
	cfg    BoxConfig
	engine *Engine
}

// NewBox validates cfg and binds it to engine.
func NewBox(cfg BoxConfig, engine *Engine) (*Box, error) {
	if err := cfg.Pity.Validate(); err != nil {
		return nil, err
	}
	if cfg.Price.Single <= 0 {
		return nil, gameerr.Wrap(gameerr.CodeInvalidConfig, "box", fmt.Errorf("single price %d must be positive", cfg.Price.Single))
	}
	if cfg.Price.Ten < 0 {
		return nil, gameerr.Wrap(gameerr.CodeInvalidConfig, "box", fmt.Errorf("ten price %d must not be negative", cfg.Price.Ten))
	}
	if cfg.MaxOpens < 0 {
		return nil, gameerr.Wrap(gameerr.CodeInvalidConfig, "box", fmt.Errorf("max opens %d must not be negative", cfg.MaxOpens))
	}
	if cfg.Featured != nil && !cfg.Featured.Slot.Valid() {
		return nil, gameerr.Wrap(gameerr.CodeInvalidConfig, "box", fmt.Errorf("invalid featured slot %d", int(cfg.Featured.Slot)))
	}
	return &Box{cfg: cfg, engine: engine}, nil
}

// Config returns the box configuration.
func (b *Box) Config() BoxConfig { return b.cfg }

// Open opens the box n times at tier, charging Price.For(n). State is the
// player's pity progress; the updated progress is returned in Opening.
// n above the configured MaxOpens is rejected before anything is charged.
func (b *Box) Open(tier, n int, credits int64, state PityState) (Opening, error) {
	if n <= 0 {
		return Opening{Pity: state}, nil
	}
	if limit := b.cfg.maxOpens(); n > limit {
		return Opening{}, gameerr.WithMetadata(gameerr.CodeInvalidRequest,
			fmt.Sprintf("%d box opens requested, at most %d per call", n, limit),
			map[string]string{
				"count":     strconv.Itoa(n),
				"max_opens": strconv.Itoa(limit),
			})
	}
	cost := b.cfg.Price.For(n)
	if credits < cost {
		return Opening{}, gameerr.WithMetadata(gameerr.CodeInsufficientFunds,
			fmt.Sprintf("%d box opens cost %d credits, have %d", n, cost, credits),
			map[string]string{
				"cost":    strconv.FormatInt(cost, 10),
				"credits": strconv.FormatInt(credits, 10),
			})
	}

	tier = stage.Clamp(tier)
	table := b.engine.stages.Info(tier).ClearDrops
	out := Opening{Items: make([]item.Item, 0, n), Cost: cost, Pity: state}
	for range n {
		it, next, err := b.openOne(tier, table, out.Pity)
		if err != nil {
			return Opening{}, err
		}
		out.Items = append(out.Items, it)
		out.Pity = next
	}
	return out, nil
}

func (b *Box) openOne(tier int, table stage.DropRateTable, s PityState) (item.Item, PityState, error) {
	rng := b.engine.rng
	pEpic := table.AtLeast(item.Epic)

	var hit bool
	if b.cfg.Pity.guaranteed(s) {
		hit = true
	} else {
		var err error
		hit, err = random.Draw(b.cfg.Pity.effectiveProb(pEpic, s), rng)
		if err != nil {
			return item.Item{}, s, err
		}
	}

	if !hit {
		s.Count++
		grade := rollBetween(within(table, item.Common, item.Rare), item.Common, item.Rare, rng)
		return b.engine.RollItem(tier, grade), s, nil
	}

	s.Count = 0
	grade := rollBetween(within(table, item.Epic, item.Mythic), item.Epic, item.Mythic, rng)
	if b.cfg.Featured == nil {
		return b.engine.RollItem(tier, grade), s, nil
	}
	slot, s, err := b.featuredSlot(s)
	if err != nil {
		return item.Item{}, s, err
	}
	return b.engine.rollSlot(tier, grade, slot), s, nil
}

// featuredSlot decides the slot of an epic+ result.
func (b *Box) featuredSlot(s PityState) (item.Slot, PityState, error) {
	f := b.cfg.Featured
	if s.GuaranteedNext {
		s.GuaranteedNext = false
		s.OffStreak = 0
		return f.Slot, s, nil
	}
	off, err := random.Draw(f.offProb(s.OffStreak), b.engine.rng)
	if err != nil {
		return 0, s, err
	}
	if !off {
		s.OffStreak = 0
		return f.Slot, s, nil
	}
	s.OffStreak++
	if s.OffStreak >= f.maxOff() {
		s.GuaranteedNext = true
	}
	others := make([]item.Slot, 0, len(item.Slots)-1)
	for _, sl := range item.Slots {
		if sl != f.Slot {
			others = append(others, sl)
		}
	}
	return others[random.IntN(b.engine.rng, len(others))], s, nil
}

// within keeps only grades lo..hi of t, renormalized. A range with no mass
// falls back to lo.
func within(t stage.DropRateTable, lo, hi item.Grade) stage.DropRateTable {
	var out stage.DropRateTable
	var sum float64
	for g := lo; g <= hi; g++ {
		out[g] = t.Rate(g)
		sum += out[g]
	}
	if sum <= 0 || math.IsNaN(sum) {
		out = stage.DropRateTable{}
		out[lo] = 1
		return out
	}
	return out.Normalized()
}
