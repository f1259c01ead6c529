// Package stage generates the per-tier balance curves: required stats, the
// boss, drop-rate tables, idle drop rate and credit rewards for tiers
// 1..100.
package stage

import (
	"fmt"
	"math"
	"sync"

	"github.com/xtding233/progression-engine/internal/damage"
	"github.com/xtding233/progression-engine/internal/gameerr"
)

const (
	MinTier = 1
	MaxTier = 100

	// Floors keeping every generated value positive.
	MinBossHP      = 50
	MinBossAttack  = 1
	MinBossDefense = 1
	MinRequired    = 1

	// Turn limit shrinks from MaxTurnLimit by two turns every five tiers
	// until MinTurnLimit.
	MaxTurnLimit = 50
	MinTurnLimit = 15

	// referencePenetration is the share of required attack the reference
	// player carries as defense penetration when sizing boss HP.
	referencePenetration = 0.05
)

// Boss describes the tier's boss. It is immutable input to combat.
type Boss struct {
	Name    string `json:"name"`
	MaxHP   int    `json:"max_hp"`
	Attack  int    `json:"attack"`
	Defense int    `json:"defense"`
	Tier    int    `json:"tier"`
}

// Info is the read-only configuration of one tier.
type Info struct {
	Tier             int           `json:"tier"`
	RequiredAttack   int           `json:"required_attack"`
	RequiredDefense  int           `json:"required_defense"`
	TurnLimit        int           `json:"turn_limit"`
	CreditMultiplier float64       `json:"credit_multiplier"`
	ClearReward      int64         `json:"clear_reward"`
	IdleDropRate     float64       `json:"idle_drop_rate"`
	ClearDrops       DropRateTable `json:"clear_drops"`
	IdleDrops        DropRateTable `json:"idle_drops"`
	Boss             Boss          `json:"boss"`
}

// Drops returns the grade table for the given event.
func (i Info) Drops(e Event) DropRateTable {
	if e == EventIdle {
		return i.IdleDrops
	}
	return i.ClearDrops
}

// Options are the externally configured knobs of the generator.
type Options struct {
	BaseClearReward int64   // credits paid on a tier-1 clear
	IdleRateMin     float64 // idle gate rate at MinTier
	IdleRateMax     float64 // idle gate rate at MaxTier
}

// DefaultOptions mirror config/balance/default.yaml.
func DefaultOptions() Options {
	return Options{BaseClearReward: 100, IdleRateMin: 0.001, IdleRateMax: 0.002}
}

// Generator holds the precomputed table for all tiers. Build it once and
// share it; it is read-only after construction.
type Generator struct {
	opts  Options
	infos [MaxTier]Info
}

// NewGenerator computes every tier in order.
func NewGenerator(opts Options) *Generator {
	g := &Generator{opts: opts}
	prevHP := 0
	for tier := MinTier; tier <= MaxTier; tier++ {
		info := g.compute(tier)
		// boss HP never drops between tiers, even where the turn limit
		// steps down faster than reference damage grows
		info.Boss.MaxHP = max(info.Boss.MaxHP, prevHP)
		prevHP = info.Boss.MaxHP
		g.infos[tier-MinTier] = info
	}
	return g
}

var defaultGenerator = sync.OnceValue(func() *Generator { return NewGenerator(DefaultOptions()) })

// Default returns the generator built from DefaultOptions.
func Default() *Generator { return defaultGenerator() }

// Options returns the generator's configuration.
func (g *Generator) Options() Options { return g.opts }

// Info returns the tier's configuration. Tiers outside 1..100 are clamped.
func (g *Generator) Info(tier int) Info {
	return g.infos[Clamp(tier)-MinTier]
}

// Boss returns the tier's boss descriptor.
func (g *Generator) Boss(tier int) Boss { return g.Info(tier).Boss }

// All returns every tier in order.
func (g *Generator) All() []Info {
	return append([]Info(nil), g.infos[:]...)
}

func (g *Generator) compute(tier int) Info {
	a, b := interpolate(tier)
	limit := TurnLimit(tier)

	reqAtk := max(MinRequired, roundInt(a.RequiredAttack))
	reqDef := max(MinRequired, roundInt(a.RequiredDefense))
	boss := Boss{
		Name:    fmt.Sprintf("%s (Stage %d)", b.BossName, tier),
		Attack:  max(MinBossAttack, roundInt(a.BossAttack)),
		Defense: max(MinBossDefense, roundInt(a.BossDefense)),
		Tier:    tier,
	}

	pen := roundInt(float64(reqAtk) * referencePenetration)
	perTurn := damage.Calculate(reqAtk, boss.Defense, pen)
	turns := math.Ceil(float64(limit) * b.KillRatio)
	boss.MaxHP = max(MinBossHP, int(math.Floor(float64(perTurn)*turns*b.HPMultiplier)))

	return Info{
		Tier:             tier,
		RequiredAttack:   reqAtk,
		RequiredDefense:  reqDef,
		TurnLimit:        limit,
		CreditMultiplier: math.Round(a.CreditMultiplier*1000) / 1000,
		ClearReward:      int64(math.Floor(float64(g.opts.BaseClearReward)*a.CreditMultiplier + 1e-9)),
		IdleDropRate:     g.idleRate(tier),
		ClearDrops:       b.Clear.Normalized(),
		IdleDrops:        b.Idle.Normalized(),
		Boss:             boss,
	}
}

// idleRate grows linearly from IdleRateMin at tier 1 to IdleRateMax at 100.
func (g *Generator) idleRate(tier int) float64 {
	f := float64(tier-MinTier) / float64(MaxTier-MinTier)
	return g.opts.IdleRateMin + (g.opts.IdleRateMax-g.opts.IdleRateMin)*f
}

// TurnLimit is the number of player turns before a battle times out.
func TurnLimit(tier int) int {
	tier = Clamp(tier)
	return max(MinTurnLimit, MaxTurnLimit-(tier-MinTier)*2/5)
}

// Clamp maps any tier onto 1..100.
func Clamp(tier int) int {
	return min(MaxTier, max(MinTier, tier))
}

// Validate reports tiers outside 1..100 as UnknownStage. Info clamps
// instead of failing; Validate is for callers that want to surface it.
func Validate(tier int) error {
	if tier < MinTier || tier > MaxTier {
		return gameerr.WithMetadata(gameerr.CodeUnknownStage,
			fmt.Sprintf("stage %d outside %d..%d", tier, MinTier, MaxTier),
			map[string]string{"tier": fmt.Sprint(tier), "clamped": fmt.Sprint(Clamp(tier))})
	}
	return nil
}
