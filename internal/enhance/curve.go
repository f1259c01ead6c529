// Package enhance implements item enhancement: the cost, success-rate and
// stat-gain curves and the per-attempt resolver.
//
// Attempt flow:
//  1. validate the item, the level cap and the credit balance
//  2. roll against the success rate of the target level
//  3. on failure at level 12 or above, downgrade (or destroy, when the
//     configured destruction rule fires and is not prevented)
package enhance

import (
	"math"

	"github.com/xtding233/progression-engine/internal/item"
)

const (
	// LowTierMax and MidTierMax split the target levels into the three cost
	// and efficiency bands.
	LowTierMax = 5
	MidTierMax = 11

	// RiskLevel is the first target level that can fail, and the first
	// current level whose failure downgrades.
	RiskLevel = 12
)

// DestructionRule decides when a failed attempt destroys the item instead
// of downgrading it. The rule is supplied by configuration.
type DestructionRule struct {
	Enabled  bool    `yaml:"enabled" json:"enabled"`
	MinLevel int     `yaml:"min_level" json:"min_level"` // current level from which destruction may fire
	Chance   float64 `yaml:"chance" json:"chance"`       // probability on an eligible failure
}

// Config holds the enhancement curves. Costs are in credits.
type Config struct {
	LowBase  int64 `yaml:"low_base"` // cost at target 0; +LowStep per level up to 5
	LowStep  int64 `yaml:"low_step"`
	MidBase  int64 `yaml:"mid_base"` // cost at target 5; +MidStep per level 6..11
	MidStep  int64 `yaml:"mid_step"`
	HighBase int64 `yaml:"high_base"` // cost at target 12 for a 1.0 grade multiplier

	HighGrowth float64 `yaml:"high_growth"` // per-level cost factor from 12

	GradeCostMultipliers map[item.Grade]float64 `yaml:"grade_cost_multipliers"`
	GradeBaseIncrease    map[item.Grade]float64 `yaml:"grade_base_increase"`

	// SuccessRates lists the success rate for target levels 12, 13, ...;
	// targets past the end use the last entry.
	SuccessRates []float64 `yaml:"success_rates"`

	// PercentUnit converts one unit of gain into a percentage stat.
	PercentUnit float64 `yaml:"percent_unit"`

	Destruction DestructionRule `yaml:"destruction"`
}

// DefaultConfig mirrors config/balance/default.yaml. The destruction rule
// is configured but disabled.
func DefaultConfig() Config {
	rates := make([]float64, 0, item.MaxLevel-RiskLevel+1)
	for l := RiskLevel; l <= item.MaxLevel; l++ {
		rates = append(rates, math.Round((0.90-0.05*float64(l-RiskLevel))*100)/100)
	}
	return Config{
		LowBase:    1000,
		LowStep:    200,
		MidBase:    1500,
		MidStep:    250,
		HighBase:   5000,
		HighGrowth: 1.25,
		GradeCostMultipliers: map[item.Grade]float64{
			item.Common:    1.0,
			item.Rare:      1.3,
			item.Epic:      1.7,
			item.Legendary: 2.2,
			item.Mythic:    3.0,
		},
		GradeBaseIncrease: map[item.Grade]float64{
			item.Common:    2,
			item.Rare:      3,
			item.Epic:      4,
			item.Legendary: 6,
			item.Mythic:    8,
		},
		SuccessRates: rates,
		PercentUnit:  0.0005,
		Destruction:  DestructionRule{MinLevel: 15, Chance: 0.05},
	}
}

// Cost is the credit price of enhancing an item of grade g to target.
func (c Config) Cost(target int, g item.Grade) int64 {
	switch {
	case target <= LowTierMax:
		return c.LowBase + c.LowStep*int64(max(0, target))
	case target <= MidTierMax:
		return c.MidBase + c.MidStep*int64(target-LowTierMax)
	}
	m, ok := c.GradeCostMultipliers[g]
	if !ok {
		m = 1
	}
	return int64(math.Floor(float64(c.HighBase)*math.Pow(c.HighGrowth, float64(target-RiskLevel))*m + 1e-9))
}

// SuccessRate is the chance of reaching target: 1 up to level 11, then
// the configured descending table.
func (c Config) SuccessRate(target int) float64 {
	if target < RiskLevel || len(c.SuccessRates) == 0 {
		return 1
	}
	i := min(target-RiskLevel, len(c.SuccessRates)-1)
	return c.SuccessRates[i]
}

// LevelEfficiency scales the per-level gain: flat 0.6 up to 5, 0.8 to 1.1
// over 6..11, then 1.5 to 8.5 over 12..25.
func LevelEfficiency(level int) float64 {
	switch {
	case level <= LowTierMax:
		return 0.6
	case level <= MidTierMax:
		return 0.8 + 0.06*float64(level-6)
	}
	level = min(level, item.MaxLevel)
	return 1.5 + float64(level-RiskLevel)*7/13
}

// Gain is the bonus granted when it reaches level. Only the slot's primary
// stat grows. It is a pure function of the item and level, so a downgrade
// removes exactly what the matching success granted.
func (c Config) Gain(it item.Item, level int) item.Stats {
	kind := it.PrimaryStat()
	units := c.GradeBaseIncrease[it.Grade] * LevelEfficiency(level)
	nonZero := it.Base.Get(kind) != 0

	if kind.Percentage() {
		v := item.FloorPercent(units * c.PercentUnit)
		if nonZero {
			v = max(v, item.PercentStep)
		}
		return item.Only(kind, v)
	}
	v := math.Floor(units)
	if nonZero {
		v = max(v, 1)
	}
	return item.Only(kind, v)
}
