package config

import (
	"github.com/xtding233/progression-engine/internal/enhance"
	"github.com/xtding233/progression-engine/internal/item"
	"github.com/xtding233/progression-engine/internal/loot"
	"github.com/xtding233/progression-engine/internal/stage"
	"github.com/xtding233/progression-engine/internal/valuation"
)

// RawConfig is one balance file as loaded from YAML. Every field is
// optional so a profile can override single keys of the default file.
type RawConfig struct {
	Version   string        `yaml:"version"`
	Notes     string        `yaml:"notes,omitempty"`
	Stage     *StageRaw     `yaml:"stage,omitempty"`
	Items     *ItemsRaw     `yaml:"items,omitempty"`
	Enhance   *EnhanceRaw   `yaml:"enhance,omitempty"`
	Loot      *LootRaw      `yaml:"loot,omitempty"`
	Valuation *ValuationRaw `yaml:"valuation,omitempty"`
}

type StageRaw struct {
	BaseClearReward *int64   `yaml:"base_clear_reward"`
	IdleRateMin     *float64 `yaml:"idle_rate_min"`
	IdleRateMax     *float64 `yaml:"idle_rate_max"`
}

type ItemsRaw struct {
	BaseStats        map[item.Slot]item.Stats `yaml:"base_stats"`
	GradeMultipliers map[item.Grade]float64   `yaml:"grade_multipliers"`
}

type EnhanceRaw struct {
	LowBase              *int64                   `yaml:"low_base"`
	LowStep              *int64                   `yaml:"low_step"`
	MidBase              *int64                   `yaml:"mid_base"`
	MidStep              *int64                   `yaml:"mid_step"`
	HighBase             *int64                   `yaml:"high_base"`
	HighGrowth           *float64                 `yaml:"high_growth"`
	GradeCostMultipliers map[item.Grade]float64   `yaml:"grade_cost_multipliers"`
	GradeBaseIncrease    map[item.Grade]float64   `yaml:"grade_base_increase"`
	SuccessRates         []float64                `yaml:"success_rates"` // replaces, never merges
	PercentUnit          *float64                 `yaml:"percent_unit"`
	Destruction          *enhance.DestructionRule `yaml:"destruction,omitempty"`
}

type LootRaw struct {
	Box *BoxRaw `yaml:"box,omitempty"`
}

type BoxRaw struct {
	Price    *loot.Price      `yaml:"price,omitempty"`
	MaxOpens *int             `yaml:"max_opens,omitempty"`
	Pity     *loot.PityConfig `yaml:"pity,omitempty"`
	Featured *loot.Featured   `yaml:"featured,omitempty"`
}

type ValuationRaw struct {
	BasePrices         map[item.Grade]int64 `yaml:"base_prices"`
	LevelBonusRate     *float64             `yaml:"level_bonus_rate"`
	MaxItems           *int                 `yaml:"max_items"`
	HighValueThreshold *int64               `yaml:"high_value_threshold"`
	WarnGrade          *item.Grade          `yaml:"warn_grade"`
}

// Balance is the resolved configuration handed to the engines.
type Balance struct {
	Version   string
	Stage     stage.Options
	Items     item.Tables
	Enhance   enhance.Config
	Box       loot.BoxConfig
	Valuation valuation.Config
}

// Defaults returns the built-in balance, identical to
// config/balance/default.yaml.
func Defaults() Balance {
	return Balance{
		Stage:     stage.DefaultOptions(),
		Items:     item.DefaultTables(),
		Enhance:   enhance.DefaultConfig(),
		Box:       loot.DefaultBoxConfig(),
		Valuation: valuation.DefaultConfig(),
	}
}
