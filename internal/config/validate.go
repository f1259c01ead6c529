package config

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/xtding233/progression-engine/internal/gameerr"
	"github.com/xtding233/progression-engine/internal/item"
)

// ValidateRaw checks semantic constraints of a RawConfig and reports every
// problem at once.
func ValidateRaw(cfg RawConfig) error {
	var errs []string
	bad := func(format string, args ...any) { errs = append(errs, fmt.Sprintf(format, args...)) }

	// stage
	if s := cfg.Stage; s != nil {
		if s.BaseClearReward != nil && *s.BaseClearReward < 0 {
			bad("stage.base_clear_reward must be >= 0")
		}
		for name, p := range map[string]*float64{"idle_rate_min": s.IdleRateMin, "idle_rate_max": s.IdleRateMax} {
			if p != nil && !isProb(*p) {
				bad("stage.%s must be in [0,1]", name)
			}
		}
		if s.IdleRateMin != nil && s.IdleRateMax != nil && *s.IdleRateMin > *s.IdleRateMax {
			bad("stage.idle_rate_min must be <= idle_rate_max")
		}
	}

	// items
	if it := cfg.Items; it != nil {
		for slot, st := range it.BaseStats {
			if st.Attack < 0 || st.Defense < 0 || st.DefensePenetration < 0 ||
				st.AdditionalAttackChance < 0 || st.CriticalChance < 0 || st.CriticalDamage < 0 {
				bad("items.base_stats.%s must not be negative", slot)
			}
		}
		for g, m := range it.GradeMultipliers {
			if !(m > 0) {
				bad("items.grade_multipliers.%s must be > 0", g)
			}
		}
	}

	// enhance
	if e := cfg.Enhance; e != nil {
		for name, v := range map[string]*int64{
			"low_base": e.LowBase, "low_step": e.LowStep,
			"mid_base": e.MidBase, "mid_step": e.MidStep,
			"high_base": e.HighBase,
		} {
			if v != nil && *v < 0 {
				bad("enhance.%s must be >= 0", name)
			}
		}
		if e.HighGrowth != nil && *e.HighGrowth < 1 {
			bad("enhance.high_growth must be >= 1")
		}
		for g, m := range e.GradeCostMultipliers {
			if !(m > 0) {
				bad("enhance.grade_cost_multipliers.%s must be > 0", g)
			}
		}
		for g, v := range e.GradeBaseIncrease {
			if v < 0 {
				bad("enhance.grade_base_increase.%s must be >= 0", g)
			}
		}
		for i, p := range e.SuccessRates {
			if !(p > 0 && p <= 1) {
				bad("enhance.success_rates[%d] must be in (0,1]", i)
			}
			if i > 0 && p > e.SuccessRates[i-1] {
				bad("enhance.success_rates must not increase (index %d)", i)
			}
		}
		if e.PercentUnit != nil && !(*e.PercentUnit > 0) {
			bad("enhance.percent_unit must be > 0")
		}
		if d := e.Destruction; d != nil {
			if !isProb(d.Chance) {
				bad("enhance.destruction.chance must be in [0,1]")
			}
			if d.MinLevel < 0 || d.MinLevel > item.MaxLevel {
				bad("enhance.destruction.min_level must be in 0..%d", item.MaxLevel)
			}
		}
	}

	// loot box
	if cfg.Loot != nil && cfg.Loot.Box != nil {
		box := cfg.Loot.Box
		if p := box.Price; p != nil {
			if p.Single <= 0 {
				bad("loot.box.price.single must be > 0")
			}
			if p.Ten < 0 {
				bad("loot.box.price.ten must be >= 0 (0 means 10x single)")
			}
		}
		if box.MaxOpens != nil && *box.MaxOpens <= 0 {
			bad("loot.box.max_opens must be > 0")
		}
		if p := box.Pity; p != nil {
			if err := p.Validate(); err != nil {
				var ge *gameerr.Error
				if errors.As(err, &ge) && ge.Cause != nil {
					err = ge.Cause
				}
				bad("loot.box.pity: %v", err)
			}
		}
		if f := box.Featured; f != nil {
			if !f.Slot.Valid() {
				bad("loot.box.featured.slot is not a slot")
			}
			for i, p := range f.OffProbs {
				if !(p > 0 && p < 1) {
					bad("loot.box.featured.off_probs[%d] must be in (0,1)", i)
				}
			}
			if f.MaxOff < 0 {
				bad("loot.box.featured.max_off must be >= 0 (0 means len(off_probs))")
			}
		}
	}

	// valuation
	if v := cfg.Valuation; v != nil {
		for g, p := range v.BasePrices {
			if p <= 0 {
				bad("valuation.base_prices.%s must be > 0", g)
			}
		}
		if v.LevelBonusRate != nil && *v.LevelBonusRate < 0 {
			bad("valuation.level_bonus_rate must be >= 0")
		}
		if v.MaxItems != nil && *v.MaxItems < 0 {
			bad("valuation.max_items must be >= 0 (0 means no ceiling)")
		}
		if v.HighValueThreshold != nil && *v.HighValueThreshold < 0 {
			bad("valuation.high_value_threshold must be >= 0")
		}
		if v.WarnGrade != nil && !v.WarnGrade.Valid() {
			bad("valuation.warn_grade is not a grade")
		}
	}

	return joinProblems(errs)
}

// ValidateBalance checks the constraints that span fields of a resolved
// Balance. An overlay can set one side of a pair and still be wrong against
// the default on the other side.
func ValidateBalance(b Balance) error {
	var errs []string
	bad := func(format string, args ...any) { errs = append(errs, fmt.Sprintf(format, args...)) }

	if s := b.Stage; s.IdleRateMin > s.IdleRateMax {
		bad("stage.idle_rate_min (%g) must be <= idle_rate_max (%g)", s.IdleRateMin, s.IdleRateMax)
	}
	for i, p := range b.Enhance.SuccessRates {
		if i > 0 && p > b.Enhance.SuccessRates[i-1] {
			bad("enhance.success_rates must not increase (index %d)", i)
		}
	}
	if b.Box.MaxOpens <= 0 {
		bad("loot.box.max_opens must be > 0")
	}
	if err := b.Box.Pity.Validate(); err != nil {
		var ge *gameerr.Error
		if errors.As(err, &ge) && ge.Cause != nil {
			err = ge.Cause
		}
		bad("loot.box.pity: %v", err)
	}
	return joinProblems(errs)
}

func joinProblems(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	// map iteration order varies; keep the message stable
	slices.Sort(errs)
	return gameerr.Wrap(gameerr.CodeInvalidConfig, "config validation failed", errors.New(strings.Join(errs, "; ")))
}

func isProb(p float64) bool {
	return !math.IsNaN(p) && p >= 0 && p <= 1
}
