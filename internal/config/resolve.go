package config

import "maps"

// Resolve applies raw over the built-in defaults and validates the result.
func Resolve(raw RawConfig) (Balance, error) {
	if err := ValidateRaw(raw); err != nil {
		return Balance{}, err
	}
	b := Defaults()
	b.Version = raw.Version

	if s := raw.Stage; s != nil {
		setIf(&b.Stage.BaseClearReward, s.BaseClearReward)
		setIf(&b.Stage.IdleRateMin, s.IdleRateMin)
		setIf(&b.Stage.IdleRateMax, s.IdleRateMax)
	}
	if it := raw.Items; it != nil {
		maps.Copy(b.Items.BaseStats, it.BaseStats)
		maps.Copy(b.Items.GradeMultipliers, it.GradeMultipliers)
	}
	if e := raw.Enhance; e != nil {
		setIf(&b.Enhance.LowBase, e.LowBase)
		setIf(&b.Enhance.LowStep, e.LowStep)
		setIf(&b.Enhance.MidBase, e.MidBase)
		setIf(&b.Enhance.MidStep, e.MidStep)
		setIf(&b.Enhance.HighBase, e.HighBase)
		setIf(&b.Enhance.HighGrowth, e.HighGrowth)
		setIf(&b.Enhance.PercentUnit, e.PercentUnit)
		setIf(&b.Enhance.Destruction, e.Destruction)
		maps.Copy(b.Enhance.GradeCostMultipliers, e.GradeCostMultipliers)
		maps.Copy(b.Enhance.GradeBaseIncrease, e.GradeBaseIncrease)
		if len(e.SuccessRates) > 0 {
			b.Enhance.SuccessRates = append([]float64(nil), e.SuccessRates...)
		}
	}
	if l := raw.Loot; l != nil && l.Box != nil {
		setIf(&b.Box.Price, l.Box.Price)
		setIf(&b.Box.MaxOpens, l.Box.MaxOpens)
		setIf(&b.Box.Pity, l.Box.Pity)
		if l.Box.Featured != nil {
			f := *l.Box.Featured
			f.OffProbs = append([]float64(nil), f.OffProbs...)
			b.Box.Featured = &f
		}
	}
	if v := raw.Valuation; v != nil {
		maps.Copy(b.Valuation.BasePrices, v.BasePrices)
		setIf(&b.Valuation.LevelBonusRate, v.LevelBonusRate)
		setIf(&b.Valuation.MaxItems, v.MaxItems)
		setIf(&b.Valuation.HighValueThreshold, v.HighValueThreshold)
		setIf(&b.Valuation.WarnGrade, v.WarnGrade)
	}
	if err := ValidateBalance(b); err != nil {
		return Balance{}, err
	}
	return b, nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
