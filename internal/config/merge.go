package config

import "maps"

// mergeRaw performs a deep merge: b overrides a wherever b sets a value.
// Maps merge key by key; slices and nested rule blocks (price, pity,
// featured, destruction) replace as a unit.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a

	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}

	// stage
	switch {
	case b.Stage == nil:
	case out.Stage == nil:
		c := *b.Stage
		out.Stage = &c
	default:
		c := *out.Stage
		override(&c.BaseClearReward, b.Stage.BaseClearReward)
		override(&c.IdleRateMin, b.Stage.IdleRateMin)
		override(&c.IdleRateMax, b.Stage.IdleRateMax)
		out.Stage = &c
	}

	// items
	if b.Items != nil {
		c := ItemsRaw{}
		if out.Items != nil {
			c = *out.Items
		}
		c.BaseStats = mergeMap(c.BaseStats, b.Items.BaseStats)
		c.GradeMultipliers = mergeMap(c.GradeMultipliers, b.Items.GradeMultipliers)
		out.Items = &c
	}

	// enhance
	if b.Enhance != nil {
		c := EnhanceRaw{}
		if out.Enhance != nil {
			c = *out.Enhance
		}
		e := b.Enhance
		override(&c.LowBase, e.LowBase)
		override(&c.LowStep, e.LowStep)
		override(&c.MidBase, e.MidBase)
		override(&c.MidStep, e.MidStep)
		override(&c.HighBase, e.HighBase)
		override(&c.HighGrowth, e.HighGrowth)
		override(&c.PercentUnit, e.PercentUnit)
		override(&c.Destruction, e.Destruction)
		c.GradeCostMultipliers = mergeMap(c.GradeCostMultipliers, e.GradeCostMultipliers)
		c.GradeBaseIncrease = mergeMap(c.GradeBaseIncrease, e.GradeBaseIncrease)
		if len(e.SuccessRates) > 0 {
			c.SuccessRates = append([]float64(nil), e.SuccessRates...)
		}
		out.Enhance = &c
	}

	// loot
	if b.Loot != nil && b.Loot.Box != nil {
		box := BoxRaw{}
		if out.Loot != nil && out.Loot.Box != nil {
			box = *out.Loot.Box
		}
		override(&box.Price, b.Loot.Box.Price)
		override(&box.MaxOpens, b.Loot.Box.MaxOpens)
		override(&box.Pity, b.Loot.Box.Pity)
		override(&box.Featured, b.Loot.Box.Featured)
		out.Loot = &LootRaw{Box: &box}
	}

	// valuation
	if b.Valuation != nil {
		c := ValuationRaw{}
		if out.Valuation != nil {
			c = *out.Valuation
		}
		v := b.Valuation
		c.BasePrices = mergeMap(c.BasePrices, v.BasePrices)
		override(&c.LevelBonusRate, v.LevelBonusRate)
		override(&c.MaxItems, v.MaxItems)
		override(&c.HighValueThreshold, v.HighValueThreshold)
		override(&c.WarnGrade, v.WarnGrade)
		out.Valuation = &c
	}

	return out
}

// override replaces *dst with src when src is set.
func override[T any](dst **T, src *T) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

// mergeMap returns a fresh map holding a overlaid with b.
func mergeMap[K comparable, V any](a, b map[K]V) map[K]V {
	if a == nil && b == nil {
		return nil
	}
	out := make(map[K]V, len(a)+len(b))
	maps.Copy(out, a)
	maps.Copy(out, b)
	return out
}
