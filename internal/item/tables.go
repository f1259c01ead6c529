package item

// Tables are the externally defined item constants: per-slot base stats and
// per-grade stat multipliers. They are loaded from balance config; the
// defaults mirror config/balance/default.yaml.
type Tables struct {
	BaseStats        map[Slot]Stats    `yaml:"base_stats" json:"base_stats"`
	GradeMultipliers map[Grade]float64 `yaml:"grade_multipliers" json:"grade_multipliers"`
}

// DefaultTables returns the built-in balance tables.
func DefaultTables() Tables {
	return Tables{
		BaseStats: map[Slot]Stats{
			Weapon:   {Attack: 10, CriticalDamage: 0.1},
			Helmet:   {Defense: 4},
			Armor:    {Defense: 8},
			Pants:    {Defense: 6},
			Shield:   {Defense: 5},
			Gloves:   {Attack: 2, AdditionalAttackChance: 0.02},
			Boots:    {Defense: 2, AdditionalAttackChance: 0.015},
			Cape:     {Defense: 1, AdditionalAttackChance: 0.015},
			Necklace: {DefensePenetration: 3, CriticalChance: 0.01},
			Ring:     {DefensePenetration: 2, CriticalChance: 0.01},
			Earring:  {DefensePenetration: 2, CriticalDamage: 0.05},
		},
		GradeMultipliers: map[Grade]float64{
			Common:    1.0,
			Rare:      1.5,
			Epic:      2.2,
			Legendary: 3.2,
			Mythic:    4.5,
		},
	}
}

// GradeMultiplier falls back to 1 for grades missing from the table.
func (t Tables) GradeMultiplier(g Grade) float64 {
	if m, ok := t.GradeMultipliers[g]; ok && m > 0 {
		return m
	}
	return 1
}
