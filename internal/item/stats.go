package item

import "math"

// StatKind names one field of a Stats block.
type StatKind int

const (
	StatAttack StatKind = iota
	StatDefense
	StatDefensePenetration
	StatAdditionalAttack
	StatCriticalChance
	StatCriticalDamage
)

// PercentStep is the resolution of percentage stats (0.1%).
const PercentStep = 1.0 / percentScale

const percentScale = 1000

// Percentage reports whether the stat is a fraction (0.05 == 5%) rather
// than an integer amount.
func (k StatKind) Percentage() bool {
	return k == StatAdditionalAttack || k == StatCriticalChance || k == StatCriticalDamage
}

func (k StatKind) String() string {
	switch k {
	case StatAttack:
		return "attack"
	case StatDefense:
		return "defense"
	case StatDefensePenetration:
		return "defense_penetration"
	case StatAdditionalAttack:
		return "additional_attack_chance"
	case StatCriticalChance:
		return "critical_chance"
	case StatCriticalDamage:
		return "critical_damage"
	}
	return "unknown"
}

// Stats is an item stat block. Integer stats are flat amounts; the three
// chance/multiplier stats are fractions.
type Stats struct {
	Attack                 int     `json:"attack,omitempty" yaml:"attack,omitempty"`
	Defense                int     `json:"defense,omitempty" yaml:"defense,omitempty"`
	DefensePenetration     int     `json:"defense_penetration,omitempty" yaml:"defense_penetration,omitempty"`
	AdditionalAttackChance float64 `json:"additional_attack_chance,omitempty" yaml:"additional_attack_chance,omitempty"`
	CriticalChance         float64 `json:"critical_chance,omitempty" yaml:"critical_chance,omitempty"`
	CriticalDamage         float64 `json:"critical_damage,omitempty" yaml:"critical_damage,omitempty"`
}

func (s Stats) Add(o Stats) Stats {
	return Stats{
		Attack:                 s.Attack + o.Attack,
		Defense:                s.Defense + o.Defense,
		DefensePenetration:     s.DefensePenetration + o.DefensePenetration,
		AdditionalAttackChance: RoundPercent(s.AdditionalAttackChance + o.AdditionalAttackChance),
		CriticalChance:         RoundPercent(s.CriticalChance + o.CriticalChance),
		CriticalDamage:         RoundPercent(s.CriticalDamage + o.CriticalDamage),
	}
}

func (s Stats) Neg() Stats {
	return Stats{
		Attack:                 -s.Attack,
		Defense:                -s.Defense,
		DefensePenetration:     -s.DefensePenetration,
		AdditionalAttackChance: -s.AdditionalAttackChance,
		CriticalChance:         -s.CriticalChance,
		CriticalDamage:         -s.CriticalDamage,
	}
}

func (s Stats) Sub(o Stats) Stats { return s.Add(o.Neg()) }

// Get returns the stat as a float regardless of its storage type.
func (s Stats) Get(k StatKind) float64 {
	switch k {
	case StatAttack:
		return float64(s.Attack)
	case StatDefense:
		return float64(s.Defense)
	case StatDefensePenetration:
		return float64(s.DefensePenetration)
	case StatAdditionalAttack:
		return s.AdditionalAttackChance
	case StatCriticalChance:
		return s.CriticalChance
	case StatCriticalDamage:
		return s.CriticalDamage
	}
	return 0
}

// With returns a copy with stat k set to v. Integer stats are truncated.
func (s Stats) With(k StatKind, v float64) Stats {
	switch k {
	case StatAttack:
		s.Attack = int(v)
	case StatDefense:
		s.Defense = int(v)
	case StatDefensePenetration:
		s.DefensePenetration = int(v)
	case StatAdditionalAttack:
		s.AdditionalAttackChance = RoundPercent(v)
	case StatCriticalChance:
		s.CriticalChance = RoundPercent(v)
	case StatCriticalDamage:
		s.CriticalDamage = RoundPercent(v)
	}
	return s
}

// Only returns a stats block holding just stat k = v.
func Only(k StatKind, v float64) Stats { return Stats{}.With(k, v) }

func (s Stats) IsZero() bool { return s == Stats{} }

// RoundPercent snaps a fraction to PercentStep so repeated add/sub of the
// same gains returns to the exact starting value.
func RoundPercent(v float64) float64 {
	return math.Round(v*percentScale) / percentScale
}

// FloorPercent floors a fraction to PercentStep.
func FloorPercent(v float64) float64 {
	return math.Floor(v*percentScale+1e-9) / percentScale
}
