// Package damage holds the hit formula shared by the combat resolver and
// the stage curve generator, so boss HP is sized with the same math that
// later resolves the fight.
package damage

import "math"

const (
	// MinRatio is the share of attack that always lands.
	MinRatio = 0.1
	// ReductionScale is the defense value that halves incoming damage.
	ReductionScale = 100.0
)

// EffectiveDefense is defense after penetration, never negative.
func EffectiveDefense(defense, penetration int) int {
	return max(0, defense-penetration)
}

// Reduction is the damage share removed by effective defense. It rises
// towards 1 but never reaches it.
func Reduction(effectiveDefense int) float64 {
	d := float64(max(0, effectiveDefense))
	return d / (d + ReductionScale)
}

// Calculate returns the non-critical damage of one hit:
// max(floor(atk*0.1), floor(atk*(1-reduction))), and at least 1 for any
// positive attack.
func Calculate(attack, defense, penetration int) int {
	if attack <= 0 {
		return 0
	}
	red := Reduction(EffectiveDefense(defense, penetration))
	floorDmg := int(math.Floor(float64(attack) * MinRatio))
	dmg := int(math.Floor(float64(attack) * (1 - red)))
	return max(1, floorDmg, dmg)
}

// Critical adds base*multiplier (floored) on top of base.
func Critical(base int, multiplier float64) int {
	if multiplier <= 0 {
		return base
	}
	return base + int(math.Floor(float64(base)*multiplier))
}
