package loot

import (
	"fmt"

	"github.com/xtding233/progression-engine/internal/gameerr"
)

// Easing specifies how the epic+ chance ramps up as a box approaches pity.
type Easing string

const (
	EaseLinear     Easing = "linear"
	EaseOutQuad    Easing = "easeOutQuad"
	EaseInOutCubic Easing = "easeInOutCubic"
)

// PityConfig guarantees an epic-or-better box result. Example: Hard=50,
// SoftStart=35, SoftTarget=0.5: opens 36..49 without a hit ramp the epic+
// chance up to 0.5 and open 50 always hits.
type PityConfig struct {
	Hard       int     `yaml:"hard" json:"hard"`             // 0 disables pity
	SoftStart  int     `yaml:"soft_start" json:"soft_start"` // misses before the ramp begins
	SoftTarget float64 `yaml:"soft_target" json:"soft_target"`
	Easing     Easing  `yaml:"easing" json:"easing"`
}

// Soft reports whether a soft ramp is configured.
func (c PityConfig) Soft() bool { return c.SoftTarget > 0 }

// Validate checks the ramp fits before hard pity.
func (c PityConfig) Validate() error {
	if c.Hard < 0 {
		return gameerr.Wrap(gameerr.CodeInvalidConfig, "pity", fmt.Errorf("hard pity %d is negative", c.Hard))
	}
	if !c.Soft() {
		return nil
	}
	switch {
	case c.Hard <= 1:
		return gameerr.Wrap(gameerr.CodeInvalidConfig, "pity", fmt.Errorf("soft ramp needs hard pity > 1, got %d", c.Hard))
	case c.SoftTarget >= 1:
		return gameerr.Wrap(gameerr.CodeInvalidConfig, "pity", fmt.Errorf("soft target %v must be below 1", c.SoftTarget))
	case c.SoftStart < 0 || c.SoftStart >= c.Hard-1:
		// ramp ends at Hard-1; it needs room to ramp
		return gameerr.Wrap(gameerr.CodeInvalidConfig, "pity", fmt.Errorf("soft start %d must be in 0..%d", c.SoftStart, c.Hard-2))
	}
	switch c.Easing {
	case "", EaseLinear, EaseOutQuad, EaseInOutCubic:
		return nil
	}
	return gameerr.Wrap(gameerr.CodeInvalidConfig, "pity", fmt.Errorf("unknown easing %q", c.Easing))
}

// PityState is the player's box progress. The caller persists it between
// openings.
type PityState struct {
	Count          int  `json:"count"`           // opens since the last epic+ result
	OffStreak      int  `json:"off_streak"`      // consecutive epic+ results off the featured slot
	GuaranteedNext bool `json:"guaranteed_next"` // next epic+ result is the featured slot
}

// guaranteed reports whether the next open hits hard pity.
func (c PityConfig) guaranteed(s PityState) bool {
	return c.Hard > 0 && s.Count+1 >= c.Hard
}

// effectiveProb is the epic+ chance for the next open:
// 1 at hard pity, ramped from base toward SoftTarget after SoftStart
// misses, base otherwise.
func (c PityConfig) effectiveProb(base float64, s PityState) float64 {
	if c.guaranteed(s) {
		return 1
	}
	if !c.Soft() || s.Count < c.SoftStart {
		return base
	}
	length := float64(c.Hard - 1 - c.SoftStart)
	if length <= 0 {
		return base
	}
	t := min(1, max(0, float64(s.Count-c.SoftStart)/length))
	switch c.Easing {
	case EaseOutQuad:
		t = 1 - (1-t)*(1-t)
	case EaseInOutCubic:
		if t < 0.5 {
			t = 4 * t * t * t
		} else {
			u := -2*t + 2
			t = 1 - u*u*u/2
		}
	}
	p := base + (c.SoftTarget-base)*t
	// stay below 1 so only hard pity guarantees
	return min(max(p, 0), 0.999999999999)
}
