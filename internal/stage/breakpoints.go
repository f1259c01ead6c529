package stage

import "math"

// anchor holds every interpolated curve value at one breakpoint tier.
type anchor struct {
	RequiredAttack   float64
	RequiredDefense  float64
	BossAttack       float64
	BossDefense      float64
	CreditMultiplier float64
}

// band is one contiguous tier range. Curves run linearly from the previous
// band's End (or origin) to this band's End.
type band struct {
	From, To     int
	End          anchor
	BossName     string
	HPMultiplier float64
	KillRatio    float64 // share of the turn limit a reference player needs
	Clear        DropRateTable
	Idle         DropRateTable
}

// origin is the curve value at MinTier.
// Anchor values are listed as required attack, required defense, boss attack,
// boss defense, credit multiplier.
var origin = anchor{10, 5, 5, 3, 1.0}

// bands is the single ordered breakpoint table. Boss stats, required stats,
// credit multipliers and drop tables are all read from here.
var bands = []band{
	{
		From:         1,
		To:           5,
		End:          anchor{30, 15, 6, 8, 1.4},
		BossName:     "Slime Warden",
		HPMultiplier: 1.0,
		KillRatio:    0.30,
		Clear:        DropRateTable{0.70, 0.25, 0.05, 0, 0},
		Idle:         DropRateTable{0.85, 0.14, 0.01, 0, 0},
	},
	{
		From:         6,
		To:           15,
		End:          anchor{90, 45, 11, 20, 2.9},
		BossName:     "Goblin Chieftain",
		HPMultiplier: 1.1,
		KillRatio:    0.33,
		Clear:        DropRateTable{0.60, 0.28, 0.10, 0.02, 0},
		Idle:         DropRateTable{0.78, 0.19, 0.03, 0, 0},
	},
	{
		From:         16,
		To:           30,
		End:          anchor{220, 110, 26, 40, 5.9},
		BossName:     "Stone Colossus",
		HPMultiplier: 1.2,
		KillRatio:    0.36,
		Clear:        DropRateTable{0.50, 0.30, 0.15, 0.045, 0.005},
		Idle:         DropRateTable{0.70, 0.23, 0.06, 0.01, 0},
	},
	{
		From:         31,
		To:           50,
		End:          anchor{480, 240, 85, 70, 11.9},
		BossName:     "Wyvern Matriarch",
		HPMultiplier: 1.3,
		KillRatio:    0.40,
		Clear:        DropRateTable{0.40, 0.32, 0.19, 0.08, 0.01},
		Idle:         DropRateTable{0.62, 0.27, 0.09, 0.019, 0.001},
	},
	{
		From:         51,
		To:           75,
		End:          anchor{1000, 500, 300, 110, 21.9},
		BossName:     "Lich Sovereign",
		HPMultiplier: 1.4,
		KillRatio:    0.45,
		Clear:        DropRateTable{0.30, 0.33, 0.23, 0.12, 0.02},
		Idle:         DropRateTable{0.55, 0.30, 0.12, 0.027, 0.003},
	},
	{
		From:         76,
		To:           100,
		End:          anchor{2000, 1000, 1300, 160, 34.4},
		BossName:     "Abyssal Dragon",
		HPMultiplier: 1.5,
		KillRatio:    0.50,
		Clear:        DropRateTable{0.20, 0.33, 0.28, 0.15, 0.04},
		Idle:         DropRateTable{0.48, 0.32, 0.15, 0.045, 0.005},
	},
}

// bandIndex returns the index of the band containing tier (already clamped).
func bandIndex(tier int) int {
	for i, b := range bands {
		if tier <= b.To {
			return i
		}
	}
	return len(bands) - 1
}

// interpolate evaluates every curve at tier in one pass.
func interpolate(tier int) (anchor, band) {
	i := bandIndex(tier)
	b := bands[i]
	start, startTier := origin, MinTier
	if i > 0 {
		start, startTier = bands[i-1].End, bands[i-1].To
	}
	f := 0.0
	if b.To > startTier {
		f = float64(tier-startTier) / float64(b.To-startTier)
	}
	lerp := func(a, z float64) float64 { return a*(1-f) + z*f }
	return anchor{
		RequiredAttack:   lerp(start.RequiredAttack, b.End.RequiredAttack),
		RequiredDefense:  lerp(start.RequiredDefense, b.End.RequiredDefense),
		BossAttack:       lerp(start.BossAttack, b.End.BossAttack),
		BossDefense:      lerp(start.BossDefense, b.End.BossDefense),
		CreditMultiplier: lerp(start.CreditMultiplier, b.End.CreditMultiplier),
	}, b
}

func roundInt(v float64) int { return int(math.Round(v)) }
